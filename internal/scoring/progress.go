package scoring

import "fmt"

const (
	quarterSeconds    = 900
	regulationSeconds = 4 * quarterSeconds
)

// Completion converts a game clock into the fraction of regulation played.
// Overtime and pre-kickoff clocks clamp to [0, 1].
func Completion(period int, clock float64) float64 {
	if period <= 0 {
		return 0
	}

	elapsed := float64((period-1)*quarterSeconds) + (quarterSeconds - clock)
	progress := elapsed / regulationSeconds

	switch {
	case progress < 0:
		return 0
	case progress > 1:
		return 1
	default:
		return progress
	}
}

// ClockDisplay renders a period and ESPN display clock as "Q3 07:45".
func ClockDisplay(period int, displayClock string) string {
	pad := ""
	if len(displayClock) < 5 {
		pad = "0"
	}
	return fmt.Sprintf("Q%d %s%s", period, pad, displayClock)
}
