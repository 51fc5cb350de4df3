// Package proteam maps NFL team abbreviations between provider naming conventions.
package proteam

// System names a provider whose team abbreviations may differ from the others.
type System string

const (
	ESPN        System = "espn"
	Sleeper     System = "sleeper"
	FantasyPros System = "fp"
	NFL         System = "nfl"
)

// Only teams whose codes differ somewhere are listed; everything else is
// already canonical.
var teams = []map[System]string{
	{ESPN: "WSH", Sleeper: "WAS", FantasyPros: "WAS", NFL: "WSH"},
	{ESPN: "JAX", Sleeper: "JAX", FantasyPros: "JAC", NFL: "JAX"},
	{ESPN: "OAK", Sleeper: "LV", FantasyPros: "LV", NFL: "LV"},
}

// Translate converts code from one system's abbreviation to another's.
// Codes not in the table are returned unchanged.
func Translate(from, to System, code string) string {
	if code == "" {
		return ""
	}

	for _, team := range teams {
		if team[from] == code {
			if out, ok := team[to]; ok {
				return out
			}
			return code
		}
	}

	return code
}

// codes returns every abbreviation the table knows for a system.
func codes(system System) []string {
	codes := make([]string, 0, len(teams))
	for _, team := range teams {
		if code, ok := team[system]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}
