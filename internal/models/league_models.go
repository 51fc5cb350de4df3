package models

import "time"

type Platform string

const (
	PlatformESPN    Platform = "espn"
	PlatformSleeper Platform = "sleeper"
)

type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionDST Position = "DST"
	PositionK   Position = "K"
)

const (
	SlotFlex  = "FLEX"
	SlotBench = "BE"
	SlotIR    = "IR"
)

// PlayStatus is where a player's real-world game stands relative to now.
type PlayStatus string

const (
	PlayStatusBye     PlayStatus = "bye"
	PlayStatusFuture  PlayStatus = "future"
	PlayStatusToday   PlayStatus = "today"
	PlayStatusPlaying PlayStatus = "playing"
	PlayStatusPlayed  PlayStatus = "played"
)

const (
	HealthActive  = "ACTIVE"
	HealthOut     = "OUT"
	HealthWarning = "warning"
)

// Scoring variants carried by projections.
const (
	ScoringStandard = "standard"
	ScoringHalfPPR  = "half-point-ppr"
	ScoringPPR      = "ppr"
)

type Mode string

const (
	ModeDefault Mode = "default"
	ModeAll     Mode = "all"
	ModeMax     Mode = "max"
)

// ParseMode falls back to ModeDefault for anything it does not recognise.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAll, ModeMax:
		return Mode(s)
	default:
		return ModeDefault
	}
}

type Outcome string

const (
	OutcomeWinning Outcome = "winning"
	OutcomeLosing  Outcome = "losing"
)

// League is one configured league a profile follows, with the team it owns.
type League struct {
	Profile   string   `json:"profile"`
	Name      string   `json:"name"`
	Platform  Platform `json:"platform"`
	Scoring   string   `json:"scoring"`
	LeagueID  int64    `json:"league_id"`
	TeamID    int      `json:"team_id"`
	StartYear int      `json:"start_year"`
	SWID      string   `json:"-"`
	S2        string   `json:"-"`
}

// FlexCount is the number of FLEX slots the platform's lineups carry.
func (l League) FlexCount() int {
	if l.Platform == PlatformSleeper {
		return 2
	}
	return 1
}

type PlayerScore struct {
	LeagueID   int64      `json:"league_id"`
	TeamID     int        `json:"team_id"`
	Week       int        `json:"week"`
	Name       string     `json:"name"`
	ProTeam    string     `json:"team"`
	Status     string     `json:"status"`
	Position   Position   `json:"position"`
	Slot       string     `json:"slot"`
	Points     float64    `json:"points"`
	PlayStatus PlayStatus `json:"play_status"`
	GameTime   time.Time  `json:"gametime"`
	Updated    time.Time  `json:"updated"`

	// Filled per request, never stored.
	Projected float64 `json:"projected"`
	Display   string  `json:"display"`
}

// IsBench reports whether the player sits in a non-scoring slot.
func (p PlayerScore) IsBench() bool {
	return p.Slot == SlotBench || p.Slot == SlotIR
}

type Projection struct {
	Player   string    `json:"player"`
	ProTeam  string    `json:"team"`
	Week     int       `json:"week"`
	Standard float64   `json:"standard"`
	HalfPPR  float64   `json:"half-point-ppr"`
	PPR      float64   `json:"ppr"`
	Updated  time.Time `json:"updated"`
}

// Value returns the projection for a scoring variant, 0 when unknown.
func (p Projection) Value(scoring string) float64 {
	switch scoring {
	case ScoringStandard:
		return p.Standard
	case ScoringHalfPPR:
		return p.HalfPPR
	case ScoringPPR:
		return p.PPR
	default:
		return 0
	}
}

type GameProgress struct {
	Year     int     `json:"year"`
	Week     int     `json:"week"`
	ProTeam  string  `json:"team"`
	Progress float64 `json:"progress"`
	Display  string  `json:"display"`
}

// GameClock is when a real-world team plays this week and whether it has finished.
type GameClock struct {
	ProTeam  string
	Start    time.Time
	Complete bool
}

type Pairing struct {
	LeagueID int64 `json:"league_id"`
	Week     int   `json:"week"`
	Home     int   `json:"home"`
	Away     int   `json:"away"`
}

type TeamMeta struct {
	LeagueID int64  `json:"league_id"`
	TeamID   int    `json:"team_id"`
	Team     string `json:"team"`
	Owner    string `json:"owner"`
}

type ProjectionChange struct {
	ID      string    `json:"id"`
	Player  string    `json:"player"`
	ProTeam string    `json:"team"`
	Scoring string    `json:"scoring"`
	Old     float64   `json:"old"`
	New     float64   `json:"new"`
	Updated time.Time `json:"updated"`
}

type TeamOrganized struct {
	Starters   []PlayerScore `json:"starters"`
	Bench      []PlayerScore `json:"bench"`
	Show       []PlayerScore `json:"show"`
	Unresolved []string      `json:"unresolved,omitempty"`
	Points     float64       `json:"points"`
	Projected  float64       `json:"projected"`

	WinningPoints    Outcome `json:"winning_points"`
	WinningProjected Outcome `json:"winning_projected"`
	TiedPoints       bool    `json:"tied_points"`
	TiedProjected    bool    `json:"tied_projected"`
	WinChance        float64 `json:"win_chance_value"`
	WinChanceLabel   string  `json:"win_chance"`
}

type TeamSide struct {
	ID     int           `json:"id"`
	Team   string        `json:"team"`
	Owner  string        `json:"owner"`
	Lineup TeamOrganized `json:"players"`
}

type MatchupView struct {
	League   string   `json:"league"`
	LeagueID int64    `json:"league_id"`
	Platform Platform `json:"platform"`
	Week     int      `json:"week"`
	Mode     Mode     `json:"mode"`
	Home     TeamSide `json:"home"`
	Away     TeamSide `json:"away"`
	Err      string   `json:"error,omitempty"`
}

// LeagueRecord is one team's result in one historical week.
type LeagueRecord struct {
	Year      int     `json:"year"`
	Week      int     `json:"week"`
	MatchupID int     `json:"matchup_id"`
	Owner     string  `json:"owner"`
	Points    float64 `json:"points"`
	Projected float64 `json:"projected"`
	Outcome   float64 `json:"outcome"`
}

type RecordCategory struct {
	Name    string         `json:"name"`
	Records []LeagueRecord `json:"records"`
}

type RecordBoard struct {
	League     string           `json:"league"`
	Categories []RecordCategory `json:"categories"`
}
