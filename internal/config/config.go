package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// ReferenceZone is the time zone play status and week boundaries are computed in.
const ReferenceZone = "America/Chicago"

type Config struct {
	TelegramBot TelegramBot
	ESPNAPI     ESPNAPI
	Store       Store
	Season      Season
	Schedule    Schedule
	Matchups    Matchups
	Backfill    Backfill
	HTTP        HTTP
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

// Enabled reports whether the bot has enough configuration to start.
func (t TelegramBot) Enabled() bool {
	return t.Token != ""
}

type ESPNAPI struct {
	Year              int     `envconfig:"YEAR"`
	SWID              string  `envconfig:"SWID"`
	ESPNS2            string  `envconfig:"ESPN_S2"`
	RequestsPerSecond float64 `envconfig:"ESPN_REQUESTS_PER_SECOND" default:"8"`
}

type Store struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"sqlite"`
	Path        string `envconfig:"STORE_PATH" default:"commander.db"`
	LeaguesFile string `envconfig:"LEAGUES_FILE"`
}

type Season struct {
	Start string `envconfig:"SEASON_START" default:"2024-09-05"`
}

type Schedule struct {
	Scores   string `envconfig:"SCHEDULE_SCORES" default:"*/5 * * * *"`
	All      string `envconfig:"SCHEDULE_ALL" default:"0 6 * * *"`
	Profiles string `envconfig:"SCHEDULE_PROFILES" default:"*/15 * * * *"`
}

type Matchups struct {
	PublishWinChance bool `envconfig:"PUBLISH_WIN_CHANCE" default:"false"`
}

type Backfill struct {
	MaxTries    uint          `envconfig:"BACKFILL_MAX_TRIES" default:"5"`
	RetryDelay  time.Duration `envconfig:"BACKFILL_RETRY_DELAY" default:"500ms"`
	Concurrency int           `envconfig:"BACKFILL_CONCURRENCY" default:"8"`
	LastWeek    int           `envconfig:"BACKFILL_LAST_WEEK" default:"14"`
}

type HTTP struct {
	Addr string `envconfig:"HTTP_ADDR" default:":80"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if _, err := c.Season.StartTime(); err != nil {
		return fmt.Errorf("invalid SEASON_START: %w", err)
	}

	for name, expr := range map[string]string{
		"SCHEDULE_SCORES":   c.Schedule.Scores,
		"SCHEDULE_ALL":      c.Schedule.All,
		"SCHEDULE_PROFILES": c.Schedule.Profiles,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, expr, err)
		}
	}

	if c.Backfill.MaxTries == 0 {
		return fmt.Errorf("BACKFILL_MAX_TRIES must be at least 1")
	}
	if c.Backfill.Concurrency <= 0 {
		return fmt.Errorf("BACKFILL_CONCURRENCY must be positive")
	}

	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	return nil
}

// Location loads ReferenceZone, falling back to a fixed UTC-6 offset when
// the zone database is unavailable.
func Location() *time.Location {
	location, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return location
}

// StartTime is midnight of the season's first game day in ReferenceZone.
func (s Season) StartTime() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s.Start, Location())
}

// Week returns the fantasy week containing now, counting from 1.
func (s Season) Week(now time.Time) int {
	start, err := s.StartTime()
	if err != nil {
		return 1
	}
	days := int(now.In(Location()).Sub(start).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// Year is the configured season year, or the start date's year.
func (c *Config) Year() int {
	if c.ESPNAPI.Year != 0 {
		return c.ESPNAPI.Year
	}
	start, err := c.Season.StartTime()
	if err != nil {
		return time.Now().Year()
	}
	return start.Year()
}
