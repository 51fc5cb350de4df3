package config

import "github.com/omarshaarawi/commander/internal/models"

// Profiles is a read-only snapshot of which leagues each profile follows.
// Build one with NewProfiles and pass it to each call.
type Profiles struct {
	byProfile map[string][]models.League
	order     []string
}

func NewProfiles(leagues []models.League) Profiles {
	p := Profiles{byProfile: make(map[string][]models.League)}
	for _, league := range leagues {
		if _, ok := p.byProfile[league.Profile]; !ok {
			p.order = append(p.order, league.Profile)
		}
		p.byProfile[league.Profile] = append(p.byProfile[league.Profile], league)
	}
	return p
}

// Leagues returns a copy of the profile's leagues in configured order.
func (p Profiles) Leagues(profile string) []models.League {
	leagues := p.byProfile[profile]
	return append([]models.League(nil), leagues...)
}

func (p Profiles) Names() []string {
	return append([]string(nil), p.order...)
}

// Unique returns each (platform, league id) once, first configuration wins.
func (p Profiles) Unique() []models.League {
	type key struct {
		platform models.Platform
		id       int64
	}

	seen := make(map[key]bool)
	var unique []models.League
	for _, name := range p.order {
		for _, league := range p.byProfile[name] {
			k := key{league.Platform, league.LeagueID}
			if seen[k] {
				continue
			}
			seen[k] = true
			unique = append(unique, league)
		}
	}
	return unique
}
