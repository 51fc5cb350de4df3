// Package sleeper reads league rosters and scores from the public Sleeper API.
package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/omarshaarawi/commander/internal/models"
)

const baseURL = "https://api.sleeper.app/v1"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// WithBaseURL points the client at another host, for tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

// Players returns the full NFL player directory keyed by Sleeper player id.
func (c *Client) Players(ctx context.Context) (map[string]models.SleeperPlayer, error) {
	var players map[string]models.SleeperPlayer
	if err := c.get(ctx, "/players/nfl", &players); err != nil {
		return nil, fmt.Errorf("fetching players: %w", err)
	}
	return players, nil
}

// Matchups returns the week's team entries ordered by matchup id, so that
// consecutive entries face each other.
func (c *Client) Matchups(ctx context.Context, leagueID int64, week int) ([]models.SleeperMatchup, error) {
	var matchups []models.SleeperMatchup
	if err := c.get(ctx, fmt.Sprintf("/league/%d/matchups/%d", leagueID, week), &matchups); err != nil {
		return nil, fmt.Errorf("fetching matchups: %w", err)
	}

	sort.SliceStable(matchups, func(i, j int) bool {
		return matchups[i].MatchupID < matchups[j].MatchupID
	})

	return matchups, nil
}

func (c *Client) Rosters(ctx context.Context, leagueID int64) ([]models.SleeperRoster, error) {
	var rosters []models.SleeperRoster
	if err := c.get(ctx, fmt.Sprintf("/league/%d/rosters", leagueID), &rosters); err != nil {
		return nil, fmt.Errorf("fetching rosters: %w", err)
	}
	return rosters, nil
}

func (c *Client) Users(ctx context.Context, leagueID int64) ([]models.SleeperUser, error) {
	var users []models.SleeperUser
	if err := c.get(ctx, fmt.Sprintf("/league/%d/users", leagueID), &users); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	return users, nil
}
