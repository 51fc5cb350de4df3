// Package fantasypros scrapes weekly expert-consensus projections from the
// FantasyPros rankings pages.
package fantasypros

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	baseURL      = "https://www.fantasypros.com/nfl/rankings"
	ecrDataToken = "var ecrData = "
)

var ErrNoRankings = errors.New("no ecrData script on rankings page")

// Positions are the rankings pages, in FantasyPros URL spelling.
var Positions = []string{"qb", "rb", "wr", "te", "k", "dst"}

// Scorings are the variants FantasyPros publishes separate pages for.
var Scorings = []string{"half-point-ppr", "ppr"}

// Player is one ranked player as FantasyPros publishes it.
type Player struct {
	Name      string    `json:"player_name"`
	Team      string    `json:"player_team_id"`
	Position  string    `json:"player_position_id"`
	Projected flexFloat `json:"r2p_pts"`
}

type ecrData struct {
	Players []Player `json:"players"`
}

// flexFloat accepts numbers, numeric strings, and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing projection %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
	}
}

// WithBaseURL points the client at another host, for tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// RankingsURL builds the page address. QB, K and DST rankings do not vary
// by scoring so they have a single page.
func (c *Client) RankingsURL(position, scoring string, week int) string {
	switch position {
	case "qb", "k", "dst":
		return fmt.Sprintf("%s/%s.php?week=%d", c.baseURL, position, week)
	default:
		return fmt.Sprintf("%s/%s-%s.php?week=%d", c.baseURL, scoring, position, week)
	}
}

func (c *Client) Rankings(ctx context.Context, position, scoring string, week int) ([]Player, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RankingsURL(position, scoring, week), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	players, err := ParseRankings(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %s rankings: %w", scoring, position, err)
	}
	return players, nil
}

// ParseRankings finds the ecrData assignment in the page's scripts.
func ParseRankings(r io.Reader) ([]Player, error) {
	tokenizer := html.NewTokenizer(r)
	inScript := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if errors.Is(tokenizer.Err(), io.EOF) {
				return nil, ErrNoRankings
			}
			return nil, tokenizer.Err()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := tokenizer.Text()
			idx := bytes.Index(text, []byte(ecrDataToken))
			if idx < 0 {
				continue
			}

			var data ecrData
			decoder := json.NewDecoder(bytes.NewReader(text[idx+len(ecrDataToken):]))
			if err := decoder.Decode(&data); err != nil {
				return nil, fmt.Errorf("decoding ecrData: %w", err)
			}
			return data.Players, nil
		}
	}
}
