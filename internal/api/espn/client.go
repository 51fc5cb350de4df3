package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/omarshaarawi/commander/internal/config"
	"golang.org/x/time/rate"
)

const (
	baseURL     = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	scheduleURL = "https://cdn.espn.com/core/nfl/schedule"
)

// ErrAccessDenied is returned when ESPN rejects the league cookies. ESPN
// answers this way transiently under load, so callers may retry it.
var ErrAccessDenied = errors.New("espn access denied")

// Credentials are the cookies private leagues require.
type Credentials struct {
	SWID   string
	ESPNS2 string
}

type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	scheduleURL string
	defaults    Credentials
}

func NewClient(cfg config.ESPNAPI) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 8
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:     baseURL,
		scheduleURL: scheduleURL,
		defaults:    Credentials{SWID: cfg.SWID, ESPNS2: cfg.ESPNS2},
	}
}

// WithBaseURLs points the client at other hosts, for tests.
func (c *Client) WithBaseURLs(api, schedule string) *Client {
	c.baseURL = api
	c.scheduleURL = schedule
	return c
}

func (c *Client) Get(ctx context.Context, endpoint string, params, headers map[string]string, creds Credentials, result interface{}) error {
	return c.get(ctx, fmt.Sprintf("%s%s", c.baseURL, endpoint), params, headers, creds, result)
}

func (c *Client) get(ctx context.Context, url string, params, headers map[string]string, creds Credentials, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		values := strings.Split(value, ",")
		for _, v := range values {
			q.Add(key, strings.TrimSpace(v))
		}
	}
	req.URL.RawQuery = q.Encode()

	c.setCookies(req, creds)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAccessDenied, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

func (c *Client) setCookies(req *http.Request, creds Credentials) {
	if creds.SWID == "" && creds.ESPNS2 == "" {
		creds = c.defaults
	}
	if creds.SWID == "" && creds.ESPNS2 == "" {
		return
	}
	cookie := fmt.Sprintf("SWID=%s; espn_s2=%s", creds.SWID, creds.ESPNS2)
	req.Header.Set("Cookie", cookie)
}
