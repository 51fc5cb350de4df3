package fantasypros

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankingsPage = `<html><head>
<script src="/vendor.js"></script>
<script type="text/javascript">
  var sport = "nfl";
  var ecrData = {"sport":"NFL","players":[
    {"player_name":"Kenneth Walker III","player_team_id":"SEA","player_position_id":"RB","r2p_pts":"14.20"},
    {"player_name":"Jacksonville Jaguars","player_team_id":"JAC","player_position_id":"DST","r2p_pts":6.5},
    {"player_name":"Nobody","player_team_id":"FA","player_position_id":"RB","r2p_pts":null}
  ]};
  var other = 1;
</script></head><body></body></html>`

func TestParseRankings(t *testing.T) {
	players, err := ParseRankings(strings.NewReader(rankingsPage))
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, "Kenneth Walker III", players[0].Name)
	assert.Equal(t, 14.2, float64(players[0].Projected))
	assert.Equal(t, "JAC", players[1].Team)
	assert.Equal(t, 6.5, float64(players[1].Projected))
	assert.Zero(t, players[2].Projected)
}

func TestParseRankingsMissingData(t *testing.T) {
	_, err := ParseRankings(strings.NewReader(`<html><script>var x = 1;</script></html>`))
	assert.ErrorIs(t, err, ErrNoRankings)
}

func TestRankingsURL(t *testing.T) {
	c := NewClient().WithBaseURL("http://fp")

	assert.Equal(t, "http://fp/qb.php?week=3", c.RankingsURL("qb", "ppr", 3))
	assert.Equal(t, "http://fp/half-point-ppr-wr.php?week=3", c.RankingsURL("wr", "half-point-ppr", 3))
}

func TestRankings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ppr-rb.php", r.URL.Path)
		_, _ = w.Write([]byte(rankingsPage))
	}))
	defer server.Close()

	players, err := NewClient().WithBaseURL(server.URL).Rankings(context.Background(), "rb", "ppr", 1)
	require.NoError(t, err)
	assert.Len(t, players, 3)
}
