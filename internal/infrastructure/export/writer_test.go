package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WritesEveryTable(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	id := int64(7)
	combined := stats.Combined{
		PlayerStats: []stats.PlayerStats{{Season: "24/25", PlayerID: &id, Name: "A", Goals: 2}},
		Matches:     []stats.Match{{Season: "24/25", MatchKey: "s1"}},
		Seasons:     []stats.SeasonReport{{Season: "24/25", Loaded: true, Players: 1, Matches: 1}},
	}

	results, err := NewWriter(dir, 2, logging.NewNop()).Write(context.Background(), combined)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, MatchesFile, results[0].Name)

	var players []map[string]any
	body, err := os.ReadFile(filepath.Join(dir, PlayerStatsFile))
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(body, &players))
	require.Len(t, players, 1)
	assert.Equal(t, "24/25", players[0]["season"])
	assert.EqualValues(t, 2, players[0]["goals"])

	events, err := os.ReadFile(filepath.Join(dir, ScoringEventsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(events))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "no temp files left behind")
}

func TestWriter_CanceledContextKeepsPreviousFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	previous := []byte(`[{"season":"old"}]`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, MatchesFile), previous, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWriter(dir, 0, nil).Write(ctx, stats.Combined{})
	require.Error(t, err)

	body, err := os.ReadFile(filepath.Join(dir, MatchesFile))
	require.NoError(t, err)
	assert.Equal(t, previous, body)
}
