package mapgen

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/runmap/pkg/seed"
)

// debugEntries generates one map with a JSON debug logger and returns the
// decoded log lines whose message is msg.
func debugEntries(t *testing.T, cfg Config, s seed.Seed, msg string) ([]map[string]any, int) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.JSONFormatter})

	g, err := NewGenerator(cfg, logger).Generate(context.Background(), s)
	require.NoError(t, err)

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		if entry["msg"] == msg {
			out = append(out, entry)
		}
	}
	return out, g.Crossings()
}

func TestSmoothLogReportsFinalCrossings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumberOfLayers = 12
	cfg.MaxNodesPerLayer = 5

	changed := 0
	for s := range seed.Seed(50) {
		entries, crossings := debugEntries(t, cfg, s, "layout smoothed")
		require.Len(t, entries, 1, "seed %d", s)
		e := entries[0]
		assert.EqualValues(t, crossings, e["crossings_after"], "seed %d", s)
		if e["crossings_before"] != e["crossings_after"] {
			changed++
		}
	}
	assert.Positive(t, changed, "smoothing never changed the crossing count")
}

func TestNoSmoothLogWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Smooth = false

	entries, _ := debugEntries(t, cfg, 7, "layout smoothed")
	assert.Empty(t, entries)
}
