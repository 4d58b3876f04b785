package trend

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coinwatch/models"
	"coinwatch/services/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRenderer(t *testing.T) (*Renderer, *store.PriceStore) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.MigratePriceModels(db))

	priceStore := store.NewPriceStore(db)
	return NewRenderer(priceStore, t.TempDir()), priceStore
}

func TestSpan(t *testing.T) {
	tests := []struct {
		timeframe string
		want      time.Duration
	}{
		{"day", 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"WEEK", 7 * 24 * time.Hour},
		{"fortnight", 24 * time.Hour}, // unrecognized falls back to one day
		{"", 24 * time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Span(tt.timeframe), "timeframe %q", tt.timeframe)
	}
}

func TestRender_NoData(t *testing.T) {
	r, _ := newTestRenderer(t)

	artifact := r.Render("usd", "day")

	assert.Contains(t, artifact.Markup, "No price data recorded for USD")
	assert.Empty(t, artifact.HTMLPath)
	assert.Empty(t, artifact.PNGPath)
}

func TestRender_WritesArtifacts(t *testing.T) {
	r, s := newTestRenderer(t)
	now := time.Now()

	require.NoError(t, s.Append("usd", decimal.NewFromInt(64000), now.Add(-2*time.Hour)))
	require.NoError(t, s.Append("usd", decimal.NewFromInt(65000), now.Add(-time.Hour)))
	require.NoError(t, s.Append("usd", decimal.NewFromInt(64500), now.Add(-time.Minute)))

	artifact := r.Render("usd", "day")

	require.NotEmpty(t, artifact.HTMLPath)
	require.NotEmpty(t, artifact.PNGPath)
	assert.FileExists(t, artifact.HTMLPath)
	assert.FileExists(t, artifact.PNGPath)

	// Markup references the artifacts by their static URL paths
	assert.Contains(t, artifact.Markup, "/static/"+filepath.Base(artifact.HTMLPath))
	assert.Contains(t, artifact.Markup, "/static/"+filepath.Base(artifact.PNGPath))

	// The interactive document is a complete HTML page
	content, err := os.ReadFile(artifact.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<html")
}

func TestRender_SinglePoint(t *testing.T) {
	r, s := newTestRenderer(t)

	require.NoError(t, s.Append("eur", decimal.NewFromInt(58000), time.Now()))

	artifact := r.Render("eur", "day")

	assert.NotEmpty(t, artifact.HTMLPath)
	assert.FileExists(t, artifact.HTMLPath)
	assert.NotContains(t, artifact.Markup, "chart-error")
}

func TestRender_OutOfWindowPointsExcluded(t *testing.T) {
	r, s := newTestRenderer(t)

	// Only a stale point exists, outside the one-day window
	require.NoError(t, s.Append("jpy", decimal.NewFromInt(9000001), time.Now().Add(-48*time.Hour)))

	artifact := r.Render("jpy", "day")

	assert.Contains(t, artifact.Markup, "No price data recorded for JPY")
	assert.Empty(t, artifact.HTMLPath)
}

func TestRender_UniqueFilenamesPerInvocation(t *testing.T) {
	r, s := newTestRenderer(t)
	require.NoError(t, s.Append("usd", decimal.NewFromInt(64000), time.Now()))

	first := r.Render("usd", "day")
	second := r.Render("usd", "day")

	require.NotEmpty(t, first.HTMLPath)
	require.NotEmpty(t, second.HTMLPath)
	assert.NotEqual(t, first.HTMLPath, second.HTMLPath)
}

func TestSegmentColor(t *testing.T) {
	p := func(v int64) models.PricePoint {
		return models.PricePoint{Value: decimal.NewFromInt(v)}
	}

	assert.Equal(t, ColorUp, segmentColor(p(100), p(200)))
	assert.Equal(t, ColorDown, segmentColor(p(200), p(100)))
	// Tie favors green
	assert.Equal(t, ColorUp, segmentColor(p(100), p(100)))
}

func TestMarkerColor(t *testing.T) {
	p := func(v int64) models.PricePoint {
		return models.PricePoint{Value: decimal.NewFromInt(v)}
	}

	assert.Equal(t, ColorSingle, markerColor([]models.PricePoint{p(100)}))
	assert.Equal(t, ColorUp, markerColor([]models.PricePoint{p(100), p(150)}))
	assert.Equal(t, ColorDown, markerColor([]models.PricePoint{p(150), p(100)}))
}

func TestNoDataMarkupEscapesCurrency(t *testing.T) {
	markup := noDataMarkup("<script>")
	assert.False(t, strings.Contains(markup, "<script>"))
}
