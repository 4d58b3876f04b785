package trend

import (
	"fmt"
	"html"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coinwatch/models"
	"coinwatch/services/store"
)

// Segment and marker colors. A rising or flat segment is green, a
// falling one red; the latest-point marker turns blue when the window
// holds a single observation.
const (
	ColorUp     = "#16a34a"
	ColorDown   = "#dc2626"
	ColorSingle = "#2563eb"
)

// Artifact is the transient output of one render: an embeddable markup
// fragment plus paths to the standalone interactive document and the
// static image. Paths are empty when there was nothing to draw.
type Artifact struct {
	Markup   string
	HTMLPath string
	PNGPath  string
}

// Renderer produces trend charts from the stored price log. Artifacts
// are written to dir with names unique per invocation; nothing is ever
// reused or cleaned up.
type Renderer struct {
	store *store.PriceStore
	dir   string
	now   func() time.Time
}

// NewRenderer creates a new trend renderer writing artifacts to dir.
func NewRenderer(priceStore *store.PriceStore, dir string) *Renderer {
	return &Renderer{
		store: priceStore,
		dir:   dir,
		now:   time.Now,
	}
}

// Render builds the trend chart for a currency over the given
// timeframe. Failures are absorbed into the returned artifact: an empty
// window yields "no data" fallback markup and a storage error yields
// error-styled markup, both with empty paths. It never returns an error
// to the caller.
func (r *Renderer) Render(currency, timeframe string) Artifact {
	currency = strings.ToUpper(currency)
	now := r.now()
	since := now.Add(-Span(timeframe))

	points, err := r.store.Window(currency, since)
	if err != nil {
		log.Printf("Trend data query failed for %s: %v", currency, err)
		return Artifact{Markup: errorMarkup(err)}
	}
	if len(points) == 0 {
		return Artifact{Markup: noDataMarkup(currency)}
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		log.Printf("Artifact directory unavailable: %v", err)
		return Artifact{Markup: errorMarkup(err)}
	}

	base := fmt.Sprintf("trend_%s_%d", currency, now.UnixNano())
	htmlPath := filepath.Join(r.dir, base+".html")
	pngPath := filepath.Join(r.dir, base+".png")

	if err := writeInteractiveChart(htmlPath, currency, points); err != nil {
		log.Printf("Interactive chart render failed for %s: %v", currency, err)
		return Artifact{Markup: errorMarkup(err)}
	}

	// The static image is best-effort: the interactive document alone
	// still makes a complete artifact.
	if err := writeStaticChart(pngPath, currency, points); err != nil {
		log.Printf("Static chart render failed for %s: %v", currency, err)
		pngPath = ""
	}

	return Artifact{
		Markup:   embedMarkup(htmlPath, pngPath, currency),
		HTMLPath: htmlPath,
		PNGPath:  pngPath,
	}
}

// segmentColor colors the line piece between two consecutive points.
// A tie favors green.
func segmentColor(earlier, later models.PricePoint) string {
	if later.Value.GreaterThanOrEqual(earlier.Value) {
		return ColorUp
	}
	return ColorDown
}

// markerColor colors the distinguished latest-point marker.
func markerColor(points []models.PricePoint) string {
	if len(points) < 2 {
		return ColorSingle
	}
	return segmentColor(points[len(points)-2], points[len(points)-1])
}

// embedMarkup builds the inline fragment shown on the dashboard and in
// alert mails. Artifacts are served from the static asset mount, so the
// fragment references them by URL path rather than filesystem path.
func embedMarkup(htmlPath, pngPath, currency string) string {
	var b strings.Builder
	b.WriteString(`<div class="chart-container">`)
	fmt.Fprintf(&b,
		`<iframe src="/static/%s" title="BTC trend (%s)" width="660" height="440" frameborder="0"></iframe>`,
		html.EscapeString(filepath.Base(htmlPath)), html.EscapeString(currency))
	if pngPath != "" {
		fmt.Fprintf(&b,
			`<noscript><img src="/static/%s" alt="BTC trend (%s)" width="660"></noscript>`,
			html.EscapeString(filepath.Base(pngPath)), html.EscapeString(currency))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// noDataMarkup is the valid terminal state for an empty window.
func noDataMarkup(currency string) string {
	return fmt.Sprintf(`<p class="no-data">No price data recorded for %s yet.</p>`,
		html.EscapeString(currency))
}

func errorMarkup(err error) string {
	return fmt.Sprintf(`<p class="chart-error">Chart unavailable: %s</p>`,
		html.EscapeString(err.Error()))
}
