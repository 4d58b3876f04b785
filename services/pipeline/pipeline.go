package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"coinwatch/models"
	"coinwatch/services/alert"
	"coinwatch/services/store"
	"coinwatch/services/trend"

	"github.com/shopspring/decimal"
)

// LatestRowCount is how many stored points the dashboard table shows.
const LatestRowCount = 10

// PriceFetcher fetches current prices for a set of currency codes.
type PriceFetcher interface {
	Fetch(ctx context.Context, currencies []string) map[string]decimal.Decimal
}

// AlertEvaluator runs the threshold check for one currency.
type AlertEvaluator interface {
	Evaluate(currency, timeframe string) alert.Result
}

// ChartRenderer renders the display trend on the request path.
type ChartRenderer interface {
	Render(currency, timeframe string) trend.Artifact
}

// PageData is the view model for one dashboard request.
type PageData struct {
	Currency  string
	Timeframe string
	Alert     alert.Result
	Chart     trend.Artifact
	Rows      []models.PricePoint
}

// Pipeline sequences fetch, store and evaluate for one or more
// currencies. Control flow is strictly linear: each stage is an
// independent round trip and partial completion leaves the store in a
// valid but possibly alert-less state.
type Pipeline struct {
	fetcher      PriceFetcher
	prices       *store.PriceStore
	evaluator    AlertEvaluator
	renderer     ChartRenderer
	snapshotPath string
	now          func() time.Time
}

// New creates a new pipeline orchestrator
func New(fetcher PriceFetcher, prices *store.PriceStore, evaluator AlertEvaluator, renderer ChartRenderer, snapshotPath string) *Pipeline {
	return &Pipeline{
		fetcher:      fetcher,
		prices:       prices,
		evaluator:    evaluator,
		renderer:     renderer,
		snapshotPath: snapshotPath,
		now:          time.Now,
	}
}

// RunBatch runs one full cycle: a single fetch for all currencies, a
// store append per returned price with a shared timestamp, the JSON
// snapshot, then an evaluation (and possibly an alert) per currency.
// An empty fetch result ends the cycle after logging.
func (p *Pipeline) RunBatch(ctx context.Context, currencies []string) {
	log.Printf("Fetching BTC prices for: %v", currencies)

	fetched := p.fetcher.Fetch(ctx, currencies)
	if len(fetched) == 0 {
		log.Println("No price data received")
		return
	}

	timestamp := p.now().Truncate(time.Second)
	for _, currency := range currencies {
		value, ok := fetched[strings.ToLower(currency)]
		if !ok {
			continue
		}
		if err := p.prices.Append(currency, value, timestamp); err != nil {
			log.Printf("Failed to store price for %s: %v", currency, err)
		}
	}

	if err := store.WriteSnapshot(p.snapshotPath, fetched); err != nil {
		log.Printf("Failed to write snapshot: %v", err)
	}

	for _, currency := range currencies {
		result := p.evaluator.Evaluate(currency, trend.TimeframeDay)
		log.Printf("Evaluated %s: %s", strings.ToUpper(currency), result.Message)
	}
}

// RunForRequest runs the interactive path for a single currency: fetch
// and store, evaluate (which may alert), then render a display trend
// regardless of the alert outcome and read back the latest rows for
// the table.
func (p *Pipeline) RunForRequest(ctx context.Context, currency, timeframe string) PageData {
	currency = strings.ToLower(currency)

	fetched := p.fetcher.Fetch(ctx, []string{currency})
	if value, ok := fetched[currency]; ok {
		if err := p.prices.Append(currency, value, p.now().Truncate(time.Second)); err != nil {
			log.Printf("Failed to store price for %s: %v", currency, err)
		}
		if err := store.WriteSnapshot(p.snapshotPath, fetched); err != nil {
			log.Printf("Failed to write snapshot: %v", err)
		}
	} else {
		log.Printf("No price data received for %s", currency)
	}

	result := p.evaluator.Evaluate(currency, timeframe)
	artifact := p.renderer.Render(currency, timeframe)

	rows, err := p.prices.Latest(currency, LatestRowCount)
	if err != nil {
		log.Printf("Failed to load latest rows for %s: %v", currency, err)
		rows = nil
	}

	return PageData{
		Currency:  currency,
		Timeframe: strings.ToLower(timeframe),
		Alert:     result,
		Chart:     artifact,
		Rows:      rows,
	}
}
