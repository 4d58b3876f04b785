package alert

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"coinwatch/services/store"
	"coinwatch/services/trend"

	"github.com/shopspring/decimal"
)

// Status describes the outcome of one evaluation.
type Status string

const (
	StatusNoData         Status = "no_data"
	StatusBelowThreshold Status = "below_threshold"
	StatusAlertSent      Status = "alert_sent"
)

// Result carries the evaluation outcome and, when a price exists, its
// current value. Message is ready for inline display.
type Result struct {
	Status  Status
	Value   decimal.Decimal
	Message string
}

// ChartRenderer renders the trend artifact attached to an alert.
type ChartRenderer interface {
	Render(currency, timeframe string) trend.Artifact
}

// Notifier delivers the alert. Delivery is fire-and-forget: the
// evaluator's result does not depend on whether delivery succeeded.
type Notifier interface {
	SendAlert(currency string, price decimal.Decimal, artifact trend.Artifact)
}

// Evaluator compares the latest stored price of a currency against its
// configured threshold. It is stateless across calls: a sustained
// breach re-alerts on every invocation.
type Evaluator struct {
	prices     *store.PriceStore
	thresholds map[string]decimal.Decimal
	renderer   ChartRenderer
	notifier   Notifier
}

// NewEvaluator creates a new alert evaluator. Thresholds are keyed by
// uppercase currency code; a currency without an entry never alerts.
func NewEvaluator(prices *store.PriceStore, thresholds map[string]decimal.Decimal, renderer ChartRenderer, notifier Notifier) *Evaluator {
	return &Evaluator{
		prices:     prices,
		thresholds: thresholds,
		renderer:   renderer,
		notifier:   notifier,
	}
}

// Evaluate reads the latest stored price for the currency and triggers
// a notification when it strictly exceeds the configured threshold. The
// rendered trend for the given timeframe travels with the alert.
func (e *Evaluator) Evaluate(currency, timeframe string) Result {
	currency = strings.ToUpper(currency)

	value, err := e.prices.LatestOne(currency)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Price lookup failed for %s: %v", currency, err)
			return Result{Status: StatusNoData, Message: fmt.Sprintf("Price lookup failed: %v", err)}
		}
		return Result{Status: StatusNoData, Message: "No data found."}
	}

	threshold, configured := e.thresholds[currency]
	if configured && value.GreaterThan(threshold) {
		artifact := e.renderer.Render(currency, timeframe)
		e.notifier.SendAlert(currency, value, artifact)
		return Result{
			Status:  StatusAlertSent,
			Value:   value,
			Message: fmt.Sprintf("Alert sent! BTC %s is %s", currency, value.StringFixed(2)),
		}
	}

	return Result{
		Status:  StatusBelowThreshold,
		Value:   value,
		Message: fmt.Sprintf("No alert. BTC %s is %s", currency, value.StringFixed(2)),
	}
}
