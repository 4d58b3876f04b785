package mailer

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// narrativeTemplates is the fixed set of storytelling bodies an alert
// can open with. Content is flavor text; the placeholders are currency
// code and price.
var narrativeTemplates = []string{
	"In today's crypto saga, Bitcoin (%s) has just moved to %s. Traders everywhere are watching closely!",
	"The crypto waves are stirring! BTC (%s) currently sits at %s. What a thrilling ride!",
	"A new twist in the Bitcoin story: %s %s. The market buzzes with anticipation!",
	"Attention crypto enthusiasts! Bitcoin (%s) reached %s. The next chapter unfolds.",
	"The tale of Bitcoin continues: BTC (%s) stands at %s. Stay tuned for the next move!",
}

// TemplateSelector picks which narrative template an alert uses.
// Pluggable so tests can make the choice deterministic.
type TemplateSelector interface {
	Pick(n int) int
}

// RandomSelector picks a template uniformly at random.
type RandomSelector struct{}

func (RandomSelector) Pick(n int) int {
	return rand.Intn(n)
}

// FixedSelector always picks the same index (clamped into range).
type FixedSelector struct {
	Index int
}

func (s FixedSelector) Pick(n int) int {
	if s.Index < 0 || s.Index >= n {
		return 0
	}
	return s.Index
}

// narrative renders the selected template for a currency and price.
func narrative(selector TemplateSelector, currency string, price decimal.Decimal) string {
	tmpl := narrativeTemplates[selector.Pick(len(narrativeTemplates))]
	return fmt.Sprintf(tmpl, currency, price.StringFixed(2))
}
