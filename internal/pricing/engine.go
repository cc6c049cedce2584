// Package pricing derives the cash price and installment plans shown for every
// sellable product. Results are recomputed on each read and never stored.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/donnegro/comercial/backend-go/internal/domain"
)

// Terms are the financed plans offered, in months.
var Terms = [4]int{6, 12, 15, 18}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Input is the cost plus the four stored percentages for a product.
type Input struct {
	Cost          decimal.Decimal `json:"cost"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	Interest6     decimal.Decimal `json:"interest_6"`
	Interest12    decimal.Decimal `json:"interest_12"`
	Interest15    decimal.Decimal `json:"interest_15"`
	Interest18    decimal.Decimal `json:"interest_18"`
}

func (in Input) interest(term int) decimal.Decimal {
	switch term {
	case 6:
		return in.Interest6
	case 12:
		return in.Interest12
	case 15:
		return in.Interest15
	case 18:
		return in.Interest18
	}
	return decimal.Zero
}

// Plan is one installment option. Installment and Total are zero when the
// plan is not available and must not be displayed.
type Plan struct {
	Term        int   `json:"term"`
	Available   bool  `json:"available"`
	Installment int64 `json:"installment"`
	Total       int64 `json:"total"`
}

// Result holds amounts in whole guaraníes.
type Result struct {
	CashPrice int64   `json:"cash_price"`
	Plans     [4]Plan `json:"plans"`
}

// Calculate computes the cash price and every installment plan.
// Rounding is half away from zero to the nearest guaraní, applied once to the
// cash price and once to each installment; totals are exact multiples.
func Calculate(in Input) Result {
	cash := in.Cost.Mul(one.Add(in.MarginPercent.Div(hundred))).Round(0)

	res := Result{CashPrice: cash.IntPart()}
	for i, term := range Terms {
		plan := Plan{Term: term}
		rate := in.interest(term)
		if rate.IsPositive() {
			installment := cash.Mul(one.Add(rate.Div(hundred))).
				Div(decimal.NewFromInt(int64(term))).
				Round(0)
			plan.Available = true
			plan.Installment = installment.IntPart()
			plan.Total = plan.Installment * int64(term)
		}
		res.Plans[i] = plan
	}

	return res
}

// Plan returns the plan for the given term; ok is false for unknown terms.
func (r Result) Plan(term int) (Plan, bool) {
	for _, p := range r.Plans {
		if p.Term == term {
			return p, true
		}
	}
	return Plan{}, false
}

// AvailablePlans returns only the plans that may be displayed.
func (r Result) AvailablePlans() []Plan {
	plans := make([]Plan, 0, len(r.Plans))
	for _, p := range r.Plans {
		if p.Available {
			plans = append(plans, p)
		}
	}
	return plans
}

// Defaults are the store-wide percentages used when a product has none stored.
type Defaults struct {
	MarginPercent decimal.Decimal
	Interest6     decimal.Decimal
	Interest12    decimal.Decimal
	Interest15    decimal.Decimal
	Interest18    decimal.Decimal
}

// NewDefaults builds Defaults from plain percentages.
func NewDefaults(margin, interest6, interest12, interest15, interest18 float64) Defaults {
	return Defaults{
		MarginPercent: decimal.NewFromFloat(margin),
		Interest6:     decimal.NewFromFloat(interest6),
		Interest12:    decimal.NewFromFloat(interest12),
		Interest15:    decimal.NewFromFloat(interest15),
		Interest18:    decimal.NewFromFloat(interest18),
	}
}

// StoreDefaults are 18% margin and 45/65/75/85% interest.
func StoreDefaults() Defaults {
	return NewDefaults(18, 45, 65, 75, 85)
}

// ForProduct coerces a catalog product into a safe Input. Missing or negative
// percentages fall back to d; a stored interest of zero is kept so the plan
// stays disabled. Negative cost becomes zero.
func ForProduct(p domain.CatalogProduct, d Defaults) Input {
	cost := p.Cost
	if cost.IsNegative() {
		cost = decimal.Zero
	}

	return Input{
		Cost:          cost,
		MarginPercent: orDefault(p.MarginPercent, d.MarginPercent),
		Interest6:     orDefault(p.Interest6, d.Interest6),
		Interest12:    orDefault(p.Interest12, d.Interest12),
		Interest15:    orDefault(p.Interest15, d.Interest15),
		Interest18:    orDefault(p.Interest18, d.Interest18),
	}
}

func orDefault(v decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if !v.Valid || v.Decimal.IsNegative() {
		return fallback
	}
	return v.Decimal
}
