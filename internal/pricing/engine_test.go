package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/donnegro/comercial/backend-go/internal/domain"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCalculate_CashPriceAndGating(t *testing.T) {
	t.Parallel()

	res := Calculate(Input{
		Cost:          dec(1000000),
		MarginPercent: dec(18),
		Interest6:     dec(45),
		Interest12:    dec(0),
	})

	if res.CashPrice != 1180000 {
		t.Fatalf("cash price want=1180000 got=%d", res.CashPrice)
	}

	p6, ok := res.Plan(6)
	if !ok || !p6.Available {
		t.Fatalf("6-month plan should be available: %+v", p6)
	}
	// 1180000 * 1.45 / 6 = 285166.67
	if p6.Installment != 285167 {
		t.Fatalf("installment6 want=285167 got=%d", p6.Installment)
	}
	if p6.Total != 1711002 {
		t.Fatalf("total6 want=1711002 got=%d", p6.Total)
	}

	for _, term := range []int{12, 15, 18} {
		p, ok := res.Plan(term)
		if !ok {
			t.Fatalf("missing plan for %d", term)
		}
		if p.Available || p.Installment != 0 || p.Total != 0 {
			t.Fatalf("plan %d should be unavailable and zeroed: %+v", term, p)
		}
	}

	if got := len(res.AvailablePlans()); got != 1 {
		t.Fatalf("available plans want=1 got=%d", got)
	}
}

func TestCalculate_ZeroCost(t *testing.T) {
	t.Parallel()

	for _, margin := range []int64{0, 18, 250} {
		res := Calculate(Input{Cost: decimal.Zero, MarginPercent: dec(margin), Interest6: dec(45)})
		if res.CashPrice != 0 {
			t.Fatalf("margin=%d cash price want=0 got=%d", margin, res.CashPrice)
		}
		if p, _ := res.Plan(6); p.Installment != 0 || p.Total != 0 {
			t.Fatalf("margin=%d expected zero installment, got %+v", margin, p)
		}
	}
}

func TestCalculate_Monotonic(t *testing.T) {
	t.Parallel()

	prev := int64(-1)
	for cost := int64(0); cost <= 5000000; cost += 123457 {
		res := Calculate(Input{Cost: dec(cost), MarginPercent: dec(18)})
		if res.CashPrice < prev {
			t.Fatalf("cash price decreased at cost=%d: %d < %d", cost, res.CashPrice, prev)
		}
		prev = res.CashPrice
	}

	prev = -1
	for margin := int64(0); margin <= 200; margin += 7 {
		res := Calculate(Input{Cost: dec(987654), MarginPercent: dec(margin)})
		if res.CashPrice < prev {
			t.Fatalf("cash price decreased at margin=%d: %d < %d", margin, res.CashPrice, prev)
		}
		prev = res.CashPrice
	}
}

func TestCalculate_InstallmentIdentity(t *testing.T) {
	t.Parallel()

	costs := []string{"1", "999", "2494800", "1234567.89", "73333"}
	for _, c := range costs {
		res := Calculate(Input{
			Cost:          decimal.RequireFromString(c),
			MarginPercent: decimal.RequireFromString("17.5"),
			Interest6:     dec(45),
			Interest12:    dec(65),
			Interest15:    decimal.RequireFromString("75.25"),
			Interest18:    dec(85),
		})
		for _, p := range res.Plans {
			if !p.Available {
				t.Fatalf("cost=%s plan %d should be available", c, p.Term)
			}
			if p.Total != p.Installment*int64(p.Term) {
				t.Fatalf("cost=%s plan %d total=%d installment=%d", c, p.Term, p.Total, p.Installment)
			}
		}
	}
}

func TestCalculate_RoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	// 5 * 1.10 = 5.5 -> 6
	res := Calculate(Input{Cost: dec(5), MarginPercent: dec(10)})
	if res.CashPrice != 6 {
		t.Fatalf("want=6 got=%d", res.CashPrice)
	}
}

func TestForProduct_Coercion(t *testing.T) {
	t.Parallel()

	d := StoreDefaults()
	p := domain.CatalogProduct{
		Cost:          dec(-10),
		MarginPercent: decimal.NullDecimal{},
		Interest6:     decimal.NewNullDecimal(dec(-3)),
		Interest12:    decimal.NewNullDecimal(dec(0)),
		Interest15:    decimal.NewNullDecimal(dec(60)),
	}

	in := ForProduct(p, d)
	if !in.Cost.IsZero() {
		t.Fatalf("negative cost should coerce to zero, got %s", in.Cost)
	}
	if !in.MarginPercent.Equal(dec(18)) {
		t.Fatalf("missing margin should default to 18, got %s", in.MarginPercent)
	}
	if !in.Interest6.Equal(dec(45)) {
		t.Fatalf("negative interest should default to 45, got %s", in.Interest6)
	}
	if !in.Interest12.IsZero() {
		t.Fatalf("stored zero interest must stay zero, got %s", in.Interest12)
	}
	if !in.Interest15.Equal(dec(60)) {
		t.Fatalf("stored interest should be kept, got %s", in.Interest15)
	}
	if !in.Interest18.Equal(dec(85)) {
		t.Fatalf("missing interest18 should default to 85, got %s", in.Interest18)
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	cases := map[int64]string{
		0:        "Gs. 0",
		999:      "Gs. 999",
		1000:     "Gs. 1.000",
		1180000:  "Gs. 1.180.000",
		-284833:  "-Gs. 284.833",
		12345678: "Gs. 12.345.678",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Fatalf("FormatCurrency(%d) want=%q got=%q", in, want, got)
		}
	}
}
