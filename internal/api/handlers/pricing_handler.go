package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/internal/service"
)

type PricingHandler struct {
	catalogService *service.CatalogService
}

func NewPricingHandler(catalogService *service.CatalogService) *PricingHandler {
	return &PricingHandler{catalogService: catalogService}
}

type planView struct {
	pricing.Plan
	InstallmentLabel string `json:"installment_label"`
	TotalLabel       string `json:"total_label"`
}

type quoteResponse struct {
	Input          pricing.Input `json:"input"`
	CashPrice      int64         `json:"cash_price"`
	CashPriceLabel string        `json:"cash_price_label"`
	Plans          []planView    `json:"plans"`
}

// Quote prices the query values. Omitted percentages take the store defaults;
// an explicit 0 interest disables that term.
func (h *PricingHandler) Quote(c *gin.Context) {
	d := h.catalogService.Defaults()

	in := pricing.Input{}
	fields := []struct {
		name     string
		dst      *decimal.Decimal
		fallback *decimal.Decimal
	}{
		{"cost", &in.Cost, nil},
		{"margin", &in.MarginPercent, &d.MarginPercent},
		{"interest_6", &in.Interest6, &d.Interest6},
		{"interest_12", &in.Interest12, &d.Interest12},
		{"interest_15", &in.Interest15, &d.Interest15},
		{"interest_18", &in.Interest18, &d.Interest18},
	}
	for _, f := range fields {
		v, err := queryDecimal(c, f.name, f.fallback)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		*f.dst = v
	}

	res := h.catalogService.Quote(in)

	plans := make([]planView, 0, len(res.Plans))
	for _, p := range res.AvailablePlans() {
		plans = append(plans, planView{
			Plan:             p,
			InstallmentLabel: pricing.FormatCurrency(p.Installment),
			TotalLabel:       pricing.FormatCurrency(p.Total),
		})
	}

	c.JSON(http.StatusOK, quoteResponse{
		Input:          in,
		CashPrice:      res.CashPrice,
		CashPriceLabel: pricing.FormatCurrency(res.CashPrice),
		Plans:          plans,
	})
}

func queryDecimal(c *gin.Context, name string, fallback *decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if fallback == nil {
			return decimal.Zero, fmt.Errorf("%s is required", name)
		}
		return *fallback, nil
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", name)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", name)
	}
	return v, nil
}
