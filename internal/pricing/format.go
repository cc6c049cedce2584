package pricing

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	guarani       = currency.MustParseISO("PYG")
	guaraniLocale = language.MustParse("es-PY")
)

// FormatCurrency renders whole guaraníes the way es-PY does:
// symbol prefix, dot as thousands separator, no decimals.
// Example: 1180000 => "Gs. 1.180.000". Negative amounts carry the sign
// before the symbol.
func FormatCurrency(n int64) string {
	p := message.NewPrinter(guaraniLocale)
	if n < 0 {
		return "-" + p.Sprint(currency.Symbol(guarani.Amount(uint64(-n))))
	}
	return p.Sprint(currency.Symbol(guarani.Amount(n)))
}
