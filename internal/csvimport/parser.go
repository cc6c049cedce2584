// Package csvimport reconciles supplier cost lists against the storefront catalog:
// it parses the uploaded text, scores product names, builds the reviewed match
// list and commits it in bounded batches.
package csvimport

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/donnegro/comercial/backend-go/internal/domain"
)

const (
	minSimpleFields   = 3
	minExtendedFields = 9
	minNameLength     = 3
)

var headerWords = []string{"nombre", "codigo", "descripcion"}

// parsedLine is the layout-specific view of a line, produced by detectLayout.
type parsedLine interface {
	isParsedLine()
}

// SimpleRow is the `Nombre;Costo;Codigo EXT` layout.
type SimpleRow struct {
	Name         string
	Cost         string
	ExternalCode string
}

// ExtendedRow is the ERP export layout:
// CODIGO;DESCRIPCION;COSTO;PRECIO_MINORISTA;PRECIO_MAYORISTA;CANTIDAD;FAMILIA;MARCA;LOCALIDAD;Imagen.
// Prices, brand and image are not consumed.
type ExtendedRow struct {
	Code        string
	Description string
	Cost        string
	Quantity    string
	Family      string
	Locality    string
}

func (SimpleRow) isParsedLine()   {}
func (ExtendedRow) isParsedLine() {}

// ParseResult holds the surviving rows and the lines that were discarded.
type ParseResult struct {
	Rows          []domain.CsvRow
	Dropped       []domain.ParseDiagnostic
	HeaderSkipped bool
}

// ParseRows parses raw cost-list text. It never fails: lines that do not
// qualify are reported in Dropped and otherwise ignored.
func ParseRows(text string) ParseResult {
	var res ParseResult

	first := true
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lineNo := i + 1
		isFirst := first
		first = false

		variant, ok := detectLayout(splitFields(line))
		if !ok {
			res.Dropped = append(res.Dropped, domain.ParseDiagnostic{Line: lineNo, Reason: domain.DropTooFewFields, Text: line})
			continue
		}

		if isFirst && looksLikeHeader(variant) {
			res.HeaderSkipped = true
			continue
		}

		row, reason, ok := toCsvRow(variant, lineNo)
		if !ok {
			res.Dropped = append(res.Dropped, domain.ParseDiagnostic{Line: lineNo, Reason: reason, Text: line})
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	return res
}

// delimiterFor picks ';' whenever the line contains one, ',' otherwise.
func delimiterFor(line string) rune {
	if strings.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

// splitFields cuts line on its delimiter before any quote handling, so a
// stray or unterminated quote never swallows the rest of the line.
func splitFields(line string) []string {
	fields := strings.Split(line, string(delimiterFor(line)))
	for i, f := range fields {
		fields[i] = cleanField(f)
	}
	return fields
}

func cleanField(f string) string {
	f = strings.TrimSpace(f)
	f = strings.Trim(f, `"`)
	return strings.TrimSpace(f)
}

func detectLayout(fields []string) (parsedLine, bool) {
	switch {
	case len(fields) >= minExtendedFields:
		return ExtendedRow{
			Code:        fields[0],
			Description: fields[1],
			Cost:        fields[2],
			Quantity:    fields[5],
			Family:      fields[6],
			Locality:    fields[8],
		}, true
	case len(fields) >= minSimpleFields:
		return SimpleRow{
			Name:         fields[0],
			Cost:         fields[1],
			ExternalCode: fields[2],
		}, true
	default:
		return nil, false
	}
}

func looksLikeHeader(line parsedLine) bool {
	var candidates []string
	switch l := line.(type) {
	case SimpleRow:
		candidates = []string{l.Name}
	case ExtendedRow:
		candidates = []string{l.Code, l.Description}
	}

	for _, c := range candidates {
		folded := Normalize(c)
		for _, w := range headerWords {
			if strings.Contains(folded, w) {
				return true
			}
		}
	}
	return false
}

func toCsvRow(line parsedLine, lineNo int) (domain.CsvRow, domain.DropReason, bool) {
	var row domain.CsvRow
	var rawCost string

	switch l := line.(type) {
	case SimpleRow:
		row = domain.CsvRow{
			Layout:       domain.LayoutSimple,
			Name:         l.Name,
			ExternalCode: trimCode(l.ExternalCode),
		}
		rawCost = l.Cost
	case ExtendedRow:
		row = domain.CsvRow{
			Layout:       domain.LayoutExtended,
			Name:         l.Description,
			ExternalCode: trimCode(l.Code),
			Category:     l.Family,
			Location:     l.Locality,
		}
		if qty, ok := parseAmount(l.Quantity); ok {
			stock := int(qty.IntPart())
			row.Stock = &stock
		}
		rawCost = l.Cost
	default:
		return domain.CsvRow{}, domain.DropTooFewFields, false
	}

	cost, ok := parseAmount(rawCost)
	if !ok {
		return domain.CsvRow{}, domain.DropInvalidCost, false
	}
	if utf8.RuneCountInString(row.Name) <= minNameLength {
		return domain.CsvRow{}, domain.DropNameTooShort, false
	}

	row.Line = lineNo
	row.Cost = cost
	return row, "", true
}

// parseAmount reads a number written with '.' as thousands separator and ','
// as decimal separator. Both "1.234.567,89" and "1234567,89" are accepted;
// "1234567.89" is read as 123456789.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func trimCode(code string) string {
	return strings.TrimSpace(strings.TrimRight(code, ";, \t\r"))
}
