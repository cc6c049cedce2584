package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/internal/storage"
)

func TestPrintQuote(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printQuote(&buf, pricing.Calculate(pricing.Input{
		Cost:          decimal.NewFromInt(1000000),
		MarginPercent: decimal.NewFromInt(18),
		Interest6:     decimal.NewFromInt(45),
	}))

	want := "Contado: Gs. 1.180.000\n 6 cuotas de Gs. 285.167 (total Gs. 1.711.002)\n"
	if buf.String() != want {
		t.Fatalf("want=%q got=%q", want, buf.String())
	}
}

func TestPrintPreview(t *testing.T) {
	t.Parallel()

	p := domain.CatalogProduct{ID: 7, Name: "Refrigerador Tokyo"}
	preview := &domain.ImportPreview{
		Mode: domain.ImportModeUpdate,
		Candidates: []domain.MatchCandidate{
			{Row: domain.CsvRow{Line: 2, Name: "HELADERA TOKYO", Cost: decimal.NewFromInt(2494800)}, Product: &p, MatchType: domain.MatchExact, Confidence: 1},
			{Row: domain.CsvRow{Line: 3, Name: "OTRO PRODUCTO", Cost: decimal.NewFromInt(10)}, MatchType: domain.MatchNone},
		},
		ParsedRows: 2,
		Matched:    1,
		Unmatched:  1,
		ArchiveKey: "cost-lists/2026/03/07/x-lista.csv",
	}

	var buf bytes.Buffer
	printPreview(&buf, preview)
	out := buf.String()

	for _, want := range []string{"#7 Refrigerador Tokyo", "100%", "OTRO PRODUCTO", "2 rows, 1 matched, 1 unmatched, 0 dropped", "archived as cost-lists/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintArchives(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printArchives(&buf, []storage.ObjectInfo{{
		Key:          "cost-lists/2026/03/07/5f0c2d1e-8a4b-4c3d-9e2f-1a2b3c4d5e6f-lista.csv",
		Size:         2048,
		LastModified: time.Date(2026, time.March, 7, 9, 15, 0, 0, time.UTC),
	}})
	out := buf.String()

	for _, want := range []string{"KEY", "lista.csv", "2048", "2026-03-07 09:15"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
