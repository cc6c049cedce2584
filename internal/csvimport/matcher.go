package csvimport

import "github.com/donnegro/comercial/backend-go/internal/domain"

// FuzzyThreshold is the lowest score accepted as a fuzzy match.
const FuzzyThreshold = 0.6

// MatchAll pairs every row with its best catalog product. The first exact
// match ends the scan for that row; otherwise the highest score at or above
// FuzzyThreshold wins, earlier catalog entries winning ties. Two rows may end
// up matched to the same product.
func MatchAll(rows []domain.CsvRow, catalog []domain.CatalogProduct) []domain.MatchCandidate {
	names := make([]string, len(catalog))
	for i := range catalog {
		names[i] = canonicalName(catalog[i].Name)
	}

	out := make([]domain.MatchCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchRow(row, catalog, names))
	}
	return out
}

func matchRow(row domain.CsvRow, catalog []domain.CatalogProduct, names []string) domain.MatchCandidate {
	target := canonicalName(row.Name)

	best := -1
	bestScore := 0.0
	for i := range catalog {
		score := scoreCanonical(target, names[i])
		if score == scoreExact {
			product := catalog[i]
			return domain.MatchCandidate{
				Row:        row,
				Product:    &product,
				MatchType:  domain.MatchExact,
				Confidence: scoreExact,
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best >= 0 && bestScore >= FuzzyThreshold {
		product := catalog[best]
		return domain.MatchCandidate{
			Row:        row,
			Product:    &product,
			MatchType:  domain.MatchFuzzy,
			Confidence: bestScore,
		}
	}

	return unmatched(row)
}

// Candidates builds the match list for mode. Create mode skips matching and
// marks every row as new.
func Candidates(rows []domain.CsvRow, catalog []domain.CatalogProduct, mode domain.ImportMode) []domain.MatchCandidate {
	if mode == domain.ImportModeCreate {
		out := make([]domain.MatchCandidate, 0, len(rows))
		for _, row := range rows {
			out = append(out, unmatched(row))
		}
		return out
	}
	return MatchAll(rows, catalog)
}

// CountMatched returns how many candidates carry a product.
func CountMatched(candidates []domain.MatchCandidate) int {
	n := 0
	for _, c := range candidates {
		if c.Matched() {
			n++
		}
	}
	return n
}

func unmatched(row domain.CsvRow) domain.MatchCandidate {
	return domain.MatchCandidate{Row: row, MatchType: domain.MatchNone}
}
