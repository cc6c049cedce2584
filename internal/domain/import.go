package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ImportMode string

const (
	ImportModeUpdate ImportMode = "update"
	ImportModeCreate ImportMode = "create"
)

type RowLayout string

const (
	LayoutSimple   RowLayout = "simple"
	LayoutExtended RowLayout = "extended"
)

// CsvRow is one validated cost-list line.
type CsvRow struct {
	Line         int             `json:"line"`
	Layout       RowLayout       `json:"layout"`
	Name         string          `json:"name"`
	Cost         decimal.Decimal `json:"cost"`
	ExternalCode string          `json:"external_code"`
	Stock        *int            `json:"stock,omitempty"`
	Category     string          `json:"category,omitempty"`
	Location     string          `json:"location,omitempty"`
}

type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "none"
)

// MatchCandidate pairs a cost-list row with at most one catalog product.
type MatchCandidate struct {
	Row        CsvRow          `json:"row"`
	Product    *CatalogProduct `json:"product,omitempty"`
	MatchType  MatchType       `json:"match_type"`
	Confidence float64         `json:"confidence"`
}

func (c MatchCandidate) Matched() bool {
	return c.Product != nil
}

type DropReason string

const (
	DropTooFewFields DropReason = "too_few_fields"
	DropInvalidCost  DropReason = "invalid_cost"
	DropNameTooShort DropReason = "name_too_short"
)

// ParseDiagnostic records a line the parser discarded and why.
type ParseDiagnostic struct {
	Line   int        `json:"line"`
	Reason DropReason `json:"reason"`
	Text   string     `json:"text"`
}

// ImportPreview is the reviewed match list shown before committing.
type ImportPreview struct {
	Mode          ImportMode        `json:"mode"`
	SourceName    string            `json:"source_name"`
	Candidates    []MatchCandidate  `json:"candidates"`
	ParsedRows    int               `json:"parsed_rows"`
	Matched       int               `json:"matched"`
	Unmatched     int               `json:"unmatched"`
	HeaderSkipped bool              `json:"header_skipped"`
	Dropped       []ParseDiagnostic `json:"dropped"`
	ArchiveKey    string            `json:"archive_key,omitempty"`
}

// RowError describes one row whose persistence call failed.
type RowError struct {
	Line      int    `json:"line" db:"line"`
	Name      string `json:"name" db:"name"`
	ProductID int64  `json:"product_id,omitempty" db:"product_id"`
	Message   string `json:"message" db:"message"`
}

type CommitResult struct {
	RunID     int64      `json:"run_id,omitempty"`
	Mode      ImportMode `json:"mode"`
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"-"`
}

type ImportRunStatus string

const (
	RunStatusProcessing ImportRunStatus = "processing"
	RunStatusCompleted  ImportRunStatus = "completed"
	RunStatusFailed     ImportRunStatus = "failed"
)

// ImportRun tracks a single commit of a cost list.
type ImportRun struct {
	ID           int64           `json:"id" db:"id"`
	Mode         ImportMode      `json:"mode" db:"mode"`
	SourceName   string          `json:"source_name" db:"source_name"`
	Status       ImportRunStatus `json:"status" db:"status"`
	Total        int             `json:"total" db:"total_rows"`
	Succeeded    int             `json:"succeeded" db:"succeeded_rows"`
	Failed       int             `json:"failed" db:"failed_rows"`
	StartedAt    time.Time       `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage string          `json:"error_message,omitempty" db:"error_message"`
}
