package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/donnegro/comercial/backend-go/internal/cache"
	"github.com/donnegro/comercial/backend-go/internal/csvimport"
	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/internal/repository"
	"github.com/donnegro/comercial/backend-go/internal/spreadsheet"
	"github.com/donnegro/comercial/backend-go/internal/storage"
	"github.com/donnegro/comercial/backend-go/pkg/logger"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

var utf8BOM = []byte("\xef\xbb\xbf")

type PreviewRequest struct {
	Text       string
	Mode       domain.ImportMode
	SourceName string
}

// UploadRequest is a raw cost-list file, CSV or XLSX.
type UploadRequest struct {
	Name        string
	ContentType string
	Data        []byte
	Mode        domain.ImportMode
}

type CommitRequest struct {
	Mode       domain.ImportMode       `json:"mode"`
	SourceName string                  `json:"source_name"`
	Candidates []domain.MatchCandidate `json:"candidates"`
	OnProgress csvimport.ProgressFunc  `json:"-"`
}

type ImportSettings struct {
	BatchSize int
	Defaults  pricing.Defaults
}

// ImportService runs the preview and commit steps of a cost-list import.
type ImportService struct {
	repo      repository.CatalogRepository
	runs      repository.ImportRunRepository
	cache     cache.CatalogCache
	store     storage.ObjectStorage
	committer *csvimport.Committer
}

// NewImportService wires the import flow. runs and store may be nil, which
// disables run history and upload archival.
func NewImportService(
	repo repository.CatalogRepository,
	runs repository.ImportRunRepository,
	cacheImpl cache.CatalogCache,
	store storage.ObjectStorage,
	settings ImportSettings,
) *ImportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCatalogCache()
	}
	return &ImportService{
		repo:      repo,
		runs:      runs,
		cache:     cacheImpl,
		store:     store,
		committer: csvimport.NewCommitter(repo, settings.BatchSize, settings.Defaults),
	}
}

// PreviewUpload decodes an uploaded file, archives it when storage is
// configured and builds the match preview.
func (s *ImportService) PreviewUpload(ctx context.Context, req UploadRequest) (*domain.ImportPreview, error) {
	text, err := DecodeUpload(req.Name, req.Data)
	if err != nil {
		return nil, err
	}

	preview, err := s.Preview(ctx, PreviewRequest{Text: text, Mode: req.Mode, SourceName: req.Name})
	if err != nil {
		return nil, err
	}

	preview.ArchiveKey = s.archive(ctx, req)
	return preview, nil
}

// PreviewArchived re-reads a previously archived upload and builds its match
// preview without archiving it again.
func (s *ImportService) PreviewArchived(ctx context.Context, key string, mode domain.ImportMode) (*domain.ImportPreview, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}
	if !storage.IsCostListKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidArchiveKey, key)
	}

	var buf bytes.Buffer
	if err := s.store.DownloadObject(ctx, key, &buf); err != nil {
		return nil, fmt.Errorf("download archived cost list: %w", err)
	}

	name := storage.SourceName(key)
	text, err := DecodeUpload(name, buf.Bytes())
	if err != nil {
		return nil, err
	}

	preview, err := s.Preview(ctx, PreviewRequest{Text: text, Mode: mode, SourceName: name})
	if err != nil {
		return nil, err
	}
	preview.ArchiveKey = key
	return preview, nil
}

// ListArchives returns the archived cost lists, newest first.
func (s *ImportService) ListArchives(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.store == nil {
		return []storage.ObjectInfo{}, nil
	}

	objects, err := s.store.ListObjects(ctx, storage.CostListPrefix+"/")
	if err != nil {
		return nil, fmt.Errorf("list archived cost lists: %w", err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].LastModified.After(objects[j].LastModified) })
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	return objects, nil
}

// Preview parses text and matches it against the catalog. The catalog is
// only loaded in update mode and a failure to load it aborts the preview.
func (s *ImportService) Preview(ctx context.Context, req PreviewRequest) (*domain.ImportPreview, error) {
	mode, err := normalizeMode(req.Mode)
	if err != nil {
		return nil, err
	}

	var catalog []domain.CatalogProduct
	if mode == domain.ImportModeUpdate {
		catalog, err = s.repo.FetchAllProducts(ctx)
		if err != nil {
			return nil, &CatalogFetchError{Err: err}
		}
	}

	parsed := csvimport.ParseRows(req.Text)
	candidates := csvimport.Candidates(parsed.Rows, catalog, mode)
	matched := csvimport.CountMatched(candidates)

	dropped := parsed.Dropped
	if dropped == nil {
		dropped = []domain.ParseDiagnostic{}
	}

	logger.Log.Info().
		Str("mode", string(mode)).
		Str("source", req.SourceName).
		Int("rows", len(parsed.Rows)).
		Int("matched", matched).
		Int("dropped", len(dropped)).
		Msg("cost list previewed")

	return &domain.ImportPreview{
		Mode:          mode,
		SourceName:    req.SourceName,
		Candidates:    candidates,
		ParsedRows:    len(parsed.Rows),
		Matched:       matched,
		Unmatched:     len(candidates) - matched,
		HeaderSkipped: parsed.HeaderSkipped,
		Dropped:       dropped,
	}, nil
}

// Commit persists the reviewed candidates. It refuses to start when nothing
// is committable, records the run and drops the cached catalog afterwards.
// Cancelling ctx after the guard does not stop the commit.
func (s *ImportService) Commit(ctx context.Context, req CommitRequest) (*domain.CommitResult, error) {
	mode, err := normalizeMode(req.Mode)
	if err != nil {
		return nil, err
	}

	work := csvimport.Committable(req.Candidates, mode)
	if len(work) == 0 {
		return nil, ErrNothingToCommit
	}

	// a commit outlives the caller: once started, every batch runs and the
	// run is closed even if the client goes away
	ctx = context.WithoutCancel(ctx)

	run := s.startRun(ctx, mode, req.SourceName, len(work))

	result := s.committer.Commit(ctx, work, mode, req.OnProgress)

	if run != nil {
		result.RunID = run.ID
		s.finishRun(ctx, run, result)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("catalog: cache invalidate failed")
	}

	return &result, nil
}

func (s *ImportService) ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if s.runs == nil {
		return []domain.ImportRun{}, nil
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	return s.runs.ListRuns(ctx, limit)
}

func (s *ImportService) startRun(ctx context.Context, mode domain.ImportMode, source string, total int) *domain.ImportRun {
	if s.runs == nil {
		return nil
	}

	run := &domain.ImportRun{
		Mode:       mode,
		SourceName: source,
		Status:     domain.RunStatusProcessing,
		Total:      total,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		logger.Log.Warn().Err(err).Msg("import: could not record run")
		return nil
	}
	return run
}

func (s *ImportService) finishRun(ctx context.Context, run *domain.ImportRun, result domain.CommitResult) {
	now := time.Now()
	run.CompletedAt = &now
	run.Succeeded = result.Succeeded
	run.Failed = result.Failed
	run.Status = domain.RunStatusCompleted
	if result.Failed > 0 {
		run.ErrorMessage = fmt.Sprintf("%d of %d rows failed", result.Failed, result.Total)
		if result.Succeeded == 0 {
			run.Status = domain.RunStatusFailed
		}
	}

	if err := s.runs.FinishRun(ctx, run, result.Errors); err != nil {
		logger.Log.Warn().Err(err).Int64("run_id", run.ID).Msg("import: could not finish run")
	}
}

// archive stores the raw upload and returns its key, or "" when archival is
// disabled or failed.
func (s *ImportService) archive(ctx context.Context, req UploadRequest) string {
	if s.store == nil || len(req.Data) == 0 {
		return ""
	}

	key := storage.CostListKey(time.Now(), req.Name)
	if err := s.store.UploadObject(ctx, key, req.Data, req.ContentType); err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("import: archive upload failed")
		return ""
	}
	return key
}

// DecodeUpload returns the text of a cost-list file. XLSX workbooks are
// flattened to ';'-delimited text and non-UTF-8 CSVs are read as Windows-1252.
func DecodeUpload(name string, data []byte) (string, error) {
	if spreadsheet.IsXLSX(name, data) {
		return spreadsheet.ToDelimitedText(bytes.NewReader(data))
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(decoded), nil
}

func normalizeMode(mode domain.ImportMode) (domain.ImportMode, error) {
	parsed, ok := domain.ParseImportMode(string(mode))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return parsed, nil
}
