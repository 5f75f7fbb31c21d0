package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"loanimport/internal/config"
	"loanimport/internal/logging"
	"loanimport/internal/schema"

	"github.com/google/uuid"
)

// Service orchestrates the import pipeline: decode, detect header, map
// columns, validate rows, insert duplicate-safely, and read back in natural
// order. One Service is shared across requests; it holds no per-request
// state beyond the concurrency limiter.
type Service struct {
	store   Store
	advisor MappingAdvisor // nil when no remote helper is configured
	aliases schema.AliasTable
	cfg     *config.Config
	limiter *ImportLimiter
}

// NewService wires the pipeline with its collaborators. advisor may be nil.
func NewService(store Store, advisor MappingAdvisor, cfg *config.Config) *Service {
	return &Service{
		store:   store,
		advisor: advisor,
		aliases: schema.DefaultAliases(),
		cfg:     cfg,
		limiter: NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}
}

// pendingRow is a cleaned record awaiting insertion, tagged with its
// physical line number for failure reporting.
type pendingRow struct {
	line int
	rec  Loaner
}

// Import runs the full pipeline over one uploaded payload.
//
// File-level and mapping-level failures return an error before any row is
// attempted. Row-level failures never abort the batch: they are tallied in
// the result with reasons retained.
func (s *Service) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}

	logger := logging.FromContext(ctx)
	start := time.Now()

	rows, err := DecodeSheet(data)
	if err != nil {
		return nil, err
	}

	mapping, source, err := s.resolveMapping(ctx, rows)
	if err != nil {
		return nil, err
	}

	headerIdx := DetectHeaderRow(rows, s.aliases, s.cfg.Mapping.HeaderSearchRows)
	dataRows := rows[headerIdx+1:]

	pending, failures := s.cleanRows(dataRows, mapping, headerIdx)

	result := &ImportResult{
		Status:        "success",
		MappingSource: source,
		Failures:      failures,
		FailedRows:    len(failures),
	}

	if err := s.insertAll(ctx, pending, result); err != nil {
		// Connection-level failure before/around the batch is fatal.
		return nil, fmt.Errorf("persistence: %w", err)
	}

	result.TotalProcessed = result.RowsInserted + result.DuplicatesSkipped + result.FailedRows

	all, err := s.ListLoaners(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back records: %w", err)
	}
	result.Data = all

	logger.Info("import complete",
		"mapping_source", source,
		"inserted", result.RowsInserted,
		"duplicates", result.DuplicatesSkipped,
		"failed", result.FailedRows,
		"duration", time.Since(start),
	)

	return result, nil
}

// resolveMapping picks the column mapping: direct header match first, then
// the remote advisor's suggestion if one is configured, then the content
// heuristic. Returns a MappingError when nothing reaches the
// minimum-required-fields threshold.
func (s *Service) resolveMapping(ctx context.Context, rows [][]string) (ColumnMapping, MappingSource, error) {
	minRequired := s.cfg.Mapping.MinRequiredFields
	headerIdx := DetectHeaderRow(rows, s.aliases, s.cfg.Mapping.HeaderSearchRows)
	header := rows[headerIdx]
	dataRows := rows[headerIdx+1:]

	mapping, _ := MapColumns(header, s.aliases)
	if mapping.Usable(minRequired) {
		return mapping, SourceDirectHeader, nil
	}

	if suggested := s.askAdvisor(ctx, header, dataRows); suggested != nil && suggested.Usable(minRequired) {
		return suggested, SourceContentHeuristic, nil
	}

	inferred := InferColumns(dataRows, HeuristicConfig{
		SampleRows: s.cfg.Mapping.SampleRows,
		MinScore:   s.cfg.Mapping.MinColumnScore,
	})
	// The identifier is recoverable by auto-generation, so its absence does
	// not count against the heuristic's threshold.
	usable := len(inferred) >= minRequired
	if !usable {
		withoutID := 0
		for field := range inferred {
			if field != schema.FieldIdentifier {
				withoutID++
			}
		}
		usable = withoutID >= minRequired-1
	}
	if usable {
		return inferred, SourceContentHeuristic, nil
	}

	return nil, "", &MappingError{Unresolved: inferred.Unresolved()}
}

// askAdvisor queries the optional remote classification helper. Any error
// is absorbed: the helper is a hint, never a dependency.
func (s *Service) askAdvisor(ctx context.Context, header []string, dataRows [][]string) ColumnMapping {
	if s.advisor == nil {
		return nil
	}

	sampleLimit := s.cfg.Classifier.SampleRows
	if sampleLimit <= 0 {
		sampleLimit = 5
	}
	sample := dataRows
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
	}

	suggestion, err := s.advisor.SuggestMapping(ctx, header, sample)
	if err != nil {
		logging.FromContext(ctx).Warn("classification helper unavailable, falling back", "error", err)
		return nil
	}

	width := len(header)
	for _, row := range dataRows {
		if len(row) > width {
			width = len(row)
		}
	}

	mapping := make(ColumnMapping)
	usedCols := make(map[int]bool)
	for _, field := range schema.Fields {
		col, ok := suggestion[field]
		if !ok || col < 0 || col >= width || usedCols[col] {
			continue
		}
		mapping[field] = col
		usedCols[col] = true
	}
	return mapping
}

// cleanRows reduces, validates, and cleans the data rows, assigning
// auto-generated identifiers where the source value is missing. Fully empty
// physical rows are dropped silently; rows with no usable content are
// recorded as failures.
func (s *Service) cleanRows(dataRows [][]string, mapping ColumnMapping, headerIdx int) ([]pendingRow, []RowFailure) {
	batchTag := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])

	var pending []pendingRow
	var failures []RowFailure

	seq := 0
	for i, row := range dataRows {
		if isEmptyRow(row) {
			continue
		}
		line := headerIdx + i + 2 // 1-indexed, after the header row

		rec, reason := CleanRow(ExtractRow(row, mapping))
		if reason != "" {
			failures = append(failures, RowFailure{LineNumber: line, Reason: reason})
			continue
		}

		seq++
		rec.Identifier = ensureIdentifier(rec.Identifier, seq, batchTag)
		pending = append(pending, pendingRow{line: line, rec: rec})
	}

	return pending, failures
}

// ensureIdentifier returns a usable identifier: the source value when
// present (with Excel's float artifact "42.0" normalized to "42"), otherwise
// a synthesized unique value from the batch tag and row position.
func ensureIdentifier(id string, position int, batchTag string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Sprintf("AUTO%s%04d", batchTag, position)
	}
	if strings.HasSuffix(id, ".0") {
		if f, err := strconv.ParseFloat(id, 64); err == nil {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return id
}

// insertAll persists the pending rows inside one batch transaction, each
// row in its own sub-transaction. Duplicates and per-row failures are
// tallied and never abort the batch; insert order matches input row order.
func (s *Service) insertAll(ctx context.Context, pending []pendingRow, result *ImportResult) error {
	if len(pending) == 0 {
		return nil
	}

	return s.store.RunBatch(ctx, func(b Batch) error {
		for _, p := range pending {
			err := b.Insert(ctx, p.rec)
			switch {
			case err == nil:
				result.RowsInserted++
				if len(result.Preview) < 3 {
					result.Preview = append(result.Preview, p.rec)
				}
			case errors.Is(err, ErrDuplicateKey):
				result.DuplicatesSkipped++
			default:
				result.FailedRows++
				result.Failures = append(result.Failures, RowFailure{
					LineNumber: p.line,
					Reason:     fmt.Sprintf("insert: %v", err),
				})
			}
		}
		return nil
	})
}

// ListLoaners returns every persisted record in natural order.
func (s *Service) ListLoaners(ctx context.Context) ([]Loaner, error) {
	recs, err := s.store.SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	SortNatural(recs)
	return recs, nil
}

// ActiveImports reports how many imports are currently processing.
func (s *Service) ActiveImports() int {
	return s.limiter.ActiveCount()
}

// WaitForImports blocks until in-flight imports drain or ctx is cancelled.
// Used during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
