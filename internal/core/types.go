// Package core implements the spreadsheet-to-schema mapping pipeline.
//
// This package contains all domain logic independent of transport and
// storage: header row detection, alias-based column mapping, content-based
// fallback inference, row validation and cleaning, duplicate-safe insertion,
// and natural-order retrieval. The HTTP layer and the Postgres store are
// collaborators consumed through small interfaces.
package core

import (
	"context"

	"loanimport/internal/schema"
)

// Loaner is the canonical record persisted by this system. Nullable fields
// use pointers so invalid source values can be stored (and rendered) as null
// rather than as malformed strings.
type Loaner struct {
	Identifier      string   `json:"identifier"`
	FullName        string   `json:"full_name"`
	MobileNumber    *string  `json:"mobile_number"`
	NationalID      *string  `json:"national_id"`
	TotalAmount     *float64 `json:"total_amount"`
	LandDescription string   `json:"land_description"`
	Description     string   `json:"description"`
}

// MappingSource reports which stage produced the column mapping for an import.
type MappingSource string

const (
	SourceDirectHeader     MappingSource = "direct_header"
	SourceContentHeuristic MappingSource = "content_heuristic"
)

// ColumnMapping assigns canonical fields to source column indices.
type ColumnMapping map[schema.Field]int

// RowFailure records a data row that could not be inserted, with the reason
// retained for the response.
type RowFailure struct {
	LineNumber int    `json:"line_number"`
	Reason     string `json:"reason"`
}

// ImportResult is the outcome of one ingest operation.
type ImportResult struct {
	Status            string        `json:"status"`
	MappingSource     MappingSource `json:"mapping_source"`
	RowsInserted      int           `json:"rows_inserted"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	FailedRows        int           `json:"failed_rows"`
	TotalProcessed    int           `json:"total_processed"`
	Preview           []Loaner      `json:"preview"`
	Data              []Loaner      `json:"data"`
	Failures          []RowFailure  `json:"failures,omitempty"`
}

// Store is the persistence collaborator. The core issues row-level insert and
// select operations; connection pooling and schema DDL belong to the
// implementation.
type Store interface {
	// RunBatch executes fn inside a single enclosing transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunBatch(ctx context.Context, fn func(b Batch) error) error

	// SelectAll returns every persisted record, in no particular order.
	SelectAll(ctx context.Context) ([]Loaner, error)
}

// Batch persists records inside the enclosing transaction. Each Insert runs
// in its own sub-transaction so one row's failure never poisons the batch.
type Batch interface {
	// Insert persists one record. Returns an error wrapping ErrDuplicateKey
	// when the identifier already exists.
	Insert(ctx context.Context, rec Loaner) error
}

// MappingAdvisor is an optional remote helper that can suggest a column
// mapping from headers and sample rows. It is a capability, not a
// dependency: the pipeline works identically without one, and any error it
// returns is absorbed, never propagated.
type MappingAdvisor interface {
	SuggestMapping(ctx context.Context, headers []string, sample [][]string) (map[schema.Field]int, error)
}
