package core

// errors.go defines the pipeline error taxonomy and maps technical errors to
// user-friendly messages with codes for support reference.
//
// File-level and mapping-level errors abort an import before any row is
// attempted. Row-level errors (duplicates, per-row persistence failures) are
// tallied and never abort the batch.

import (
	"errors"
	"fmt"
	"strings"

	"loanimport/internal/schema"
)

// ErrEmptyInput is returned for a zero-byte upload.
var ErrEmptyInput = errors.New("empty file: no bytes in upload")

// ErrUnreadableFormat is returned when the payload parses as neither a
// spreadsheet nor CSV, or contains no cells.
var ErrUnreadableFormat = errors.New("unreadable format: file is not tabular data")

// ErrDuplicateKey marks a row rejected by the storage uniqueness constraint.
// Store implementations wrap it so the inserter can tally the row as a
// skipped duplicate.
var ErrDuplicateKey = errors.New("duplicate key: identifier already exists")

// MappingError is returned when neither direct header mapping nor the
// content heuristic can satisfy the minimum-required-fields threshold.
type MappingError struct {
	Unresolved []schema.Field
}

func (e *MappingError) Error() string {
	names := make([]string, len(e.Unresolved))
	for i, f := range e.Unresolved {
		names[i] = string(f)
	}
	return fmt.Sprintf("columns could not be mapped to required fields (unresolved: %s)",
		strings.Join(names, ", "))
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins, so specific patterns come
// before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a spreadsheet with data rows",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unreadable format",
		msg: UserMessage{
			Message: "The file could not be read as a spreadsheet",
			Action:  "Upload an .xlsx or .csv export",
			Code:    "FILE002",
		},
	},
	{
		pattern: "could not be mapped",
		msg: UserMessage{
			Message: "The file's columns could not be matched to the loaner schema",
			Action:  "Rename columns to recognized headers or add a header row",
			Code:    "MAP001",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this identifier already exists",
			Action:  "Review the skipped rows for duplicate identifiers",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports are in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "UPL005",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
// Unmatched errors get the generic ERR000 message; the technical detail
// stays in the server logs.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "Success", Code: ""}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}
