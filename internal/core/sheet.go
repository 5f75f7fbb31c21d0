package core

// sheet.go decodes an uploaded payload into a rectangular frame of strings.
// XLSX is tried first (excelize); anything that is not a zip archive falls
// back to the CSV reader with UTF-8 sanitization.

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// DecodeSheet parses raw upload bytes into rows of cells. It returns
// ErrEmptyInput for a zero-byte payload and ErrUnreadableFormat when the
// bytes decode as neither XLSX nor CSV, or contain no non-empty cells.
func DecodeSheet(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	rows, err := decodeXLSX(data)
	if err != nil {
		rows, err = decodeCSV(data)
		if err != nil {
			return nil, ErrUnreadableFormat
		}
	}

	if !hasContent(rows) {
		return nil, ErrUnreadableFormat
	}
	return rows, nil
}

func decodeXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Single-sheet ingestion: only the first sheet is read.
	sheet := f.GetSheetName(0)
	return f.GetRows(sheet)
}

func decodeCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// the CSV reader never chokes on stray Windows-1252 exports.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="value"), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func hasContent(rows [][]string) bool {
	for _, row := range rows {
		if !isEmptyRow(row) {
			return true
		}
	}
	return false
}
