package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loanimport/internal/config"
	"loanimport/internal/core"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Upload.MaxConcurrent = 2
	cfg.Upload.MaxWaitTime = time.Second
	cfg.Upload.Timeout = 30 * time.Second
	cfg.Mapping.HeaderSearchRows = 10
	cfg.Mapping.MinRequiredFields = 4
	cfg.Mapping.SampleRows = 50
	cfg.Mapping.MinColumnScore = 0.6
	cfg.Rate.Enabled = false
	return cfg
}

// memStore is an in-memory core.Store for handler tests.
type memStore struct {
	recs  map[string]core.Loaner
	order []string
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]core.Loaner)}
}

func (s *memStore) RunBatch(ctx context.Context, fn func(b core.Batch) error) error {
	return fn(s)
}

func (s *memStore) Insert(ctx context.Context, rec core.Loaner) error {
	if _, exists := s.recs[rec.Identifier]; exists {
		return fmt.Errorf("insert %q: %w", rec.Identifier, core.ErrDuplicateKey)
	}
	s.recs[rec.Identifier] = rec
	s.order = append(s.order, rec.Identifier)
	return nil
}

func (s *memStore) SelectAll(ctx context.Context) ([]core.Loaner, error) {
	out := make([]core.Loaner, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.recs[id])
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	store := newMemStore()
	cfg := testConfig()
	svc := core.NewService(store, nil, cfg)
	return NewServer(svc, nil, cfg), store
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

const uploadCSV = "id,name,mobile,aadhaar,amount\n" +
	"10,Asha Devi,9876543210,123456789012,1500.50\n" +
	"2,Ravi Kumar,8765432109,234567890123,2600\n"

func TestHandleUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "loaners.csv", uploadCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var result core.ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.RowsInserted != 2 {
		t.Errorf("rows_inserted = %d, want 2", result.RowsInserted)
	}
	if result.MappingSource != core.SourceDirectHeader {
		t.Errorf("mapping_source = %q, want %q", result.MappingSource, core.SourceDirectHeader)
	}
	if len(result.Data) != 2 || result.Data[0].Identifier != "2" {
		t.Errorf("data = %v, want natural order starting with 2", result.Data)
	}
}

func TestHandleUpload_Duplicates(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		body, contentType := multipartBody(t, "loaners.csv", uploadCSV)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("upload %d status = %d; body: %s", i, rec.Code, rec.Body.String())
		}

		var result core.ImportResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}

		if i == 1 && result.DuplicatesSkipped != 2 {
			t.Errorf("duplicates_skipped = %d, want 2", result.DuplicatesSkipped)
		}
	}
}

func TestHandleUpload_MissingFilePart(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUpload_EmptyFile(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "empty.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["code"] != "FILE001" {
		t.Errorf("code = %q, want FILE001", resp["code"])
	}
}

func TestHandleUpload_UnmappableColumns(t *testing.T) {
	srv, _ := newTestServer(t)

	csv := "colour,shape,texture\nred,round,smooth\n"
	body, contentType := multipartBody(t, "bad.csv", csv)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["code"] != "MAP001" {
		t.Errorf("code = %q, want MAP001", resp["code"])
	}
}

func TestHandleListLoaners(t *testing.T) {
	srv, store := newTestServer(t)
	for _, id := range []string{"10", "2", "abc"} {
		store.recs[id] = core.Loaner{Identifier: id}
		store.order = append(store.order, id)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/loaners", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count int           `json:"count"`
		Data  []core.Loaner `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
	want := []string{"2", "10", "abc"}
	for i, id := range want {
		if resp.Data[i].Identifier != id {
			t.Errorf("data[%d] = %q, want %q", i, resp.Data[i].Identifier, id)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestHandleUpload_FileTooLarge(t *testing.T) {
	store := newMemStore()
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	svc := core.NewService(store, nil, cfg)
	srv := NewServer(svc, nil, cfg)

	body, contentType := multipartBody(t, "big.csv", uploadCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
