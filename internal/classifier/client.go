// Package classifier talks to an optional remote column-classification
// service. The service receives the header cells and a few sample rows and
// returns a suggested field-to-column assignment.
//
// The client is a hint source only: callers treat every error as "no
// suggestion" and fall back to local inference.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loanimport/internal/schema"
)

// Client calls the remote classification endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	token      string
}

// New builds a client for the given endpoint. token may be empty when the
// endpoint is unauthenticated.
func New(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        strings.TrimRight(url, "/"),
		token:      token,
	}
}

type classifyRequest struct {
	Task       string     `json:"task"`
	Columns    []string   `json:"columns"`
	SampleRows [][]string `json:"sample_rows"`
	Fields     []string   `json:"fields"`
}

type classifyResponse struct {
	Mapping map[string]int `json:"mapping"`
}

// SuggestMapping posts the headers and sample rows and returns the
// suggested assignment. Unknown field names in the response are dropped;
// the caller validates column indices against the actual frame.
func (c *Client) SuggestMapping(ctx context.Context, headers []string, sample [][]string) (map[schema.Field]int, error) {
	fields := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		fields[i] = string(f)
	}

	raw, err := json.Marshal(classifyRequest{
		Task:       "map_spreadsheet_columns",
		Columns:    headers,
		SampleRows: sample,
		Fields:     fields,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classification service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(stripCodeFences(string(body))), &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Mapping) == 0 {
		return nil, fmt.Errorf("classification service returned no mapping")
	}

	out := make(map[schema.Field]int, len(parsed.Mapping))
	for name, col := range parsed.Mapping {
		field := schema.Field(schema.NormalizeHeader(name))
		for _, known := range schema.Fields {
			if field == known {
				out[known] = col
				break
			}
		}
	}
	return out, nil
}

// stripCodeFences removes a markdown code block wrapper when the backing
// service relays a model response verbatim.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") && strings.HasSuffix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
