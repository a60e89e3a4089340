package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"
)

// BackendClient talks to the job-matching backend HTTP API.
type BackendClient struct {
	baseURL  string
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

func newBackendClient(c Config) *BackendClient {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: c.RequestTimeout}
	}
	return &BackendClient{
		baseURL:  c.BackendURL,
		endpoint: c.BackendEndpoint,
		timeout:  c.RequestTimeout,
		http:     hc,
	}
}

// responseBodyLimit caps how much of a backend reply is read.
const responseBodyLimit = 4 << 20

// Match uploads the resume and filters as one multipart POST and decodes
// the match payload. Single attempt with a hard timeout: a non-2xx status
// maps to *BackendError, network failure or timeout to *TransportError.
func (c *BackendClient) Match(ctx context.Context, req ToolRequest, secret string) (*BackendResponse, error) {
	body, contentType, err := encodeMatchForm(req)
	if err != nil {
		return nil, fmt.Errorf("encode match form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build match request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", secret) // secret carries its own scheme prefix
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data := map[string]any{}
		if err := json.Unmarshal(raw, &data); err != nil {
			data = map[string]any{"detail": string(raw)}
		}
		return nil, &BackendError{Status: resp.StatusCode, Data: data}
	}

	var out BackendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode match response: %w", err)
	}

	slog.Debug("backend match complete",
		slog.Int("status", resp.StatusCode),
		slog.Int("matches", len(out.Matches)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return &out, nil
}

// encodeMatchForm builds the multipart body. The backend contract wants
// every field present, blank when the caller omitted it.
func encodeMatchForm(req ToolRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="resume.txt"`)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write([]byte(req.ResumeText)); err != nil {
		return nil, "", err
	}

	fields := []struct{ name, value string }{
		{"user_experience", optionalInt(req.UserExperience)},
		{"keywords", req.Keywords},
		{"location", req.Location},
		{"start_date", req.StartDate},
		{"end_date", req.EndDate},
		{"page", optionalInt(req.Page)},
		{"sort_by", req.SortBy},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
