package decompiler

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"contractloader/internal/metrics"
)

const (
	formField = "contract"
	fileName  = "contract.wasm"
)

// StatusError is returned when the decompiler answers with a non-2xx status.
// Body holds the response text as received.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("decompiler returned %d: %s", e.StatusCode, e.Body)
}

// Client posts WASM blobs to a decompilation service
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL. A nil httpClient uses a client
// without timeout; deadlines come from the request context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/decompile",
		httpClient: httpClient,
	}
}

// Endpoint returns the full decompile URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Decompile sends the hex encoded WASM bytecode and returns the decompiled text
func (c *Client) Decompile(ctx context.Context, wasmHex string) (string, error) {
	wasm, err := hex.DecodeString(wasmHex)
	if err != nil {
		return "", fmt.Errorf("invalid wasm hex: %w", err)
	}
	return c.DecompileBytes(ctx, wasm)
}

// DecompileBytes sends raw WASM bytecode as a single multipart attachment
func (c *Client) DecompileBytes(ctx context.Context, wasm []byte) (string, error) {
	body, contentType, err := buildForm(wasm)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build decompile request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	slog.Debug("Sending wasm to decompiler", "endpoint", c.endpoint, "size", len(wasm))
	metrics.DecompileWasmSize.Observe(float64(len(wasm)))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("decompiler").Inc()
		return "", fmt.Errorf("decompile request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("decompiler").Inc()
		return "", fmt.Errorf("failed to read decompile response: %w", err)
	}

	metrics.DecompileDuration.Observe(time.Since(start).Seconds())
	metrics.DecompileRequests.WithLabelValues(fmt.Sprintf("%dxx", resp.StatusCode/100)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("Decompiler returned non-success status",
			"status", resp.StatusCode,
			"body_size", len(text),
		)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	return string(text), nil
}

func buildForm(wasm []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(formField, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wasm); err != nil {
		return nil, "", fmt.Errorf("failed to write wasm to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
