package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vovakirdan/netsnake/internal/protocol"
)

// HTTPTransport posts each move as its own request.
type HTTPTransport struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

// NewHTTPTransport creates a transport for the server at baseURL.
// Deadlines come from the request context, not the http.Client.
func NewHTTPTransport(baseURL, sessionID string) *HTTPTransport {
	return &HTTPTransport{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		http:      &http.Client{},
	}
}

// Move implements Transport.
func (t *HTTPTransport) Move(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
	var resp protocol.MoveResponse

	body, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("%w: encode move: %w", ErrTransport, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+protocol.PathMove, bytes.NewReader(body))
	if err != nil {
		return resp, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.sessionID != "" {
		httpReq.Header.Set(protocol.HeaderSessionID, t.sessionID)
	}

	httpResp, err := t.http.Do(httpReq)
	if err != nil {
		return resp, classify(ctx, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return resp, fmt.Errorf("%w: status %s", ErrTransport, httpResp.Status)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, classify(ctx, fmt.Errorf("decode move response: %w", err))
	}
	return resp, nil
}

// Close implements Transport.
func (t *HTTPTransport) Close() error {
	t.http.CloseIdleConnections()
	return nil
}

// Health calls the health endpoint of the server at baseURL.
func Health(ctx context.Context, baseURL string) (protocol.HealthResponse, error) {
	var health protocol.HealthResponse
	err := getJSON(ctx, strings.TrimRight(baseURL, "/")+protocol.PathHealth, &health)
	return health, err
}

// FetchStats reads the server's per-mode telemetry.
func FetchStats(ctx context.Context, baseURL string) (protocol.StatsResponse, error) {
	var stats protocol.StatsResponse
	err := getJSON(ctx, strings.TrimRight(baseURL, "/")+protocol.PathStats, &stats)
	return stats, err
}

func getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %s", ErrTransport, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrTransport, err)
	}
	return nil
}

// classify maps a failed round trip onto the client's sentinels.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
