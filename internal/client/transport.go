package client

import (
	"context"
	"fmt"
)

// Transport kinds accepted by Dial.
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

// Dial creates the named transport for the server at baseURL.
func Dial(ctx context.Context, kind, baseURL, sessionID string) (Transport, error) {
	switch kind {
	case TransportHTTP, "":
		return NewHTTPTransport(baseURL, sessionID), nil
	case TransportWS:
		return DialWS(ctx, baseURL, sessionID)
	default:
		return nil, fmt.Errorf("client: unknown transport %q", kind)
	}
}
