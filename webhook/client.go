package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"alarmd/metrics"
)

/* Client sends rate-limited GET calls to the homebridge-http-webhooks
 * bridge endpoint
 * A single Client instance is shared by every zone; its mutex is the
 * serialization point for the whole dispatch protocol, so two callers
 * can never interleave their delay computations
 */
type Client struct {
	baseURL     string
	minInterval time.Duration
	httpClient  *http.Client
	logger      *slog.Logger

	mu         sync.Mutex
	lastSentAt time.Time
}

// Sender dispatches one call to the bridge and returns the decoded
// JSON response. A nil error means the bridge answered 200 with a
// valid JSON object.
type Sender interface {
	Send(params Params) (map[string]any, error)
}

// NewClient creates a bridge client for http://host:port/ enforcing
// minInterval between consecutive calls and timeout per call.
func NewClient(host string, port int, minInterval, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     fmt.Sprintf("http://%s:%d/", host, port),
		minInterval: minInterval,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Send issues one GET call to the bridge with the given parameters.
// If the previous call started less than minInterval ago, Send blocks
// for the remainder before proceeding; calls are delayed, never
// dropped. Failures are logged here and returned as typed errors; the
// caller's only obligation is to abandon the current operation.
func (c *Client) Send(params Params) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.minInterval - time.Since(c.lastSentAt); wait > 0 {
		time.Sleep(wait)
	}
	// Stamped before the round trip: throttle spacing is measured
	// call-to-call, not response-to-response.
	c.lastSentAt = time.Now()

	url := c.baseURL
	if q := params.Encode(); q != "" {
		url += "?" + q
	}

	start := time.Now()
	payload, err := c.do(url)
	metrics.ObserveSend(resultLabel(err), time.Since(start).Seconds())
	if err != nil {
		c.logger.Error("webhook call failed", "error", err, "url", url)
		return nil, err
	}
	c.logger.Info("webhook call sent", "url", url)
	return payload, nil
}

func (c *Client) do(url string) (map[string]any, error) {
	rsp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{URL: url, Status: rsp.StatusCode}
	}
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProtocolError{URL: url, Status: rsp.StatusCode, Err: fmt.Errorf("decoding response body: %w", err)}
	}
	return payload, nil
}

func resultLabel(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
