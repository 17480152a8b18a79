package stacc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"recommender/internal/logbuffer"
	"recommender/internal/logger"
)

// DefaultTimeout bounds a dispatch when the caller does not pass one.
const DefaultTimeout = 5 * time.Second

// ProbeTimeout bounds the /info connectivity check.
const ProbeTimeout = 1 * time.Second

const maxDetailLen = 200

// CredentialSource provides the shop credentials and the persisted
// circuit-breaker flag. Implementations back onto the settings store;
// updates are last-writer-wins.
type CredentialSource interface {
	Credentials() (shopID, apiKey string, err error)
	AuthFailed() bool
	SetAuthFailed(failed bool) error
	ClearCredentials() error
}

// Client builds, authenticates and transmits single operation dispatches
// against the remote recommendation API and classifies their outcomes.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	sink       *logbuffer.Sink
	logger     *logger.Logger
}

func NewClient(baseURL string, creds CredentialSource, sink *logbuffer.Sink, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sink:   sink,
		logger: logger,
	}
}

// Send dispatches one operation payload and classifies the outcome.
// Validation failures and an engaged circuit breaker return before any
// network I/O. Non-blocking operations discard the response body; blocking
// operations return it parsed.
func (c *Client) Send(op Operation, payload map[string]interface{}, timeout time.Duration) Result {
	ep, err := Resolve(op)
	if err != nil {
		return c.finish(op, payload, fail(ErrorValidation, fmt.Sprintf("couldn't find an endpoint matching %q", op)))
	}

	for _, field := range ep.RequiredFields {
		if _, present := payload[field]; !present {
			return c.finish(op, payload, fail(ErrorValidation, "missing required field "+field))
		}
	}

	// Circuit breaker: known-bad credentials block everything except the
	// credential check itself.
	if op != OpCreds && c.creds.AuthFailed() {
		return c.finish(op, payload, fail(ErrorCredentialsBlocked, "credential check previously failed"))
	}

	shopID, apiKey, err := c.creds.Credentials()
	if err != nil || shopID == "" || apiKey == "" {
		return c.finish(op, payload, fail(ErrorCredentialsBlocked, "credentials not configured"))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.finish(op, payload, fail(ErrorValidation, "failed to encode payload: "+err.Error()))
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ep.Path, bytes.NewReader(body))
	if err != nil {
		return c.finish(op, payload, fail(ErrorNetwork, err.Error()))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Length", fmt.Sprintf("%d", len(body)))
	req.SetBasicAuth(shopID, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.finish(op, payload, fail(ErrorNetwork, err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailLen))
		return c.finish(op, payload, failRemote(resp.StatusCode, string(detail)))
	}

	if !ep.Blocking {
		io.Copy(io.Discard, resp.Body)
		return c.finish(op, payload, ok(nil))
	}

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// A 200 with an unreadable body still counts as delivered.
		parsed = nil
	}
	return c.finish(op, payload, ok(parsed))
}

// HasConnection probes the /info endpoint with a short timeout. True only
// on HTTP 200.
func (c *Client) HasConnection() bool {
	ctx, cancel := context.WithTimeout(context.Background(), ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/info", nil)
	if err != nil {
		c.sink.LogCritical("Connection to the API has failed: "+err.Error(), nil)
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.sink.LogCritical("Connection to the API has failed: "+err.Error(), nil)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.sink.LogCritical(fmt.Sprintf("Connection to the API has failed: unexpected code %d", resp.StatusCode), nil)
		return false
	}
	return true
}

// finish records the audit trail for every outcome and applies the
// credential-failure side effects before handing the result back.
func (c *Client) finish(op Operation, payload map[string]interface{}, res Result) Result {
	if res.OK {
		if op == OpCreds {
			if err := c.creds.SetAuthFailed(false); err != nil {
				c.logger.Error("Failed to clear auth flag: %v", err)
			}
		}
		if op == OpLogs {
			// Audit for a flush dispatch stays out of the buffer the flush
			// is draining; it would be archived without ever being sent.
			c.logger.Info("Dispatch succeeded: %s", op)
			return res
		}
		c.sink.LogInfo("Dispatch succeeded: "+string(op), map[string]interface{}{
			"operation": string(op),
			"payload":   abbreviate(payload),
		})
		return res
	}

	// Only a failed credential check engages the circuit breaker; the flag
	// is never touched by telemetry or sync failures.
	if op == OpCreds && (res.Kind == ErrorNetwork || res.Kind == ErrorRemote) {
		if err := c.creds.ClearCredentials(); err != nil {
			c.logger.Error("Failed to clear credentials: %v", err)
		}
		if err := c.creds.SetAuthFailed(true); err != nil {
			c.logger.Error("Failed to set auth flag: %v", err)
		}
	}

	if op == OpLogs {
		c.logger.Error("Dispatch failed: %s: %s", op, res.Error())
		return res
	}

	c.sink.LogError("Dispatch failed: "+string(op)+": "+res.Error(), map[string]interface{}{
		"operation": string(op),
		"payload":   abbreviate(payload),
	})
	return res
}

func abbreviate(payload map[string]interface{}) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	if len(data) > maxDetailLen {
		data = data[:maxDetailLen]
	}
	return string(data)
}
