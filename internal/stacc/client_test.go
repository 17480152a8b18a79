package stacc

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"recommender/internal/logbuffer"
	"recommender/internal/logger"
)

type fakeCreds struct {
	shopID     string
	apiKey     string
	authFailed bool
	cleared    bool
}

func (f *fakeCreds) Credentials() (string, string, error) { return f.shopID, f.apiKey, nil }
func (f *fakeCreds) AuthFailed() bool                     { return f.authFailed }

func (f *fakeCreds) SetAuthFailed(failed bool) error {
	f.authFailed = failed
	return nil
}

func (f *fakeCreds) ClearCredentials() error {
	f.cleared = true
	f.shopID = ""
	f.apiKey = ""
	return nil
}

// tripwireTransport fails the test if any request reaches the wire.
type tripwireTransport struct {
	t *testing.T
}

func (tr *tripwireTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.t.Fatalf("unexpected network call to %s", req.URL)
	return nil, nil
}

func newTestSink(t *testing.T) *logbuffer.Sink {
	return logbuffer.NewSink(filepath.Join(t.TempDir(), "StaccDefault.log"), "1.0.0", "")
}

func newTestClient(t *testing.T, baseURL string, creds *fakeCreds) *Client {
	return NewClient(baseURL, creds, newTestSink(t), logger.New("error"))
}

func viewPayload() map[string]interface{} {
	return map[string]interface{}{
		"item_id":    "42",
		"stacc_id":   "s1",
		"website":    "http://shop.test",
		"properties": map[string]interface{}{},
	}
}

func TestSendMissingFieldIsValidationError(t *testing.T) {
	creds := &fakeCreds{shopID: "shop", apiKey: "key", authFailed: false}
	client := newTestClient(t, "http://api.test", creds)
	client.httpClient = &http.Client{Transport: &tripwireTransport{t}}

	payload := viewPayload()
	delete(payload, "website")

	res := client.Send(OpView, payload, 0)
	if res.OK {
		t.Fatalf("expected failure")
	}
	if res.Kind != ErrorValidation {
		t.Fatalf("kind = %s, want validation", res.Kind)
	}
}

func TestSendUnknownOperationIsValidationError(t *testing.T) {
	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, "http://api.test", creds)
	client.httpClient = &http.Client{Transport: &tripwireTransport{t}}

	res := client.Send(Operation("bogus"), map[string]interface{}{}, 0)
	if res.Kind != ErrorValidation {
		t.Fatalf("kind = %s, want validation", res.Kind)
	}
}

func TestSendBlockedByAuthFlag(t *testing.T) {
	creds := &fakeCreds{shopID: "shop", apiKey: "key", authFailed: true}
	client := newTestClient(t, "http://api.test", creds)
	client.httpClient = &http.Client{Transport: &tripwireTransport{t}}

	res := client.Send(OpView, viewPayload(), 0)
	if res.Kind != ErrorCredentialsBlocked {
		t.Fatalf("kind = %s, want credentials_blocked", res.Kind)
	}
}

func TestSendMissingCredentialsBlocked(t *testing.T) {
	creds := &fakeCreds{}
	client := newTestClient(t, "http://api.test", creds)
	client.httpClient = &http.Client{Transport: &tripwireTransport{t}}

	res := client.Send(OpView, viewPayload(), 0)
	if res.Kind != ErrorCredentialsBlocked {
		t.Fatalf("kind = %s, want credentials_blocked", res.Kind)
	}
}

func TestSendViewOK(t *testing.T) {
	var gotPath, gotAuthUser, gotAuthPass, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)

	res := client.Send(OpView, viewPayload(), 0)
	if !res.OK {
		t.Fatalf("expected OK, got %s", res.Error())
	}
	if res.Body != nil {
		t.Fatalf("non-blocking dispatch should not parse the body")
	}
	if gotPath != "/send_view" {
		t.Fatalf("path = %s, want /send_view", gotPath)
	}
	if gotAuthUser != "shop" || gotAuthPass != "key" {
		t.Fatalf("basic auth = %s:%s", gotAuthUser, gotAuthPass)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %s", gotContentType)
	}
}

func TestSendViewRemoteErrorDoesNotSetAuthFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)

	res := client.Send(OpView, viewPayload(), 0)
	if res.Kind != ErrorRemote {
		t.Fatalf("kind = %s, want remote", res.Kind)
	}
	if res.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", res.Status)
	}
	if creds.authFailed {
		t.Fatalf("view failure must not engage the circuit breaker")
	}
	if creds.cleared {
		t.Fatalf("view failure must not clear credentials")
	}
}

func TestSendTimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)

	res := client.Send(OpLogs, map[string]interface{}{"logs": []interface{}{}}, 30*time.Millisecond)
	if res.Kind != ErrorNetwork {
		t.Fatalf("kind = %s, want network", res.Kind)
	}
}

func TestSendLogsAuditStaysOutOfBuffer(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	sink := newTestSink(t)
	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := NewClient(server.URL, creds, sink, logger.New("error"))

	payload := map[string]interface{}{"logs": []interface{}{}}
	if res := client.Send(OpLogs, payload, 0); !res.OK {
		t.Fatalf("expected OK, got %s", res.Error())
	}

	status = http.StatusInternalServerError
	if res := client.Send(OpLogs, payload, 0); res.Kind != ErrorRemote {
		t.Fatalf("kind = %s, want remote", res.Kind)
	}

	lines, err := sink.ReadAll()
	if err != nil {
		t.Fatalf("read buffer: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("logs dispatches wrote %d entries into the buffer", len(lines))
	}
}

func TestSendCredsFailureEngagesBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)

	res := client.Send(OpCreds, map[string]interface{}{
		"log_sync_url":     "http://shop.test/sync/logs",
		"product_sync_url": "http://shop.test/sync/products",
	}, 0)
	if res.Kind != ErrorRemote {
		t.Fatalf("kind = %s, want remote", res.Kind)
	}
	if !creds.authFailed {
		t.Fatalf("creds failure must set the auth flag")
	}
	if !creds.cleared {
		t.Fatalf("creds failure must clear stored credentials")
	}
}

func TestSendCredsSuccessClearsBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// The creds check itself must get through an engaged breaker.
	creds := &fakeCreds{shopID: "shop", apiKey: "key", authFailed: true}
	client := newTestClient(t, server.URL, creds)

	res := client.Send(OpCreds, map[string]interface{}{
		"log_sync_url":     "http://shop.test/sync/logs",
		"product_sync_url": "http://shop.test/sync/products",
	}, 0)
	if !res.OK {
		t.Fatalf("expected OK, got %s", res.Error())
	}
	if creds.authFailed {
		t.Fatalf("creds success must clear the auth flag")
	}
}

func TestHasConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			t.Fatalf("probe path = %s, want /info", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Fatalf("probe method = %s, want GET", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)
	if !client.HasConnection() {
		t.Fatalf("expected probe success")
	}
}

func TestHasConnectionNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)
	if client.HasConnection() {
		t.Fatalf("expected probe failure on 503")
	}
}

func TestHasConnectionTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	creds := &fakeCreds{shopID: "shop", apiKey: "key"}
	client := newTestClient(t, server.URL, creds)
	if client.HasConnection() {
		t.Fatalf("expected probe failure on refused connection")
	}
}
