package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/auth"
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/events"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret"

// testClock is a settable clock shared by the services under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestEnv is a fully wired server on a temporary SQLite store
type TestEnv struct {
	Router    *gin.Engine
	Store     *repository.SQLStore
	Events    *events.MemoryPublisher
	Clock     *testClock
	tokens    *auth.JWTManager
	tokenByID map[string]string
}

// SetupTestEnv initializes the router with a SQLite store for integration testing.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "auctions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	pub := &events.MemoryPublisher{}
	l := ledger.NewLedger(store)
	tokens := auth.NewJWTManager(testSecret, time.Hour)

	router := server.SetupRouter(server.Services{
		Bidding: bidding.NewBiddingService(store, l,
			bidding.WithPublisher(pub),
			bidding.WithClock(clock.Now),
		),
		Auctions: lifecycle.NewService(store, settlement.NewSettler(l),
			lifecycle.WithPublisher(pub),
			lifecycle.WithClock(clock.Now),
		),
		Ledger: l,
		Tokens: tokens,
	})

	return &TestEnv{
		Router:    router,
		Store:     store,
		Events:    pub,
		Clock:     clock,
		tokens:    tokens,
		tokenByID: map[string]string{},
	}
}

// Token returns a bearer token for userID, issuing it on first use
func (e *TestEnv) Token(t *testing.T, userID string) string {
	t.Helper()
	if tok, ok := e.tokenByID[userID]; ok {
		return tok
	}
	tok, err := e.tokens.Generate(userID, userID)
	require.NoError(t, err)
	e.tokenByID[userID] = tok
	return tok
}

// Do executes an HTTP request as userID (anonymous when empty) and parses the JSON body
func (e *TestEnv) Do(t *testing.T, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token(t, userID))
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response: %s", w.Body.String())
	}
	return resp, w
}

// Data returns the "data" object of a response envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}
