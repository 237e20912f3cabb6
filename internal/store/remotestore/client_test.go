package remotestore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

var _ store.TrackStore = (*Client)(nil)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(&Config{BaseURL: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	// Do not retry in tests; failure paths assert single-shot behavior
	c.retryCfg = &util.RetryConfig{MaxAttempts: 1}
	return c
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(&Config{}); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFindExactHit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/exact" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Punch Drunk" {
			t.Errorf("wrong name param: %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id")
		}

		json.NewEncoder(w).Encode(&wireRecord{
			ID:        7,
			TrackName: "Punch Drunk",
			Composer:  "W. Werzowa (ASCAP)(100%)",
			Verified:  true,
		})
	}))

	rec, err := c.FindExact(context.Background(), "Punch Drunk", "", "")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if rec == nil || rec.ID != 7 || !rec.Verified {
		t.Errorf("wrong record: %+v", rec)
	}
}

// A 404 is a miss, never an error
func TestFindExactMissIsNil(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	rec, err := c.FindExact(context.Background(), "Never Seen", "", "")
	if err != nil {
		t.Fatalf("miss must not be an error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestServerErrorIsStorageUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))

	_, err := c.FindExact(context.Background(), "Punch Drunk", "", "")
	if !errors.Is(err, util.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestUnreachableHostIsStorageUnavailable(t *testing.T) {
	c, err := New(&Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	c.retryCfg = &util.RetryConfig{MaxAttempts: 1}

	if _, err := c.FindExact(context.Background(), "Punch Drunk", "", ""); !errors.Is(err, util.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestUpsertConflict(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "identity conflict", http.StatusConflict)
	}))

	_, err := c.Upsert(context.Background(), &track.Record{TrackName: "Punch Drunk"})
	if !errors.Is(err, util.ErrConflictingWrite) {
		t.Errorf("expected ErrConflictingWrite, got %v", err)
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/tracks" {
			t.Errorf("wrong route: %s %s", r.Method, r.URL.Path)
		}

		var in wireRecord
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if in.TrackName != "Punch Drunk" || in.CatalogCode != "IATS021" {
			t.Errorf("wrong payload: %+v", in)
		}

		in.ID = 42
		json.NewEncoder(w).Encode(&in)
	}))

	stored, err := c.Upsert(context.Background(), &track.Record{
		TrackName:   "Punch Drunk",
		CatalogCode: "IATS021",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if stored.ID != 42 {
		t.Errorf("expected stored id from server, got %d", stored.ID)
	}
}

func TestUpsertRequiresName(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	}))

	if _, err := c.Upsert(context.Background(), &track.Record{TrackName: "-"}); !errors.Is(err, util.ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestCanonicalNameFallsBackToInput(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	name, err := c.CanonicalName(context.Background(), "W. Werzowa", track.EntityComposer)
	if err != nil {
		t.Fatalf("canonical lookup failed: %v", err)
	}
	if name != "W. Werzowa" {
		t.Errorf("unknown alias must resolve to itself, got %q", name)
	}
}

func TestStats(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/stats" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(&wireStats{Tracks: 10, Verified: 4, Patterns: 3, Aliases: 1})
	}))

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Tracks != 10 || stats.Verified != 4 || stats.Patterns != 3 || stats.Aliases != 1 {
		t.Errorf("wrong stats: %+v", stats)
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	attempts := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(&wireStats{Tracks: 1})
	}))
	c.retryCfg = util.DefaultRetryConfig()

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if stats.Tracks != 1 {
		t.Errorf("wrong stats after retry: %+v", stats)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}
