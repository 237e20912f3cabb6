package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

// Client is a TrackStore backed by a remote synced track service over
// HTTP/JSON. It is behaviorally interchangeable with the embedded backend:
// misses are (nil, nil), conflicts are ErrConflictingWrite, and anything that
// prevents consulting the service is ErrStorageUnavailable so callers never
// mistake an outage for an empty store.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCfg   *util.RetryConfig
}

// Config holds remote store configuration
type Config struct {
	BaseURL string
	Token   string // optional bearer token

	// RequestsPerSecond throttles outgoing calls, 0 = default
	RequestsPerSecond float64
	Timeout           time.Duration
}

const (
	defaultRequestsPerSecond = 10
	defaultTimeout           = 30 * time.Second
)

// New creates a remote store client
func New(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: remote store URL is required", util.ErrInvalidConfig)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid remote store URL: %v", util.ErrInvalidConfig, err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retryCfg:   util.RemoteRetryConfig(),
	}, nil
}

// Close is a no-op; the client holds no persistent connections worth tearing
// down beyond the transport's idle pool
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// wireRecord is the service's JSON representation of a track record
type wireRecord struct {
	ID            int64     `json:"id,omitempty"`
	TrackName     string    `json:"trackName"`
	CatalogCode   string    `json:"catalogCode,omitempty"`
	Library       string    `json:"library,omitempty"`
	Artist        string    `json:"artist,omitempty"`
	Source        string    `json:"source,omitempty"`
	TrackNumber   int       `json:"trackNumber,omitempty"`
	Duration      int       `json:"duration,omitempty"`
	Composer      string    `json:"composer,omitempty"`
	Publisher     string    `json:"publisher,omitempty"`
	MasterContact string    `json:"masterContact,omitempty"`
	UseType       string    `json:"useType,omitempty"`
	Confidence    float64   `json:"confidence,omitempty"`
	DataSource    string    `json:"dataSource,omitempty"`
	Verified      bool      `json:"verified,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

type wirePattern struct {
	ID          int64     `json:"id,omitempty"`
	PatternType string    `json:"patternType"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Occurrences int       `json:"occurrences"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type wireStats struct {
	Tracks   int `json:"tracks"`
	Verified int `json:"verified"`
	Patterns int `json:"patterns"`
	Aliases  int `json:"aliases"`
}

func toWire(rec *track.Record) *wireRecord {
	return &wireRecord{
		ID:            rec.ID,
		TrackName:     rec.TrackName,
		CatalogCode:   rec.CatalogCode,
		Library:       rec.Library,
		Artist:        rec.Artist,
		Source:        rec.Source,
		TrackNumber:   rec.TrackNumber,
		Duration:      rec.Duration,
		Composer:      rec.Composer,
		Publisher:     rec.Publisher,
		MasterContact: rec.MasterContact,
		UseType:       rec.UseType,
		Confidence:    rec.Confidence,
		DataSource:    rec.DataSource,
		Verified:      rec.Verified,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func fromWire(w *wireRecord) *track.Record {
	return &track.Record{
		ID:            w.ID,
		TrackName:     w.TrackName,
		CatalogCode:   w.CatalogCode,
		Library:       w.Library,
		Artist:        w.Artist,
		Source:        w.Source,
		TrackNumber:   w.TrackNumber,
		Duration:      w.Duration,
		Composer:      w.Composer,
		Publisher:     w.Publisher,
		MasterContact: w.MasterContact,
		UseType:       w.UseType,
		Confidence:    w.Confidence,
		DataSource:    w.DataSource,
		Verified:      w.Verified,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// FindExact looks up a record by exact name match
func (c *Client) FindExact(ctx context.Context, name, catalog, library string) (*track.Record, error) {
	q := url.Values{"name": {name}}
	if catalog != "" {
		q.Set("catalog", catalog)
	}
	if library != "" {
		q.Set("library", library)
	}

	var w wireRecord
	found, err := c.getJSON(ctx, "/v1/tracks/exact?"+q.Encode(), &w)
	if err != nil || !found {
		return nil, err
	}
	return fromWire(&w), nil
}

// FindByCatalog returns all records sharing a catalog code
func (c *Client) FindByCatalog(ctx context.Context, catalog string) ([]*track.Record, error) {
	q := url.Values{"catalog": {catalog}}

	var ws []*wireRecord
	if _, err := c.getJSON(ctx, "/v1/tracks?"+q.Encode(), &ws); err != nil {
		return nil, err
	}
	return fromWireAll(ws), nil
}

// FindVerifiedWithComposer returns verified records carrying a composer
func (c *Client) FindVerifiedWithComposer(ctx context.Context, limit int) ([]*track.Record, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var ws []*wireRecord
	if _, err := c.getJSON(ctx, "/v1/tracks/verified?"+q.Encode(), &ws); err != nil {
		return nil, err
	}
	return fromWireAll(ws), nil
}

// Upsert sends the record to the service, which applies the same merge rules
// as the embedded backend
func (c *Client) Upsert(ctx context.Context, rec *track.Record) (*track.Record, error) {
	if !track.IsPresent(rec.TrackName) {
		return nil, fmt.Errorf("%w: trackName is required", util.ErrMalformedInput)
	}

	var w wireRecord
	if _, err := c.doJSON(ctx, http.MethodPut, "/v1/tracks", toWire(rec), &w); err != nil {
		return nil, err
	}
	return fromWire(&w), nil
}

// Delete removes a record by id
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/v1/tracks/%d", id), nil, nil)
	return err
}

// ListAll returns records, optionally filtered by a search substring
func (c *Client) ListAll(ctx context.Context, search string, limit, offset int) ([]*track.Record, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var ws []*wireRecord
	if _, err := c.getJSON(ctx, "/v1/tracks/all?"+q.Encode(), &ws); err != nil {
		return nil, err
	}
	return fromWireAll(ws), nil
}

// ObservePattern records one observation of (type, key) -> value
func (c *Client) ObservePattern(ctx context.Context, patternType, key, value string) (*track.Pattern, error) {
	body := &wirePattern{PatternType: patternType, Key: key, Value: value}

	var w wirePattern
	if _, err := c.doJSON(ctx, http.MethodPost, "/v1/patterns/observe", body, &w); err != nil {
		return nil, err
	}
	return &track.Pattern{
		ID:          w.ID,
		PatternType: w.PatternType,
		Key:         w.Key,
		Value:       w.Value,
		Occurrences: w.Occurrences,
		Confidence:  w.Confidence,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}, nil
}

// PatternsFor returns all observed values for a key
func (c *Client) PatternsFor(ctx context.Context, patternType, key string) ([]*track.Pattern, error) {
	q := url.Values{"type": {patternType}, "key": {key}}

	var ws []*wirePattern
	if _, err := c.getJSON(ctx, "/v1/patterns?"+q.Encode(), &ws); err != nil {
		return nil, err
	}

	patterns := make([]*track.Pattern, 0, len(ws))
	for _, w := range ws {
		patterns = append(patterns, &track.Pattern{
			ID:          w.ID,
			PatternType: w.PatternType,
			Key:         w.Key,
			Value:       w.Value,
			Occurrences: w.Occurrences,
			Confidence:  w.Confidence,
			CreatedAt:   w.CreatedAt,
			UpdatedAt:   w.UpdatedAt,
		})
	}
	return patterns, nil
}

// AddAlias maps a variant spelling to a canonical entity name
func (c *Client) AddAlias(ctx context.Context, alias, entityType, canonical string) error {
	body := map[string]string{
		"alias":      alias,
		"entityType": entityType,
		"canonical":  canonical,
	}
	_, err := c.doJSON(ctx, http.MethodPost, "/v1/aliases", body, nil)
	return err
}

// CanonicalName resolves a name through the service's alias table
func (c *Client) CanonicalName(ctx context.Context, name, entityType string) (string, error) {
	q := url.Values{"name": {name}, "entity": {entityType}}

	var out struct {
		Canonical string `json:"canonical"`
	}
	found, err := c.getJSON(ctx, "/v1/aliases/canonical?"+q.Encode(), &out)
	if err != nil {
		return "", err
	}
	if !found || out.Canonical == "" {
		return name, nil
	}
	return out.Canonical, nil
}

// Stats returns aggregate counts
func (c *Client) Stats(ctx context.Context) (*store.Stats, error) {
	var w wireStats
	if _, err := c.getJSON(ctx, "/v1/stats", &w); err != nil {
		return nil, err
	}
	return &store.Stats{
		Tracks:   w.Tracks,
		Verified: w.Verified,
		Patterns: w.Patterns,
		Aliases:  w.Aliases,
	}, nil
}

// getJSON performs a GET and decodes the response. The bool result is false
// on a 404 miss.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// doJSON performs a request with retry on transient failures. Responses map
// to the store contract: 404 is a miss, 409 is a conflicting write, 5xx and
// transport errors are storage unavailability.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (bool, error) {
	op := fmt.Sprintf("%s %s", method, path)

	return util.RetryWithBackoff(c.retryCfg, func() (bool, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
		return c.doJSONOnce(ctx, method, path, body, out)
	}, op)
}

func (c *Client) doJSONOnce(ctx context.Context, method, path string, body, out any) (bool, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A miss, not an error
		io.Copy(io.Discard, resp.Body)
		return false, nil

	case resp.StatusCode == http.StatusConflict:
		return false, fmt.Errorf("%w: remote store rejected the write", util.ErrConflictingWrite)

	case resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%w: %s", util.ErrMalformedInput, string(msg))

	case resp.StatusCode >= 500:
		msg, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%w: status %d: %s", util.ErrStorageUnavailable, resp.StatusCode, string(msg))

	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(msg))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}

func fromWireAll(ws []*wireRecord) []*track.Record {
	records := make([]*track.Record, 0, len(ws))
	for _, w := range ws {
		records = append(records, fromWire(w))
	}
	return records
}
