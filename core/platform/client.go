package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flow-vault/core/errs"
	"flow-vault/core/models"
	"flow-vault/core/reconcile"
	"flow-vault/core/utils"

	"go.uber.org/zap"
)

const (
	// APIKeyHeader carries the profile's API key.
	APIKeyHeader = "X-N8N-API-KEY"

	defaultPageSize = 100
	maxErrorBody    = 4 << 10
)

// readOnlyFields are rejected by the platform on create and update.
var readOnlyFields = []string{
	"id", "createdAt", "updatedAt", "versionId", "active", "shared",
	"isArchived", "triggerCount", "homeProject", "scopes", "usedBy",
}

var collections = map[models.ResourceType]string{
	models.ResourceWorkflow:   "workflows",
	models.ResourceCredential: "credentials",
	models.ResourceTag:        "tags",
}

// Client talks to one platform instance.
type Client struct {
	baseURL  *url.URL
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
	pageSize int
	types    []models.ResourceType
	retry    reconcile.RetryPolicy
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPageSize sets the page size for list calls.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTypes restricts FetchObjects to the given resource types.
func WithTypes(types ...models.ResourceType) Option {
	return func(c *Client) {
		if len(types) > 0 {
			c.types = types
		}
	}
}

// WithRetry sets the retry policy for page reads.
func WithRetry(p reconcile.RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// New creates a client for baseURL authenticated with apiKey.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid platform url %q", errs.ErrValidation, baseURL)
	}

	c := &Client{
		baseURL:  u,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   zap.NewNop(),
		pageSize: defaultPageSize,
		types:    models.ResourceTypes,
		retry:    reconcile.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type listResponse struct {
	Data       []map[string]any `json:"data"`
	NextCursor *string          `json:"nextCursor"`
}

// FetchObjects returns every object of the configured types in dispatch order.
func (c *Client) FetchObjects(ctx context.Context) ([]reconcile.Object, error) {
	var out []reconcile.Object
	for _, t := range models.ResourceTypes {
		if !c.includes(t) {
			continue
		}
		objs, err := c.FetchType(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, objs...)
	}
	reconcile.SortObjects(out)
	return out, nil
}

func (c *Client) includes(t models.ResourceType) bool {
	for _, want := range c.types {
		if want == t {
			return true
		}
	}
	return false
}

// FetchType pages through one collection.
func (c *Client) FetchType(ctx context.Context, t models.ResourceType) ([]reconcile.Object, error) {
	collection, ok := collections[t]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported resource type %q", errs.ErrValidation, t)
	}

	var out []reconcile.Object
	cursor := ""
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.pageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp listResponse
		if err := c.getJSON(ctx, "/api/v1/"+collection, q, &resp); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		for _, item := range resp.Data {
			out = append(out, ToObject(t, item))
		}

		c.logger.Debug("Fetched page",
			zap.String("collection", collection),
			zap.Int("page", page),
			zap.Int("items", len(resp.Data)),
		)

		if resp.NextCursor == nil || *resp.NextCursor == "" || *resp.NextCursor == cursor {
			break
		}
		cursor = *resp.NextCursor
	}
	return out, nil
}

// PushObject applies obj with the requested action and reports what was applied.
func (c *Client) PushObject(ctx context.Context, obj reconcile.Object, action models.Action) (models.Action, error) {
	collection, ok := collections[obj.Type]
	if !ok {
		return models.ActionNone, fmt.Errorf("%w: unsupported resource type %q", errs.ErrValidation, obj.Type)
	}

	body, err := json.Marshal(Writable(obj.Data))
	if err != nil {
		return models.ActionNone, fmt.Errorf("%w: failed to encode %s: %v", errs.ErrValidation, obj.Key(), err)
	}

	var method, path string
	switch action {
	case models.ActionCreate:
		method, path = http.MethodPost, "/api/v1/"+collection
	case models.ActionUpdate:
		method, path = http.MethodPut, "/api/v1/"+collection+"/"+url.PathEscape(obj.ID)
		if obj.Type == models.ResourceCredential {
			method = http.MethodPatch
		}
	default:
		return models.ActionNone, fmt.Errorf("%w: unsupported action %q", errs.ErrValidation, action)
	}

	resp, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return models.ActionNone, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return action, nil
}

type settingsResponse struct {
	Data struct {
		VersionCli string `json:"versionCli"`
	} `json:"data"`
	VersionCli string `json:"versionCli"`
}

// PlatformVersion returns the platform's semantic version tag.
func (c *Client) PlatformVersion(ctx context.Context) (string, error) {
	var resp settingsResponse
	if err := c.getJSON(ctx, "/rest/settings", nil, &resp); err != nil {
		return "", fmt.Errorf("failed to read platform version: %w", err)
	}
	v := resp.Data.VersionCli
	if v == "" {
		v = resp.VersionCli
	}
	if v == "" {
		return "", fmt.Errorf("%w: platform did not report a version", errs.ErrInvalidVersionFormat)
	}
	return v, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := c.getOnce(ctx, path, q, out)
		if err == nil || !errs.IsRetryable(err) || attempt >= attempts {
			return err
		}

		delay := c.retry.Delay(attempt, err)
		c.logger.Warn("Transient read failure, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) getOnce(ctx context.Context, path string, q url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", errs.ErrValidation, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.FromTransport(err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, errs.FromStatus(resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), errorMessage(msg))
}

// errorMessage extracts the platform's "message" field, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// ToObject converts one API item into an Object with its dependencies.
func ToObject(t models.ResourceType, item map[string]any) reconcile.Object {
	obj := reconcile.Object{
		Type: t,
		ID:   utils.ToID(item["id"]),
		Name: utils.ToString(item["name"]),
		Data: item,
	}
	if t == models.ResourceWorkflow {
		obj.Dependencies = Dependencies(item)
	}
	return obj
}

// Dependencies extracts the credentials and tags a workflow references, deduplicated
// and in dispatch order.
func Dependencies(workflow map[string]any) []reconcile.Key {
	seen := make(map[reconcile.Key]bool)
	var deps []reconcile.Key
	add := func(k reconcile.Key) {
		if k.ID == "" || seen[k] {
			return
		}
		seen[k] = true
		deps = append(deps, k)
	}

	for _, tag := range utils.ToSlice(workflow["tags"]) {
		if m := utils.ToMap(tag); m != nil {
			add(reconcile.Key{Type: models.ResourceTag, ID: utils.ToID(m["id"])})
		}
	}
	for _, node := range utils.ToSlice(workflow["nodes"]) {
		creds := utils.ToMap(utils.ToMap(node)["credentials"])
		for _, ref := range creds {
			if m := utils.ToMap(ref); m != nil {
				add(reconcile.Key{Type: models.ResourceCredential, ID: utils.ToID(m["id"])})
			}
		}
	}

	reconcile.SortKeys(deps)
	return deps
}

// Writable copies data without read-only fields.
func Writable(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, f := range readOnlyFields {
		delete(out, f)
	}
	return out
}
