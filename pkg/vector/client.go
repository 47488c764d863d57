package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smartgement/merchant-backend/pkg/config"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

const (
	defaultBaseURL           = "http://localhost:6333"
	defaultTimeout           = 10 * time.Second
	errorBodyReadLimit int64 = 1024
	embeddingSize            = 1536
)

// Client talks to a Qdrant instance over its HTTP API. Collections are
// provisioned per merchant.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Qdrant base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Qdrant client from configuration.
func NewClient(cfg config.VectorConfig, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	if strings.TrimSpace(cfg.URL) != "" {
		client.baseURL = strings.TrimSpace(cfg.URL)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// CollectionName returns the standardized per-merchant collection name.
func CollectionName(merchantID string) string {
	return "merchant_" + merchantID
}

// SearchRequest describes one similarity search.
type SearchRequest struct {
	MerchantID string
	Vector     []float64
	Limit      int
	ObjectType string
}

// SearchResult is one scored point returned by Qdrant.
type SearchResult struct {
	ID         string
	Score      float64
	Text       string
	ObjectType string
}

// EnsureCollection creates the merchant's collection when it does not exist.
func (c *Client) EnsureCollection(ctx context.Context, merchantID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "vector client not configured")
	}
	name := CollectionName(merchantID)

	payload, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     embeddingSize,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal collection request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.buildURL("collections/"+name), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build collection request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute collection request")
	}
	defer func() { _ = resp.Body.Close() }()

	// 409 means the collection already exists, which is fine.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "collection request failed")
	}
	return nil
}

// Search runs a similarity query against the merchant's collection.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vector client not configured")
	}
	if len(req.Vector) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query vector is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}

	body := map[string]any{
		"vector":       req.Vector,
		"limit":        limit,
		"with_payload": true,
	}
	if req.ObjectType != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "object_type", "match": map[string]any{"value": req.ObjectType}},
			},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal search request")
	}

	name := CollectionName(req.MerchantID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("collections/"+name+"/points/search"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build search request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute search request")
	}
	defer func() { _ = resp.Body.Close() }()

	// Missing collections read as empty context, not a hard failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "search request failed")
	}

	var apiResp struct {
		Result []struct {
			ID      json.RawMessage `json:"id"`
			Score   float64         `json:"score"`
			Payload struct {
				Text       string `json:"text"`
				ObjectType string `json:"object_type"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode search response")
	}

	results := make([]SearchResult, 0, len(apiResp.Result))
	for _, point := range apiResp.Result {
		results = append(results, SearchResult{
			ID:         strings.Trim(string(point.ID), `"`),
			Score:      point.Score,
			Text:       point.Payload.Text,
			ObjectType: point.Payload.ObjectType,
		})
	}
	return results, nil
}

// UpsertPoint writes one embedded document into the merchant's collection.
func (c *Client) UpsertPoint(ctx context.Context, merchantID, pointID string, vector []float64, text, objectType string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "vector client not configured")
	}
	if len(vector) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "point vector is required")
	}

	payload, err := json.Marshal(map[string]any{
		"points": []map[string]any{
			{
				"id":     pointID,
				"vector": vector,
				"payload": map[string]any{
					"text":        text,
					"object_type": objectType,
					"merchant_id": merchantID,
				},
			},
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal upsert request")
	}

	name := CollectionName(merchantID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.buildURL("collections/"+name+"/points"), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upsert request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upsert request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "upsert request failed")
	}
	return nil
}

// Ping verifies the Qdrant instance responds.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "vector client not configured")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("collections"), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build ping request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute ping request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("qdrant ping returned status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
