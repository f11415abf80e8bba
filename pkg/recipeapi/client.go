package recipeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/recipe-client/pkg/httpclient"
)

// DefaultBaseURL is the recipes API root used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api/recipes"

// Client calls the recipes REST API. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    httpclient.Client
	log     Logger
}

// Ensure Client implements RecipeAPI at compile time.
var _ RecipeAPI = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout applies to the default transport only; zero keeps the transport default.
	Timeout time.Duration
	// HTTP overrides the transport.
	HTTP   httpclient.Client
	Logger Logger
}

// New builds a Client for the configured base URL.
func New(opts Options) (*Client, error) {
	base, err := normalizeBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	transport := opts.HTTP
	if transport == nil {
		transport = httpclient.NewRestyClient(opts.Timeout)
	}
	return &Client{
		baseURL: base,
		http:    transport,
		log:     ensureLogger(opts.Logger),
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Call issues method against base+endpoint. An empty method means GET. data is
// serialized as the JSON body only when it is non-nil and the method is not GET.
// Every failure is reported through the returned Result.
func (c *Client) Call(ctx context.Context, endpoint, method string, data any) Result {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL + endpoint

	req := httpclient.Request{
		Method:  method,
		URL:     target,
		Headers: map[string]string{"Content-Type": "application/json"},
	}
	if data != nil && method != http.MethodGet {
		body, err := json.Marshal(data)
		if err != nil {
			return c.fail(&Error{Kind: KindEncode, Method: method, URL: target, Err: err})
		}
		req.Body = body
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return c.fail(&Error{Kind: KindNetwork, Method: method, URL: target, Err: err})
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status > 299 {
		return c.fail(&Error{
			Kind:       KindStatus,
			Method:     method,
			URL:        target,
			StatusCode: status,
			Snippet:    bodySnippet(body),
		})
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return c.fail(&Error{Kind: KindDecode, Method: method, URL: target, StatusCode: status, Err: err})
	}

	c.log.DebugObj("recipe api call succeeded", "recipe_api_call", map[string]any{
		"method": method,
		"url":    target,
		"status": status,
		"bytes":  len(body),
	})
	return success(body, decoded)
}

func (c *Client) fail(apiErr *Error) Result {
	c.log.WarnObj("recipe api call failed", "recipe_api_error", map[string]any{
		"method": apiErr.Method,
		"url":    apiErr.URL,
		"kind":   apiErr.Kind.String(),
		"status": apiErr.StatusCode,
		"error":  apiErr.Error(),
	})
	return failure(apiErr)
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("base url %q must not carry a query or fragment", raw)
	}
	return strings.TrimRight(trimmed, "/"), nil
}
