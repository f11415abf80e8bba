package recipeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

const basePath = "/api/recipes"

// capturedRequest records what the stub server received.
type capturedRequest struct {
	method      string
	escapedPath string
	contentType string
	body        string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.escapedPath = r.URL.EscapedPath()
		got.contentType = r.Header.Get("Content-Type")
		got.body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: srv.URL + basePath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// endpointCalls exercises every list operation against the same client.
func endpointCalls() map[string]func(context.Context, *Client) Result {
	return map[string]func(context.Context, *Client) Result{
		"all":     func(ctx context.Context, c *Client) Result { return c.LoadAllRecipes(ctx) },
		"search":  func(ctx context.Context, c *Client) Result { return c.SearchRecipes(ctx, "soup") },
		"cuisine": func(ctx context.Context, c *Client) Result { return c.GetRecipesByCuisine(ctx, "thai") },
		"top":     func(ctx context.Context, c *Client) Result { return c.GetTopRatedRecipes(ctx) },
		"get":     func(ctx context.Context, c *Client) Result { return c.GetRecipe(ctx, "abc") },
	}
}

func TestCallReturnsPayloadUnmodified(t *testing.T) {
	payloads := []string{
		`[{"name":"Pad Thai","cuisine":"thai","rating":4.5,"tags":["noodles"]}]`,
		`{"message":"ok","count":2}`,
		`"just a string"`,
		`42`,
		`[]`,
	}
	for name, call := range endpointCalls() {
		for _, payload := range payloads {
			srv, _ := newTestServer(t, http.StatusOK, payload)
			res := call(context.Background(), newTestClient(t, srv))
			if !res.OK() {
				t.Fatalf("%s: unexpected failure %v", name, res.Err())
			}
			var want any
			if err := json.Unmarshal([]byte(payload), &want); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			if !reflect.DeepEqual(res.Data(), want) {
				t.Fatalf("%s: data = %#v, want %#v", name, res.Data(), want)
			}
			if !reflect.DeepEqual(res.Value(), want) {
				t.Fatalf("%s: value = %#v, want %#v", name, res.Value(), want)
			}
		}
	}
}

func TestCallNon2xxYieldsSentinel(t *testing.T) {
	for name, call := range endpointCalls() {
		for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMultipleChoices} {
			srv, _ := newTestServer(t, status, `{"error":"Recipe not found"}`)
			res := call(context.Background(), newTestClient(t, srv))
			if res.OK() {
				t.Fatalf("%s/%d: expected failure", name, status)
			}
			if res.Value() != FailedToLoad {
				t.Fatalf("%s/%d: value = %#v", name, status, res.Value())
			}
			if !errors.Is(res.Err(), ErrStatus) {
				t.Fatalf("%s/%d: expected status error, got %v", name, status, res.Err())
			}
			apiErr, ok := AsError(res.Err())
			if !ok || apiErr.StatusCode != status {
				t.Fatalf("%s/%d: unexpected error %#v", name, status, apiErr)
			}
			if !strings.Contains(apiErr.Snippet, "Recipe not found") {
				t.Fatalf("%s/%d: snippet = %q", name, status, apiErr.Snippet)
			}
		}
	}
}

func TestCallNetworkFailureYieldsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newTestClient(t, srv)
	srv.Close()

	for name, call := range endpointCalls() {
		res := call(context.Background(), c)
		if res.Value() != FailedToLoad {
			t.Fatalf("%s: value = %#v", name, res.Value())
		}
		if res.Kind() != KindNetwork || !errors.Is(res.Err(), ErrNetwork) {
			t.Fatalf("%s: expected network failure, got %v", name, res.Err())
		}
	}
}

func TestCallMalformedJSONYieldsSentinel(t *testing.T) {
	for name, call := range endpointCalls() {
		for _, body := range []string{`{"name":`, `<html>oops</html>`, ``} {
			srv, _ := newTestServer(t, http.StatusOK, body)
			res := call(context.Background(), newTestClient(t, srv))
			if res.Value() != FailedToLoad {
				t.Fatalf("%s %q: value = %#v", name, body, res.Value())
			}
			if !errors.Is(res.Err(), ErrDecode) {
				t.Fatalf("%s %q: expected decode failure, got %v", name, body, res.Err())
			}
		}
	}
}

func TestCancelledContextIsNetworkFailure(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestClient(t, srv).LoadAllRecipes(ctx)
	if res.Kind() != KindNetwork {
		t.Fatalf("expected network failure, got %v", res.Err())
	}
}

func TestEndpointPaths(t *testing.T) {
	cases := []struct {
		name string
		call func(context.Context, *Client) Result
		want string
	}{
		{"all", func(ctx context.Context, c *Client) Result { return c.LoadAllRecipes(ctx) }, "/"},
		{"search encoded", func(ctx context.Context, c *Client) Result { return c.SearchRecipes(ctx, "pasta & cheese") }, "/search/pasta%20%26%20cheese"},
		{"search slash", func(ctx context.Context, c *Client) Result { return c.SearchRecipes(ctx, "a/b?c") }, "/search/a%2Fb%3Fc"},
		{"cuisine encoded", func(ctx context.Context, c *Client) Result { return c.GetRecipesByCuisine(ctx, "South Indian") }, "/cuisine/South%20Indian"},
		{"top default", func(ctx context.Context, c *Client) Result { return c.GetTopRatedRecipes(ctx) }, "/top/6"},
		{"top explicit", func(ctx context.Context, c *Client) Result { return c.GetTopRatedRecipes(ctx, 3) }, "/top/3"},
		{"top unvalidated", func(ctx context.Context, c *Client) Result { return c.GetTopRatedRecipes(ctx, -1) }, "/top/-1"},
		{"get", func(ctx context.Context, c *Client) Result { return c.GetRecipe(ctx, "65a1") }, "/65a1"},
	}
	for _, tc := range cases {
		srv, got := newTestServer(t, http.StatusOK, `[]`)
		if res := tc.call(context.Background(), newTestClient(t, srv)); !res.OK() {
			t.Fatalf("%s: unexpected failure %v", tc.name, res.Err())
		}
		if want := basePath + tc.want; got.escapedPath != want {
			t.Fatalf("%s: path = %q, want %q", tc.name, got.escapedPath, want)
		}
		if got.method != http.MethodGet {
			t.Fatalf("%s: method = %s", tc.name, got.method)
		}
	}
}

func TestCallPostAttachesJSONBody(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, `{"message":"Recipe created successfully"}`)
	c := newTestClient(t, srv)

	res := c.Call(context.Background(), "/", http.MethodPost, map[string]int{"a": 1})
	if !res.OK() {
		t.Fatalf("unexpected failure %v", res.Err())
	}
	if got.method != http.MethodPost {
		t.Fatalf("method = %s", got.method)
	}
	if got.contentType != "application/json" {
		t.Fatalf("content type = %q", got.contentType)
	}
	if got.body != `{"a":1}` {
		t.Fatalf("body = %q", got.body)
	}
}

func TestCallGetNeverAttachesBody(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, `[]`)
	c := newTestClient(t, srv)

	for _, method := range []string{"", "GET", "get"} {
		res := c.Call(context.Background(), "/", method, map[string]int{"a": 1})
		if !res.OK() {
			t.Fatalf("%q: unexpected failure %v", method, res.Err())
		}
		if got.method != http.MethodGet {
			t.Fatalf("%q: method = %s", method, got.method)
		}
		if got.body != "" {
			t.Fatalf("%q: GET carried body %q", method, got.body)
		}
		if got.contentType != "application/json" {
			t.Fatalf("%q: content type = %q", method, got.contentType)
		}
	}
}

func TestCallUnserializableBodyIsEncodeFailure(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	res := newTestClient(t, srv).Call(context.Background(), "/", http.MethodPost, map[string]any{"ch": make(chan int)})
	if res.Value() != FailedToLoad || !errors.Is(res.Err(), ErrEncode) {
		t.Fatalf("expected encode failure, got %v", res.Err())
	}
}

func TestMutatingOperations(t *testing.T) {
	recipe := map[string]any{"name": "Dal", "cuisine": "indian"}
	cases := []struct {
		name     string
		call     func(context.Context, *Client) Result
		method   string
		path     string
		wantBody bool
	}{
		{"create", func(ctx context.Context, c *Client) Result { return c.CreateRecipe(ctx, recipe) }, http.MethodPost, "/", true},
		{"update", func(ctx context.Context, c *Client) Result { return c.UpdateRecipe(ctx, "id 1", recipe) }, http.MethodPut, "/id%201", true},
		{"delete", func(ctx context.Context, c *Client) Result { return c.DeleteRecipe(ctx, "id1") }, http.MethodDelete, "/id1", false},
	}
	for _, tc := range cases {
		srv, got := newTestServer(t, http.StatusOK, `{"message":"done"}`)
		if res := tc.call(context.Background(), newTestClient(t, srv)); !res.OK() {
			t.Fatalf("%s: unexpected failure %v", tc.name, res.Err())
		}
		if got.method != tc.method || got.escapedPath != basePath+tc.path {
			t.Fatalf("%s: got %s %s", tc.name, got.method, got.escapedPath)
		}
		if tc.wantBody && got.body != `{"cuisine":"indian","name":"Dal"}` {
			t.Fatalf("%s: body = %q", tc.name, got.body)
		}
		if !tc.wantBody && got.body != "" {
			t.Fatalf("%s: unexpected body %q", tc.name, got.body)
		}
	}
}

func TestSentinelPayloadIsDistinguishable(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `"failed to load"`)
	res := newTestClient(t, srv).LoadAllRecipes(context.Background())
	if !res.OK() {
		t.Fatalf("literal sentinel payload must still be a success: %v", res.Err())
	}
	if res.Value() != FailedToLoad {
		t.Fatalf("value = %#v", res.Value())
	}
}

func TestNewNormalizesBaseURL(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("base = %q", c.BaseURL())
	}

	c, err = New(Options{BaseURL: " http://example.com/api/recipes/ "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != "http://example.com/api/recipes" {
		t.Fatalf("base = %q", c.BaseURL())
	}

	for _, bad := range []string{"localhost:8080/api", "/api/recipes", "http://h/api?x=1"} {
		if _, err := New(Options{BaseURL: bad}); err == nil {
			t.Fatalf("expected error for base %q", bad)
		}
	}
}
