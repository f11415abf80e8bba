package recipeapi

import (
	"context"
	"net/http"
	"testing"
)

func TestRecipesDecodesIdentifiers(t *testing.T) {
	payload := `[
  {"id":"r1","name":"Pad Thai","cuisine":"thai","rating":4.5,"totalTime":30,"servings":2},
  {"_id":{"$oid":"65a1f0"},"name":"Dal"},
  {"recipeId":7,"name":"Tacos"},
  {"name":"Anonymous"}
]`
	srv, _ := newTestServer(t, http.StatusOK, payload)
	res := newTestClient(t, srv).LoadAllRecipes(context.Background())

	recipes, err := Recipes(res)
	if err != nil {
		t.Fatalf("Recipes: %v", err)
	}
	if len(recipes) != 4 {
		t.Fatalf("expected 4 recipes, got %d", len(recipes))
	}
	if recipes[0].ID != "r1" || recipes[0].Rating != 4.5 || recipes[0].TotalTime != 30 {
		t.Fatalf("unexpected first recipe %#v", recipes[0])
	}
	if recipes[1].ID != "65a1f0" {
		t.Fatalf("oid not extracted: %q", recipes[1].ID)
	}
	if recipes[2].ID != "7" {
		t.Fatalf("numeric id not extracted: %q", recipes[2].ID)
	}
	if len(recipes[3].ID) != 40 {
		t.Fatalf("expected sha1 fallback id, got %q", recipes[3].ID)
	}
	if string(recipes[3].Raw) != `{"name":"Anonymous"}` {
		t.Fatalf("raw not preserved: %s", recipes[3].Raw)
	}
}

func TestRecipesRejectsNonArrayAndFailures(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"name":"single"}`)
	if _, err := Recipes(newTestClient(t, srv).LoadAllRecipes(context.Background())); err == nil {
		t.Fatalf("expected error for object payload")
	}

	srv, _ = newTestServer(t, http.StatusNotFound, ``)
	if _, err := Recipes(newTestClient(t, srv).LoadAllRecipes(context.Background())); err == nil {
		t.Fatalf("expected error for failed result")
	}
}

func TestEncodeComponent(t *testing.T) {
	cases := map[string]string{
		"pasta & cheese": "pasta%20%26%20cheese",
		"crème brûlée":   "cr%C3%A8me%20br%C3%BBl%C3%A9e",
		"a+b":            "a%2Bb",
		"plain":          "plain",
	}
	for in, want := range cases {
		if got := encodeComponent(in); got != want {
			t.Fatalf("encodeComponent(%q) = %q, want %q", in, got, want)
		}
	}
}
