package recipeapi

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samvad-hq/recipe-client/internal/domain"
)

// Recipes decodes a successful list payload into recipes. Each recipe keeps its raw
// JSON and gets an ID from the server identifier, falling back to a content hash.
func Recipes(r Result) ([]domain.Recipe, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(r.Raw(), &items); err != nil {
		return nil, fmt.Errorf("recipes payload is not a JSON array: %w", err)
	}

	out := make([]domain.Recipe, 0, len(items))
	for i, raw := range items {
		recipe, err := decodeRecipe(raw)
		if err != nil {
			return nil, fmt.Errorf("recipe[%d]: %w", i, err)
		}
		out = append(out, recipe)
	}
	return out, nil
}

func decodeRecipe(raw json.RawMessage) (domain.Recipe, error) {
	var wire struct {
		Name        string          `json:"name"`
		Cuisine     string          `json:"cuisine"`
		Rating      float64         `json:"rating"`
		TotalTime   int             `json:"totalTime"`
		Servings    int             `json:"servings"`
		Description string          `json:"description"`
		ID          json.RawMessage `json:"id"`
		MongoID     json.RawMessage `json:"_id"`
		RecipeID    json.RawMessage `json:"recipeId"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Recipe{}, err
	}

	recipe := domain.Recipe{
		ID:          firstID(wire.ID, wire.MongoID, wire.RecipeID),
		Name:        wire.Name,
		Cuisine:     wire.Cuisine,
		Rating:      wire.Rating,
		TotalTime:   wire.TotalTime,
		Servings:    wire.Servings,
		Description: wire.Description,
		Raw:         append(json.RawMessage(nil), raw...),
	}
	if recipe.ID == "" {
		recipe.ID = hashPayload(raw)
	}
	return recipe, nil
}

// firstID returns the first identifier that decodes as a string, a number, or an
// extended-JSON object id ({"$oid": "..."}).
func firstID(candidates ...json.RawMessage) string {
	for _, c := range candidates {
		if len(c) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(c, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(c, &n); err == nil {
			return n.String()
		}
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(c, &oid); err == nil && strings.TrimSpace(oid.OID) != "" {
			return strings.TrimSpace(oid.OID)
		}
	}
	return ""
}

func hashPayload(raw []byte) string {
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
