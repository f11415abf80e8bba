package domain

import "encoding/json"

// Recipe mirrors the recipe document served by the recipes API.
type Recipe struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Cuisine     string  `json:"cuisine"`
	Rating      float64 `json:"rating"`
	TotalTime   int     `json:"totalTime"`
	Servings    int     `json:"servings"`
	Description string  `json:"description"`

	// Raw holds the payload exactly as the server sent it.
	Raw json.RawMessage `json:"-"`
}
