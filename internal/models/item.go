package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Nutrition is the macro breakdown of one serving as reported by the producer.
type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

// Item is a single priced, nutrition-tagged grocery product.
// Derived metrics (PricePerGram, PricePerServing) are precomputed upstream.
type Item struct {
	ItemID          string    `json:"item_id"`
	Name            string    `json:"name"`
	Store           string    `json:"store"`
	Unit            string    `json:"unit"`
	Price           float64   `json:"price"`
	ServingSizeG    float64   `json:"serving_size_g"`
	Nutrition       Nutrition `json:"nutrition"`
	Category        string    `json:"category"`
	PricePerGram    float64   `json:"price_per_gram"`
	PricePerServing float64   `json:"price_per_serving"`
	LastUpdated     string    `json:"last_updated"`
}

// ItemsByCategory maps a category name to the items in that category.
// It is the document served by GET /api/items.
type ItemsByCategory map[string][]Item

// UnmarshalJSON decodes a Nutrition, requiring all four macros.
func (n *Nutrition) UnmarshalJSON(data []byte) error {
	var out Nutrition
	err := decodeRequired(data, "nutrition", []requiredField{
		{"calories", &out.Calories},
		{"protein_g", &out.ProteinG},
		{"fat_g", &out.FatG},
		{"carbs_g", &out.CarbsG},
	})
	if err != nil {
		return err
	}

	*n = out
	return nil
}

// UnmarshalJSON decodes an Item. Every field is required; unknown keys are ignored.
func (i *Item) UnmarshalJSON(data []byte) error {
	var out Item
	err := decodeRequired(data, "item", []requiredField{
		{"item_id", &out.ItemID},
		{"name", &out.Name},
		{"store", &out.Store},
		{"unit", &out.Unit},
		{"price", &out.Price},
		{"serving_size_g", &out.ServingSizeG},
		{"nutrition", &out.Nutrition},
		{"category", &out.Category},
		{"price_per_gram", &out.PricePerGram},
		{"price_per_serving", &out.PricePerServing},
		{"last_updated", &out.LastUpdated},
	})
	if err != nil {
		return err
	}

	*i = out
	return nil
}

// UnmarshalJSON decodes the category map. A null group is rejected so that
// every category in the document serializes back as an array.
func (c *ItemsByCategory) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("catalog document is null")
	}

	out := make(ItemsByCategory, len(raw))
	for category, group := range raw {
		if string(group) == "null" {
			return fmt.Errorf("category %q: items must be an array, got null", category)
		}
		var items []Item
		if err := json.Unmarshal(group, &items); err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
		if items == nil {
			items = []Item{}
		}
		out[category] = items
	}

	*c = out
	return nil
}

// Categories returns the category names in sorted order.
func (c ItemsByCategory) Categories() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the catalog.
func (c ItemsByCategory) Clone() ItemsByCategory {
	if c == nil {
		return nil
	}
	out := make(ItemsByCategory, len(c))
	for name, items := range c {
		cp := make([]Item, len(items))
		copy(cp, items)
		out[name] = cp
	}
	return out
}

// ItemCount returns the total number of items across all categories.
func (c ItemsByCategory) ItemCount() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}
