package models

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError collects every consistency problem found in a catalog.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid catalog: " + e.Issues[0]
	}
	return fmt.Sprintf("invalid catalog: %d issues: %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

// Validate checks the invariants the producer is expected to uphold:
// items sit under their own category, numbers are finite and item ids are unique.
// It returns nil or a *ValidationError.
func (c ItemsByCategory) Validate() error {
	var issues []string
	seen := make(map[string]string)

	for _, category := range c.Categories() {
		for idx, item := range c[category] {
			ref := fmt.Sprintf("%s[%d]", category, idx)

			if item.Category != category {
				issues = append(issues, fmt.Sprintf("%s: category %q does not match group %q", ref, item.Category, category))
			}

			for _, f := range item.numericFields() {
				if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
					issues = append(issues, fmt.Sprintf("%s: %s is not finite", ref, f.name))
				}
			}

			if first, dup := seen[item.ItemID]; dup {
				issues = append(issues, fmt.Sprintf("%s: item_id %q already used at %s", ref, item.ItemID, first))
			} else {
				seen[item.ItemID] = ref
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

type numericField struct {
	name  string
	value float64
}

func (i Item) numericFields() []numericField {
	return []numericField{
		{"price", i.Price},
		{"serving_size_g", i.ServingSizeG},
		{"price_per_gram", i.PricePerGram},
		{"price_per_serving", i.PricePerServing},
		{"nutrition.calories", i.Nutrition.Calories},
		{"nutrition.protein_g", i.Nutrition.ProteinG},
		{"nutrition.fat_g", i.Nutrition.FatG},
		{"nutrition.carbs_g", i.Nutrition.CarbsG},
	}
}
