package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"nutriplan/domain"
)

// cleanResponse strips markdown fences and any prose around the outermost
// JSON array.
func cleanResponse(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || start > end {
		return text
	}
	return text[start : end+1]
}

// ParsePlan decodes a generator reply into day entries. Anything that is not
// a non-empty array of well-formed entries is reported as ErrMalformedPlan.
func ParsePlan(raw string, validate *validator.Validate) ([]domain.GeneratedDay, error) {
	text := cleanResponse(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedPlan)
	}

	var days []domain.GeneratedDay
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&days); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPlan, err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no entries", domain.ErrMalformedPlan)
	}

	for i := range days {
		if err := validate.Struct(days[i]); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrMalformedPlan, i, err)
		}
		if strings.TrimSpace(days[i].DishName) == "" {
			days[i].DishName = domain.DefaultDishName
		}
		if strings.TrimSpace(days[i].Recipe) == "" {
			days[i].Recipe = domain.DefaultDishRecipe
		}
	}
	return days, nil
}
