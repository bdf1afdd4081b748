package plan

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"nutriplan/domain"
)

const validPlan = `[
  {"day": 1, "dishName": "Рисовая каша", "ingredients": [{"product": "Рис", "grams": 100}, {"product": "Молоко", "grams": 200}], "recipe": "Сварить."},
  {"day": 2, "ingredients": [{"product": "Гречка", "grams": 80}]}
]`

func TestParsePlanAcceptsFencedJSON(t *testing.T) {
	days, err := ParsePlan("Вот меню:\n```json\n"+validPlan+"\n```", validator.New())
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(days))
	}
	if *days[0].Day != 1 || days[0].DishName != "Рисовая каша" || len(days[0].Ingredients) != 2 {
		t.Fatalf("unexpected first entry: %+v", days[0])
	}
	if days[1].DishName != domain.DefaultDishName || days[1].Recipe != domain.DefaultDishRecipe {
		t.Fatalf("defaults not applied: %+v", days[1])
	}
}

func TestParsePlanRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"prose":            "Извините, не могу помочь.",
		"empty array":      "[]",
		"truncated":        `[{"day": 1, "ingredients": [`,
		"missing day":      `[{"dishName": "x", "ingredients": [], "recipe": "r"}]`,
		"day out of range": `[{"day": 8, "ingredients": [], "recipe": "r"}]`,
		"no ingredients":   `[{"day": 1, "recipe": "r"}]`,
		"negative grams":   `[{"day": 1, "ingredients": [{"product": "Рис", "grams": -5}]}]`,
		"missing product":  `[{"day": 1, "ingredients": [{"grams": 5}]}]`,
		"object not array": `{"day": 1}`,
	}
	v := validator.New()
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePlan(raw, v); !errors.Is(err, domain.ErrMalformedPlan) {
				t.Fatalf("expected ErrMalformedPlan, got %v", err)
			}
		})
	}
}

func TestParsePlanAllowsZeroGrams(t *testing.T) {
	days, err := ParsePlan(`[{"day": 3, "ingredients": [{"product": "Соль", "grams": 0}], "recipe": "r"}]`, validator.New())
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}
	if *days[0].Ingredients[0].Grams != 0 {
		t.Fatalf("expected zero grams to survive")
	}
}
