package domain

import (
	"errors"
	"time"
)

// PlanOutcome tells the caller how a generation run ended when no
// precondition rejected it.
type PlanOutcome int

const (
	OutcomeGenerated PlanOutcome = iota
	OutcomeGenerationFailed
	OutcomeNotSaved
)

func (o PlanOutcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeGenerationFailed:
		return "generation_failed"
	case OutcomeNotSaved:
		return "not_saved"
	default:
		return "unknown"
	}
}

const (
	DefaultDishName   = "Без названия"
	DefaultDishRecipe = "Нет рецепта"
)

var (
	MessageSuccessGeneratePlan  = "weekly plan generated"
	MessageSuccessGetPlan       = "success get plan"
	MessageSuccessGetShopping   = "success get shopping list"
	MessageSuccessGetDish       = "success get dish"
	MessageFailedGeneratePlan   = "failed to generate weekly plan"
	MessageFailedGetPlan        = "failed to get plan"
	MessageFailedGetShopping    = "failed to get shopping list"
	MessageFailedGetDish        = "failed to get dish"
	MessageGenerationInProgress = "weekly plan generation already in progress"

	ErrWeeklyLimitReached   = errors.New("weekly plan request limit reached")
	ErrDishNotFound         = errors.New("dish not found")
	ErrInvalidDishID        = errors.New("invalid dish id")
	ErrGeminiAPIFailed      = errors.New("gemini API processing failed")
	ErrMalformedPlan        = errors.New("generated plan is malformed")
	ErrNoProducts           = errors.New("no products available for plan generation")
	ErrGenerationInProgress = errors.New("generation already in progress")
)

type (
	// GeneratedIngredient and GeneratedDay describe one entry of the JSON
	// array returned by the plan generator.
	GeneratedIngredient struct {
		Product string   `json:"product" validate:"required"`
		Grams   *float64 `json:"grams" validate:"required,gte=0"`
	}

	GeneratedDay struct {
		Day         *int                  `json:"day" validate:"required,min=1,max=7"`
		DishName    string                `json:"dishName"`
		Ingredients []GeneratedIngredient `json:"ingredients" validate:"required,dive"`
		Recipe      string                `json:"recipe"`
	}

	IngredientResponse struct {
		Product string  `json:"product"`
		Grams   float64 `json:"grams"`
	}

	DishResponse struct {
		ID          uint                 `json:"id"`
		Date        time.Time            `json:"date"`
		Name        string               `json:"name"`
		Ingredients []IngredientResponse `json:"ingredients"`
		Recipe      string               `json:"recipe"`
	}

	ShoppingItem struct {
		Product string  `json:"product"`
		Grams   float64 `json:"grams"`
	}

	WeeklyPlanResult struct {
		RunID   string         `json:"run_id"`
		Outcome PlanOutcome    `json:"-"`
		Status  string         `json:"status"`
		Dishes  []DishResponse `json:"dishes"`
	}

	ShoppingListResponse struct {
		Items []ShoppingItem `json:"items"`
	}
)
