package nutrition

import (
	"fmt"

	"nutriplan/domain"
)

var activityFactor = map[domain.ActivityLevel]float64{
	domain.ActivityLow:    1.2,
	domain.ActivityMedium: 1.55,
	domain.ActivityHigh:   1.725,
}

var goalFactor = map[domain.Goal]float64{
	domain.GoalLoss:     0.8,
	domain.GoalMaintain: 1.0,
	domain.GoalGain:     1.1,
}

const (
	proteinShare = 0.3
	fatShare     = 0.3
	carbShare    = 0.4

	kcalPerGramProtein = 4.0
	kcalPerGramFat     = 9.0
	kcalPerGramCarb    = 4.0
)

// BMR returns the Mifflin–St Jeor basal metabolic rate in kcal/day.
func BMR(age int, gender domain.Gender, weightKg, heightCm float64) (float64, error) {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case domain.GenderMale:
		return base + 5, nil
	case domain.GenderFemale:
		return base - 161, nil
	default:
		return 0, fmt.Errorf("%w: gender %q", domain.ErrInvalidBiometrics, gender)
	}
}

// ComputeTargets maps biometrics to a daily calorie target and a 30/30/40
// protein/fat/carbohydrate split expressed in grams.
func ComputeTargets(age int, gender domain.Gender, weightKg, heightCm float64, activity domain.ActivityLevel, goal domain.Goal) (domain.Targets, error) {
	bmr, err := BMR(age, gender, weightKg, heightCm)
	if err != nil {
		return domain.Targets{}, err
	}
	af, ok := activityFactor[activity]
	if !ok {
		return domain.Targets{}, fmt.Errorf("%w: activity %q", domain.ErrInvalidBiometrics, activity)
	}
	gf, ok := goalFactor[goal]
	if !ok {
		return domain.Targets{}, fmt.Errorf("%w: goal %q", domain.ErrInvalidBiometrics, goal)
	}

	calories := bmr * af * gf
	return domain.Targets{
		Calories:     calories,
		ProteinGrams: calories * proteinShare / kcalPerGramProtein,
		FatGrams:     calories * fatShare / kcalPerGramFat,
		CarbGrams:    calories * carbShare / kcalPerGramCarb,
	}, nil
}

func ComputeFromBiometrics(b domain.Biometrics) (domain.Targets, error) {
	return ComputeTargets(b.Age, b.Gender, b.Weight, b.Height, b.ActivityLevel, b.Goal)
}
