package plan

import (
	"fmt"
	"strings"

	"nutriplan/domain"
)

const (
	systemPrompt = "Ты — ассистент, который формирует план питания. " +
		"Всегда отвечай строго в формате JSON, без пояснений и без кода."

	correctivePrompt = "В предыдущем ответе JSON невалиден. " +
		"Пожалуйста, верни строго валидный JSON, без кода и пояснений."

	planFormat = `[
  {
    "day": 1,
    "dishName": "...",
    "ingredients": [
      {"product": "...", "grams": 100}
    ],
    "recipe": "Шаги приготовления..."
  }
]`
)

var goalPrompt = map[domain.Goal]string{
	domain.GoalLoss:     "снижение веса",
	domain.GoalMaintain: "поддержание веса",
	domain.GoalGain:     "набор массы",
}

// BuildMessages assembles the opening conversation for a weekly plan request.
func BuildMessages(t domain.Targets, goal domain.Goal, products []string) []Message {
	goalText, ok := goalPrompt[goal]
	if !ok {
		goalText = string(goal)
	}

	var sb strings.Builder
	sb.WriteString("Составь план питания на 7 дней, учитывая:\n")
	fmt.Fprintf(&sb, "- Калорийность: %.0f ккал в день\n", t.Calories)
	fmt.Fprintf(&sb, "- Б: %.1f г, Ж: %.1f г, У: %.1f г в день\n", t.ProteinGrams, t.FatGrams, t.CarbGrams)
	fmt.Fprintf(&sb, "- Цель: %s\n", goalText)
	sb.WriteString("- Список доступных продуктов (указывай в блюдах только из этого списка):\n  ")
	sb.WriteString(strings.Join(products, ", "))
	sb.WriteString("\n\nФормат ответа: JSON-массив со структурой:\n")
	sb.WriteString(planFormat)
	sb.WriteString("\n\nПоле day — номер дня от 1 до 7. ")
	sb.WriteString("На каждый день 3-4 разных блюда (завтрак, обед, ужин, перекус).\n")
	sb.WriteString("Без дополнительных пояснений — только валидный JSON!")

	return []Message{
		{Role: RoleSystem, Text: systemPrompt},
		{Role: RoleUser, Text: sb.String()},
	}
}

// withCorrection extends the conversation after a reply that failed to parse.
func withCorrection(messages []Message, badReply string) []Message {
	out := make([]Message, 0, len(messages)+2)
	out = append(out, messages...)
	if strings.TrimSpace(badReply) != "" {
		out = append(out, Message{Role: RoleModel, Text: badReply})
	}
	return append(out, Message{Role: RoleUser, Text: correctivePrompt})
}
