package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutriplan/domain"
	"nutriplan/pkg/onboarding"
)

const (
	dishCallbackPrefix = "show_dish_"

	buttonWeekMenu  = "Меню на неделю"
	buttonToday     = "Меню на сегодня"
	buttonShopping  = "Список покупок"
	buttonCalculate = "Пересчитать калории"

	textStart = "Привет! Я помогу рассчитать вашу норму калорий и составить меню на неделю.\n" +
		"Наберите /begin для начала сбора данных."
	textHelp = "Команды:\n" +
		"/begin - ввести данные о себе\n" +
		"/cancel - прервать ввод данных\n" +
		"/calculate - рассчитать норму калорий и БЖУ\n" +
		"/profile - показать сохранённые данные\n" +
		"/get_week_menu - составить меню на неделю\n" +
		"/week_menu - показать меню на неделю\n" +
		"/today_meal - план на сегодня\n" +
		"/get_shopping_list - список покупок на неделю\n" +
		"/send_list &lt;email&gt; - отправить список покупок на почту\n" +
		"/api_token - получить токен для HTTP API"

	textSaved             = "Данные сохранены. Наберите /calculate для расчёта калорий."
	textCancelled         = "Ввод данных прерван."
	textNothingToCancel   = "Нет активного ввода данных."
	textNeedBegin         = "Сначала заполните данные с помощью команды /begin."
	textNeedProfile       = "Сначала введите данные с помощью /begin или /calculate"
	textNeedTargets       = "Сначала рассчитайте норму калорий и БЖУ, командой /calculate."
	textGenerating        = "Составляю меню на неделю, это может занять до минуты..."
	textInProgress        = "Меню уже составляется, дождитесь ответа."
	textGenerationFailed  = "Не удалось получить меню. Повторите попытку позже."
	textNotSaved          = "Меню не получено или не сохранено. Повторите попытку."
	textWeekReady         = "Сформировано меню на неделю:"
	textNoWeekPlan        = "У вас нет запланированного меню на ближайшие 7 дней."
	textNoTodayPlan       = "На сегодня нет запланированного меню."
	textTodayHeader       = "Вот ваш план на сегодня:"
	textShoppingHeader    = "Список покупок на неделю:"
	textDishNotFound      = "Блюдо не найдено."
	textBadDishID         = "Некорректный идентификатор блюда."
	textNoProducts        = "Список доступных продуктов пуст. Обратитесь к администратору."
	textSendListUsage     = "Укажите адрес: /send_list name@example.com"
	textSendListDone      = "Список покупок отправлен на %s."
	textSendListFailed    = "Не удалось отправить письмо. Попробуйте позже."
	textInternalError     = "Произошла ошибка. Пожалуйста, попробуйте позже."
	textSlowDown          = "Пожалуйста, подождите немного перед следующим запросом."
	textUnknown           = "Не понимаю. Наберите /help для списка команд."
	textTokenIssued       = "Ваш токен для API (действует до %s):\n<code>%s</code>"
	textWeeklyLimitFormat = "Лимит запросов (%d) на неделю исчерпан."
	textShuttingDown      = "Бот перезапускается, повторите запрос через минуту."
)

var stepPrompts = map[domain.OnboardingStep]string{
	domain.StepAge:      "Введите ваш возраст (лет):",
	domain.StepGender:   "Выберите ваш пол:",
	domain.StepWeight:   "Введите ваш вес (кг):",
	domain.StepHeight:   "Введите ваш рост (см):",
	domain.StepActivity: "Выберите уровень активности:",
	domain.StepGoal:     "Выберите цель:",
}

var stepRetries = map[domain.OnboardingStep]string{
	domain.StepAge:      "Возраст должен быть целым числом от 18 до 100. Попробуйте снова.",
	domain.StepGender:   "Выберите из вариантов: Мужской или Женский.",
	domain.StepWeight:   "Вес должен быть числом в диапазоне 30-200 кг.",
	domain.StepHeight:   "Рост должен быть числом в диапазоне 100-250 см.",
	domain.StepActivity: "Выберите из вариантов: Низкий, Средний, Высокий.",
	domain.StepGoal:     "Выберите из вариантов: Сбросить вес, Поддержание веса, Набор массы.",
}

// Reply is one outgoing message. Markup is nil, a reply keyboard, an inline
// keyboard or a keyboard removal.
type Reply struct {
	Text   string
	Markup interface{}
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonWeekMenu),
			tgbotapi.NewKeyboardButton(buttonToday),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonShopping),
			tgbotapi.NewKeyboardButton(buttonCalculate),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func choiceKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(options))
	for _, o := range options {
		row = append(row, tgbotapi.NewKeyboardButton(o))
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func stepMarkup(step domain.OnboardingStep) interface{} {
	if choices := onboarding.Choices(step); len(choices) > 0 {
		return choiceKeyboard(choices)
	}
	return tgbotapi.NewRemoveKeyboard(true)
}

func renderStep(res domain.StepResult) Reply {
	if res.Finished {
		return Reply{Text: textSaved, Markup: mainKeyboard()}
	}
	if !res.Accepted {
		return Reply{Text: stepRetries[res.Step], Markup: stepMarkup(res.Step)}
	}
	return Reply{Text: stepPrompts[res.Step], Markup: stepMarkup(res.Step)}
}

func formatGrams(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64)
}

func renderTargets(t domain.Targets) string {
	return fmt.Sprintf("Ваша дневная норма: %.0f ккал.\nБелки: %.1f г\nЖиры: %.1f г\nУглеводы: %.1f г",
		t.Calories, t.ProteinGrams, t.FatGrams, t.CarbGrams)
}

func renderProfile(p domain.ProfileResponse) string {
	var sb strings.Builder
	sb.WriteString("Ваши данные:\n")
	if b := p.Biometrics; b != nil {
		fmt.Fprintf(&sb, "Возраст: %d\nПол: %s\nВес: %s кг\nРост: %s см\nАктивность: %s\nЦель: %s\n",
			b.Age, onboarding.GenderLabel(b.Gender), formatGrams(b.Weight), formatGrams(b.Height),
			onboarding.ActivityLabel(b.ActivityLevel), onboarding.GoalLabel(b.Goal))
	} else {
		sb.WriteString("Данные не заполнены, наберите /begin.\n")
	}
	if p.Targets != nil {
		sb.WriteString("\n")
		sb.WriteString(renderTargets(*p.Targets))
	} else {
		sb.WriteString("\nНорма не рассчитана, наберите /calculate.")
	}
	return sb.String()
}

func dishButtonLabel(d domain.DishResponse) string {
	name := []rune(d.Name)
	if len(name) > 15 {
		name = name[:15]
	}
	return "Подробнее про " + string(name)
}

func renderWeek(header string, dishes []domain.DishResponse) Reply {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dishes))
	for _, d := range dishes {
		fmt.Fprintf(&sb, "%s: %s\n", d.Date.Format("02.01"), html.EscapeString(d.Name))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(dishButtonLabel(d), dishCallbackPrefix+strconv.FormatUint(uint64(d.ID), 10)),
		))
	}
	return Reply{Text: sb.String(), Markup: tgbotapi.NewInlineKeyboardMarkup(rows...)}
}

func renderToday(dishes []domain.DishResponse) Reply {
	if len(dishes) == 0 {
		return Reply{Text: textNoTodayPlan}
	}
	var sb strings.Builder
	sb.WriteString(textTodayHeader)
	sb.WriteString("\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dishes))
	for _, d := range dishes {
		fmt.Fprintf(&sb, "• %s\n", html.EscapeString(d.Name))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(dishButtonLabel(d), dishCallbackPrefix+strconv.FormatUint(uint64(d.ID), 10)),
		))
	}
	return Reply{Text: sb.String(), Markup: tgbotapi.NewInlineKeyboardMarkup(rows...)}
}

func renderShoppingList(items []domain.ShoppingItem) string {
	if len(items) == 0 {
		return textNoWeekPlan
	}
	var sb strings.Builder
	sb.WriteString(textShoppingHeader)
	sb.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(&sb, "%s: %s г\n", html.EscapeString(it.Product), formatGrams(it.Grams))
	}
	return sb.String()
}

func renderShoppingListHTML(items []domain.ShoppingItem) string {
	var sb strings.Builder
	sb.WriteString("<h2>Список покупок на неделю</h2><ul>")
	for _, it := range items {
		fmt.Fprintf(&sb, "<li>%s: %s г</li>", html.EscapeString(it.Product), formatGrams(it.Grams))
	}
	sb.WriteString("</ul>")
	return sb.String()
}

func renderDish(d domain.DishResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n\n<i>Ингредиенты:</i>\n", html.EscapeString(d.Name))
	for _, ing := range d.Ingredients {
		fmt.Fprintf(&sb, "%s: %s г\n", html.EscapeString(ing.Product), formatGrams(ing.Grams))
	}
	recipe := d.Recipe
	if strings.TrimSpace(recipe) == "" {
		recipe = domain.DefaultDishRecipe
	}
	fmt.Fprintf(&sb, "\n<i>Рецепт:</i>\n%s", html.EscapeString(recipe))
	return sb.String()
}

// renderError maps service errors to user-facing text. ok is false for
// errors that have no dedicated message.
func renderError(err error, weeklyLimit int) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return textNeedProfile, true
	case errors.Is(err, domain.ErrProfileIncomplete):
		return textNeedBegin, true
	case errors.Is(err, domain.ErrTargetsNotSet):
		return textNeedTargets, true
	case errors.Is(err, domain.ErrWeeklyLimitReached):
		return fmt.Sprintf(textWeeklyLimitFormat, weeklyLimit), true
	case errors.Is(err, domain.ErrGenerationInProgress):
		return textInProgress, true
	case errors.Is(err, domain.ErrDishNotFound):
		return textDishNotFound, true
	case errors.Is(err, domain.ErrInvalidDishID):
		return textBadDishID, true
	case errors.Is(err, domain.ErrNoProducts):
		return textNoProducts, true
	default:
		return textInternalError, false
	}
}

func renderPlanResult(res domain.WeeklyPlanResult) Reply {
	switch res.Outcome {
	case domain.OutcomeGenerated:
		return renderWeek(textWeekReady, res.Dishes)
	case domain.OutcomeNotSaved:
		return Reply{Text: textNotSaved, Markup: mainKeyboard()}
	default:
		return Reply{Text: textGenerationFailed, Markup: mainKeyboard()}
	}
}

func parseDishCallback(data string) (uint, error) {
	raw := strings.TrimPrefix(data, dishCallbackPrefix)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidDishID
	}
	return uint(id), nil
}
