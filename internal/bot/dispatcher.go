package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"nutriplan/internal/utils/mailing"
	"nutriplan/pkg/onboarding"
	"nutriplan/pkg/plan"
	"nutriplan/pkg/user"
)

// Sender is the outgoing half of the chat transport.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, markup interface{}) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

type Config struct {
	WeeklyLimit int
	Workers     int64
}

type Dispatcher struct {
	sender    Sender
	users     user.UserService
	dialogue  onboarding.Dialogue
	plans     plan.PlanService
	mailer    mailing.Mailer
	flood     FloodGuard
	validator *validator.Validate
	logger    *zap.Logger
	cfg       Config

	sem       *semaphore.Weighted
	wg        sync.WaitGroup
	mu        sync.Mutex
	closed    bool
	jobCtx    context.Context
	cancelJob context.CancelFunc
}

func NewDispatcher(
	sender Sender,
	users user.UserService,
	dialogue onboarding.Dialogue,
	plans plan.PlanService,
	mailer mailing.Mailer,
	flood FloodGuard,
	validator *validator.Validate,
	logger *zap.Logger,
	cfg Config,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.WeeklyLimit <= 0 {
		cfg.WeeklyLimit = 5
	}
	jobCtx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:    sender,
		users:     users,
		dialogue:  dialogue,
		plans:     plans,
		mailer:    mailer,
		flood:     flood,
		validator: validator,
		logger:    logger,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(cfg.Workers),
		jobCtx:    jobCtx,
		cancelJob: cancel,
	}
}

func (d *Dispatcher) Handlers() Handlers {
	return Handlers{
		OnCommand:  d.OnCommand,
		OnText:     d.OnText,
		OnCallback: d.OnCallback,
	}
}

// Wait blocks until background jobs have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops new background jobs, waits for running ones until ctx is
// done, then cancels them.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		d.cancelJob()
		<-done
	}
	d.cancelJob()
}

// startJob registers a background job. It reports false once Shutdown has
// begun.
func (d *Dispatcher) startJob() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.wg.Add(1)
	return true
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, r Reply) error {
	return d.sender.Send(ctx, chatID, r.Text, r.Markup)
}

func (d *Dispatcher) say(ctx context.Context, chatID int64, text string) error {
	return d.sender.Send(ctx, chatID, text, nil)
}

// fail reports err to the user and logs anything without a dedicated message.
func (d *Dispatcher) fail(ctx context.Context, chatID, userID int64, op string, err error) error {
	text, known := renderError(err, d.cfg.WeeklyLimit)
	if !known {
		d.logger.Error("telegram handler failed",
			zap.String("op", op),
			zap.Int64("telegram_id", userID),
			zap.Error(err),
		)
	}
	return d.say(ctx, chatID, text)
}

func (d *Dispatcher) recoverUpdate(ctx context.Context, chatID, userID int64, op string) {
	if r := recover(); r != nil {
		d.logger.Error("telegram handler panic",
			zap.String("op", op),
			zap.Int64("telegram_id", userID),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
		)
		if chatID != 0 {
			_ = d.say(ctx, chatID, textInternalError)
		}
	}
}

// allow applies the per-identity flood window. Redis failures let the update
// through.
func (d *Dispatcher) allow(ctx context.Context, chatID, userID int64) bool {
	if d.flood == nil {
		return true
	}
	ok, err := d.flood.Allow(ctx, userID)
	if err != nil {
		d.logger.Warn("flood guard unavailable", zap.Error(err))
		return true
	}
	if !ok {
		_ = d.say(ctx, chatID, textSlowDown)
	}
	return ok
}

func (d *Dispatcher) OnCommand(ctx context.Context, u CommandUpdate) error {
	defer d.recoverUpdate(ctx, u.ChatID, u.UserID, u.Command)
	if !d.allow(ctx, u.ChatID, u.UserID) {
		return nil
	}
	return d.runCommand(ctx, u.ChatID, u.UserID, u.Command, u.Args)
}

func (d *Dispatcher) runCommand(ctx context.Context, chatID, userID int64, command, args string) error {
	switch command {
	case "start":
		return d.reply(ctx, chatID, Reply{Text: textStart, Markup: mainKeyboard()})
	case "help":
		return d.say(ctx, chatID, textHelp)
	case "begin":
		res, err := d.dialogue.Begin(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		return d.reply(ctx, chatID, renderStep(res))
	case "cancel":
		cancelled, err := d.dialogue.Cancel(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		if !cancelled {
			return d.say(ctx, chatID, textNothingToCancel)
		}
		return d.reply(ctx, chatID, Reply{Text: textCancelled, Markup: mainKeyboard()})
	case "calculate":
		targets, err := d.users.CalculateTargets(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		return d.reply(ctx, chatID, Reply{Text: renderTargets(targets), Markup: mainKeyboard()})
	case "profile":
		profile, err := d.users.GetProfile(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		return d.say(ctx, chatID, renderProfile(profile))
	case "get_week_menu":
		return d.generate(ctx, chatID, userID)
	case "week_menu":
		dishes, err := d.plans.WeekDishes(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		if len(dishes) == 0 {
			return d.say(ctx, chatID, textNoWeekPlan+"\nНаберите /get_week_menu, чтобы составить меню.")
		}
		return d.reply(ctx, chatID, renderWeek("Меню на неделю:", dishes))
	case "get_shopping_list":
		items, err := d.plans.ShoppingList(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		return d.say(ctx, chatID, renderShoppingList(items))
	case "today_meal":
		dishes, err := d.plans.TodayDishes(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		return d.reply(ctx, chatID, renderToday(dishes))
	case "send_list":
		return d.sendList(ctx, chatID, userID, args)
	case "api_token":
		token, err := d.users.IssueToken(ctx, userID)
		if err != nil {
			return d.fail(ctx, chatID, userID, command, err)
		}
		return d.say(ctx, chatID, fmt.Sprintf(textTokenIssued, token.ExpiresAt.Format("02.01.2006 15:04"), token.Token))
	default:
		return d.say(ctx, chatID, textUnknown)
	}
}

// generate checks the cheap preconditions inline, acknowledges, and hands the
// slow part to the worker pool.
func (d *Dispatcher) generate(ctx context.Context, chatID, userID int64) error {
	profile, err := d.users.GetProfile(ctx, userID)
	if err != nil {
		return d.fail(ctx, chatID, userID, "get_week_menu", err)
	}
	if profile.Targets == nil {
		return d.say(ctx, chatID, textNeedTargets)
	}
	if !d.startJob() {
		return d.say(ctx, chatID, textShuttingDown)
	}
	if err := d.reply(ctx, chatID, Reply{Text: textGenerating, Markup: tgbotapi.NewRemoveKeyboard(true)}); err != nil {
		d.wg.Done()
		return err
	}

	go func() {
		defer d.wg.Done()
		jobCtx := d.jobCtx
		defer d.recoverUpdate(jobCtx, chatID, userID, "generate")

		if err := d.sem.Acquire(jobCtx, 1); err != nil {
			return
		}
		defer d.sem.Release(1)

		res, err := d.plans.GenerateWeeklyPlan(jobCtx, userID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			_ = d.fail(jobCtx, chatID, userID, "generate", err)
			return
		}
		if err := d.reply(jobCtx, chatID, renderPlanResult(res)); err != nil {
			d.logger.Error("failed to deliver weekly plan", zap.Int64("telegram_id", userID), zap.Error(err))
		}
	}()
	return nil
}

func (d *Dispatcher) sendList(ctx context.Context, chatID, userID int64, args string) error {
	email := strings.TrimSpace(args)
	if d.validator.Var(email, "required,email") != nil {
		return d.say(ctx, chatID, textSendListUsage)
	}
	items, err := d.plans.ShoppingList(ctx, userID)
	if err != nil {
		return d.fail(ctx, chatID, userID, "send_list", err)
	}
	if len(items) == 0 {
		return d.say(ctx, chatID, textNoWeekPlan)
	}
	if !d.startJob() {
		return d.say(ctx, chatID, textShuttingDown)
	}

	go func() {
		defer d.wg.Done()
		jobCtx := d.jobCtx
		defer d.recoverUpdate(jobCtx, chatID, userID, "send_list")

		if err := d.mailer.SendMail(email, "Список покупок на неделю", renderShoppingListHTML(items)); err != nil {
			d.logger.Error("failed to send shopping list", zap.Int64("telegram_id", userID), zap.Error(err))
			_ = d.say(jobCtx, chatID, textSendListFailed)
			return
		}
		_ = d.say(jobCtx, chatID, fmt.Sprintf(textSendListDone, email))
	}()
	return nil
}

var buttonCommands = map[string]string{
	buttonWeekMenu:  "week_menu",
	buttonToday:     "today_meal",
	buttonShopping:  "get_shopping_list",
	buttonCalculate: "calculate",
}

func (d *Dispatcher) OnText(ctx context.Context, u TextUpdate) error {
	defer d.recoverUpdate(ctx, u.ChatID, u.UserID, "text")
	if !d.allow(ctx, u.ChatID, u.UserID) {
		return nil
	}

	active, err := d.dialogue.Active(ctx, u.UserID)
	if err != nil {
		return d.fail(ctx, u.ChatID, u.UserID, "text", err)
	}
	if active {
		res, err := d.dialogue.Answer(ctx, u.UserID, u.Text)
		if err != nil {
			return d.fail(ctx, u.ChatID, u.UserID, "onboarding", err)
		}
		return d.reply(ctx, u.ChatID, renderStep(res))
	}

	if command, ok := buttonCommands[u.Text]; ok {
		return d.runCommand(ctx, u.ChatID, u.UserID, command, "")
	}
	return d.say(ctx, u.ChatID, textUnknown)
}

func (d *Dispatcher) OnCallback(ctx context.Context, u CallbackUpdate) error {
	defer d.recoverUpdate(ctx, u.ChatID, u.UserID, "callback")
	if err := d.sender.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
		d.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if !strings.HasPrefix(u.Data, dishCallbackPrefix) {
		return nil
	}

	id, err := parseDishCallback(u.Data)
	if err != nil {
		return d.fail(ctx, u.ChatID, u.UserID, "show_dish", err)
	}
	dish, err := d.plans.DishDetail(ctx, u.UserID, id)
	if err != nil {
		return d.fail(ctx, u.ChatID, u.UserID, "show_dish", err)
	}
	return d.say(ctx, u.ChatID, renderDish(dish))
}
