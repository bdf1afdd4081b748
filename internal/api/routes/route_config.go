package routes

import (
	"github.com/gofiber/fiber/v2"

	"nutriplan/internal/api/handlers"
	"nutriplan/internal/middleware"
	"nutriplan/pkg/jwt"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	PlanHandler    handlers.PlanHandler
	ProductHandler handlers.ProductHandler
	WebhookHandler handlers.WebhookHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Profile()
	c.Plan()
	c.Products()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	if c.WebhookHandler != nil {
		c.App.Post("/webhook/telegram", c.WebhookHandler.TelegramWebhook)
	}
}

func (c *Config) Profile() {
	profile := c.App.Group("/api/v1/profile", c.Middleware.AuthMiddleware(c.JWTService))
	{
		profile.Get("", c.UserHandler.Me)
		profile.Put("", c.UserHandler.SaveBiometrics)
		profile.Post("/calculate", c.UserHandler.Calculate)
	}
}

func (c *Config) Plan() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	plan := c.App.Group("/api/v1/plan", auth)
	plan.Post("/generate", c.PlanHandler.Generate)
	plan.Get("/today", c.PlanHandler.Today)
	plan.Get("/week", c.PlanHandler.Week)
	plan.Get("/shopping-list", c.PlanHandler.ShoppingList)

	c.App.Get("/api/v1/dishes/:id", auth, c.PlanHandler.DishDetail)
}

func (c *Config) Products() {
	c.App.Get("/api/v1/products", c.Middleware.AuthMiddleware(c.JWTService), c.ProductHandler.GetProducts)
}
