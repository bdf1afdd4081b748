package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// Redis configuration (onboarding sessions)
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`
	RedisDB       string `yaml:"REDIS_DB"`
	SessionTTL    string `yaml:"SESSION_TTL"`

	// Telegram configuration
	TelegramBotToken      string `yaml:"TELEGRAM_BOT_TOKEN"`
	WebhookURL            string `yaml:"WEBHOOK_URL"`
	TelegramWebhookSecret string `yaml:"TELEGRAM_WEBHOOK_SECRET"`

	// HTTP server
	Port     string `yaml:"PORT"`
	LogLevel string `yaml:"LOG_LEVEL"`
	LogFile  string `yaml:"LOG_FILE"`
	Timezone string `yaml:"TIMEZONE"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration (generated plan archive)
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Gemini API configuration
	GeminiAPIKey  string `yaml:"GEMINI_API_KEY"`
	GeminiModel   string `yaml:"GEMINI_MODEL"`
	GeminiTimeout string `yaml:"GEMINI_TIMEOUT"`

	// Plan generation policy
	WeeklyPlanLimit string `yaml:"WEEKLY_PLAN_LIMIT"`
	PlanMaxAttempts string `yaml:"PLAN_MAX_ATTEMPTS"`
	PlanWorkers     string `yaml:"PLAN_WORKERS"`
}

var config Config

var defaults = map[string]string{
	"DB_PORT":           "5432",
	"REDIS_ADDR":        "localhost:6379",
	"REDIS_DB":          "0",
	"SESSION_TTL":       "30m",
	"PORT":              "8080",
	"LOG_LEVEL":         "info",
	"LOG_FILE":          "./logs/app.log",
	"TIMEZONE":          "Europe/Moscow",
	"GEMINI_MODEL":      "gemini-1.5-flash",
	"GEMINI_TIMEOUT":    "60s",
	"WEEKLY_PLAN_LIMIT": "5",
	"PLAN_MAX_ATTEMPTS": "3",
	"PLAN_WORKERS":      "4",
	"SMTP_PORT":         "587",
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// LoadConfig reads config.yaml (or CONFIG_PATH). A missing file is not an
// error: every key can also come from the environment.
func LoadConfig() {
	file, err := os.ReadFile(configPath())
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}
}

func fromFile(key string) string {
	switch key {
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "REDIS_ADDR":
		return config.RedisAddr
	case "REDIS_PASSWORD":
		return config.RedisPassword
	case "REDIS_DB":
		return config.RedisDB
	case "SESSION_TTL":
		return config.SessionTTL
	case "TELEGRAM_BOT_TOKEN":
		return config.TelegramBotToken
	case "WEBHOOK_URL":
		return config.WebhookURL
	case "TELEGRAM_WEBHOOK_SECRET":
		return config.TelegramWebhookSecret
	case "PORT":
		return config.Port
	case "LOG_LEVEL":
		return config.LogLevel
	case "LOG_FILE":
		return config.LogFile
	case "TIMEZONE":
		return config.Timezone
	case "JWT_SECRET":
		return config.JWTSecret
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return config.GeminiModel
	case "GEMINI_TIMEOUT":
		return config.GeminiTimeout
	case "WEEKLY_PLAN_LIMIT":
		return config.WeeklyPlanLimit
	case "PLAN_MAX_ATTEMPTS":
		return config.PlanMaxAttempts
	case "PLAN_WORKERS":
		return config.PlanWorkers
	default:
		return ""
	}
}

// GetConfig resolves a key from the environment first, then config.yaml,
// then the built-in defaults.
func GetConfig(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fromFile(key)); v != "" {
		return v
	}
	return defaults[key]
}

func GetConfigInt(key string) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		d, _ := strconv.Atoi(defaults[key])
		return d
	}
	return v
}

func GetConfigDuration(key string) time.Duration {
	v, err := time.ParseDuration(GetConfig(key))
	if err != nil {
		d, _ := time.ParseDuration(defaults[key])
		return d
	}
	return v
}

// Location returns the configured TIMEZONE, falling back to UTC.
func Location() *time.Location {
	loc, err := time.LoadLocation(GetConfig("TIMEZONE"))
	if err != nil {
		return time.UTC
	}
	return loc
}
