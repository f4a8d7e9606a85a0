package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// HTTP surface
	CORSAllowedOrigins []string
	DevAuthSecret      string
	DevRateLimitRPS    float64
	DevRateLimitBurst  int

	// LLM transport
	LLMProvider         string
	LLMFallbackProvider string
	LLMTimeout          time.Duration
	LLMTemperature      float64
	LLMMaxTokens        int
	LLMBreakerEnabled   bool
	LLMBreakerFailures  int
	LLMBreakerCooldown  time.Duration
	GeminiAPIKey        string
	GeminiBaseModel     string
	TunedModelName      string
	VertexLocation      string
	BedrockModelID      string
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string

	// Reply pipeline
	StrictServiceValidation bool
	UseCannedGreetings      bool
	UseVariants             bool
	VariantPick             string
	StudioName              string
	StudioMapURL            string
	StudioTimezone          string
	BrandStyleKey           string
	BrandStyleTTL           time.Duration

	// WhatsApp Cloud API
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	WhatsAppGraphBaseURL  string

	// Persistence
	ChatLogBackend string
	DatabaseURL    string
	ChatLogTable   string
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool

	// Async processing
	UseMemoryQueue       bool
	ConversationQueueURL string
	WorkerCount          int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Operator notifications
	OperatorPhone       string
	OperatorEmail       string
	NotifyEmailProvider string
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	SESFromEmail        string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		DevAuthSecret:      getEnv("DEV_AUTH_SECRET", ""),
		DevRateLimitRPS:    getEnvAsFloat("DEV_RATE_LIMIT_RPS", 2),
		DevRateLimitBurst:  getEnvAsInt("DEV_RATE_LIMIT_BURST", 10),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", ""))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),
		LLMTemperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 1024),
		LLMBreakerEnabled:   getEnvAsBool("LLM_BREAKER_ENABLED", true),
		LLMBreakerFailures:  getEnvAsInt("LLM_BREAKER_FAILURES", 5),
		LLMBreakerCooldown:  getEnvAsDuration("LLM_BREAKER_COOLDOWN", 30*time.Second),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiBaseModel:     getEnv("GEMINI_BASE_MODEL", "gemini-1.5-flash"),
		TunedModelName:      getEnv("TUNED_MODEL_NAME", ""),
		VertexLocation:      getEnv("VERTEX_LOCATION", "us-central1"),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),

		StrictServiceValidation: getEnvAsBool("STRICT_SERVICE_VALIDATION", false),
		UseCannedGreetings:      getEnvAsBool("USE_CANNED_GREETINGS", true),
		UseVariants:             getEnvAsBool("USE_VARIANTS", true),
		VariantPick:             strings.ToLower(strings.TrimSpace(getEnv("VARIANT_PICK", "first"))),
		StudioName:              getEnv("STUDIO_NAME", "Beauty Blossoms"),
		StudioMapURL:            getEnv("STUDIO_MAP_URL", "https://maps.app.goo.gl/CtavKUYUV3zyvaLU6"),
		StudioTimezone:          getEnv("STUDIO_TIMEZONE", "America/Mexico_City"),
		BrandStyleKey:           getEnv("BRAND_STYLE_KEY", "config:brand_style"),
		BrandStyleTTL:           getEnvAsDuration("BRAND_STYLE_TTL", 60*time.Second),

		WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppGraphBaseURL:  getEnv("WHATSAPP_GRAPH_BASE_URL", "https://graph.facebook.com/v19.0"),

		ChatLogBackend: strings.ToLower(strings.TrimSpace(getEnv("CHATLOG_BACKEND", "log"))),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ChatLogTable:   getEnv("CHATLOG_TABLE", "chat_messages"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),

		UseMemoryQueue:       getEnvAsBool("USE_MEMORY_QUEUE", true),
		ConversationQueueURL: getEnv("CONVERSATION_QUEUE_URL", ""),
		WorkerCount:          getEnvAsInt("WORKER_COUNT", 2),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		OperatorPhone:       getEnv("OPERATOR_PHONE", ""),
		OperatorEmail:       getEnv("OPERATOR_EMAIL", ""),
		NotifyEmailProvider: strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_EMAIL_PROVIDER", "none"))),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Beauty Blossoms Bot"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
