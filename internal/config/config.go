package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Env  string `validate:"oneof=development production"`
	Port string `validate:"required,numeric"`

	MongoURI string `validate:"required"`
	MongoDB  string

	JWTSecret string        `validate:"required"`
	JWTTTL    time.Duration `validate:"gt=0"`

	SMTPHost     string
	SMTPPort     int `validate:"min=1,max=65535"`
	SMTPUser     string
	SMTPPass     string
	MailFallback bool
	// MailTestAccountURL provisions disposable mailboxes for the fallback transport.
	MailTestAccountURL string `validate:"omitempty,url"`

	PriceListPath       string `validate:"required"`
	PriceAttachmentPath string `validate:"required"`
	PriceRequestMode    string `validate:"oneof=eager confirmed"`

	CORSAllowedOrigins []string
	CORSPreviewPattern string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	PublicDir      string

	OTLPEndpoint string
}

// SMTPConfigured reports whether credentials for the primary mail transport exist.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

var validate = validator.New()

// Load reads the environment (and a .env file, if any) and validates the
// whole configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadPartial is Load for tools that only need some of the settings; only
// the named Config fields are validated.
func LoadPartial(fields ...string) (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validate.StructPartial(cfg, fields...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func read() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	smtpPort, err := getenvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getenv("JWT_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("config: JWT_TTL: %w", err)
	}

	return &Config{
		Env:                 getenv("ENV", "production"),
		Port:                getenv("PORT", "5000"),
		MongoURI:            getenv("MONGODB_URI", ""),
		MongoDB:             getenv("MONGODB_DB", "test"),
		JWTSecret:           getenv("JWT_SECRET", ""),
		JWTTTL:              ttl,
		SMTPHost:            getenv("SMTP_HOST", ""),
		SMTPPort:            smtpPort,
		SMTPUser:            getenv("SMTP_USER", ""),
		SMTPPass:            getenv("SMTP_PASS", ""),
		MailFallback:        getenv("MAIL_FALLBACK", "true") == "true",
		MailTestAccountURL:  getenv("MAIL_TEST_ACCOUNT_URL", "https://api.nodemailer.com/user"),
		PriceListPath:       getenv("PRICE_LIST_PATH", "price.xlsx"),
		PriceAttachmentPath: getenv("PRICE_ATTACHMENT_PATH", "price.xlsx"),
		PriceRequestMode:    getenv("PRICE_REQUEST_STATUS_MODE", "eager"),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,https://vostok-trade-frontend.vercel.app")),
		CORSPreviewPattern: getenv("CORS_PREVIEW_PATTERN", `^https://vostok-trade-frontend-.*\.vercel\.app$`),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		MinioEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:        getenv("MINIO_BUCKET", "price-sheets"),
		MinioUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		PublicDir:          getenv("PUBLIC_DIR", "public"),
		OTLPEndpoint:       getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
