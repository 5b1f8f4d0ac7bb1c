package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMySQL     = "mysql"
	StoreMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"

	EmailBrevo = "brevo"
	EmailSMTP  = "smtp"

	PayPalSandbox = "sandbox"
	PayPalLive    = "live"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Firebase  FirebaseConfig
	Auth      AuthConfig
	JWT       JWTConfig
	PayPal    PayPalConfig
	Stripe    StripeConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	SiteName       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type StoreConfig struct {
	Driver string
	// UniqueReference makes confirmations insert-if-absent on the provider reference.
	UniqueReference bool
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

type AuthConfig struct {
	Mode              string
	AppCheckEnforce   bool
	StatsRequireAdmin bool
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type PayPalConfig struct {
	Mode         string
	ClientID     string
	ClientSecret string
}

// BaseURL switches between the sandbox and live REST hosts.
func (c PayPalConfig) BaseURL() string {
	if c.Mode == PayPalLive {
		return "https://api-m.paypal.com"
	}
	return "https://api-m.sandbox.paypal.com"
}

func (c PayPalConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type EmailConfig struct {
	Provider    string
	BrevoAPIKey string
	BrevoAPIURL string
	SMTP        SMTPConfig
	FromEmail   string
	FromName    string
	// ContactTo is the only destination of contact-form mail.
	ContactTo     string
	ContactToName string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	TLSMode  string // "", "starttls" or "tls"
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from the environment, after loading a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			SiteName:       getEnv("SITE_NAME", "xsantcastx Portfolio"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"https://xsantcastx.com", "https://xsantcastx-1694b.web.app", "https://xsantcastx-1694b.firebaseapp.com"}),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver:          getEnv("STORE_DRIVER", StoreFirestore),
			UniqueReference: getEnvAsBool("DONATIONS_UNIQUE_REFERENCE", false),
			DSN:             getEnv("DB_DSN", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Auth: AuthConfig{
			Mode:              getEnv("AUTH_MODE", AuthFirebase),
			AppCheckEnforce:   getEnvAsBool("APPCHECK_ENFORCE", false),
			StatsRequireAdmin: getEnvAsBool("STATS_REQUIRE_ADMIN", false),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_SECRET", ""),
			AccessExpiry: getEnvAsDuration("JWT_EXPIRY", time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "xsantcastx"),
		},
		PayPal: PayPalConfig{
			Mode:         getEnv("PAYPAL_MODE", PayPalSandbox),
			ClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
			ClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "https://xsantcastx.com/donate/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "https://xsantcastx.com/donate"),
		},
		Email: EmailConfig{
			Provider:    getEnv("EMAIL_PROVIDER", EmailBrevo),
			BrevoAPIKey: getEnv("BREVO_API_KEY", ""),
			BrevoAPIURL: getEnv("BREVO_API_URL", "https://api.brevo.com/v3"),
			SMTP: SMTPConfig{
				Host:     getEnv("SMTP_HOST", ""),
				Port:     getEnv("SMTP_PORT", "587"),
				User:     getEnv("SMTP_USER", ""),
				Password: getEnv("SMTP_PASSWORD", ""),
				TLSMode:  getEnv("SMTP_TLS_MODE", "starttls"),
			},
			FromEmail:     getEnv("EMAIL_FROM", "noreply@xsantcastx.com"),
			FromName:      getEnv("EMAIL_FROM_NAME", "xsantcastx Portfolio"),
			ContactTo:     getEnv("CONTACT_TO", "xsantcastx@xsantcastx.com"),
			ContactToName: getEnv("CONTACT_TO_NAME", "Santiago Castrillon"),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT", 60),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
	return cfg, nil
}

// Validate checks that the selected drivers have what they need.
// Missing provider credentials are not an error: those endpoints answer "internal" until configured.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreFirestore, StoreMemory:
	case StoreMySQL:
		if c.Store.DSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=%s", StoreMySQL)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Auth.Mode {
	case AuthFirebase:
	case AuthJWT:
		if c.JWT.AccessSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=%s", AuthJWT)
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}

	switch c.PayPal.Mode {
	case PayPalSandbox:
	case PayPalLive:
		if !c.PayPal.Configured() {
			return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required when PAYPAL_MODE=%s", PayPalLive)
		}
	default:
		return fmt.Errorf("unknown PAYPAL_MODE %q", c.PayPal.Mode)
	}

	switch c.Email.Provider {
	case EmailBrevo, EmailSMTP:
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider)
	}
	if c.Email.ContactTo == "" {
		return fmt.Errorf("CONTACT_TO is required")
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// NeedsFirebase reports whether any configured component talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.Store.Driver == StoreFirestore || c.Auth.Mode == AuthFirebase || c.Auth.AppCheckEnforce
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(name string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
