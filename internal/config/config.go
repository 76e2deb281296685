package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Payment  PaymentConfig  `mapstructure:"payment"  validate:"required"`
	Email    EmailConfig    `mapstructure:"email"    validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Orders   OrdersConfig   `mapstructure:"orders"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// AllowedOrigin is the frontend origin permitted by CORS.
	AllowedOrigin string `mapstructure:"allowed_origin" validate:"required"`

	// RateLimitRequests requests are allowed per client IP in every
	// RateLimitWindowMinutes window.
	RateLimitRequests      int `mapstructure:"rate_limit_requests"       validate:"required,gt=0"`
	RateLimitWindowMinutes int `mapstructure:"rate_limit_window_minutes" validate:"required,gt=0"`

	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"  validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	IdleTimeoutSeconds  int `mapstructure:"idle_timeout_seconds"  validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// Lifetimes of the one-shot tokens mailed to users.
	VerificationTokenLifetimeHours int `mapstructure:"verification_token_lifetime_hours" validate:"required,gt=0"`
	ResetTokenLifetimeMinutes      int `mapstructure:"reset_token_lifetime_minutes"      validate:"required,gt=0"`

	BCryptCost int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// PaymentConfig holds the payment processor credentials.
type PaymentConfig struct {
	StripeSecretKey     string `mapstructure:"stripe_secret_key"     validate:"required"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret" validate:"required"`
	Currency            string `mapstructure:"currency"              validate:"required,len=3,lowercase"`
}

// EmailConfig configures outbound mail. When Enabled is false messages
// are logged instead of sent.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"     validate:"required_if=Enabled true"`
	SMTPPort     int    `mapstructure:"smtp_port"     validate:"gt=0,lt=65536"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"  validate:"required,email"`
	FromName     string `mapstructure:"from_name"`
	FrontendURL  string `mapstructure:"frontend_url"  validate:"required,url"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size"             validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// OrdersConfig controls order lifecycle policy.
type OrdersConfig struct {
	// StrictTransitions restricts admin status updates to the forward
	// transitions of the order state machine.
	StrictTransitions bool `mapstructure:"strict_transitions"`
}
