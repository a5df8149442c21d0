package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Auth       Auth       `envPrefix:"AUTH_"`
	Redis      Redis      `envPrefix:"REDIS_"`
	Paystack   Paystack   `envPrefix:"PAYSTACK_"`
	RateLimit  RateLimit  `envPrefix:"RATE_LIMIT_"`
	Reconciler Reconciler `envPrefix:"RECONCILER_"`

	// Key used to decrypt gateway credentials stored in gateway_configs.
	// 32 bytes, hex encoded.
	PaymentEncryptionKey string `env:"PAYMENT_ENCRYPTION_KEY"`
}

type Paystack struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.paystack.co"`

	// Optional seed values; when set, they are encrypted and stored in
	// gateway_configs at startup.
	SecretKey string `env:"SECRET_KEY"`
	PublicKey string `env:"PUBLIC_KEY"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type RateLimit struct {
	Requests      int `env:"REQUESTS" envDefault:"10"`
	WindowMinutes int `env:"WINDOW_MINUTES" envDefault:"15"`
}

type Reconciler struct {
	Enabled         bool `env:"ENABLED" envDefault:"true"`
	IntervalMinutes int  `env:"INTERVAL_MINUTES" envDefault:"10"`
	// Minimum age before a pending payment is re-verified.
	MinAgeMinutes int `env:"MIN_AGE_MINUTES" envDefault:"15"`
	// Pending payments older than this are given up on.
	MaxAgeHours int `env:"MAX_AGE_HOURS" envDefault:"72"`
	BatchSize   int `env:"BATCH_SIZE" envDefault:"50"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
