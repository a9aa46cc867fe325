package config

import "time"

// Config collects every tunable of the service. Values are parsed from
// the environment with the GOSHOP prefix, falling back to the defaults
// declared on the tags.
type Config struct {
	Web       Web
	DB        DB
	Auth      Auth
	Session   Session
	Catalog   Catalog
	Cart      Cart
	Stripe    Stripe
	Email     Email
	Invoice   Invoice
	Upload    Upload
	Redis     Redis
	Kafka     Kafka
	Cors      Cors
	RateLimit RateLimit
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:goshop"`
	DisableTLS bool   `conf:"default:true"`
}

type Auth struct {
	// BcryptCost is the work factor applied when hashing passwords.
	BcryptCost     int `conf:"default:12"`
	PasswordMinLen int `conf:"default:5"`
	PasswordMaxLen int `conf:"default:64"`
	// PasswordAlphanumeric restricts passwords to letters and digits.
	PasswordAlphanumeric bool `conf:"default:true"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

type Catalog struct {
	PageSize int `conf:"default:4"`
}

type Cart struct {
	MaxQuantity int `conf:"default:100"`
}

type Stripe struct {
	APISecret string `conf:"mask"`
	Currency  string `conf:"default:usd"`
}

type Email struct {
	Host        string `conf:"default:localhost"`
	Port        string `conf:"default:25"`
	Address     string `conf:"default:shop@localhost"`
	Password    string `conf:"mask"`
	RecoveryURL string `conf:"default:http://localhost:8000/reset"`
	// TokenTimeout bounds the validity of a password-reset token.
	TokenTimeout time.Duration `conf:"default:1h"`
}

type Invoice struct {
	Dir string `conf:"default:data/invoices"`
}

type Upload struct {
	Dir string `conf:"default:images"`
}

type Redis struct {
	Address  string `conf:"default:localhost:6379"`
	CacheTTL time.Duration `conf:"default:30s"`
}

type Kafka struct {
	Brokers string `conf:"default:localhost:9092"`
	Topic   string `conf:"default:shop.orders"`
}

type Cors struct {
	Origin string
}

type RateLimit struct {
	Burst         int     `conf:"default:5"`
	ExpiryMinutes int     `conf:"default:30"`
	RPS           float64 `conf:"default:1"`
}
