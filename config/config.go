package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	Clan     ClanConfig     `envPrefix:"CLAN_"`
	Payment  PaymentConfig  `envPrefix:"PAYMENT_"`
	Referral ReferralConfig `envPrefix:"REFERRAL_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8090"`
	Env          string        `env:"ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DSN" envDefault:"clanbuy:clanbuy@tcp(localhost:3306)/clanbuy?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	AccessSecret string        `env:"ACCESS_SECRET" envDefault:"change-me-in-production"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	Issuer       string        `env:"ISSUER" envDefault:"clanbuy"`
}

type ClanConfig struct {
	// TTL is how long a clan stays WAITING before it expires.
	TTL           time.Duration `env:"TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

type PaymentConfig struct {
	Provider       string        `env:"PROVIDER" envDefault:"stub"` // stub | cardlink
	WebhookSecret  string        `env:"WEBHOOK_SECRET" envDefault:""`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`
	CommissionRate string        `env:"COMMISSION_RATE" envDefault:"0.10"`
	SuccessURL     string        `env:"SUCCESS_URL" envDefault:"https://clanbuy.app/checkout/success"`
	CancelURL      string        `env:"CANCEL_URL" envDefault:"https://clanbuy.app/checkout/cancel"`
	// Cardlink hosted-checkout API
	CardlinkBaseURL string `env:"CARDLINK_BASE_URL" envDefault:"https://api.cardlink.io"`
	CardlinkAPIKey  string `env:"CARDLINK_API_KEY" envDefault:""`
}

type ReferralConfig struct {
	// LinkBase is prefixed to a referral code to build the shareable link.
	LinkBase string `env:"LINK_BASE" envDefault:"https://clanbuy.app/r/"`
}

// CommissionRateDecimal parses the configured commission rate, falling back to
// 10% when the value is malformed.
func (p PaymentConfig) CommissionRateDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(p.CommissionRate)
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromFloat(0.10)
	}
	return d
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
