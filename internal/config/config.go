package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ticketpulse/adwallet/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Auth       AuthConfig       `validate:"required"`
	Stripe     StripeConfig     `validate:"required"`
	Breaker    BreakerConfig    `validate:"required"`
	Wallet     WalletConfig     `validate:"required"`
	Catalog    CatalogConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string `validate:"required"`
	SSLMode                string `validate:"required"`
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

type AuthConfig struct {
	// Secret signs and verifies end-user JWTs on the purchase endpoint
	Secret string `validate:"required"`
	// ServiceAPIKey is the shared credential the ad delivery service presents
	// on the spend endpoint
	ServiceAPIKey string `validate:"required"`
}

type StripeConfig struct {
	SecretKey     string `validate:"required"`
	WebhookSecret string `validate:"required"`
	SuccessURL    string
	CancelURL     string
}

type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int `validate:"required,gt=0"`
	// CooldownSeconds is how long the circuit stays open before allowing a probe
	CooldownSeconds int `validate:"required,gt=0"`
}

type WalletConfig struct {
	// MinCustomCredits is the floor for custom credit purchases
	MinCustomCredits int64 `validate:"required,gt=0"`
	// CustomCreditPriceCents is the price of one custom-purchased credit in cents
	CustomCreditPriceCents int64 `validate:"required,gt=0"`
	// AutoReloadBucketMinutes sizes the time bucket used to derive auto-reload
	// idempotency keys so repeated low-balance triggers collapse to one top-up
	AutoReloadBucketMinutes int `validate:"required,gt=0"`
}

// CatalogConfig seeds the credit package catalog and promo codes. Catalog
// management is out of scope; the engine only needs to resolve and apply them.
type CatalogConfig struct {
	Packages []PackageConfig
	Promos   []PromoConfig
}

type PackageConfig struct {
	ID            string
	Credits       int64
	PriceUSDCents int64
}

type PromoConfig struct {
	Code           string
	Type           types.PromoType
	PercentOff     int64
	AmountOffCents int64
	BonusCredits   int64
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/adwallet")

	v.SetEnvPrefix("ADWALLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("breaker.failurethreshold", 5)
	v.SetDefault("breaker.cooldownseconds", 30)
	v.SetDefault("wallet.mincustomcredits", 1000)
	v.SetDefault("wallet.customcreditpricecents", 1)
	v.SetDefault("wallet.autoreloadbucketminutes", 60)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and the service test suites.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Auth: AuthConfig{
			Secret:        "test-secret",
			ServiceAPIKey: "test-service-key",
		},
		Stripe: StripeConfig{
			SecretKey:     "sk_test",
			WebhookSecret: "whsec_test",
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			CooldownSeconds:  30,
		},
		Wallet: WalletConfig{
			MinCustomCredits:        1000,
			CustomCreditPriceCents:  1,
			AutoReloadBucketMinutes: 60,
		},
	}
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}
