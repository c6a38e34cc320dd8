package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"supplychain/internal/pkg/errs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger backends selectable with LEDGER_BACKEND.
const (
	LedgerBackendNone     = "none"
	LedgerBackendChain    = "chain"
	LedgerBackendPostgres = "postgres"
)

// Config holds the process configuration.
// Tags used:
//   - mapstructure: the environment variable viper reads
//   - default: value used when the variable is unset
//   - required: "true" fails loading when the value is missing
type Config struct {
	HTTPPort  int    `mapstructure:"HTTP_PORT" default:"8080" required:"true"`
	LogLevel  string `mapstructure:"LOG_LEVEL" default:"info"`
	LogFormat string `mapstructure:"LOG_FORMAT" default:"text"`

	// SubscriberBuffer is the number of undelivered events kept per observer.
	SubscriberBuffer int `mapstructure:"SUBSCRIBER_BUFFER" default:"64" required:"true"`

	// HTTPRateLimit is requests per second per client IP; 0 disables limiting.
	HTTPRateLimit float64 `mapstructure:"HTTP_RATE_LIMIT" default:"0"`

	Tracking  TrackingConfig  `mapstructure:",squash"`
	Ledger    LedgerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Directory DirectoryConfig `mapstructure:",squash"`
}

type TrackingConfig struct {
	TickPeriod       time.Duration `mapstructure:"TRACKING_TICK_PERIOD" default:"1s"`
	TotalSteps       int           `mapstructure:"TRACKING_TOTAL_STEPS" default:"10"`
	PaymentDelay     time.Duration `mapstructure:"PAYMENT_DELAY" default:"3s"`
	Autostart        bool          `mapstructure:"AUTOSTART_SCHEDULER" default:"true"`
	DefaultOriginLat float64       `mapstructure:"DEFAULT_ORIGIN_LAT" default:"51.9244"`
	DefaultOriginLng float64       `mapstructure:"DEFAULT_ORIGIN_LNG" default:"4.4777"`
}

type LedgerConfig struct {
	Backend    string        `mapstructure:"LEDGER_BACKEND" default:"chain"`
	Timeout    time.Duration `mapstructure:"LEDGER_TIMEOUT" default:"2s"`
	QueueSize  int           `mapstructure:"LEDGER_QUEUE_SIZE" default:"256"`
	MaxRetries uint64        `mapstructure:"LEDGER_MAX_RETRIES" default:"3"`
}

// DatabaseConfig is only read when the postgres ledger backend is selected.
type DatabaseConfig struct {
	Host     string `mapstructure:"DB_HOST" default:"localhost"`
	Port     string `mapstructure:"DB_PORT" default:"5432"`
	User     string `mapstructure:"DB_USER" default:"postgres"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME" default:"supplychain"`
	SSLMode  string `mapstructure:"DB_SSLMODE" default:"disable"`
}

type DirectoryConfig struct {
	// RedisURL enables the Redis party directory when set.
	RedisURL string `mapstructure:"REDIS_URL"`
	// PartyLocations seeds the static directory, "id=lat:lng,...".
	PartyLocations string `mapstructure:"PARTY_LOCATIONS"`
}

// LoadConfig reads dir/.env into the environment when the file exists and
// then decodes the environment into a Config. Variables already set in the
// environment win over the file.
func LoadConfig(dir string) (Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	var config Config
	if err := processTags(v, &config); err != nil {
		return Config{}, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks values that have a closed set of options or a lower bound.
func (c Config) Validate() error {
	var errList []error

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL",
			fmt.Errorf("%q is not one of debug, info, warn, error", c.LogLevel)))
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.LogFormat)) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LOG_FORMAT",
			fmt.Errorf("%q is not one of json, text", c.LogFormat)))
	}
	if !slices.Contains([]string{LedgerBackendNone, LedgerBackendChain, LedgerBackendPostgres}, c.Ledger.Backend) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LEDGER_BACKEND",
			fmt.Errorf("%q is not one of none, chain, postgres", c.Ledger.Backend)))
	}
	if c.Tracking.TickPeriod <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("TRACKING_TICK_PERIOD"))
	}
	if c.Tracking.TotalSteps < 1 {
		errList = append(errList, errs.NewValueIsInvalidError("TRACKING_TOTAL_STEPS"))
	}
	if c.Ledger.Backend == LedgerBackendPostgres && c.Database.Password == "" {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("DB_PASSWORD",
			errors.New("the postgres ledger backend needs database credentials")))
	}
	if c.Tracking.PaymentDelay < 0 {
		errList = append(errList, errs.NewValueIsInvalidError("PAYMENT_DELAY"))
	}
	if c.HTTPRateLimit < 0 {
		errList = append(errList, errs.NewValueIsInvalidError("HTTP_RATE_LIMIT"))
	}

	return errors.Join(errList...)
}

// processTags binds every tagged field to its environment variable and
// registers its default.
func processTags(v *viper.Viper, config any) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks that fields tagged required are not zero.
func validateRequired(config any) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && val.Field(i).IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}
