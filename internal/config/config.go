package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adboardhq/adboard/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig `validate:"required"`
	Server       ServerConfig     `validate:"required"`
	Logging      LoggingConfig    `validate:"required"`
	Postgres     PostgresConfig
	Billing      BillingConfig `validate:"required"`
	Cache        CacheConfig
	Notification NotificationConfig
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
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// BillingConfig carries the operator-side billing defaults.
// CompanyGSTStateCode is the company's own jurisdiction code; comparing it
// against a client's code selects the dual-tax vs single-tax presentation.
type BillingConfig struct {
	CompanyGSTStateCode string `mapstructure:"company_gst_state_code" validate:"required"`
	InvoiceDueDays      int    `mapstructure:"invoice_due_days"`
}

type CacheConfig struct {
	Enabled bool
}

type NotificationConfig struct {
	Topic string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/adboard")

	v.SetEnvPrefix("ADBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	v.SetDefault("billing.invoice_due_days", 15)
	v.SetDefault("notification.topic", "invoice_events")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)

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

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			CompanyGSTStateCode: "27",
			InvoiceDueDays:      15,
		},
		Cache:        CacheConfig{Enabled: true},
		Notification: NotificationConfig{Topic: "invoice_events"},
	}
}
