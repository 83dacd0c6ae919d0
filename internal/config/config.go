// Package config loads service configuration from defaults, an optional
// yaml file and MULTIPAY_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Gateways      GatewaysConfig      `mapstructure:"gateways"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type ObservabilityConfig struct {
	LogLevel      string `mapstructure:"log_level"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// GatewaysConfig carries one section per supported gateway. A gateway is
// considered enabled when its credential field is non-empty.
type GatewaysConfig struct {
	CallbackBaseURL string            `mapstructure:"callback_base_url"`
	Idpay           IdpayConfig       `mapstructure:"idpay"`
	Saman           SamanConfig       `mapstructure:"saman"`
	SamanOnline     SamanOnlineConfig `mapstructure:"samanonline"`
	Sepordeh        SepordehConfig    `mapstructure:"sepordeh"`
	Zarinpal        ZarinpalConfig    `mapstructure:"zarinpal"`
}

type IdpayConfig struct {
	APIKey             string `mapstructure:"api_key"`
	Sandbox            bool   `mapstructure:"sandbox"`
	Description        string `mapstructure:"description"`
	APIPurchaseURL     string `mapstructure:"api_purchase_url"`
	APIPaymentURL      string `mapstructure:"api_payment_url"`
	SandboxPaymentURL  string `mapstructure:"sandbox_payment_url"`
	APIVerificationURL string `mapstructure:"api_verification_url"`
}

type SamanConfig struct {
	MerchantID         string `mapstructure:"merchant_id"`
	APIPurchaseURL     string `mapstructure:"api_purchase_url"`
	APIPaymentURL      string `mapstructure:"api_payment_url"`
	APIVerificationURL string `mapstructure:"api_verification_url"`
}

type SamanOnlineConfig struct {
	TerminalID         string `mapstructure:"terminal_id"`
	APIPurchaseURL     string `mapstructure:"api_purchase_url"`
	APIPaymentURL      string `mapstructure:"api_payment_url"`
	APIVerificationURL string `mapstructure:"api_verification_url"`
}

type SepordehConfig struct {
	MerchantID          string `mapstructure:"merchant_id"`
	Mode                string `mapstructure:"mode"`
	Description         string `mapstructure:"description"`
	APIPurchaseURL      string `mapstructure:"api_purchase_url"`
	APIPaymentURL       string `mapstructure:"api_payment_url"`
	APIDirectPaymentURL string `mapstructure:"api_direct_payment_url"`
	APIVerificationURL  string `mapstructure:"api_verification_url"`
}

type ZarinpalConfig struct {
	MerchantID  string `mapstructure:"merchant_id"`
	Mode        string `mapstructure:"mode"`
	Description string `mapstructure:"description"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("MULTIPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/multipay")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Gateways.CallbackBaseURL == "" {
		errs = append(errs, fmt.Errorf("gateways.callback_base_url is required"))
	}
	if m := c.Gateways.Sepordeh.Mode; m != "" && m != "normal" && m != "direct" {
		errs = append(errs, fmt.Errorf("gateways.sepordeh.mode must be normal or direct, got %q", m))
	}
	if m := c.Gateways.Zarinpal.Mode; m != "" && m != "normal" && m != "sandbox" {
		errs = append(errs, fmt.Errorf("gateways.zarinpal.mode must be normal or sandbox, got %q", m))
	}

	return errors.Join(errs...)
}

// CallbackURL builds the per-gateway callback endpoint the payer returns to.
func (c *GatewaysConfig) CallbackURL(gatewayName string) string {
	return strings.TrimSuffix(c.CallbackBaseURL, "/") + "/api/v1/payments/" + gatewayName + "/callback"
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.enable_metrics", true)

	// Gateway endpoint defaults
	v.SetDefault("gateways.callback_base_url", "http://localhost:8080")

	v.SetDefault("gateways.idpay.api_purchase_url", "https://api.idpay.ir/v1.1/payment")
	v.SetDefault("gateways.idpay.api_payment_url", "https://idpay.ir/p/ws/")
	v.SetDefault("gateways.idpay.sandbox_payment_url", "https://idpay.ir/p/ws-sandbox/")
	v.SetDefault("gateways.idpay.api_verification_url", "https://api.idpay.ir/v1.1/payment/verify")

	v.SetDefault("gateways.saman.api_purchase_url", "https://sep.shaparak.ir/payments/initpayment.asmx?wsdl")
	v.SetDefault("gateways.saman.api_payment_url", "https://sep.shaparak.ir/payment.aspx")
	v.SetDefault("gateways.saman.api_verification_url", "https://sep.shaparak.ir/payments/referencepayment.asmx?wsdl")

	v.SetDefault("gateways.samanonline.api_purchase_url", "https://sep.shaparak.ir/onlinepg/onlinepg")
	v.SetDefault("gateways.samanonline.api_payment_url", "https://sep.shaparak.ir/OnlinePG/SendToken")
	v.SetDefault("gateways.samanonline.api_verification_url", "https://sep.shaparak.ir/payments/referencepayment.asmx?wsdl")

	v.SetDefault("gateways.sepordeh.mode", "normal")
	v.SetDefault("gateways.sepordeh.api_purchase_url", "https://sepordeh.com/merchant/invoices/add")
	v.SetDefault("gateways.sepordeh.api_payment_url", "https://sepordeh.com/merchant/invoices/pay/id:")
	v.SetDefault("gateways.sepordeh.api_direct_payment_url", "https://sepordeh.com/merchant/invoices/direct-pay/id:")
	v.SetDefault("gateways.sepordeh.api_verification_url", "https://sepordeh.com/merchant/invoices/verify")

	v.SetDefault("gateways.zarinpal.mode", "normal")

	// Instance ID
	v.SetDefault("instance_id", "multipay-1")
}
