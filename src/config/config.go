package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup and passed by reference into every
// component. Nothing mutates it afterwards.
type Config struct {
	APIKey    string `envconfig:"MEXC_API_KEY"`
	APISecret string `envconfig:"MEXC_API_SECRET"`

	UseTestnet bool `envconfig:"USE_TESTNET" default:"false"`

	RiskRatio       float64 `envconfig:"RISK_RATIO" default:"1.0"`
	DefaultLeverage int     `envconfig:"LEVERAGE" default:"25"`
	MarginMode      string  `envconfig:"MARGIN_MODE" default:"isolated"`

	Port string `envconfig:"PORT" default:"5000"`

	// AsyncExecution makes /webhook acknowledge immediately and run the
	// order flow on a background worker. Process-wide, never per-request.
	AsyncExecution bool `envconfig:"ASYNC_EXECUTION" default:"false"`
	QueueSize      int  `envconfig:"QUEUE_SIZE" default:"64"`
	WorkerCount    int  `envconfig:"WORKER_COUNT" default:"1"`

	ReadTimeout  time.Duration `envconfig:"VENUE_READ_TIMEOUT" default:"15s"`
	OrderTimeout time.Duration `envconfig:"VENUE_ORDER_TIMEOUT" default:"30s"`

	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
}

const (
	liveBaseURL    = "https://contract.mexc.com"
	testnetBaseURL = "https://contract.testnet.mexc.com"
	spotBaseURL    = "https://api.mexc.com"
)

func GetConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("error processing env config: %w", err)
	}

	if config.APIKey == "" || config.APISecret == "" {
		return nil, errors.New("MEXC_API_KEY or MEXC_API_SECRET not set")
	}
	if config.RiskRatio <= 0 {
		config.RiskRatio = 1.0
	}
	if config.DefaultLeverage <= 0 {
		config.DefaultLeverage = 25
	}

	return &config, nil
}

// ContractBaseURL returns the futures REST base for the configured mode.
func (c *Config) ContractBaseURL() string {
	if c.UseTestnet {
		return testnetBaseURL
	}
	return liveBaseURL
}

// SpotBaseURL returns the public spot REST base, used only for the
// spot side of the instrument catalog.
func (c *Config) SpotBaseURL() string {
	return spotBaseURL
}
