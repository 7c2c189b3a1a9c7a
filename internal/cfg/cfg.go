package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config holds application-specific settings alongside the common
// cfg.Registerable and cfg.Validatable interfaces.
type Config struct {
	DrainSeconds             int
	ShutdownBudgetSeconds    int
	APIPort                  int
	DatabaseURL              string
	RedisURL                 string
	SNSTopicARN              string
	SlackWebhookURL          string
	GeoEndpoint              string
	GeoTimeoutMS             int
	InterestThresholdSeconds int
	StatsLimit               int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for session storage")
	fs.StringVar(&c.RedisURL, "redis-url", "", "Redis connection URL for session storage (used when no database-url is set; empty = in-memory store)")
	fs.StringVar(&c.SNSTopicARN, "sns-topic-arn", "", "SNS topic ARN for email alerts (empty = channel disabled)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for alerts (empty = channel disabled)")
	fs.StringVar(&c.GeoEndpoint, "geo-endpoint", "http://ip-api.com", "IP geolocation fallback endpoint (empty = fallback disabled)")
	fs.IntVar(&c.GeoTimeoutMS, "geo-timeout-ms", 2000, "timeout for the geolocation fallback lookup in milliseconds (100..10000)")
	fs.IntVar(&c.InterestThresholdSeconds, "interest-threshold-seconds", 90, "time-on-page threshold that triggers a high-interest alert (1..86400)")
	fs.IntVar(&c.StatsLimit, "stats-limit", 50, "maximum number of sessions returned by the stats endpoint (1..500)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.GeoTimeoutMS < 100 || c.GeoTimeoutMS > 10000 {
		errs = append(errs, fmt.Errorf("invalid GEO_TIMEOUT_MS %d (must be 100..10000)", c.GeoTimeoutMS))
	}

	if c.InterestThresholdSeconds <= 0 || c.InterestThresholdSeconds > 86400 {
		errs = append(errs, fmt.Errorf("invalid INTEREST_THRESHOLD_SECONDS %d (must be 1..86400)", c.InterestThresholdSeconds))
	}

	if c.StatsLimit <= 0 || c.StatsLimit > 500 {
		errs = append(errs, fmt.Errorf("invalid STATS_LIMIT %d (must be 1..500)", c.StatsLimit))
	}

	// Both storage backends configured is almost certainly a mistake
	if c.DatabaseURL != "" && c.RedisURL != "" {
		errs = append(errs, errors.New("DATABASE_URL and REDIS_URL are mutually exclusive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
