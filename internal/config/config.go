package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Rules    RulesConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
	Migrate  bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RulesConfig holds the tunable thresholds of the validation, anomaly, risk
// and trend components. The defaults reproduce the established heuristics;
// they are configuration, not load-bearing constants.
type RulesConfig struct {
	// PropertyTaxCeiling is the absolute expense_property_tax amount above
	// which validation emits a warning.
	PropertyTaxCeiling float64
	// ZScoreMedium and ZScoreHigh are the outlier thresholds of the anomaly
	// detector, in standard deviations from the historical mean.
	ZScoreMedium float64
	ZScoreHigh   float64
	// ExpenseIncomeRatio is the expenses/income ratio above which the fixed
	// business-rule anomaly fires.
	ExpenseIncomeRatio float64
	// RiskMedium and RiskHigh are the risk-score cut-offs between
	// LOW/MEDIUM and MEDIUM/HIGH.
	RiskMedium float64
	RiskHigh   float64
	// TrendPercent is the absolute percentage change above which a
	// year-over-year field delta counts as a trend.
	TrendPercent float64
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "fiskal")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Rule thresholds
	v.SetDefault("RULE_PROPERTY_TAX_CEILING", 5000.0)
	v.SetDefault("RULE_ZSCORE_MEDIUM", 2.0)
	v.SetDefault("RULE_ZSCORE_HIGH", 3.0)
	v.SetDefault("RULE_EXPENSE_INCOME_RATIO", 1.5)
	v.SetDefault("RULE_RISK_MEDIUM", 20.0)
	v.SetDefault("RULE_RISK_HIGH", 50.0)
	v.SetDefault("RULE_TREND_PERCENT", 10.0)

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Rules: RulesConfig{
			PropertyTaxCeiling: v.GetFloat64("RULE_PROPERTY_TAX_CEILING"),
			ZScoreMedium:       v.GetFloat64("RULE_ZSCORE_MEDIUM"),
			ZScoreHigh:         v.GetFloat64("RULE_ZSCORE_HIGH"),
			ExpenseIncomeRatio: v.GetFloat64("RULE_EXPENSE_INCOME_RATIO"),
			RiskMedium:         v.GetFloat64("RULE_RISK_MEDIUM"),
			RiskHigh:           v.GetFloat64("RULE_RISK_HIGH"),
			TrendPercent:       v.GetFloat64("RULE_TREND_PERCENT"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Validate rule thresholds
	return c.Rules.Validate()
}

// Validate checks that rule thresholds are positive and correctly ordered.
func (r *RulesConfig) Validate() error {
	if r.PropertyTaxCeiling <= 0 {
		return fmt.Errorf("RULE_PROPERTY_TAX_CEILING must be positive")
	}
	if r.ZScoreMedium <= 0 {
		return fmt.Errorf("RULE_ZSCORE_MEDIUM must be positive")
	}
	if r.ZScoreHigh <= r.ZScoreMedium {
		return fmt.Errorf("RULE_ZSCORE_HIGH must be greater than RULE_ZSCORE_MEDIUM")
	}
	if r.ExpenseIncomeRatio <= 0 {
		return fmt.Errorf("RULE_EXPENSE_INCOME_RATIO must be positive")
	}
	if r.RiskMedium <= 0 {
		return fmt.Errorf("RULE_RISK_MEDIUM must be positive")
	}
	if r.RiskHigh <= r.RiskMedium {
		return fmt.Errorf("RULE_RISK_HIGH must be greater than RULE_RISK_MEDIUM")
	}
	if r.TrendPercent <= 0 {
		return fmt.Errorf("RULE_TREND_PERCENT must be positive")
	}
	return nil
}

// DefaultRules returns the rule thresholds with their default values.
// Intended for tests and for callers constructing services directly.
func DefaultRules() RulesConfig {
	return RulesConfig{
		PropertyTaxCeiling: 5000,
		ZScoreMedium:       2,
		ZScoreHigh:         3,
		ExpenseIncomeRatio: 1.5,
		RiskMedium:         20,
		RiskHigh:           50,
		TrendPercent:       10,
	}
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
