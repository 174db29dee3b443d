// Package config provides configuration management for the Injury Edge application.
package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/injury-edge/internal/models"
)

var (
	teamAbbrevPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	seasonPattern     = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("stat_code", validateStatCode)
	v.RegisterValidation("team_abbrev", validateTeamAbbrev)
	v.RegisterValidation("season", validateSeason)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateStatCode validates a stat category code
func validateStatCode(fl validator.FieldLevel) bool {
	return models.IsKnownStat(fl.Field().String())
}

// validateTeamAbbrev validates a three-letter team abbreviation
func validateTeamAbbrev(fl validator.FieldLevel) bool {
	return teamAbbrevPattern.MatchString(fl.Field().String())
}

// validateSeason validates a season string such as 2024-25
func validateSeason(fl validator.FieldLevel) bool {
	return seasonPattern.MatchString(fl.Field().String())
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections: %w", models.ErrInvalidConfig)
	}

	// American odds shorter than three digits do not exist
	if odds := cfg.Ledger.AmericanOdds; odds > -100 && odds < 100 {
		return fmt.Errorf("ledger american_odds must be at or beyond +/-100, got %d: %w", odds, models.ErrInvalidConfig)
	}

	if cfg.IsProduction() {
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full': %w", models.ErrInvalidConfig)
		}
		if cfg.Features.SampleDataEnabled {
			return fmt.Errorf("sample data generation must be disabled in production: %w", models.ErrInvalidConfig)
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "stat_code":
			errMsg += fmt.Sprintf("- Field '%s' must be a known stat code, got '%v'\n", field, value)
		case "team_abbrev":
			errMsg += fmt.Sprintf("- Field '%s' must be a three-letter team abbreviation, got '%v'\n", field, value)
		case "season":
			errMsg += fmt.Sprintf("- Field '%s' must look like 2024-25, got '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("%w:\n%s", models.ErrInvalidConfig, errMsg)
}
