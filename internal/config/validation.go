// Package config provides configuration management for the JOSAA preference
// service.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with service-specific rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator with the custom rules registered
func NewValidator() (*CustomValidator, error) {
	v := validator.New()

	rules := map[string]validator.Func{
		"environment": validateEnvironment,
		"loglevel":    validateLogLevel,
		"selection":   validateSelection,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}

	return &CustomValidator{validator: v}, nil
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv, err := NewValidator()
	if err != nil {
		return err
	}
	return cv.Validate(cfg)
}

// Validate validates the configuration using the registered rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSelection(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "full_scan", "windowed":
		return true
	default:
		return false
	}
}

// validateCrossField enforces constraints spanning multiple fields
func validateCrossField(cfg *Config) error {
	if cfg.Dataset.Path == "" && cfg.Dataset.URL == "" {
		return fmt.Errorf("dataset: either path or url must be configured")
	}
	if cfg.Dataset.RefreshSchedule != "" && cfg.Dataset.URL == "" && cfg.Dataset.Path == "" {
		return fmt.Errorf("dataset: refresh_schedule requires a configured source")
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf(" field %s failed rule %q;", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%s", msg)
}
