package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/yourusername/choice-sim/internal/logit"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

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

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	for i := range cfg.Scenarios {
		if err := validateScenario(cfg, &cfg.Scenarios[i]); err != nil {
			return err
		}
	}

	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when persistence is enabled")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Schedule.Enabled {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule cron expression %q: %w", cfg.Schedule.Cron, err)
		}
		for _, name := range cfg.Schedule.Scenarios {
			if _, err := cfg.Scenario(name); err != nil {
				return fmt.Errorf("schedule references %w", err)
			}
		}
	}

	if cfg.DataSources.Stream.Enabled {
		if cfg.DataSources.Stream.URL == "" {
			return fmt.Errorf("stream source requires a url")
		}
		if _, err := cfg.Scenario(cfg.DataSources.Stream.Scenario); err != nil {
			return fmt.Errorf("stream source references %w", err)
		}
	}

	return nil
}

// validateScenario checks that a scenario is internally consistent: exactly
// one data origin, parseable utility formulas, and no references to names the
// scenario does not define.
func validateScenario(cfg *Config, scenario *ScenarioConfig) error {
	hasInline := len(scenario.Data) > 0
	hasSource := scenario.Source != ""
	if hasInline == hasSource {
		return fmt.Errorf("scenario %q must define exactly one of inline data or a source reference", scenario.Name)
	}

	if hasSource && !sourceExists(cfg, scenario.Source) {
		return fmt.Errorf("scenario %q references unknown data source %q", scenario.Name, scenario.Source)
	}

	for i, formula := range scenario.Utilities {
		utility, err := logit.ParseUtility(formula)
		if err != nil {
			return fmt.Errorf("scenario %q alternative %d: %w", scenario.Name, i+1, err)
		}
		coefficients, variables := utility.References()
		for _, name := range coefficients {
			if _, ok := scenario.Coefficients[name]; !ok {
				return fmt.Errorf("scenario %q alternative %d references undefined coefficient %q", scenario.Name, i+1, name)
			}
		}
		// Variable references can only be checked statically for inline data;
		// sourced observations are validated at evaluation time.
		if hasInline {
			for _, name := range variables {
				if _, ok := scenario.Data[name]; !ok {
					return fmt.Errorf("scenario %q alternative %d references undefined variable %q", scenario.Name, i+1, name)
				}
			}
		}
	}

	return nil
}

func sourceExists(cfg *Config, name string) bool {
	for _, source := range cfg.DataSources.CSV {
		if source.Name == name {
			return true
		}
	}
	for _, source := range cfg.DataSources.HTTP {
		if source.Name == name {
			return true
		}
	}
	return false
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		if errMsg != "" {
			errMsg += "; "
		}
		errMsg += fmt.Sprintf("field %s failed on %q", fieldError.StructNamespace(), fieldError.Tag())
	}
	return fmt.Errorf("configuration validation failed: %s", errMsg)
}
