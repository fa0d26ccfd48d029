package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// historyRangePattern matches ranges the server understands: 30m, 6h, 7d.
var historyRangePattern = regexp.MustCompile(`^[1-9][0-9]*[smhd]$`)

// FieldError is a single validation failure with a user-facing message.
type FieldError struct {
	Field   string // dotted path, e.g. "poll.roster_interval"
	Tag     string // failed rule, e.g. "url"
	Value   any
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return e.Message
}

// FieldErrors is a collection of validation failures.
type FieldErrors []*FieldError

// Error lists every failure on its own line.
func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, fe := range e {
		if i > 0 {
			sb.WriteString("\n  ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return sb.String()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their yaml names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("history_range", func(fl validator.FieldLevel) bool {
		return historyRangePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the config and returns a CONFIG error listing every problem.
func Validate(cfg *Config) error {
	var fieldErrors FieldErrors

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but ccdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade ccdash or lower the version field")
	}

	if err := validate.Struct(cfg); err != nil {
		var ves validator.ValidationErrors
		if stderrors.As(err, &ves) {
			for _, fe := range ves {
				fieldErrors = append(fieldErrors, &FieldError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		} else {
			return errors.WrapWithCode(err, errors.ErrConfig, "Config validation failed", "")
		}
	}

	if cfg.Thresholds.Warning >= cfg.Thresholds.Critical {
		fieldErrors = append(fieldErrors, &FieldError{
			Field:   "thresholds",
			Tag:     "threshold_order",
			Value:   fmt.Sprintf("warning=%v, critical=%v", cfg.Thresholds.Warning, cfg.Thresholds.Critical),
			Message: fmt.Sprintf("warning (%.1f) must be less than critical (%.1f)", cfg.Thresholds.Warning, cfg.Thresholds.Critical),
		})
	}

	if len(fieldErrors) > 0 {
		return errors.WrapWithCode(fieldErrors, errors.ErrConfig,
			"Config validation failed",
			"Fix the fields above in your config file or CCDASH_* environment")
	}
	return nil
}

// formatFieldName drops the root struct name: "Config.poll.history_range"
// becomes "poll.history_range".
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

func translateError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return fmt.Sprintf("must be a valid URL, got %q", fe.Value())
	case "gt":
		return "must be greater than zero"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "history_range":
		return fmt.Sprintf("must look like 30m, 6h or 7d, got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
