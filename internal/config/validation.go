package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	goversion "github.com/hashicorp/go-version"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// semver_loose accepts the dotted versions scss-lint reports ("0.59.0").
		_ = validate.RegisterValidation("semver_loose", func(fl validator.FieldLevel) bool {
			_, err := goversion.NewVersion(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Validate checks config values for correctness.
// All failures are reported together in a single error.
func (c Config) Validate() error {
	err := configValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("config validation failed: %v", msgs)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.IndexByte(field, '.'); idx >= 0 {
		field = field[idx+1:]
	}
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, fe.Param())
	case "semver_loose":
		return fmt.Sprintf("%s is not a version: %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
