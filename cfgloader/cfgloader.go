// Package cfgloader loads and validates YAML configuration files.
//
// Values are read from the given path, environment variables referenced
// as ${VAR} are expanded, defaults from `default` struct tags are
// applied and the result is validated with go-playground/validator.
// A .env file in the working directory is loaded first when present.
package cfgloader

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads, expands, unmarshals, defaults and validates the
// configuration at path into a value of type T. T must be a struct
// type, not a pointer.
func Load[T any](path string) (T, error) {
	var config T

	if reflect.ValueOf(config).Kind() == reflect.Ptr {
		return config, errx.New(
			"config type must not be a pointer",
			errx.WithType(errx.T_Internal),
		)
	}

	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	if err := defaults.Set(&config); err != nil {
		return config, errx.Wrap(err)
	}

	if err := validate(&config); err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	return config, nil
}

// MustLoad is Load, panicking on failure. Intended for application
// startup paths where a bad config must stop the process.
func MustLoad[T any](path string) T {
	config, err := Load[T](path)
	if err != nil {
		panic(err)
	}
	return config
}

func validate(config any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		failed := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			tag := fieldErr.Tag()
			if fieldErr.Param() != "" {
				tag += fmt.Sprintf("=%s", fieldErr.Param())
			}
			failed = append(failed, fmt.Sprintf("%s: %s", fieldErr.Namespace(), tag))
		}
		return errx.New(
			"invalid configuration",
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"fields": strings.Join(failed, ", ")}),
		)
	}

	return errx.Wrap(err)
}
