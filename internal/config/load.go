package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("config: invalid")

var validate = validator.New()

// Load reads path over the defaults, applies CATNAV_* environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (File, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return File{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return File{}, err
	}
	if err := Validate(cfg); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Validate checks struct tags on every section.
func Validate(cfg File) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ValidateEngine checks an engine section on its own.
func ValidateEngine(e Engine) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// #region env
func applyEnv(cfg *File) error {
	cfg.Store.Path = envOr("CATNAV_DB", cfg.Store.Path)
	cfg.Log.Level = envOr("CATNAV_LOG_LEVEL", cfg.Log.Level)
	cfg.Metrics.Addr = envOr("CATNAV_METRICS_ADDR", cfg.Metrics.Addr)
	cfg.Validation.OutputDir = envOr("CATNAV_OUTPUT_DIR", cfg.Validation.OutputDir)

	if v := os.Getenv("CATNAV_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: CATNAV_SEED=%q: %v", ErrInvalid, v, err)
		}
		cfg.Engine.Seed = seed
	}
	if v := os.Getenv("CATNAV_OSCILLATORS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CATNAV_OSCILLATORS=%q: %v", ErrInvalid, v, err)
		}
		cfg.Engine.Oscillators = n
	}
	if v := os.Getenv("CATNAV_COUPLING"); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: CATNAV_COUPLING=%q: %v", ErrInvalid, v, err)
		}
		cfg.Engine.Coupling = k
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env
