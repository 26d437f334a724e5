// Package config defines the file based configuration of the twoview tools.
package config

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/transform"
)

// DefaultThresholdPx is the epipolar distance below which a correspondence supports a model when
// the config does not set one.
const DefaultThresholdPx = 1.0

// A Config describes how correspondences are processed.
type Config struct {
	ConfigFilePath string `json:"-"`

	Estimator   transform.EstimatorConfig `json:"estimator"`
	ThresholdPx float64                   `json:"threshold_px,omitempty"`
	LogLevel    string                    `json:"log_level,omitempty"`
	// Intrinsics are shared by both cameras and only needed to recover poses.
	Intrinsics *transform.PinholeCameraIntrinsics `json:"intrinsics,omitempty"`
}

// SetDefaults fills in every unset field.
func (c *Config) SetDefaults() {
	c.Estimator.SetDefaults()
	if c.ThresholdPx == 0 {
		c.ThresholdPx = DefaultThresholdPx
	}
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() (logging.Level, error) {
	if c.LogLevel == "" {
		return logging.INFO, nil
	}
	return logging.LevelFromString(c.LogLevel)
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	var errs error
	if err := c.Estimator.Validate(joinPath(path, "estimator")); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.ThresholdPx < 0 || math.IsNaN(c.ThresholdPx) || math.IsInf(c.ThresholdPx, 0) {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("threshold_px must be a positive number of pixels, got %v", c.ThresholdPx)))
	}
	if _, err := c.Level(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	if c.Intrinsics != nil {
		if err := c.Intrinsics.CheckValid(); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(joinPath(path, "intrinsics"), err))
		}
	}
	return errs
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
