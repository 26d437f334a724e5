package transform

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/twoview/utils"
)

// DefaultTrials is the number of RANSAC trials run when the config does not set one.
const DefaultTrials = 10000

// EstimatorConfig configures a FundamentalEstimator.
type EstimatorConfig struct {
	// Trials bounds the number of RANSAC iterations.
	Trials int `json:"trials,omitempty"`
	// SampleSize is the number of correspondences drawn per trial. It cannot be below 8.
	SampleSize int `json:"sample_size,omitempty"`
	// Seed starts the sampling sequence. Zero selects utils.DefaultSeed.
	Seed uint64 `json:"seed,omitempty"`
	// Workers splits the trials over this many goroutines. Results only depend on the seed and
	// the number of workers.
	Workers int `json:"workers,omitempty"`
	// CheckInvariants verifies the normalized point sets before sampling.
	CheckInvariants bool `json:"check_invariants,omitempty"`
}

// SetDefaults fills in every unset field.
func (cfg *EstimatorConfig) SetDefaults() {
	if cfg.Trials == 0 {
		cfg.Trials = DefaultTrials
	}
	if cfg.SampleSize == 0 {
		cfg.SampleSize = MinimalSampleSize
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
}

// InitialSeed returns the configured seed, or utils.DefaultSeed when none is set.
func (cfg *EstimatorConfig) InitialSeed() utils.Seed {
	if cfg.Seed == 0 {
		return utils.DefaultSeed
	}
	return utils.Seed(cfg.Seed)
}

// Validate ensures all parts of the config are valid.
func (cfg *EstimatorConfig) Validate(path string) error {
	var errs error
	if cfg.Trials < 0 {
		errs = multierr.Append(errs, errors.Errorf("trials must be positive, got %d", cfg.Trials))
	}
	if cfg.SampleSize != 0 && cfg.SampleSize < MinimalSampleSize {
		errs = multierr.Append(errs, errors.Errorf("sample_size must be at least %d, got %d", MinimalSampleSize, cfg.SampleSize))
	}
	if cfg.Workers < 0 {
		errs = multierr.Append(errs, errors.Errorf("workers cannot be negative, got %d", cfg.Workers))
	}
	if errs != nil {
		return goutils.NewConfigValidationError(path, errs)
	}
	return nil
}
