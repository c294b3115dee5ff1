package config

import (
	"fmt"

	"github.com/jpalmerr/gardenwatch"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The returned options carry every setting in cfg; callers append their
// own (logger, renderers, callbacks) before passing them to [gardenwatch.New].
func BuildOptions(cfg *Config) ([]gardenwatch.Option, error) {
	policy, err := buildResetPolicy(cfg.ResetPolicy)
	if err != nil {
		return nil, err
	}

	opts := []gardenwatch.Option{
		gardenwatch.WithServerURL(cfg.ServerURL),
		gardenwatch.WithPort(cfg.Port),
		gardenwatch.WithPollingInterval(cfg.PollInterval.Duration()),
		gardenwatch.WithRequestTimeout(cfg.RequestTimeout()),
		gardenwatch.WithWatcherID(cfg.WatcherIDEnabled()),
		gardenwatch.WithCounts(cfg.CountsRequired()),
		gardenwatch.WithResetPolicy(policy),
	}

	// zero means the SDK default
	if cfg.FailureThreshold > 0 {
		opts = append(opts, gardenwatch.WithFailureThreshold(cfg.FailureThreshold))
	}

	if cfg.Title != "" {
		opts = append(opts, gardenwatch.WithTitle(cfg.Title))
	}

	return opts, nil
}

// buildResetPolicy maps a reset_policy name to the SDK value.
func buildResetPolicy(name string) (gardenwatch.ResetPolicy, error) {
	switch name {
	case "", ResetPolicyValidPayload:
		return gardenwatch.ResetOnValidPayload, nil
	case ResetPolicyReachable:
		return gardenwatch.ResetOnReachable, nil
	default:
		return 0, fmt.Errorf("unknown reset_policy %q", name)
	}
}
