package config

import (
	"errors"
	"fmt"
)

// Validate checks cross-field constraints. Defaults must be applied first.
func Validate(cfg *Config) error {
	if err := validateTargets(cfg); err != nil {
		return err
	}
	if err := validateSearch(cfg); err != nil {
		return err
	}
	if err := validatePublish(cfg); err != nil {
		return err
	}
	return validateFeeds(cfg)
}

func validateTargets(cfg *Config) error {
	if len(cfg.Targets) == 0 {
		return errors.New("at least one target must be configured")
	}
	seen := make(map[string]bool, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if t.Name == "" {
			return errors.New("target name cannot be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate target name: %s", t.Name)
		}
		seen[t.Name] = true
		if t.Bucket == "" {
			return fmt.Errorf("target %s: bucket is required", t.Name)
		}
	}
	return nil
}

func validateSearch(cfg *Config) error {
	if cfg.Search.Enabled && cfg.Search.NATSURL == "" {
		return errors.New("search.nats_url is required when search is enabled")
	}
	return nil
}

func validatePublish(cfg *Config) error {
	if cfg.Publish.Workers > 64 {
		return fmt.Errorf("publish.workers must be between 1 and 64, got %d", cfg.Publish.Workers)
	}
	if cfg.Publish.QueueSchedule != "" {
		if _, ok := cfg.Target(cfg.Publish.QueueTarget); !ok {
			return fmt.Errorf("publish.queue_target %q is not a configured target", cfg.Publish.QueueTarget)
		}
	}
	return nil
}

func validateFeeds(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		if f.Name == "" {
			return errors.New("feed name cannot be empty")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate feed name: %s", f.Name)
		}
		seen[f.Name] = true
		if f.Kind == "" {
			return fmt.Errorf("feed %s: kind must be one of %v", f.Name, feedKindNormalizer.ValidKeys())
		}
		if f.Key == "" {
			return fmt.Errorf("feed %s: key is required", f.Name)
		}
		if (f.Kind == FeedAtom || f.Kind == FeedJSON) && f.Category == "" {
			return fmt.Errorf("feed %s: category is required for %s feeds", f.Name, f.Kind)
		}
		if f.Limit < 0 {
			return fmt.Errorf("feed %s: limit cannot be negative", f.Name)
		}
	}
	return nil
}
