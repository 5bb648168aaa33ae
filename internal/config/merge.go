package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyOutput     = "output"
	keyLogging    = "logging"
	keyStore      = "store"
	keyCache      = "cache"
	keyReview     = "review"
	keyValidation = "validation"
	keyFactors    = "factors"
)

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// target. A section present in the overlay replaces the whole section in
// target; absent sections are left unchanged. Unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// unmarshalSection decodes each section into a fresh value so the overlay
// replaces rather than merges.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyOutput:
		var v OutputConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Output = v
	case keyLogging:
		var v LoggingConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyStore:
		var v StoreConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Store = v
	case keyCache:
		var v CacheConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
	case keyReview:
		var v ReviewConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Review = v
	case keyValidation:
		var v ValidationConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Validation = v
	case keyFactors:
		var v FactorsConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Factors = v
	}
	return nil
}
