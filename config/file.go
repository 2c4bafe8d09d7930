package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/where"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// UnknownKeyError is returned for keys missing from Default.
type UnknownKeyError struct {
	Key string
	// Closest is the registered key with the smallest edit distance.
	Closest string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %s, did you mean %s?", e.Key, e.Closest)
}

// Path is the location of the config file.
func Path() string {
	return filepath.Join(where.Config(), constant.Segrab+".toml")
}

// Lookup returns the field registered under name.
func Lookup(name string) (Field, error) {
	if field, ok := Default[name]; ok {
		return field, nil
	}

	closest := lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})

	return Field{}, &UnknownKeyError{Key: name, Closest: closest}
}

// Parse converts command line words into the type of the field's default.
// Maps are given as key=value pairs.
func (f *Field) Parse(words []string) (any, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: no value given", f.Key)
	}

	first := words[0]
	switch f.Value.(type) {
	case string:
		return strings.Join(words, " "), nil
	case int:
		parsed, err := strconv.Atoi(first)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", first)
		}
		return parsed, nil
	case float64:
		parsed, err := strconv.ParseFloat(first, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", first)
		}
		return parsed, nil
	case bool:
		parsed, err := strconv.ParseBool(first)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", first)
		}
		return parsed, nil
	case time.Duration:
		parsed, err := time.ParseDuration(first)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %s (e.g. 500ms, 5s)", first)
		}
		return parsed.String(), nil
	case map[string]string:
		parsed := make(map[string]string, len(words))
		for _, pair := range words {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid pair %q, expected key=value", pair)
			}
			parsed[k] = v
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", f.Value)
	}
}

// Set parses words for name, applies the value and persists it.
func Set(name string, words []string) (any, error) {
	field, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	value, err := field.Parse(words)
	if err != nil {
		return nil, err
	}

	viper.Set(name, value)
	return value, Save()
}

// Reset restores the given keys to their defaults and persists them.
// All keys are restored when none are given.
func Reset(names ...string) error {
	if len(names) == 0 {
		names = lo.Keys(Default)
	}

	for _, name := range names {
		field, err := Lookup(name)
		if err != nil {
			return err
		}
		viper.Set(name, field.Value)
	}

	return Save()
}

// Save writes the in-memory configuration, creating the file if needed.
func Save() error {
	err := viper.WriteConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return Write(false)
	}

	return err
}

// Write creates the config file from the in-memory configuration.
// An existing file is only replaced when force is set.
func Write(force bool) error {
	if force {
		if err := Delete(); err != nil {
			return err
		}
	}

	if err := filesystem.API().MkdirAll(where.Config(), 0o755); err != nil {
		return err
	}

	return viper.SafeWriteConfigAs(Path())
}

// Delete removes the config file. A missing file is not an error.
func Delete() error {
	exists, err := afero.Exists(filesystem.API(), Path())
	if err != nil || !exists {
		return err
	}
	return filesystem.API().Remove(Path())
}

// Validate reports every setting that would make a download fail before it starts.
func Validate() error {
	var result *multierror.Error

	if _, err := URLTemplate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", key.SourceURLTemplate, err))
	}

	if _, err := ResourceAt("https://example.com/"); err != nil {
		result = multierror.Append(result, err)
	}

	if _, err := pipeline.ParseStrategy(viper.GetString(key.PipelineStrategy)); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", key.PipelineStrategy, err))
	}

	if viper.GetDuration(key.NetworkTimeout) <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s: must be positive", key.NetworkTimeout))
	}

	if viper.GetDuration(key.NetworkDelay) < 0 {
		result = multierror.Append(result, fmt.Errorf("%s: must not be negative", key.NetworkDelay))
	}

	if viper.GetInt(key.NetworkRetries) < 0 {
		result = multierror.Append(result, fmt.Errorf("%s: must not be negative", key.NetworkRetries))
	}

	if viper.GetFloat64(key.SourceSegmentSeconds) <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s: must be positive", key.SourceSegmentSeconds))
	}

	return result.ErrorOrNil()
}
