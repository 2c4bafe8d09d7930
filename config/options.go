package config

import (
	"fmt"
	"time"

	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/network"
	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/probe"
	"github.com/segrab-cli/segrab/source"
	"github.com/segrab-cli/segrab/store"
	"github.com/segrab-cli/segrab/where"
	"github.com/spf13/viper"
)

// URLTemplate compiles the configured base URL template.
func URLTemplate() (*source.Template, error) {
	return source.ParseTemplate(viper.GetString(key.SourceURLTemplate))
}

// ResourceFor renders the resource of target from the configured template.
func ResourceFor(target source.Target) (source.Resource, error) {
	tmpl, err := URLTemplate()
	if err != nil {
		return source.Resource{}, err
	}

	base, err := tmpl.Render(target)
	if err != nil {
		return source.Resource{}, err
	}

	return ResourceAt(base)
}

// ResourceAt returns a resource with a fixed base URL and the configured id convention.
func ResourceAt(base string) (source.Resource, error) {
	return source.NewResource(base, viper.GetInt(key.SourceStartID), viper.GetString(key.SourceExtension))
}

// NetworkOptions returns the configured HTTP client options.
func NetworkOptions() network.Options {
	return network.Options{
		UserAgent:      viper.GetString(key.NetworkUserAgent),
		Headers:        viper.GetStringMapString(key.NetworkHeaders),
		TLSFingerprint: viper.GetBool(key.NetworkTLSFingerprint),
	}
}

// ProbeOptions returns the configured request bounds.
func ProbeOptions() probe.Options {
	return probe.Options{
		Timeout: viper.GetDuration(key.NetworkTimeout),
		Delay:   viper.GetDuration(key.NetworkDelay),
		Retries: viper.GetInt(key.NetworkRetries),
	}
}

// PipelineOptions returns the configured pipeline options.
func PipelineOptions() (pipeline.Options, error) {
	strategy, err := pipeline.ParseStrategy(viper.GetString(key.PipelineStrategy))
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("%s: %w", key.PipelineStrategy, err)
	}

	return pipeline.Options{
		Probe:             ProbeOptions(),
		Strategy:          strategy,
		KeepIntermediates: viper.GetBool(key.DownloadsKeepIntermediates),
	}, nil
}

// DownloadsDir returns the root merged videos are written under.
func DownloadsDir() string {
	if path := viper.GetString(key.DownloadsPath); path != "" {
		return path
	}
	return where.Downloads()
}

// WorkDir returns the root intermediate artifacts are written under.
func WorkDir() string {
	if path := viper.GetString(key.DownloadsWorkPath); path != "" {
		return path
	}
	return where.Work()
}

// LayoutFor places the artifacts of target under the configured roots.
func LayoutFor(target source.Target) store.Layout {
	return store.NewLayout(WorkDir(), DownloadsDir(), target, viper.GetString(key.SourceExtension))
}

// SegmentDuration is the approximate playback length of one segment.
func SegmentDuration() time.Duration {
	return time.Duration(viper.GetFloat64(key.SourceSegmentSeconds) * float64(time.Second))
}
