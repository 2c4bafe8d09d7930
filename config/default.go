// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/style"
	"github.com/spf13/viper"
)

// DefaultURLTemplate renders the base URL of a dated broadcast; the segment id and extension are appended to it.
const DefaultURLTemplate = "https://videostream.skai.gr/skaivod/_definst_/mp4:skai/GrCyTargeting/Gr/Survivor/survivor{{.Year}}{{.Month}}{{.Day}}xxxx.mp4/media_"

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Segrab + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case map[string]string:
		return "map[string]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.SourceURLTemplate, DefaultURLTemplate, "Template of the base URL segments are appended to.\nAvailable fields: {{.Year}} {{.Month}} {{.Day}} {{.Name}}")
	register(key.SourceStartID, 1, "Id of the first segment published by the origin.\nUsually 0 or 1")
	register(key.SourceExtension, ".ts", "Extension appended to every segment URL")
	register(key.SourceSegmentSeconds, 10.0, "Approximate playback length of one segment, in seconds.\nUsed for duration estimates only")
	register(key.NetworkTimeout, 5*time.Second, "Connection and read timeout of a single segment request")
	register(key.NetworkDelay, 200*time.Millisecond, "Pause before every request sent to the origin")
	register(key.NetworkRetries, 2, "How many times a timed out or failed request is retried before giving up")
	register(key.NetworkUserAgent, constant.UserAgent, "User-Agent header sent with every request")
	register(key.NetworkHeaders, map[string]string{}, "Extra headers sent with every request")
	register(key.NetworkTLSFingerprint, false, "Present a browser TLS fingerprint to the origin")
	register(key.DownloadsPath, "", "Directory merged videos are written to.\nDefaults to the user's download directory")
	register(key.DownloadsWorkPath, "", "Directory for raw and converted segments.\nDefaults to the user's cache directory")
	register(key.DownloadsKeepIntermediates, false, "Keep raw and converted segments after a successful merge")
	register(key.DownloadsOpen, false, "Open the output directory once the video is ready")
	register(key.PipelineStrategy, "transcode", "How segments are merged.\nAvailable options are: transcode, concat")
	register(key.FFmpegPath, "ffmpeg", "Path of the ffmpeg executable")
	register(key.HistorySave, true, "Record completed downloads in the history")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain, squares")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliProgress, true, "Render progress bars when attached to a terminal")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
