// Package icon renders the symbols that prefix CLI feedback lines.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII or Unicode
// squares depending on user preference.
package icon

import (
	"github.com/segrab-cli/segrab/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Warn
	Progress
	Search
	Download
	Convert
	Merge
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "🎉", nerd: "\uf00c", plain: "✓", squares: "🟩"},
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "✗", squares: "🟥"},
	Warn:     {emoji: "⚠️", nerd: "\uf071", plain: "!", squares: "🟨"},
	Progress: {emoji: "⏳", nerd: "\uf252", plain: "…", squares: "🟦"},
	Search:   {emoji: "🔎", nerd: "\uf002", plain: "?", squares: "🟪"},
	Download: {emoji: "📥", nerd: "\uf019", plain: "↓", squares: "🟦"},
	Convert:  {emoji: "🎞️", nerd: "\uf03d", plain: "~", squares: "🟧"},
	Merge:    {emoji: "🧵", nerd: "\uf0c1", plain: "+", squares: "🟫"},
}

// Get returns the rendered string for an icon under the configured variant.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}

	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return def.emoji
	case nerd:
		return def.nerd
	case plain:
		return def.plain
	case squares:
		return def.squares
	default:
		return ""
	}
}
