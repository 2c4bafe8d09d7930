package cmd

import (
	"os"
	"runtime"
	"runtime/debug"
	"text/template"

	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/style"
	"github.com/spf13/cobra"
)

type buildInfo struct {
	App, Version, Revision, BuiltAt, BuiltBy, Platform, Go string
}

// currentBuild prefers ldflags metadata and falls back to the vcs stamp of the binary.
func currentBuild() buildInfo {
	info := buildInfo{
		App:      constant.Segrab,
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  constant.BuiltAt,
		BuiltBy:  constant.BuiltBy,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Go:       runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Revision == "unknown":
			info.Revision = s.Value
		case s.Key == "vcs.time" && info.BuiltAt == "unknown":
			info.BuiltAt = s.Value
		}
	}

	return info
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"accent": style.Fg(color.Purple),
}).Parse(`{{ accent "▇▇▇" }} {{ accent .App }}

  {{ faint "Version" }}     {{ bold .Version }}
  {{ faint "Revision" }}    {{ bold .Revision }}
  {{ faint "Built at" }}    {{ bold .BuiltAt }}
  {{ faint "Built by" }}    {{ bold .BuiltBy }}
  {{ faint "Platform" }}    {{ bold .Platform }}
  {{ faint "Go" }}          {{ bold .Go }}
`))

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version number")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), currentBuild()))
	},
}
