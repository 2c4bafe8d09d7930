package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/segrab-cli/segrab/config"
	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/history"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/util"
	"github.com/segrab-cli/segrab/where"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

func removeDir(location func() string) func() error {
	return func() error {
		path := location()
		if exists := lo.Must(filesystem.API().Exists(path)); !exists {
			return nil
		}
		return util.Delete(path)
	}
}

// clearTargets registry of everything that can be selectively cleared.
var clearTargets = []clearTarget{
	{"work files", "work", mo.Some("w"), removeDir(config.WorkDir)},
	{"downloads", "downloads", mo.None[string](), removeDir(config.DownloadsDir)},
	{"history", "history", mo.Some("s"), history.Clear},
	{"logs", "logs", mo.Some("l"), removeDir(where.Logs)},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes intermediate artifacts, downloads, history and logs.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove work files, downloads, history or logs",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := target.clear()
			erase()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
