package cmd

import (
	"encoding/json"
	"os"

	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/config"
	"github.com/segrab-cli/segrab/style"
	"github.com/segrab-cli/segrab/where"
	"github.com/spf13/cobra"
)

// location is a directory or file segrab reads or writes.
type location struct {
	Name   string `json:"name"`
	Flag   string `json:"-"`
	Short  string `json:"-"`
	Path   string `json:"path"`
	Hidden bool   `json:"-"`

	resolve func() string
}

var locations = []*location{
	{Name: "Config", Flag: "config", Short: "c", resolve: where.Config},
	{Name: "Downloads", Flag: "downloads", Short: "d", resolve: config.DownloadsDir},
	{Name: "Work", Flag: "work", Short: "w", resolve: config.WorkDir},
	{Name: "Logs", Flag: "logs", Short: "l", resolve: where.Logs},
	{Name: "Cache", Flag: "cache", Hidden: true, resolve: where.Cache},
	{Name: "History", Flag: "history", Hidden: true, resolve: where.History},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, l := range locations {
		whereCmd.Flags().BoolP(l.Flag, l.Short, false, l.Name+" path")
		if l.Hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(l.Flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(locations, func(l *location, _ int) string {
		return l.Flag
	})...)
	whereCmd.Flags().BoolP("json", "j", false, "Print every location as JSON")

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where segrab keeps its configuration, downloads and work files",
	Run: func(cmd *cobra.Command, args []string) {
		if l, ok := lo.Find(locations, func(l *location) bool {
			return lo.Must(cmd.Flags().GetBool(l.Flag))
		}); ok {
			cmd.Println(l.resolve())
			return
		}

		for _, l := range locations {
			l.Path = l.resolve()
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(locations))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(locations, func(l *location, _ int) bool { return l.Hidden })

		for i, l := range visible {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n", header(l.Name+"?"), style.Fg(color.Yellow)("--"+l.Flag))
			cmd.Println(l.Path)
		}
	},
}
