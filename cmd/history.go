package cmd

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/history"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/style"
	"github.com/segrab-cli/segrab/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	historyCmd.SetOut(os.Stdout)
}

// historyCmd lists completed downloads.
var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "List completed downloads, optionally filtered by a fuzzy query",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := history.Search(lo.FirstOr(args, ""))
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("No downloads yet"))
			return
		}

		for i, r := range records {
			cmd.Printf("%s %s %s\n",
				style.Fg(color.Purple)(r.Target.String()),
				style.Faint(r.CompletedAt.Format("2006-01-02 15:04")),
				style.Faint("("+util.Quantify(r.Segments, "segment", "segments")+")"),
			)
			cmd.Println(style.Path(r.Path))

			if i < len(records)-1 {
				cmd.Println()
			}
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
	historyRemoveCmd.SetOut(os.Stdout)
}

// historyRemoveCmd forgets the records matching a query. The videos are kept.
var historyRemoveCmd = &cobra.Command{
	Use:     "remove <query>",
	Short:   "Forget the downloads matching a query, keeping their files",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := history.Search(args[0])
		handleErr(err)

		for _, r := range records {
			handleErr(history.Remove(r))
			cmd.Printf("%s removed %s\n", style.Fg(color.Success)(icon.Get(icon.Success)), style.Fg(color.Purple)(r.Target.String()))
		}
	},
}

func init() {
	historyCmd.AddCommand(historySchemaCmd)
}

// historySchemaCmd prints the JSON schema of `history --json`.
var historySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the history records",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "record", "target", "date":
				return "segrab." + name
			}
			return name
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect([]*history.Record{})))
	},
}
