// Package cmd implements the command-line interface for segrab.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/log"
	"github.com/segrab-cli/segrab/style"
	"github.com/segrab-cli/segrab/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().Bool("no-progress", false, "Do not render progress bars")
}

// rootCmd defines the entry point for the segrab application.
var rootCmd = &cobra.Command{
	Use:   constant.Segrab,
	Short: "Rebuild videos published as unindexed numbered segments",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiPurple).Render("    - Rebuild videos published as unindexed numbered segments"),
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("no-progress")) {
			viper.Set(key.CliProgress, false)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		// Without a subcommand, download interactively like `segrab download`.
		downloadCmd.Run(downloadCmd, args)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// errHandled marks an error whose message was already printed.
var errHandled = errors.New("handled")

func handleErr(err error) {
	if err == nil {
		return
	}

	if !errors.Is(err, errHandled) {
		log.Error(err)
		printErr(err.Error())
	}
	os.Exit(1)
}

func printErr(msg string) {
	msg = fmt.Sprintf("%s %s", style.Fg(color.Failure)(icon.Get(icon.Fail)), strings.Trim(msg, " \n"))
	if width, _, err := util.TerminalSize(); err == nil && width > 0 {
		msg = wrap.String(msg, width)
	}
	_, _ = fmt.Fprintln(os.Stderr, msg)
}
