package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/config"
	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/history"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/log"
	"github.com/segrab-cli/segrab/media"
	"github.com/segrab-cli/segrab/network"
	"github.com/segrab-cli/segrab/open"
	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/source"
	"github.com/segrab-cli/segrab/store"
	"github.com/segrab-cli/segrab/style"
	"github.com/segrab-cli/segrab/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// targetFlags are shared by every command that addresses a target.
func targetFlags(flags *pflag.FlagSet) {
	flags.StringP("name", "n", "", "Name of the target, used for its directory and the {{.Name}} template field")
	flags.StringP("url", "u", "", "Fixed base URL segment ids are appended to, instead of the configured template")
	flags.Int("start-id", 1, "Id of the first segment, usually 0 or 1")
	flags.String("extension", ".ts", "Segment extension")
	flags.Duration("delay", 200*time.Millisecond, "Pause before every request")
	flags.Duration("timeout", 5*time.Second, "Timeout of a single request")
	flags.Int("retries", 2, "Retries of a timed out or failed request")
}

func bindTargetFlags(cmd *cobra.Command) {
	for flag, k := range map[string]string{
		"start-id":  key.SourceStartID,
		"extension": key.SourceExtension,
		"delay":     key.NetworkDelay,
		"timeout":   key.NetworkTimeout,
		"retries":   key.NetworkRetries,
	} {
		lo.Must0(viper.BindPFlag(k, cmd.Flags().Lookup(flag)))
	}
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	targetFlags(downloadCmd.Flags())
	downloadCmd.Flags().StringP("strategy", "s", "transcode", "How segments are merged: transcode or concat")
	downloadCmd.Flags().BoolP("keep", "k", false, "Keep raw and converted segments after merging")
	downloadCmd.Flags().BoolP("open", "o", false, "Open the output directory when done")
	downloadCmd.Flags().StringP("output", "O", "", "Directory merged videos are written to")
	downloadCmd.Flags().Bool("force", false, "Remove a lock left behind by an interrupted run")
	downloadCmd.SetOut(os.Stdout)

	lo.Must0(downloadCmd.RegisterFlagCompletionFunc("strategy", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(pipeline.Transcode), string(pipeline.Concat)}, cobra.ShellCompDirectiveNoFileComp
	}))

	for flag, k := range map[string]string{
		"strategy": key.PipelineStrategy,
		"keep":     key.DownloadsKeepIntermediates,
		"open":     key.DownloadsOpen,
		"output":   key.DownloadsPath,
	} {
		lo.Must0(viper.BindPFlag(k, downloadCmd.Flags().Lookup(flag)))
	}
}

// downloadCmd discovers, downloads, converts and merges the segments of a target.
var downloadCmd = &cobra.Command{
	Use:     "download [date]",
	Short:   "Download a video and merge its segments into one file",
	Aliases: []string{"dl", "get"},
	Example: "  segrab download 2024-03-07\n  segrab download --url https://cdn.example.com/ep1/media_ --name ep1",
	Args:    cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		bindTargetFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		target, res, err := resolveTarget(cmd, args)
		handleErr(err)

		layout := config.LayoutFor(target)
		log.WithFields(log.Fields{"target": target.String(), "output": layout.Output}).Info("download requested")

		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(store.New(filesystem.Fs(), layout).Unlock())
		}

		if !lo.Must(filesystem.API().Exists(layout.Output)) {
			handleErr(checkFFmpeg())
		}

		options, err := config.PipelineOptions()
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bars := newProgress()
		p := pipeline.New(
			filesystem.Fs(),
			network.NewClient(config.NetworkOptions()),
			media.New(media.Exec{Path: viper.GetString(key.FFmpegPath)}),
			options,
			pipeline.WithHooks(bars.hooks()),
		)

		result, err := p.Run(ctx, res, layout)
		bars.done()
		if err != nil {
			stop()
			handleErr(explain(target, err))
		}

		reportDownload(cmd, target, res, result)
	},
}

// resolveTarget works out what to download from flags, arguments or an interactive prompt.
func resolveTarget(cmd *cobra.Command, args []string) (source.Target, source.Resource, error) {
	name := lo.Must(cmd.Flags().GetString("name"))

	if url := lo.Must(cmd.Flags().GetString("url")); url != "" {
		if name == "" {
			return source.Target{}, source.Resource{}, errors.New("--name is required with --url")
		}

		res, err := config.ResourceAt(url)
		return source.NamedTarget(name), res, err
	}

	tmpl, err := config.URLTemplate()
	if err != nil {
		return source.Target{}, source.Resource{}, err
	}

	target := source.Target{Name: name}
	if tmpl.NeedsDate() {
		date, err := dateFrom(args)
		if err != nil {
			return source.Target{}, source.Resource{}, err
		}
		target.Date = date
	} else if name == "" {
		return source.Target{}, source.Resource{}, fmt.Errorf("%s does not use a date, so --name is required", key.SourceURLTemplate)
	}

	res, err := config.ResourceFor(target)
	return target, res, err
}

// dateFrom parses the date argument or asks for one when attached to a terminal.
func dateFrom(args []string) (source.Date, error) {
	arg := mo.EmptyableToOption(lo.FirstOr(args, ""))
	if value, ok := arg.Get(); ok {
		return source.ParseDate(value)
	}

	if !util.IsTerminal() {
		return source.Date{}, errors.New("a date is required, e.g. segrab download 2024-03-07")
	}

	var answer string
	err := survey.AskOne(&survey.Input{
		Message: "Broadcast date:",
		Default: source.DateOf(time.Now()).String(),
		Help:    "YYYY-MM-DD, YYYY_MM_DD or YYYYMMDD",
	}, &answer, survey.WithValidator(func(ans any) error {
		_, err := source.ParseDate(fmt.Sprint(ans))
		return err
	}))
	if err != nil {
		return source.Date{}, err
	}

	return source.ParseDate(answer)
}

// explain turns a pipeline failure into a message telling the user what state the target is in.
func explain(target source.Target, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrVideoNotFound):
		return fmt.Errorf("no video found for %s: %w", style.Fg(color.Yellow)(target.String()), err)
	case errors.Is(err, pipeline.ErrLocked):
		return fmt.Errorf("%w\nIf no other segrab is running, retry with --force", err)
	case pipeline.Resumable(err):
		return fmt.Errorf("download of %s stopped partway: %w\nRun the same command again to resume", style.Fg(color.Yellow)(target.String()), err)
	default:
		return err
	}
}

func reportDownload(cmd *cobra.Command, target source.Target, res source.Resource, result pipeline.Result) {
	if result.AlreadyComplete {
		cmd.Printf("%s %s is already downloaded\n%s\n",
			style.Fg(color.Success)(icon.Get(icon.Success)),
			style.Bold(target.String()),
			style.Path(result.Path),
		)
	} else {
		count := result.Discovery.Count
		cmd.Printf("%s Downloaded %s, about %s\n%s\n",
			style.Fg(color.Success)(icon.Get(icon.Success)),
			util.Quantify(count, "segment", "segments"),
			util.DurationWords(time.Duration(count)*config.SegmentDuration()),
			style.Path(result.Path),
		)

		if viper.GetBool(key.HistorySave) {
			err := history.Save(&history.Record{
				Target:   target,
				Path:     result.Path,
				Segments: count,
				StartID:  res.StartID,
				BaseURL:  res.BaseURL,
			})
			if err != nil {
				log.Warn(err)
			}
		}
	}

	if viper.GetBool(key.DownloadsOpen) {
		if err := open.Reveal(result.Path); err != nil {
			log.Warn(err)
			printErr(err.Error())
		}
	}
}
