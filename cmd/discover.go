package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/config"
	"github.com/segrab-cli/segrab/discovery"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/network"
	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/probe"
	"github.com/segrab-cli/segrab/style"
	"github.com/segrab-cli/segrab/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)

	targetFlags(discoverCmd.Flags())
	discoverCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	discoverCmd.SetOut(os.Stdout)
}

type discoverOutput struct {
	Target   string           `json:"target"`
	BaseURL  string           `json:"base_url"`
	Result   discovery.Result `json:"result"`
	LastURL  string           `json:"last_url"`
	Duration time.Duration    `json:"duration"`
	Requests int              `json:"requests"`
}

// discoverCmd counts the segments of a target without downloading it.
var discoverCmd = &cobra.Command{
	Use:     "discover [date]",
	Short:   "Count the segments of a video and estimate its length",
	Aliases: []string{"count"},
	Args:    cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		bindTargetFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		target, res, err := resolveTarget(cmd, args)
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		prober := probe.New(network.NewClient(config.NetworkOptions()), res, config.ProbeOptions())

		erase := util.PrintErasable(icon.Get(icon.Search) + " Searching for segments...")
		result, err := discovery.Discover(ctx, prober, res)
		erase()

		if errors.Is(err, discovery.ErrNotFound) {
			handleErr(explain(target, fmt.Errorf("%w: %w", pipeline.ErrVideoNotFound, err)))
		}
		handleErr(err)

		out := discoverOutput{
			Target:   target.String(),
			BaseURL:  res.BaseURL,
			Result:   result,
			LastURL:  res.URL(result.LastID()),
			Duration: time.Duration(result.Count) * config.SegmentDuration(),
			Requests: prober.Requests(),
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(out))
			return
		}

		cmd.Printf("%s %s has %s, about %s\n",
			style.Fg(color.Success)(icon.Get(icon.Success)),
			style.Bold(out.Target),
			util.Quantify(result.Count, "segment", "segments"),
			util.DurationWords(out.Duration),
		)
		cmd.Println(style.Faint("last segment: ") + out.LastURL)
		cmd.Println(style.Faint("requests:     ") + util.Quantify(out.Requests, "request", "requests"))
	},
}
