package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/segrab-cli/segrab/discovery"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/util"
	"github.com/spf13/viper"
)

// progress renders pipeline hooks on stderr.
// Bars are drawn only on terminals; otherwise one line per stage is printed.
type progress struct {
	interactive bool
	bar         *progressbar.ProgressBar
	erase       func()
}

func newProgress() *progress {
	return &progress{
		interactive: viper.GetBool(key.CliProgress) && util.IsTerminal(),
	}
}

func (p *progress) hooks() pipeline.Hooks {
	return pipeline.Hooks{
		OnDiscovered: p.discovered,
		OnStage:      p.stage,
		OnSegment:    p.segment,
	}
}

var stageIcons = map[pipeline.Stage]icon.Icon{
	pipeline.StageDiscover: icon.Search,
	pipeline.StageFetch:    icon.Download,
	pipeline.StageConvert:  icon.Convert,
	pipeline.StageMerge:    icon.Merge,
}

var stageTitles = map[pipeline.Stage]string{
	pipeline.StageDiscover: "Searching for segments",
	pipeline.StageFetch:    "Downloading",
	pipeline.StageConvert:  "Converting",
	pipeline.StageMerge:    "Merging",
}

func (p *progress) stage(stage pipeline.Stage, total int) {
	p.done()

	title := fmt.Sprintf("%s %s", icon.Get(stageIcons[stage]), stageTitles[stage])
	if !p.interactive {
		_, _ = fmt.Fprintln(os.Stderr, title)
		return
	}

	if stage == pipeline.StageDiscover || stage == pipeline.StageMerge {
		p.erase = util.PrintErasable(title + "...")
		return
	}

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(title),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(true),
	)
}

func (p *progress) segment(_ pipeline.Stage, _ int, _ bool) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progress) discovered(result discovery.Result) {
	p.done()
	_, _ = fmt.Fprintf(os.Stderr, "%s Found %s (%s probes)\n",
		icon.Get(icon.Success),
		util.Quantify(result.Count, "segment", "segments"),
		fmt.Sprint(result.Probes),
	)
}

// done clears whatever the current stage drew.
func (p *progress) done() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}

	if p.erase != nil {
		p.erase()
		p.erase = nil
	}
}
