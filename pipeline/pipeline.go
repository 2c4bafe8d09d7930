// Package pipeline downloads, converts and merges the segments of a target into one video.
//
// Every stage skips work already recorded by the store, so an interrupted run
// resumes where it stopped and a finished one returns immediately.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/segrab-cli/segrab/discovery"
	"github.com/segrab-cli/segrab/log"
	"github.com/segrab-cli/segrab/media"
	"github.com/segrab-cli/segrab/probe"
	"github.com/segrab-cli/segrab/source"
	"github.com/segrab-cli/segrab/store"
	"github.com/spf13/afero"
)

// Strategy selects how segments become the merged video.
type Strategy string

const (
	// Transcode remuxes every segment before merging them.
	Transcode Strategy = "transcode"
	// Concat merges the raw segments directly.
	Concat Strategy = "concat"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Transcode, Concat:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q, expected %s or %s", s, Transcode, Concat)
	}
}

// Stage is a step of a run reported to hooks.
type Stage string

const (
	StageDiscover Stage = "discover"
	StageFetch    Stage = "fetch"
	StageConvert  Stage = "convert"
	StageMerge    Stage = "merge"
)

// Options configure a pipeline.
type Options struct {
	Probe             probe.Options
	Strategy          Strategy
	KeepIntermediates bool
}

// Media converts and merges segment files.
type Media interface {
	Convert(ctx context.Context, in, out string) error
	Concat(ctx context.Context, list, out string) error
}

// Hooks report progress. Any of them may be nil.
type Hooks struct {
	OnDiscovered func(discovery.Result)
	// OnStage is called when a stage starts with the number of segments it covers.
	OnStage func(stage Stage, total int)
	// OnSegment is called once per segment and stage; skipped is true when the work was already done.
	OnSegment func(stage Stage, id int, skipped bool)
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithHooks registers progress hooks.
func WithHooks(hooks Hooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// Pipeline runs the download, convert and merge stages for one target at a time.
type Pipeline struct {
	fs      afero.Fs
	client  probe.Doer
	media   Media
	options Options
	hooks   Hooks
}

// New returns a pipeline storing artifacts on fs and requesting segments with client.
func New(fs afero.Fs, client probe.Doer, m Media, options Options, opts ...Option) *Pipeline {
	if options.Strategy == "" {
		options.Strategy = Transcode
	}

	p := &Pipeline{
		fs:      fs,
		client:  client,
		media:   m,
		options: options,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes a finished run.
type Result struct {
	// Path of the merged video.
	Path string `json:"path"`
	// AlreadyComplete is true when the video existed before the run.
	AlreadyComplete bool             `json:"already_complete"`
	Discovery       discovery.Result `json:"discovery"`
	// Fetched counts segments downloaded by this run.
	Fetched int `json:"fetched"`
	// Converted counts segments converted by this run.
	Converted int `json:"converted"`
	// Requests counts every request sent to the origin.
	Requests int `json:"requests"`
}

type run struct {
	*Pipeline
	store  *store.Store
	prober *probe.Prober
	result Result
}

// Run produces the merged video of res at layout.Output.
func (p *Pipeline) Run(ctx context.Context, res source.Resource, layout store.Layout) (Result, error) {
	st := store.New(p.fs, layout)
	if st.OutputExists() {
		log.Infof("%s already exists", layout.Output)
		return Result{Path: layout.Output, AlreadyComplete: true}, nil
	}

	if err := st.Lock(); err != nil {
		if errors.Is(err, store.ErrLocked) {
			return Result{}, err
		}
		return Result{}, &StorageError{Op: "lock", Err: err}
	}

	defer func() {
		if err := st.Unlock(); err != nil {
			log.Warn(err)
		}
	}()

	r := &run{
		Pipeline: p,
		store:    st,
		prober:   probe.New(p.client, res, p.options.Probe),
	}

	err := r.execute(ctx, res)
	r.result.Requests = r.prober.Requests()
	if err != nil {
		log.Errorf("run for %s failed: %v", layout.Output, err)
		return r.result, err
	}

	r.result.Path = layout.Output
	return r.result, nil
}

func (r *run) execute(ctx context.Context, res source.Resource) error {
	if err := r.store.Prepare(); err != nil {
		return &StorageError{Op: "prepare", Err: err}
	}

	if err := r.discover(ctx, res); err != nil {
		return err
	}

	ids := res.IDs(r.result.Discovery.Count)
	if err := r.fetch(ctx, ids); err != nil {
		return err
	}

	stage := store.StageFetched
	if r.options.Strategy == Transcode {
		if err := r.convert(ctx, ids); err != nil {
			return err
		}
		stage = store.StageConverted
	}

	if err := r.merge(ctx, ids, stage); err != nil {
		return err
	}

	if !r.options.KeepIntermediates {
		if err := r.store.Clean(); err != nil {
			log.Warnf("clean %s: %v", r.store.Layout().WorkDir, err)
		}
	}

	return nil
}

func (r *run) discover(ctx context.Context, res source.Resource) error {
	r.stage(StageDiscover, 0)

	result, err := discovery.Discover(ctx, r.prober, res, discovery.WithObserver(func(id int, payload []byte) error {
		if r.fetched(id) {
			return nil
		}

		if err := r.store.Save(id, store.StageFetched, payload); err != nil {
			return &StorageError{Op: fmt.Sprintf("save segment %d", id), Err: err}
		}

		r.result.Fetched++
		return nil
	}))

	switch {
	case errors.Is(err, discovery.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrVideoNotFound, err)
	case err != nil:
		return fmt.Errorf("discover: %w", err)
	}

	r.result.Discovery = result
	if r.hooks.OnDiscovered != nil {
		r.hooks.OnDiscovered(result)
	}
	return nil
}

func (r *run) fetch(ctx context.Context, ids []int) error {
	r.stage(StageFetch, len(ids))

	for _, id := range ids {
		if r.fetched(id) {
			r.segment(StageFetch, id, true)
			continue
		}

		payload, err := r.prober.Fetch(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &FetchFailedError{ID: id, Err: err}
		}

		if err := r.store.Save(id, store.StageFetched, payload); err != nil {
			return &StorageError{Op: fmt.Sprintf("save segment %d", id), Err: err}
		}

		r.result.Fetched++
		log.WithFields(log.Fields{"id": id, "bytes": len(payload)}).Debug("fetched")
		r.segment(StageFetch, id, false)
	}

	return nil
}

func (r *run) convert(ctx context.Context, ids []int) error {
	r.stage(StageConvert, len(ids))
	layout := r.store.Layout()

	for _, id := range ids {
		if r.store.IsConverted(id) {
			r.segment(StageConvert, id, true)
			continue
		}

		tmp := layout.TempSegmentPath(id, store.StageConverted)
		if err := r.media.Convert(ctx, layout.SegmentPath(id, store.StageFetched), tmp); err != nil {
			_ = r.fs.Remove(tmp)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &ConversionFailedError{ID: id, Err: err}
		}

		if err := r.store.Commit(tmp, id, store.StageConverted); err != nil {
			return &StorageError{Op: fmt.Sprintf("commit segment %d", id), Err: err}
		}

		r.result.Converted++
		r.segment(StageConvert, id, false)
	}

	return nil
}

func (r *run) merge(ctx context.Context, ids []int, stage store.Stage) error {
	r.stage(StageMerge, len(ids))
	layout := r.store.Layout()

	paths := make([]string, len(ids))
	for i, id := range ids {
		paths[i] = layout.RelSegmentPath(id, stage)
	}

	if err := r.store.WriteList(media.ConcatList(paths)); err != nil {
		return &StorageError{Op: "write concat list", Err: err}
	}

	if err := r.store.PrepareOutput(); err != nil {
		return &StorageError{Op: "prepare output", Err: err}
	}

	tmp := layout.TempOutput()
	if err := r.media.Concat(ctx, layout.ListPath(), tmp); err != nil {
		_ = r.fs.Remove(tmp)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &MergeFailedError{Output: layout.Output, Err: err}
	}

	if err := r.store.CommitOutput(); err != nil {
		return &StorageError{Op: "commit output", Err: err}
	}

	log.Infof("merged %d segments into %s", len(ids), layout.Output)
	return nil
}

// fetched reports whether id needs no download for the configured strategy.
// Concat merges raw files, so a converted artifact alone is not enough.
func (r *run) fetched(id int) bool {
	if r.options.Strategy == Concat {
		return r.store.Has(id, store.StageFetched)
	}
	return r.store.IsFetched(id)
}

func (r *run) stage(stage Stage, total int) {
	log.Infof("stage %s (%d segments)", stage, total)
	if r.hooks.OnStage != nil {
		r.hooks.OnStage(stage, total)
	}
}

func (r *run) segment(stage Stage, id int, skipped bool) {
	if r.hooks.OnSegment != nil {
		r.hooks.OnSegment(stage, id, skipped)
	}
}
