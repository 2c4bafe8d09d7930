// Package media drives ffmpeg to normalize segments and merge them into one video.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/segrab-cli/segrab/log"
)

// Runner executes the media tool with args and returns its diagnostic output.
type Runner interface {
	Run(ctx context.Context, args ...string) (stderr string, err error)
}

// Exec runs a binary found on disk.
type Exec struct {
	// Path of the ffmpeg executable, resolved through PATH when not absolute.
	Path string
}

// Run implements Runner. Cancelling ctx kills the process.
func (e Exec) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.Path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debugf("exec %s %s", e.Path, strings.Join(args, " "))
	err := cmd.Run()
	return stderr.String(), err
}

// Available reports whether the binary can be found.
func (e Exec) Available() error {
	if _, err := exec.LookPath(e.Path); err != nil {
		return fmt.Errorf("ffmpeg not found at %q: %w", e.Path, err)
	}
	return nil
}

// ToolError describes a failed invocation of the media tool.
type ToolError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
	if e.ExitCode < 0 {
		msg = fmt.Sprintf("ffmpeg failed: %v", e.Err)
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Tool issues the conversions and merges the pipeline needs.
type Tool struct {
	runner Runner
}

// New returns a tool running commands through r.
func New(r Runner) *Tool {
	return &Tool{runner: r}
}

// Convert remuxes one raw segment into the normalized container.
func (t *Tool) Convert(ctx context.Context, in, out string) error {
	return t.run(ctx, ConvertArgs(in, out))
}

// Concat merges the segments named by the list file into out without re-encoding.
func (t *Tool) Concat(ctx context.Context, list, out string) error {
	return t.run(ctx, ConcatArgs(list, out))
}

func (t *Tool) run(ctx context.Context, args []string) error {
	stderr, err := t.runner.Run(ctx, args...)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}

	return &ToolError{Args: args, ExitCode: code, Stderr: stderr, Err: err}
}

var commonArgs = []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error"}

// ConvertArgs returns the arguments remuxing a transport stream segment into mp4.
func ConvertArgs(in, out string) []string {
	return append(append([]string{}, commonArgs...),
		"-i", in,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		out,
	)
}

// ConcatArgs returns the arguments of a stream-copy concatenation driven by a list file.
func ConcatArgs(list, out string) []string {
	return append(append([]string{}, commonArgs...),
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-c", "copy",
		out,
	)
}

// ConcatList renders the list file of the concat demuxer, one entry per path, in order.
func ConcatList(paths []string) []byte {
	var b strings.Builder
	for _, path := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(path, "'", `'\''`))
		b.WriteString("'\n")
	}
	return []byte(b.String())
}
