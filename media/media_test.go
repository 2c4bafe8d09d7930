package media

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	calls  [][]string
	stderr string
	err    error
}

func (r *recorder) Run(_ context.Context, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	return r.stderr, r.err
}

func TestArgs(t *testing.T) {
	Convey("ConvertArgs should stream-copy into the output", t, func() {
		So(ConvertArgs("raw/1.ts", "converted/1.part.mp4"), ShouldResemble, []string{
			"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
			"-i", "raw/1.ts", "-c", "copy", "-bsf:a", "aac_adtstoasc", "converted/1.part.mp4",
		})
	})

	Convey("ConcatArgs should use the concat demuxer", t, func() {
		So(ConcatArgs("segments.txt", "video.part.mp4"), ShouldResemble, []string{
			"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
			"-f", "concat", "-safe", "0", "-i", "segments.txt", "-c", "copy", "video.part.mp4",
		})
	})

	Convey("Args should not share a backing array", t, func() {
		a := ConvertArgs("a", "b")
		_ = ConcatArgs("c", "d")
		So(a[len(a)-1], ShouldEqual, "b")
	})
}

func TestConcatList(t *testing.T) {
	Convey("ConcatList", t, func() {
		Convey("Should list one file per line in order", func() {
			So(string(ConcatList([]string{"converted/1.mp4", "converted/2.mp4"})), ShouldEqual,
				"file 'converted/1.mp4'\nfile 'converted/2.mp4'\n")
		})

		Convey("Should escape single quotes", func() {
			So(string(ConcatList([]string{"it's.mp4"})), ShouldEqual, "file 'it'\\''s.mp4'\n")
		})

		Convey("Should be empty for no paths", func() {
			So(ConcatList(nil), ShouldBeEmpty)
		})
	})
}

func TestTool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a succeeding runner", t, func() {
		r := &recorder{}
		tool := New(r)

		So(tool.Convert(ctx, "in.ts", "out.mp4"), ShouldBeNil)
		So(tool.Concat(ctx, "list.txt", "video.mp4"), ShouldBeNil)
		So(len(r.calls), ShouldEqual, 2)
		So(r.calls[1], ShouldContain, "list.txt")
	})

	Convey("Given a failing runner", t, func() {
		r := &recorder{stderr: "Invalid data found when processing input\n", err: errors.New("boom")}
		tool := New(r)

		err := tool.Convert(ctx, "in.ts", "out.mp4")

		var toolErr *ToolError
		So(errors.As(err, &toolErr), ShouldBeTrue)
		So(toolErr.ExitCode, ShouldEqual, -1)
		So(toolErr.Stderr, ShouldContainSubstring, "Invalid data")
		So(err.Error(), ShouldContainSubstring, "Invalid data found when processing input")
	})

	Convey("Given a cancelled context", t, func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		r := &recorder{err: errors.New("signal: killed")}
		err := New(r).Convert(cancelled, "in.ts", "out.mp4")
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestExec(t *testing.T) {
	Convey("Given a binary that does not exist", t, func() {
		e := Exec{Path: "segrab-no-such-ffmpeg"}

		So(e.Available(), ShouldNotBeNil)

		_, err := e.Run(context.Background(), "-version")
		So(err, ShouldNotBeNil)
		So(errors.Is(err, exec.ErrNotFound), ShouldBeTrue)
	})
}
