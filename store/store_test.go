package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/source"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func newStore() (*Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	target := source.DatedTarget(source.Date{Year: 2024, Month: 5, Day: 17})
	return New(fs, NewLayout("/work", "/downloads", target, ".ts")), fs
}

func TestLayout(t *testing.T) {
	Convey("Given a dated layout", t, func() {
		s, _ := newStore()
		l := s.Layout()

		So(l.WorkDir, ShouldEqual, filepath.Join("/work", "2024_05_17"))
		So(l.Output, ShouldEqual, filepath.Join("/downloads", "2024_05_17", "video.mp4"))
		So(l.SegmentPath(3, StageFetched), ShouldEqual, filepath.Join(l.WorkDir, "raw", "3.ts"))
		So(l.SegmentPath(3, StageConverted), ShouldEqual, filepath.Join(l.WorkDir, "converted", "3.mp4"))
		So(l.RelSegmentPath(3, StageConverted), ShouldEqual, "converted/3.mp4")
		So(l.TempSegmentPath(3, StageConverted), ShouldEqual, filepath.Join(l.WorkDir, "converted", "3.part.mp4"))
		So(l.TempOutput(), ShouldEqual, filepath.Join("/downloads", "2024_05_17", "video.part.mp4"))
		So(l.ListPath(), ShouldEqual, filepath.Join(l.WorkDir, "segments.txt"))
	})
}

func TestStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s, fs := newStore()
		So(s.Prepare(), ShouldBeNil)

		Convey("Nothing should be fetched", func() {
			So(s.IsFetched(1), ShouldBeFalse)
			So(s.IsConverted(1), ShouldBeFalse)
			So(s.State(1), ShouldEqual, NotFetched)
		})

		Convey("Save should persist the raw bytes", func() {
			So(s.Save(1, StageFetched, []byte("raw")), ShouldBeNil)
			So(s.State(1), ShouldEqual, Fetched)
			So(string(lo.Must(afero.ReadFile(fs, s.Layout().SegmentPath(1, StageFetched)))), ShouldEqual, "raw")

			Convey("And leave no temporary files behind", func() {
				entries := lo.Must(afero.ReadDir(fs, s.Layout().StageDir(StageFetched)))
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("A converted segment should count as fetched", func() {
			So(s.Save(2, StageConverted, []byte("mp4")), ShouldBeNil)
			So(s.IsFetched(2), ShouldBeTrue)
			So(s.State(2), ShouldEqual, Converted)
		})

		Convey("A partial write should not count as complete", func() {
			tmp := s.Layout().TempSegmentPath(4, StageConverted)
			So(afero.WriteFile(fs, tmp, []byte("half"), 0o644), ShouldBeNil)
			So(s.IsConverted(4), ShouldBeFalse)

			Convey("Until it is committed", func() {
				So(s.Commit(tmp, 4, StageConverted), ShouldBeNil)
				So(s.IsConverted(4), ShouldBeTrue)
				So(lo.Must(afero.Exists(fs, tmp)), ShouldBeFalse)
			})
		})

		Convey("The merged output should only exist once committed", func() {
			So(s.PrepareOutput(), ShouldBeNil)
			So(afero.WriteFile(fs, s.Layout().TempOutput(), []byte("video"), 0o644), ShouldBeNil)
			So(s.OutputExists(), ShouldBeFalse)

			So(s.CommitOutput(), ShouldBeNil)
			So(s.OutputExists(), ShouldBeTrue)
		})

		Convey("State should be recomputed from disk on every query", func() {
			So(s.Save(5, StageFetched, []byte("raw")), ShouldBeNil)
			So(fs.Remove(s.Layout().SegmentPath(5, StageFetched)), ShouldBeNil)
			So(s.IsFetched(5), ShouldBeFalse)
		})
	})

	Convey("Given a locked store", t, func() {
		s, fs := newStore()
		So(s.Lock(), ShouldBeNil)

		Convey("A second lock should be rejected", func() {
			other := New(fs, s.Layout())
			err := other.Lock()
			So(errors.Is(err, ErrLocked), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "pid")
		})

		Convey("Unlock should release it", func() {
			So(s.Unlock(), ShouldBeNil)
			So(s.Lock(), ShouldBeNil)
		})

		Convey("Unlock should tolerate a missing lock", func() {
			So(s.Unlock(), ShouldBeNil)
			So(s.Unlock(), ShouldBeNil)
		})
	})

	Convey("Clean should remove the work directory", t, func() {
		s, fs := newStore()
		So(s.Prepare(), ShouldBeNil)
		So(s.Lock(), ShouldBeNil)
		So(s.Save(1, StageFetched, []byte("raw")), ShouldBeNil)
		So(s.WriteList([]byte("file 'raw/1.ts'\n")), ShouldBeNil)

		So(s.Clean(), ShouldBeNil)
		So(lo.Must(afero.Exists(fs, s.Layout().WorkDir)), ShouldBeFalse)
	})

	Convey("Clean should report every failure", t, func() {
		s, fs := newStore()
		So(s.Save(1, StageFetched, []byte("raw")), ShouldBeNil)

		ro := New(afero.NewReadOnlyFs(fs), s.Layout())
		err := ro.Clean()
		So(err, ShouldNotBeNil)

		var merr *multierror.Error
		So(errors.As(err, &merr), ShouldBeTrue)
		So(len(merr.Errors), ShouldBeGreaterThan, 1)
		So(lo.Must(afero.Exists(fs, s.Layout().WorkDir)), ShouldBeTrue)
	})
}
