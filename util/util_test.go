package util

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("file__name.txt"), ShouldEqual, "file_name.txt")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "segment", "segments"), ShouldEqual, "1 segment")
		So(Quantify(2, "segment", "segments"), ShouldEqual, "2 segments")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestDurationWords(t *testing.T) {
	Convey("DurationWords", t, func() {
		Convey("Should spell out every non-zero unit", func() {
			So(DurationWords(time.Hour+2*time.Minute+3*time.Second), ShouldEqual, "1 hour, 2 minutes and 3 seconds")
		})
		Convey("Should omit zero units", func() {
			So(DurationWords(2*time.Hour+5*time.Second), ShouldEqual, "2 hours and 5 seconds")
			So(DurationWords(90*time.Minute), ShouldEqual, "1 hour and 30 minutes")
			So(DurationWords(time.Second), ShouldEqual, "1 second")
		})
		Convey("Should handle zero", func() {
			So(DurationWords(0), ShouldEqual, "0 seconds")
		})
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/tmp/util/dir", 0o755))
		lo.Must0(fs.WriteFile("/tmp/util/dir/a", []byte("a"), 0o644))

		Convey("Should remove a directory tree", func() {
			So(Delete("/tmp/util/dir"), ShouldBeNil)
			So(lo.Must(fs.Exists("/tmp/util/dir")), ShouldBeFalse)
		})
		Convey("Should fail for missing paths", func() {
			So(Delete("/tmp/util/missing"), ShouldNotBeNil)
		})
	})
}
