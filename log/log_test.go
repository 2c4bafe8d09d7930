package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestFilename(t *testing.T) {
	Convey("Log files should be named after the day", t, func() {
		So(Filename(time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)), ShouldEqual, "2024-03-07.log")
	})
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("WithFields should still return a usable entry", func() {
			entry := WithFields(Fields{"id": 3})
			So(entry, ShouldNotBeNil)
			So(func() { entry.Info("ignored") }, ShouldNotPanic)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)
		}()

		So(Setup(), ShouldBeNil)

		Convey("Entries at or above the level should reach today's file", func() {
			Infof("fetched %d", 3)
			WithFields(Fields{"stage": "merge"}).Debug("merging")
			Tracef("hidden %d", 1)

			data, err := afero.ReadFile(filesystem.API(), filepath.Join(where.Logs(), Filename(time.Now())))
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "fetched 3")
			So(string(data), ShouldContainSubstring, "stage=merge")
			So(string(data), ShouldNotContainSubstring, "hidden")
		})
	})
}
