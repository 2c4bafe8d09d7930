package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/source"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestOptions(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		convey.So(Setup(), convey.ShouldBeNil)

		convey.Convey("ResourceFor should render the dated template", func() {
			res, err := ResourceFor(source.DatedTarget(source.Date{Year: 2024, Month: 3, Day: 7}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.BaseURL, convey.ShouldContainSubstring, "20240307")
			convey.So(res.StartID, convey.ShouldEqual, 1)
			convey.So(res.URL(5), convey.ShouldEndWith, "media_5.ts")
		})

		convey.Convey("ProbeOptions should carry the network bounds", func() {
			opts := ProbeOptions()
			convey.So(opts.Timeout, convey.ShouldEqual, 5*time.Second)
			convey.So(opts.Delay, convey.ShouldEqual, 200*time.Millisecond)
			convey.So(opts.Retries, convey.ShouldEqual, 2)
		})

		convey.Convey("PipelineOptions should parse the strategy", func() {
			opts, err := PipelineOptions()
			convey.So(err, convey.ShouldBeNil)
			convey.So(opts.Strategy, convey.ShouldEqual, pipeline.Transcode)

			viper.Set(key.PipelineStrategy, "shuffle")
			defer viper.Set(key.PipelineStrategy, "transcode")
			_, err = PipelineOptions()
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Configured roots should drive the layout", func() {
			viper.Set(key.DownloadsPath, "/videos")
			viper.Set(key.DownloadsWorkPath, "/scratch")
			defer viper.Set(key.DownloadsPath, "")
			defer viper.Set(key.DownloadsWorkPath, "")

			layout := LayoutFor(source.NamedTarget("show"))
			convey.So(layout.WorkDir, convey.ShouldEqual, filepath.Join("/scratch", "show"))
			convey.So(layout.Output, convey.ShouldEqual, filepath.Join("/videos", "show", "video.mp4"))
			convey.So(layout.RawExt, convey.ShouldEqual, ".ts")
		})

		convey.Convey("SegmentDuration should convert seconds", func() {
			convey.So(SegmentDuration(), convey.ShouldEqual, 10*time.Second)
		})
	})
}
