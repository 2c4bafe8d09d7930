package config

import (
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/key"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func TestParse(t *testing.T) {
	convey.Convey("Parse should follow the type of the default", t, func() {
		parse := func(name string, words ...string) (any, error) {
			field := Default[name]
			return field.Parse(words)
		}

		v, err := parse(key.NetworkRetries, "7")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldEqual, 7)

		v, err = parse(key.SourceSegmentSeconds, "6.5")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldEqual, 6.5)

		v, err = parse(key.NetworkDelay, "1500ms")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldEqual, "1.5s")

		v, err = parse(key.NetworkHeaders, "Referer=https://example.com", "X-Id=1")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldResemble, map[string]string{"Referer": "https://example.com", "X-Id": "1"})

		v, err = parse(key.NetworkUserAgent, "curl/8.0", "(segrab)")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldEqual, "curl/8.0 (segrab)")

		_, err = parse(key.HistorySave, "maybe")
		convey.So(err, convey.ShouldNotBeNil)

		_, err = parse(key.NetworkHeaders, "novalue")
		convey.So(err, convey.ShouldNotBeNil)

		_, err = parse(key.NetworkRetries)
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestLookup(t *testing.T) {
	convey.Convey("Lookup should suggest the closest key", t, func() {
		_, err := Lookup("network.retires")

		var unknown *UnknownKeyError
		convey.So(errors.As(err, &unknown), convey.ShouldBeTrue)
		convey.So(unknown.Closest, convey.ShouldEqual, key.NetworkRetries)

		field, err := Lookup(key.FFmpegPath)
		convey.So(err, convey.ShouldBeNil)
		convey.So(field.Value, convey.ShouldEqual, "ffmpeg")
	})
}

func TestFile(t *testing.T) {
	convey.Convey("Given an empty config directory", t, func() {
		filesystem.SetMemMapFs()
		convey.So(Setup(), convey.ShouldBeNil)

		convey.Convey("Set should create the file and keep the value", func() {
			value, err := Set(key.NetworkDelay, []string{"1s"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(value, convey.ShouldEqual, "1s")
			convey.So(viper.GetDuration(key.NetworkDelay), convey.ShouldEqual, time.Second)

			exists, err := afero.Exists(filesystem.API(), Path())
			convey.So(err, convey.ShouldBeNil)
			convey.So(exists, convey.ShouldBeTrue)

			data, err := afero.ReadFile(filesystem.API(), Path())
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(data), convey.ShouldContainSubstring, "delay")

			convey.Convey("Reset should restore the default", func() {
				convey.So(Reset(key.NetworkDelay), convey.ShouldBeNil)
				convey.So(viper.GetDuration(key.NetworkDelay), convey.ShouldEqual, 200*time.Millisecond)
			})

			convey.Convey("Write should refuse to overwrite without force", func() {
				convey.So(Write(false), convey.ShouldNotBeNil)
				convey.So(Write(true), convey.ShouldBeNil)
			})

			convey.Convey("Delete should remove it", func() {
				convey.So(Delete(), convey.ShouldBeNil)
				exists, _ := afero.Exists(filesystem.API(), Path())
				convey.So(exists, convey.ShouldBeFalse)
				convey.So(Delete(), convey.ShouldBeNil)
			})
		})

		convey.Convey("Set should reject unknown keys", func() {
			_, err := Set("network.dleay", []string{"1s"})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.So(Reset(key.NetworkDelay), convey.ShouldBeNil)
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		filesystem.SetMemMapFs()
		convey.So(Setup(), convey.ShouldBeNil)

		convey.Convey("It should be valid", func() {
			convey.So(Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Every broken setting should be reported", func() {
			viper.Set(key.PipelineStrategy, "remux")
			viper.Set(key.NetworkRetries, -1)
			viper.Set(key.SourceURLTemplate, "{{.Year")
			defer func() {
				viper.Set(key.PipelineStrategy, Default[key.PipelineStrategy].Value)
				viper.Set(key.NetworkRetries, Default[key.NetworkRetries].Value)
				viper.Set(key.SourceURLTemplate, Default[key.SourceURLTemplate].Value)
			}()

			err := Validate()
			var merr *multierror.Error
			convey.So(errors.As(err, &merr), convey.ShouldBeTrue)
			convey.So(merr.Errors, convey.ShouldHaveLength, 3)
			convey.So(err.Error(), convey.ShouldContainSubstring, key.PipelineStrategy)
		})
	})
}
