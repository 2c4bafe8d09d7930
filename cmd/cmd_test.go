package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/segrab-cli/segrab/pipeline"
	"github.com/segrab-cli/segrab/source"
	"github.com/segrab-cli/segrab/store"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExplain(t *testing.T) {
	target := source.NamedTarget("show")

	Convey("explain should tell apart missing, locked and interrupted downloads", t, func() {
		notFound := explain(target, fmt.Errorf("%w: first segment is absent", pipeline.ErrVideoNotFound))
		So(notFound.Error(), ShouldContainSubstring, "no video found")
		So(errors.Is(notFound, pipeline.ErrVideoNotFound), ShouldBeTrue)

		locked := explain(target, store.ErrLocked)
		So(locked.Error(), ShouldContainSubstring, "--force")

		partial := explain(target, &pipeline.FetchFailedError{ID: 4, Err: errors.New("timeout")})
		So(partial.Error(), ShouldContainSubstring, "again to resume")

		other := errors.New("boom")
		So(explain(target, other), ShouldEqual, other)
	})
}
