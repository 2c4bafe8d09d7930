package discovery

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/segrab-cli/segrab/probe"
	"github.com/segrab-cli/segrab/source"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeOrigin reports ids [start, start+count) as present, optionally with holes.
type fakeOrigin struct {
	start, count int
	absent       map[int]bool
	transient    map[int]bool
	probed       []int
}

func (f *fakeOrigin) Probe(_ context.Context, id int) (probe.Result, error) {
	f.probed = append(f.probed, id)

	if f.transient[id] {
		return probe.Result{ID: id, Status: probe.Transient}, &probe.TransientError{ID: id, Attempts: 3, Err: errors.New("timeout")}
	}

	if f.absent[id] || id < f.start || id >= f.start+f.count {
		return probe.Result{ID: id, Status: probe.Absent, Code: 404}, nil
	}

	return probe.Result{ID: id, Status: probe.Present, Payload: []byte{byte(id)}, Code: 200}, nil
}

func probeBound(n int) int {
	return 2*int(math.Ceil(math.Log2(float64(n)))) + 4
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()

	for _, start := range []int{0, 1} {
		for _, n := range []int{1, 2, 3, 5, 8, 100, 777, 1024} {
			Convey("Given an origin with segments starting at id "+strconv.Itoa(start)+" and count "+strconv.Itoa(n), t, func() {
				origin := &fakeOrigin{start: start, count: n}
				res := source.Resource{BaseURL: "http://origin/media_", StartID: start, Extension: ".ts"}

				result, err := Discover(ctx, origin, res)

				Convey("The exact count should be discovered", func() {
					So(err, ShouldBeNil)
					So(result.Count, ShouldEqual, n)
					So(result.StartID, ShouldEqual, start)
					So(result.LastID(), ShouldEqual, start+n-1)
				})

				Convey("The probe count should be logarithmic", func() {
					So(result.Probes, ShouldBeLessThanOrEqualTo, probeBound(n))
					So(len(origin.probed), ShouldEqual, result.Probes)
				})

				Convey("No id should be probed twice", func() {
					seen := make(map[int]bool)
					for _, id := range origin.probed {
						So(seen[id], ShouldBeFalse)
						seen[id] = true
					}
				})
			})
		}
	}

	Convey("Given an origin without the first segment", t, func() {
		origin := &fakeOrigin{start: 1, count: 0}
		res := source.Resource{BaseURL: "http://origin/", StartID: 1}

		_, err := Discover(ctx, origin, res)
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		So(origin.probed, ShouldResemble, []int{1})
	})

	Convey("Given an origin that times out during the search", t, func() {
		res := source.Resource{BaseURL: "http://origin/", StartID: 1}

		Convey("A transient failure in the exponential phase should abort, not truncate", func() {
			origin := &fakeOrigin{start: 1, count: 777, transient: map[int]bool{8: true}}
			result, err := Discover(ctx, origin, res)

			var transient *probe.TransientError
			So(errors.As(err, &transient), ShouldBeTrue)
			So(transient.ID, ShouldEqual, 8)
			So(result.Count, ShouldEqual, 0)
		})

		Convey("A transient failure in the binary phase should abort, not truncate", func() {
			origin := &fakeOrigin{start: 1, count: 777, transient: map[int]bool{768: true}}
			_, err := Discover(ctx, origin, res)

			var transient *probe.TransientError
			So(errors.As(err, &transient), ShouldBeTrue)
		})
	})

	Convey("Given an origin with a hole", t, func() {
		res := source.Resource{BaseURL: "http://origin/", StartID: 1}

		for _, hole := range []int{2, 3, 40, 300, 700} {
			origin := &fakeOrigin{start: 1, count: 777, absent: map[int]bool{hole: true}}
			result, err := Discover(ctx, origin, res)
			So(err, ShouldBeNil)

			Convey("The count should never reach past an absent probed id, hole "+strconv.Itoa(hole), func() {
				for _, id := range origin.probed {
					if id == hole || id > 777 {
						So(result.Count, ShouldBeLessThanOrEqualTo, id-res.StartID)
					}
				}
			})
		}
	})

	Convey("Given an observer", t, func() {
		origin := &fakeOrigin{start: 1, count: 10}
		res := source.Resource{BaseURL: "http://origin/", StartID: 1}

		Convey("It should receive every present payload exactly once", func() {
			observed := make(map[int][]byte)
			result, err := Discover(ctx, origin, res, WithObserver(func(id int, payload []byte) error {
				So(observed, ShouldNotContainKey, id)
				observed[id] = payload
				return nil
			}))

			So(err, ShouldBeNil)
			So(result.Count, ShouldEqual, 10)
			So(observed, ShouldContainKey, 1)
			for id, payload := range observed {
				So(id, ShouldBeBetweenOrEqual, 1, 10)
				So(payload, ShouldResemble, []byte{byte(id)})
			}
		})

		Convey("Its error should abort the discovery", func() {
			boom := errors.New("disk full")
			_, err := Discover(ctx, origin, res, WithObserver(func(int, []byte) error { return boom }))
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}
