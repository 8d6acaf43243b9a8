package hittest_test

import (
	"testing"

	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/hittest"
	"github.com/okian/spotcheck/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestContains(t *testing.T) {
	Convey("Given a hotspot", t, func() {
		h := model.Hotspot{ID: 1, X: 10, Y: 20, W: 5, H: 5}

		Convey("Then edges and corners are inside", func() {
			So(hittest.Contains(h, model.Point{X: 10, Y: 20}), ShouldBeTrue)
			So(hittest.Contains(h, model.Point{X: 15, Y: 25}), ShouldBeTrue)
			So(hittest.Contains(h, model.Point{X: 12.5, Y: 22.5}), ShouldBeTrue)
		})

		Convey("And points just outside are not", func() {
			So(hittest.Contains(h, model.Point{X: 9.99, Y: 22}), ShouldBeFalse)
			So(hittest.Contains(h, model.Point{X: 15.01, Y: 22}), ShouldBeFalse)
			So(hittest.Contains(h, model.Point{X: 12, Y: 19.99}), ShouldBeFalse)
			So(hittest.Contains(h, model.Point{X: 12, Y: 25.01}), ShouldBeFalse)
		})
	})
}

func TestTest(t *testing.T) {
	Convey("Given overlapping hotspots", t, func() {
		hotspots := []model.Hotspot{
			{ID: 1, X: 0, Y: 0, W: 50, H: 50},
			{ID: 2, X: 25, Y: 25, W: 50, H: 50},
			{ID: 3, X: 90, Y: 90, W: 10, H: 10},
		}
		overlap := model.Point{X: 30, Y: 30}

		Convey("When nothing is found yet", func() {
			h, ok := hittest.Test(overlap, hotspots, nil)

			Convey("Then the first listed hotspot wins", func() {
				So(ok, ShouldBeTrue)
				So(h.ID, ShouldEqual, 1)
			})
		})

		Convey("When the first hotspot is already found", func() {
			found := map[int]struct{}{1: {}}
			h, ok := hittest.Test(overlap, hotspots, found)

			Convey("Then the next containing hotspot is returned", func() {
				So(ok, ShouldBeTrue)
				So(h.ID, ShouldEqual, 2)
			})

			Convey("And the found set is untouched", func() {
				So(len(found), ShouldEqual, 1)
			})
		})

		Convey("When every containing hotspot is found", func() {
			_, ok := hittest.Test(overlap, hotspots, map[int]struct{}{1: {}, 2: {}})
			So(ok, ShouldBeFalse)
		})

		Convey("When the point misses everything", func() {
			_, ok := hittest.Test(model.Point{X: 80, Y: 10}, hotspots, nil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given the default catalog", t, func() {
		hotspots := catalog.Default().Hotspots()

		Convey("Then every hotspot centre hits its own hotspot once found ones are excluded", func() {
			found := map[int]struct{}{}
			for _, h := range hotspots {
				got, ok := hittest.Test(h.Center(), hotspots, found)
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, h.ID)
				found[got.ID] = struct{}{}
			}
		})
	})
}
