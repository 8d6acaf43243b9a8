package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.Default()

		Convey("Then it holds ten hotspots with ids 1..10", func() {
			So(c.Size(), ShouldEqual, 10)
			for i, h := range c.Hotspots() {
				So(h.ID, ShouldEqual, i+1)
			}
			So(c.Debug(), ShouldBeFalse)
		})

		Convey("And Hotspots returns a copy", func() {
			hs := c.Hotspots()
			hs[0].X = 99
			again, ok := c.ByID(1)
			So(ok, ShouldBeTrue)
			So(again.X, ShouldEqual, 25.9)
		})

		Convey("And unknown ids are not found", func() {
			_, ok := c.ByID(42)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given hotspot lists to validate", t, func() {
		Convey("When the list is empty", func() {
			_, err := catalog.New(nil, false)
			So(errors.Is(err, catalog.ErrEmptyCatalog), ShouldBeTrue)
		})

		Convey("When two hotspots share an id", func() {
			_, err := catalog.New([]model.Hotspot{
				{ID: 1, X: 0, Y: 0, W: 1, H: 1},
				{ID: 1, X: 5, Y: 5, W: 1, H: 1},
			}, false)
			So(errors.Is(err, catalog.ErrDuplicateID), ShouldBeTrue)
		})

		Convey("When a rectangle leaves the stage", func() {
			_, err := catalog.New([]model.Hotspot{{ID: 1, X: 95, Y: 0, W: 10, H: 1}}, false)
			So(errors.Is(err, catalog.ErrOutOfBounds), ShouldBeTrue)

			_, err = catalog.New([]model.Hotspot{{ID: 2, X: -1, Y: 0, W: 1, H: 1}}, false)
			So(errors.Is(err, catalog.ErrOutOfBounds), ShouldBeTrue)
		})

		Convey("When a rectangle touches the stage edge", func() {
			c, err := catalog.New([]model.Hotspot{{ID: 7, X: 90, Y: 90, W: 10, H: 10}}, true)
			So(err, ShouldBeNil)
			So(c.Size(), ShouldEqual, 1)
			So(c.Debug(), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given catalog files", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When the path is empty", func() {
			c, err := catalog.Load(ctx, "", true)
			So(err, ShouldBeNil)
			So(c.Size(), ShouldEqual, 10)
			So(c.Debug(), ShouldBeTrue)
		})

		Convey("When the file is valid YAML", func() {
			path := filepath.Join(dir, "catalog.yaml")
			content := `
debug: true
hotspots:
  - {id: 1, x: 10, y: 10, w: 5, h: 5}
  - {id: 2, x: 50.5, y: 60, w: 10.25, h: 3}
`
			So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

			c, err := catalog.Load(ctx, path, false)
			So(err, ShouldBeNil)
			So(c.Size(), ShouldEqual, 2)
			So(c.Debug(), ShouldBeTrue)
			h, ok := c.ByID(2)
			So(ok, ShouldBeTrue)
			So(h.X, ShouldEqual, 50.5)
			So(h.W, ShouldEqual, 10.25)
		})

		Convey("When the file is missing", func() {
			_, err := catalog.Load(ctx, filepath.Join(dir, "nope.yaml"), false)
			So(errors.Is(err, catalog.ErrLoadCatalog), ShouldBeTrue)
		})

		Convey("When the file holds an invalid catalog", func() {
			path := filepath.Join(dir, "dup.yaml")
			content := `
hotspots:
  - {id: 1, x: 10, y: 10, w: 5, h: 5}
  - {id: 1, x: 20, y: 10, w: 5, h: 5}
`
			So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)
			_, err := catalog.Load(ctx, path, false)
			So(errors.Is(err, catalog.ErrDuplicateID), ShouldBeTrue)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a stage rectangle", t, func() {
		r := catalog.Rect{Left: 100, Top: 50, Width: 800, Height: 400}

		Convey("When a tap lands in the middle", func() {
			p, err := catalog.Normalize(500, 250, r)
			So(err, ShouldBeNil)
			So(p.X, ShouldEqual, 50.0)
			So(p.Y, ShouldEqual, 50.0)
		})

		Convey("When a tap lands on the top-left corner", func() {
			p, err := catalog.Normalize(100, 50, r)
			So(err, ShouldBeNil)
			So(p.X, ShouldEqual, 0.0)
			So(p.Y, ShouldEqual, 0.0)
		})

		Convey("When the stage has zero width or height", func() {
			_, err := catalog.Normalize(10, 10, catalog.Rect{Width: 0, Height: 100})
			So(errors.Is(err, catalog.ErrDegenerateStage), ShouldBeTrue)
			_, err = catalog.Normalize(10, 10, catalog.Rect{Width: 100, Height: 0})
			So(errors.Is(err, catalog.ErrDegenerateStage), ShouldBeTrue)
		})
	})
}
