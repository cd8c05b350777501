package types_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/perfectcircle/internal/domain/model"
	types "github.com/okian/perfectcircle/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStrokeRequestValidate(t *testing.T) {
	Convey("Given stroke requests", t, func() {
		pts := []model.Point{model.Pt(1, 1), model.Pt(2, 2)}

		Convey("When the request is well formed", func() {
			req := types.StrokeRequest{Width: 100, Height: 50, Points: pts}

			Convey("Then it validates and exposes its surface", func() {
				So(req.Validate(10), ShouldBeNil)
				So(req.Validate(0), ShouldBeNil)
				So(req.Surface(), ShouldResemble, model.Surface{Width: 100, Height: 50})
			})
		})

		Convey("When the surface is not drawable", func() {
			for _, req := range []types.StrokeRequest{
				{Width: 0, Height: 50, Points: pts},
				{Width: -1, Height: 50, Points: pts},
				{Width: math.Inf(1), Height: 50, Points: pts},
			} {
				So(errors.Is(req.Validate(0), types.ErrInvalidSurface), ShouldBeTrue)
			}
		})

		Convey("When there are no points", func() {
			req := types.StrokeRequest{Width: 10, Height: 10}
			So(errors.Is(req.Validate(0), types.ErrNoPoints), ShouldBeTrue)
		})

		Convey("When there are too many points", func() {
			req := types.StrokeRequest{Width: 10, Height: 10, Points: pts}
			So(errors.Is(req.Validate(1), types.ErrTooManyPoints), ShouldBeTrue)
		})
	})
}

func TestClientFramePoint(t *testing.T) {
	Convey("Given a move frame", t, func() {
		f := types.ClientFrame{Type: types.FrameMove, X: 3, Y: 4}

		Convey("Then its point carries the coordinates", func() {
			So(f.Point(), ShouldResemble, model.Pt(3, 4))
		})
	})
}
