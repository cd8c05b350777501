package capture

import (
	"math"
	"testing"

	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var surface = model.Surface{Width: 400, Height: 300}

func drawCircle(m Machine, n int) Machine {
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		p := model.Pt(200+100*math.Cos(a), 150+100*math.Sin(a))
		if i == 0 {
			m = m.Begin(p)
			continue
		}
		m = m.Move(p)
	}
	return m
}

type countingScorer struct {
	calls *int
}

func (c countingScorer) Score(model.Stroke) scoring.Result {
	*c.calls++
	return scoring.Result{Score: 42}
}

func (c countingScorer) MinPoints() int { return scoring.DefaultMinPoints }

func TestMachineLifecycle(t *testing.T) {
	Convey("Given a new machine", t, func() {
		m := New(surface)

		Convey("Then it is idle with nothing captured", func() {
			So(m.State(), ShouldEqual, Idle)
			So(m.State().String(), ShouldEqual, "idle")
			So(m.Stroke(), ShouldBeEmpty)
			So(m.Result(), ShouldBeNil)
			So(m.MaxPoints(), ShouldEqual, DefaultMaxPoints)
		})

		Convey("When a full circle is drawn and ended", func() {
			m = drawCircle(m, 72)
			So(m.State(), ShouldEqual, Drawing)
			m, done, ok := m.End()

			Convey("Then the stroke is scored", func() {
				So(ok, ShouldBeTrue)
				So(m.State(), ShouldEqual, Completed)
				So(done.Insufficient(), ShouldBeFalse)
				So(done.Hint, ShouldBeFalse)
				So(done.Result.Score, ShouldBeGreaterThanOrEqualTo, 95)
				So(m.Result(), ShouldResemble, done.Result)
				So(done.Stroke.Len(), ShouldEqual, 73)
			})

			Convey("And a new Begin discards the previous result", func() {
				m = m.Begin(model.Pt(1, 1))
				So(m.State(), ShouldEqual, Drawing)
				So(m.Result(), ShouldBeNil)
				So(m.Stroke(), ShouldResemble, model.Stroke{model.Pt(1, 1)})
			})
		})
	})
}

func TestMachineShortStroke(t *testing.T) {
	Convey("Given a stroke with eight samples", t, func() {
		calls := 0
		m := New(surface, WithScorer(countingScorer{calls: &calls}))
		m = m.Begin(model.Pt(10, 10))
		for i := 1; i < 8; i++ {
			m = m.Move(model.Pt(10+float64(i), 10))
		}

		Convey("When it ends", func() {
			m, done, ok := m.End()

			Convey("Then no score is produced and the machine is idle", func() {
				So(ok, ShouldBeTrue)
				So(done.Result, ShouldBeNil)
				So(done.Hint, ShouldBeTrue)
				So(done.Stroke.Len(), ShouldEqual, 8)
				So(m.State(), ShouldEqual, Idle)
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When a ninth sample arrives first", func() {
			m = m.Move(model.Pt(30, 30))
			_, done, _ := m.End()

			Convey("Then the scorer runs once", func() {
				So(calls, ShouldEqual, 1)
				So(done.Result.Score, ShouldEqual, 42)
			})
		})
	})
}

func TestMachineIgnoredTransitions(t *testing.T) {
	Convey("Given an idle machine", t, func() {
		m := New(surface)

		Convey("When Move is called", func() {
			m = m.Move(model.Pt(5, 5))

			Convey("Then nothing is captured", func() {
				So(m.State(), ShouldEqual, Idle)
				So(m.Stroke(), ShouldBeEmpty)
			})
		})

		Convey("When End is called", func() {
			next, done, ok := m.End()

			Convey("Then the machine is unchanged and there is no completion", func() {
				So(ok, ShouldBeFalse)
				So(done, ShouldResemble, Completion{})
				So(next.State(), ShouldEqual, Idle)
			})
		})
	})

	Convey("Given a completed machine", t, func() {
		m, _, _ := drawCircle(New(surface), 36).End()
		res := m.Result()

		Convey("When Move and End arrive", func() {
			m = m.Move(model.Pt(1, 1))
			m, _, ok := m.End()

			Convey("Then the completed state is kept", func() {
				So(ok, ShouldBeFalse)
				So(m.State(), ShouldEqual, Completed)
				So(m.Result(), ShouldEqual, res)
			})
		})
	})
}

func TestMachineReset(t *testing.T) {
	Convey("Given a machine in each state", t, func() {
		idle := New(surface)
		drawing := idle.Begin(model.Pt(3, 3)).Move(model.Pt(4, 4))
		completed, _, _ := drawCircle(New(surface), 36).End()

		Convey("When reset", func() {
			for _, m := range []Machine{idle, drawing, completed} {
				once := m.Reset()
				twice := once.Reset()

				Convey("Then it is idle with no residual state ("+m.State().String()+")", func() {
					So(once.State(), ShouldEqual, Idle)
					So(once.Stroke(), ShouldBeEmpty)
					So(once.Result(), ShouldBeNil)
					So(twice, ShouldResemble, once)
				})
			}
		})
	})
}

func TestMachineClamping(t *testing.T) {
	Convey("Given samples outside the surface", t, func() {
		m := New(surface).
			Begin(model.Pt(-10, 500)).
			Move(model.Pt(999, -3)).
			Move(model.Pt(math.NaN(), 20))

		Convey("Then every captured point is clamped per axis", func() {
			So(m.Stroke(), ShouldResemble, model.Stroke{
				model.Pt(0, 300),
				model.Pt(400, 0),
				model.Pt(0, 20),
			})
		})

		Convey("When the surface shrinks mid-stroke", func() {
			m = m.Resize(100, 100).Move(model.Pt(250, 250))

			Convey("Then earlier points are untouched and new ones use the new bounds", func() {
				s := m.Stroke()
				So(s[1], ShouldResemble, model.Pt(400, 0))
				So(s.Last(), ShouldResemble, model.Pt(100, 100))
				So(m.Surface(), ShouldResemble, model.Surface{Width: 100, Height: 100})
			})
		})
	})

	Convey("Given a 300x300 machine", t, func() {
		m := New(model.Surface{Width: 300, Height: 300})

		Convey("When resized to negative dimensions", func() {
			m = m.Resize(-50, -50).Begin(model.Pt(120, 80))

			Convey("Then the old surface is kept and points stay in bounds", func() {
				So(m.Surface(), ShouldResemble, model.Surface{Width: 300, Height: 300})
				So(m.Stroke(), ShouldResemble, model.Stroke{model.Pt(120, 80)})
			})
		})

		Convey("When resized to zero or NaN before a circle is drawn", func() {
			m = m.Resize(0, 0).Resize(math.NaN(), 200)
			m = drawCircle(m, 20)
			_, done, ok := m.End()

			Convey("Then the circle is captured intact and scored", func() {
				So(ok, ShouldBeTrue)
				So(done.Result, ShouldNotBeNil)
				So(done.Result.Score, ShouldBeGreaterThan, 90)
				So(done.Result.Circle.Radius, ShouldAlmostEqual, 100, 1)
			})
		})
	})
}

func TestMachineMaxPoints(t *testing.T) {
	Convey("Given a machine bounded to ten samples", t, func() {
		m := New(surface, WithMaxPoints(10)).Begin(model.Pt(0, 0))
		for i := 1; i < 50; i++ {
			m = m.Move(model.Pt(float64(i), 0))
		}

		Convey("Then samples past the bound are dropped", func() {
			So(m.Stroke().Len(), ShouldEqual, 10)
			So(m.Stroke().Last(), ShouldResemble, model.Pt(9, 0))
		})

		Convey("And the stroke is still scored", func() {
			_, done, ok := m.End()
			So(ok, ShouldBeTrue)
			So(done.Result, ShouldNotBeNil)
		})
	})
}

func TestMachineSnapshots(t *testing.T) {
	Convey("Given a completed stroke handed off", t, func() {
		m, done, _ := drawCircle(New(surface), 36).End()

		Convey("When the caller mutates the handed-off stroke", func() {
			done.Stroke[0] = model.Pt(-1, -1)

			Convey("Then the machine's copy is unaffected", func() {
				So(m.Stroke()[0], ShouldNotResemble, model.Pt(-1, -1))
			})
		})
	})
}
