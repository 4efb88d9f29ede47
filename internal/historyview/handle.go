package historyview

import (
	"time"

	"github.com/tOgg1/scrollback/internal/pointer"
)

// Handle applies one event. Effects from notices delivered since the last
// call are folded in.
func (e *Engine) Handle(ev Event) Effects {
	fx := e.Pending()
	switch ev := ev.(type) {
	case Resize:
		fx.Merge(e.resize(ev.Width))
	case Scroll:
		fx.Merge(e.scroll(ev.Top, ev.Height))
	case MousePress:
		e.mouse = ev.Point
		r := e.pointer.Press(e, e.absolute(ev.Point), ev.Button, e.at(ev.At), ev.Inactive)
		fx.Merge(fromPointer(r))
		fx.Merge(e.updateAutoscroll())
	case MouseMove:
		e.mouse = ev.Point
		fx.Merge(fromPointer(e.pointer.Move(e, e.absolute(ev.Point))))
		fx.Merge(e.updateAutoscroll())
	case MouseRelease:
		e.mouse = ev.Point
		fx.Merge(fromPointer(e.pointer.Release(e, e.absolute(ev.Point), ev.Button)))
		e.stop(TimerAutoscroll)
	case MouseDoubleClick:
		e.mouse = ev.Point
		fx.Merge(fromPointer(e.pointer.DoubleClick(e, e.absolute(ev.Point), e.at(ev.At))))
		fx.Merge(e.updateAutoscroll())
	case TouchBegin:
		e.stop(TimerKinetic)
		e.touch.Begin(ev.Point, e.at(ev.At))
	case TouchMove:
		fx.ScrollBy += e.clampScroll(e.touch.Move(ev.Point, e.at(ev.At)))
	case TouchEnd:
		fx.Merge(e.touchEnd(ev))
	case FocusLost:
		e.pointer.Cancel()
		e.touch.Stop()
		e.stop(TimerAutoscroll)
		e.stop(TimerKinetic)
		fx.Repaint = true
	case KeyCancel:
		if e.pointer.Action() != pointer.None {
			e.pointer.Cancel()
			e.stop(TimerAutoscroll)
			fx.Repaint = true
		} else {
			fx.Merge(e.ClearSelected())
		}
	case Tick:
		fx.Merge(e.tick(ev))
	}
	return fx
}

func (e *Engine) at(t time.Time) time.Time {
	if t.IsZero() {
		return e.now()
	}
	return t
}

func (e *Engine) resize(width int) Effects {
	if width == e.width {
		return Effects{}
	}
	e.width = width
	height := e.live.ResizeToWidth(width)
	if e.migrated != nil {
		height += e.migrated.ResizeToWidth(width)
	}
	e.cursor.Invalidate()
	e.logger.Debug().Int("width", width).Int("height", height).Msg("resized")
	return Effects{Repaint: true}
}

func (e *Engine) scroll(top, height int) Effects {
	changed := top != e.scrollTop || height != e.viewHeight
	e.scrollTop, e.viewHeight = top, height
	if !changed {
		return Effects{}
	}
	fx := Effects{Repaint: true}
	e.heavy.UnloadOutsideRange(e.heavyRange())

	if e.pointer.Action() != pointer.None {
		fx.Merge(fromPointer(e.pointer.Move(e, e.absolute(e.mouse))))
	}

	e.dates = true
	if e.cfg.DateHideTimeout > 0 {
		fx.Schedule = append(fx.Schedule, e.schedule(TimerDateHide, e.cfg.DateHideTimeout))
	}
	return fx
}

func (e *Engine) touchEnd(ev TouchEnd) Effects {
	var fx Effects
	tap, kinetic := e.touch.End(e.at(ev.At))
	switch {
	case tap:
		at := e.at(ev.At)
		fx.Merge(fromPointer(e.pointer.Press(e, e.absolute(ev.Point), pointer.ButtonLeft, at, false)))
		fx.Merge(fromPointer(e.pointer.Release(e, e.absolute(ev.Point), pointer.ButtonLeft)))
	case kinetic:
		fx.Schedule = append(fx.Schedule, e.schedule(TimerKinetic, e.cfg.TouchTickInterval))
	}
	return fx
}

func (e *Engine) tick(ev Tick) Effects {
	if ev.Timer < 0 || ev.Timer >= timerCount || !e.running[ev.Timer] || ev.Gen != e.gens[ev.Timer] {
		return Effects{}
	}
	e.running[ev.Timer] = false

	switch ev.Timer {
	case TimerAutoscroll:
		return e.autoscrollTick()
	case TimerKinetic:
		raw, more := e.touch.Tick(e.at(ev.At))
		delta := e.clampScroll(raw)
		fx := Effects{ScrollBy: delta}
		if delta != raw {
			e.touch.Stop()
			more = false
		}
		if more {
			fx.Schedule = append(fx.Schedule, e.schedule(TimerKinetic, e.cfg.TouchTickInterval))
		}
		return fx
	case TimerDateHide:
		e.dates = false
		return Effects{Repaint: true}
	}
	return Effects{}
}

// autoscrollDelta is the scroll step implied by the pointer position while
// selecting, zero away from the edges.
func (e *Engine) autoscrollDelta() int {
	if e.pointer.Action() != pointer.Selecting || e.viewHeight <= 0 {
		return 0
	}
	edge := e.cfg.AutoscrollEdge
	var delta int
	switch {
	case e.mouse.Y < edge:
		delta = -e.cfg.AutoscrollStep
	case e.mouse.Y >= e.viewHeight-edge:
		delta = e.cfg.AutoscrollStep
	}
	return e.clampScroll(delta)
}

func (e *Engine) updateAutoscroll() Effects {
	if e.autoscrollDelta() == 0 {
		e.stop(TimerAutoscroll)
		return Effects{}
	}
	if e.running[TimerAutoscroll] {
		return Effects{}
	}
	return Effects{Schedule: []Scheduled{e.schedule(TimerAutoscroll, e.cfg.AutoscrollInterval)}}
}

func (e *Engine) autoscrollTick() Effects {
	delta := e.autoscrollDelta()
	if delta == 0 {
		return Effects{}
	}
	return Effects{
		ScrollBy: delta,
		Schedule: []Scheduled{e.schedule(TimerAutoscroll, e.cfg.AutoscrollInterval)},
	}
}
