package historyview

import (
	"time"

	"github.com/tOgg1/scrollback/internal/pointer"
	"github.com/tOgg1/scrollback/internal/timeline"
)

// Event is an input handled by Engine.Handle.
type Event interface {
	isEvent()
}

// Resize changes the layout width.
type Resize struct {
	Width int
}

// Scroll reports the scroll offset and viewport height.
type Scroll struct {
	Top    int
	Height int
}

// MousePress is a button press. Point is viewport-relative.
type MousePress struct {
	Point    timeline.Point
	Button   pointer.Button
	At       time.Time
	Inactive bool
}

// MouseMove is a pointer move. Point is viewport-relative.
type MouseMove struct {
	Point timeline.Point
}

// MouseRelease is a button release. Point is viewport-relative.
type MouseRelease struct {
	Point  timeline.Point
	Button pointer.Button
}

// MouseDoubleClick replaces the second press of a double click.
type MouseDoubleClick struct {
	Point timeline.Point
	At    time.Time
}

// TouchBegin starts a touch. Point is viewport-relative.
type TouchBegin struct {
	Point timeline.Point
	At    time.Time
}

// TouchMove moves a touch.
type TouchMove struct {
	Point timeline.Point
	At    time.Time
}

// TouchEnd lifts the finger.
type TouchEnd struct {
	Point timeline.Point
	At    time.Time
}

// FocusLost cancels any gesture.
type FocusLost struct{}

// KeyCancel cancels the gesture, or clears the selection when idle.
type KeyCancel struct{}

// Tick delivers a timer scheduled through Effects.Schedule.
type Tick struct {
	Timer Timer
	Gen   uint64
	At    time.Time
}

func (Resize) isEvent()           {}
func (Scroll) isEvent()           {}
func (MousePress) isEvent()       {}
func (MouseMove) isEvent()        {}
func (MouseRelease) isEvent()     {}
func (MouseDoubleClick) isEvent() {}
func (TouchBegin) isEvent()       {}
func (TouchMove) isEvent()        {}
func (TouchEnd) isEvent()         {}
func (FocusLost) isEvent()        {}
func (KeyCancel) isEvent()        {}
func (Tick) isEvent()             {}

// Timer identifies an engine timer.
type Timer int

const (
	TimerAutoscroll Timer = iota
	TimerKinetic
	TimerDateHide
	timerCount
)

func (t Timer) String() string {
	switch t {
	case TimerAutoscroll:
		return "autoscroll"
	case TimerKinetic:
		return "kinetic"
	case TimerDateHide:
		return "date-hide"
	default:
		return "unknown"
	}
}

// Scheduled asks the host to deliver Tick{Timer, Gen} after After.
type Scheduled struct {
	Timer Timer
	Gen   uint64
	After time.Duration
}

// Effects is what the host must do after an event.
type Effects struct {
	Repaint          bool
	ScrollBy         int
	Schedule         []Scheduled
	Activated        *timeline.Link
	StartDrag        []timeline.ItemID
	SelectionChanged bool
}

// Merge folds o into fx.
func (fx *Effects) Merge(o Effects) {
	fx.Repaint = fx.Repaint || o.Repaint
	fx.SelectionChanged = fx.SelectionChanged || o.SelectionChanged
	fx.ScrollBy += o.ScrollBy
	fx.Schedule = append(fx.Schedule, o.Schedule...)
	if o.Activated != nil {
		fx.Activated = o.Activated
	}
	if o.StartDrag != nil {
		fx.StartDrag = o.StartDrag
	}
}

func fromPointer(r pointer.Result) Effects {
	return Effects{
		Repaint:          r.Repaint || r.SelectionChanged,
		SelectionChanged: r.SelectionChanged,
		Activated:        r.Activated,
		StartDrag:        r.StartDrag,
	}
}
