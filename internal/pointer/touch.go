package pointer

import (
	"math"
	"time"

	"github.com/tOgg1/scrollback/internal/timeline"
)

// TouchPhase is the touch-scroll state.
type TouchPhase int

const (
	TouchIdle TouchPhase = iota
	TouchPending
	TouchScrolling
	TouchKinetic
)

func (p TouchPhase) String() string {
	switch p {
	case TouchIdle:
		return "idle"
	case TouchPending:
		return "pending"
	case TouchScrolling:
		return "scrolling"
	case TouchKinetic:
		return "kinetic"
	default:
		return "unknown"
	}
}

// Speeds below this many rows per second count as finger jitter.
const fingerAccuracy = 3.0

// Touch turns finger movement into scroll deltas and decelerates after
// release.
type Touch struct {
	phase    TouchPhase
	start    timeline.Point
	prev     timeline.Point
	prevAt   time.Time
	lastTick time.Time
	speed    float64 // rows per millisecond, positive scrolls content down
	residual float64
	caught   bool

	dist  int
	decel float64 // rows per millisecond squared
}

// NewTouch creates a touch tracker. dist is the hysteresis before a touch
// becomes a scroll, decel the kinetic deceleration.
func NewTouch(dist int, decel float64) *Touch {
	return &Touch{dist: dist, decel: decel}
}

// Phase is the current touch phase.
func (t *Touch) Phase() TouchPhase { return t.phase }

// Speed is the current scroll speed in rows per millisecond.
func (t *Touch) Speed() float64 { return t.speed }

// Begin starts a touch. A touch during kinetic scrolling catches it.
func (t *Touch) Begin(p timeline.Point, at time.Time) {
	t.caught = t.phase == TouchKinetic
	t.phase = TouchPending
	t.start, t.prev, t.prevAt = p, p, at
	t.speed, t.residual = 0, 0
}

// Move returns the scroll delta for a finger move.
func (t *Touch) Move(p timeline.Point, at time.Time) int {
	switch t.phase {
	case TouchPending:
		if manhattan(p, t.start) < t.dist {
			return 0
		}
		t.phase = TouchScrolling
	case TouchScrolling:
	default:
		return 0
	}

	dy := p.Y - t.prev.Y
	if elapsed := at.Sub(t.prevAt).Milliseconds(); elapsed > 0 {
		speed := float64(dy) / float64(elapsed)
		if math.Abs(speed)*1000 < fingerAccuracy {
			speed = 0
		}
		t.speed = speed
	}
	t.prev, t.prevAt = p, at
	return -dy
}

// End finishes a touch. It reports a tap when the finger never moved far
// enough to scroll and did not stop a kinetic scroll, and whether kinetic
// scrolling should start.
func (t *Touch) End(at time.Time) (tap bool, kinetic bool) {
	switch t.phase {
	case TouchPending:
		tap = !t.caught
		t.phase = TouchIdle
	case TouchScrolling:
		if t.speed != 0 && at.Sub(t.prevAt) < 100*time.Millisecond {
			t.phase = TouchKinetic
			t.lastTick = at
			kinetic = true
		} else {
			t.phase = TouchIdle
			t.speed = 0
		}
	}
	t.caught = false
	return tap, kinetic
}

// Tick advances kinetic scrolling. It returns the scroll delta and whether
// another tick is needed.
func (t *Touch) Tick(at time.Time) (int, bool) {
	if t.phase != TouchKinetic {
		return 0, false
	}
	elapsed := float64(at.Sub(t.lastTick).Milliseconds())
	t.lastTick = at
	if elapsed <= 0 {
		return 0, true
	}

	move := t.speed*elapsed + t.residual
	delta := math.Trunc(move)
	t.residual = move - delta

	slow := t.decel * elapsed
	if math.Abs(t.speed) <= slow {
		t.Stop()
		return int(-delta), false
	}
	t.speed -= math.Copysign(slow, t.speed)
	return int(-delta), true
}

// Stop ends kinetic scrolling, for example at a scroll edge.
func (t *Touch) Stop() {
	t.phase = TouchIdle
	t.speed, t.residual = 0, 0
}
