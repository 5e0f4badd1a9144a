package course

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/racetrack/common"
	"github.com/milk9111/racetrack/track"
)

type Event int

const (
	// EventNone: no gate crossed, or one that changes nothing.
	EventNone Event = iota
	// EventMarker: the next marker in order was crossed.
	EventMarker
	// EventLap: the finish line was crossed after every marker.
	EventLap
	// EventSkipped: a gate was crossed out of order. The car should be put
	// back with Respawn.
	EventSkipped
)

func (e Event) String() string {
	switch e {
	case EventMarker:
		return "marker"
	case EventLap:
		return "lap"
	case EventSkipped:
		return "skipped"
	}
	return "none"
}

// Progress tracks one car around a course.
type Progress struct {
	course *Course
	last   int
	next   int
	Laps   int
}

func (c *Course) NewProgress() *Progress {
	return &Progress{course: c, last: FinishGate}
}

// Advance reports what moving the car from one point to another did.
func (p *Progress) Advance(from, to cp.Vector) Event {
	id, ok := p.course.Crossed(from, to)
	if !ok {
		return EventNone
	}

	if id == FinishGate {
		switch {
		case p.next == len(p.course.Markers):
			p.Laps++
			p.next = 0
			p.last = FinishGate
			return EventLap
		case p.next > 0:
			return EventSkipped
		}
		return EventNone
	}

	switch {
	case id == p.next:
		p.last = id
		p.next++
		return EventMarker
	case id > p.next:
		return EventSkipped
	}
	return EventNone
}

// LastActivated returns the id of the last gate passed in order, FinishGate
// at the start of every lap.
func (p *Progress) LastActivated() int { return p.last }

// NextGate returns the gate the car has to cross next.
func (p *Progress) NextGate() Gate {
	if p.next >= len(p.course.Markers) {
		return p.course.Finish
	}
	return p.course.Markers[p.next]
}

// Respawn places the car back on the last activated gate, shifted by its
// starting offset.
func (p *Progress) Respawn(offset cp.Vector) Start {
	return p.course.Gate(p.last).place(offset)
}

// Start is a spawn position; Angle is in degrees like gate rotations.
type Start struct {
	X     float64
	Y     float64
	Angle float64
}

func (g Gate) place(offset cp.Vector) Start {
	dx, dy := common.RotateVector(common.DegToRad(g.Rotation), offset.X, offset.Y)
	return Start{X: g.X + dx, Y: g.Y + dy, Angle: g.Rotation}
}

const (
	startSpreadX = 20
	startSpreadY = 30
	MaxPlayers   = 4
)

// StartingOffsets returns the grid slot of each player relative to the
// finish line, before rotation. Slots are shuffled with sel.
func StartingOffsets(players int, sel track.Selector) ([]cp.Vector, error) {
	var slots []cp.Vector
	switch {
	case players == 1:
		return []cp.Vector{{}}, nil
	case players == 2:
		slots = []cp.Vector{{X: startSpreadX}, {X: -startSpreadX}}
	case players > 2 && players <= MaxPlayers:
		slots = []cp.Vector{
			{X: startSpreadX, Y: startSpreadY},
			{X: -startSpreadX, Y: startSpreadY},
			{X: -startSpreadX, Y: -startSpreadY},
			{X: startSpreadX, Y: -startSpreadY},
		}
	default:
		return nil, fmt.Errorf("course: %d players, want 1 to %d", players, MaxPlayers)
	}

	shuffled := make([]cp.Vector, 0, len(slots))
	for len(slots) > 0 {
		i, err := track.Pick(sel, indexes(len(slots)))
		if err != nil {
			return nil, fmt.Errorf("course: shuffle starting slots: %w", err)
		}
		shuffled = append(shuffled, slots[i])
		slots = append(slots[:i], slots[i+1:]...)
	}
	return shuffled[:players], nil
}

// StartingPositions places players on the finish line.
func (c *Course) StartingPositions(players int, sel track.Selector) ([]Start, []cp.Vector, error) {
	offsets, err := StartingOffsets(players, sel)
	if err != nil {
		return nil, nil, err
	}
	starts := make([]Start, len(offsets))
	for i, o := range offsets {
		starts[i] = c.Finish.place(o)
	}
	return starts, offsets, nil
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
