// Package course reads the race-relevant parts of a track map: the finish
// line, the ordered checkpoint markers, obstacles and pits.
package course

import (
	"fmt"
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/racetrack/common"
	"github.com/milk9111/racetrack/tilemap"
	"github.com/milk9111/racetrack/track"
)

// Layer names besides the track layer.
const (
	ObstaclesLayer = "obstacles"
	DropsLayer     = "drops"
)

// KindProperty overrides an obstacle's object type.
const KindProperty = "kind"

// FinishGate is the gate id of the finish line; markers use their index.
const FinishGate = -1

// Gate is a line a car crosses: it starts at (X, Y) and runs Width pixels
// in the direction of Rotation (degrees, clockwise).
type Gate struct {
	X        float64
	Y        float64
	Rotation float64
	Width    float64
}

// Ends returns both end points of the gate.
func (g Gate) Ends() (a, b cp.Vector) {
	dx, dy := common.RotateVector(common.DegToRad(g.Rotation), g.Width, 0)
	return cp.Vector{X: g.X, Y: g.Y}, cp.Vector{X: g.X + dx, Y: g.Y + dy}
}

// Center returns the midpoint of the gate.
func (g Gate) Center() cp.Vector {
	a, b := g.Ends()
	return cp.Vector{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

type Obstacle struct {
	Kind     string
	X        float64
	Y        float64
	Rotation float64
}

type Course struct {
	Finish    Gate
	Markers   []Gate
	Obstacles []Obstacle

	m *tilemap.Map

	space *cp.Space
}

// New reads the course of m. The track layer must hold exactly one
// finish-line object and markers indexed 0..N-1.
func New(m *tilemap.Map) (*Course, error) {
	l, ok := m.Layer(track.TrackLayerName)
	if !ok || !l.IsObjectGroup() {
		return nil, fmt.Errorf("course: %w", track.ErrNoTrackLayer)
	}

	c := &Course{m: m.Clone()}

	finishes := 0
	indexed := map[int]Gate{}
	for _, o := range l.Objects {
		g := Gate{X: o.X, Y: o.Y, Rotation: o.Rotation, Width: o.Width}
		if o.Name == track.FinishLineName {
			c.Finish = g
			finishes++
			continue
		}
		i, ok := o.Properties.Int(track.IndexProperty)
		if !ok || i < 0 {
			return nil, fmt.Errorf("course: marker at (%v,%v) has no valid index", o.X, o.Y)
		}
		if _, dup := indexed[i]; dup {
			return nil, fmt.Errorf("course: duplicate marker index %d", i)
		}
		indexed[i] = g
	}
	if finishes != 1 {
		return nil, fmt.Errorf("course: expected one finish line, found %d", finishes)
	}

	keys := make([]int, 0, len(indexed))
	for i := range indexed {
		keys = append(keys, i)
	}
	sort.Ints(keys)
	for want, got := range keys {
		if got != want {
			return nil, fmt.Errorf("course: marker index %d missing", want)
		}
		c.Markers = append(c.Markers, indexed[got])
	}

	if l, ok := m.Layer(ObstaclesLayer); ok && l.IsObjectGroup() {
		for _, o := range l.Objects {
			kind := o.Type
			if k, ok := o.Properties.Text(KindProperty); ok {
				kind = k
			}
			c.Obstacles = append(c.Obstacles, Obstacle{Kind: kind, X: o.X, Y: o.Y, Rotation: o.Rotation})
		}
	}
	c.buildGates()
	return c, nil
}

// buildGates puts every gate into a static chipmunk space so crossings
// can be found with a segment query.
func (c *Course) buildGates() {
	c.space = cp.NewSpace()
	add := func(id int, g Gate) {
		a, b := g.Ends()
		shape := cp.NewSegment(c.space.StaticBody, a, b, 0)
		shape.UserData = id
		c.space.AddShape(shape)
	}
	add(FinishGate, c.Finish)
	for i, g := range c.Markers {
		add(i, g)
	}
}

// Gate returns the gate with the given id.
func (c *Course) Gate(id int) Gate {
	if id == FinishGate || id < 0 || id >= len(c.Markers) {
		return c.Finish
	}
	return c.Markers[id]
}

// Crossed reports the first gate crossed moving from one point to another.
func (c *Course) Crossed(from, to cp.Vector) (int, bool) {
	if c.space == nil || from == to {
		return 0, false
	}
	info := c.space.SegmentQueryFirst(from, to, 0, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return 0, false
	}
	id, ok := info.Shape.UserData.(int)
	return id, ok
}

// PitAt reports whether the pixel (x, y) lies over a non-zero tile of the
// drops layer and, if so, the centre of that tile.
func (c *Course) PitAt(x, y float64) (cp.Vector, bool) {
	tw, th := c.m.TileWidth, c.m.TileHeight
	if tw <= 0 || th <= 0 {
		return cp.Vector{}, false
	}
	tx := int(math.Floor(x / float64(tw)))
	ty := int(math.Floor(y / float64(th)))
	if gid, ok := c.m.TileAt(DropsLayer, tx, ty); !ok || gid == 0 {
		return cp.Vector{}, false
	}
	return cp.Vector{
		X: float64(tx*tw) + float64(tw)/2,
		Y: float64(ty*th) + float64(th)/2,
	}, true
}
