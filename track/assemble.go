// Package track assembles a racing track from a grid of independently
// authored Tiled segments.
//
// Every cell of the grid lists one or more interchangeable variants. The
// assembler picks one variant per cell, merges the tile layers into one
// grid, moves every object into the merged pixel space, promotes one
// finish-line candidate to the finish line and numbers the remaining
// checkpoints of the track layer 0..N-1.
package track

import (
	"fmt"

	"github.com/milk9111/racetrack/tilemap"
)

const (
	// TrackLayerName is the object layer holding checkpoints.
	TrackLayerName = "track"
	// FinishLineName marks the chosen finish line object.
	FinishLineName = "finish-line"
	// CandidateProperty flags objects eligible to become the finish line.
	CandidateProperty = "finish-line-candidate"
	// IndexProperty holds a checkpoint's position in the lap.
	IndexProperty = "index"
)

// Cell lists the interchangeable variants for one grid position.
type Cell []*tilemap.Map

// Row is an ordered sequence of cells, left to right.
type Row []Cell

// Grid is an ordered sequence of rows, top to bottom.
type Grid []Row

// Traverse visits every position of a rows x cols grid in row-major order:
// all columns of row 0, then all columns of row 1, and so on. Tile
// placement, merged object order and checkpoint numbering all follow it.
func Traverse(rows, cols int, fn func(r, c int)) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			fn(r, c)
		}
	}
}

// Assembler merges one segment grid into one map. It is single use.
type Assembler struct {
	grid  Grid
	sel   Selector
	spent bool
}

// NewAssembler stores grid and sel. No selection happens until Assemble.
func NewAssembler(grid Grid, sel Selector) *Assembler {
	return &Assembler{grid: grid, sel: sel}
}

// geometry holds the tile extents and cumulative offsets of the grid.
type geometry struct {
	rows, cols   int
	tileW, tileH int
	rowTiles     []int // height of each row in tiles
	colTiles     []int // width of each column in tiles
	rowOff       []int // tiles above each row
	colOff       []int // tiles left of each column
	width        int
	height       int
}

func (g *geometry) pixelOffset(r, c int) (x, y float64) {
	return float64(g.colOff[c] * g.tileW), float64(g.rowOff[r] * g.tileH)
}

// Assemble performs variant selection and returns the merged map. The
// input segments are left untouched.
func (a *Assembler) Assemble() (*tilemap.Map, error) {
	if a.spent {
		return nil, ErrSpent
	}
	a.spent = true

	cells, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if err := checkSegments(cells); err != nil {
		return nil, err
	}
	g, err := measure(cells)
	if err != nil {
		return nil, err
	}

	ref := cells[0][0]
	out := ref.Clone()
	out.Width = g.width
	out.Height = g.height

	trackLayer := -1
	for li := range out.Layers {
		l := &out.Layers[li]
		switch l.Type {
		case tilemap.TileLayer:
			l.Data = mergeTiles(cells, g, li)
			if l.Width != 0 || l.Height != 0 {
				l.Width, l.Height = g.width, g.height
			}
		case tilemap.ObjectGroup:
			l.Objects = mergeObjects(cells, g, li)
			if l.Name == TrackLayerName && trackLayer < 0 {
				trackLayer = li
			}
		}
	}
	if trackLayer < 0 {
		return nil, ErrNoTrackLayer
	}
	if err := markTrack(&out.Layers[trackLayer], a.sel); err != nil {
		return nil, err
	}
	renumberObjectIDs(out)

	return out, nil
}

// resolve picks one variant per cell, visiting cells in traversal order.
func (a *Assembler) resolve() ([][]*tilemap.Map, error) {
	if len(a.grid) == 0 || len(a.grid[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	rows, cols := len(a.grid), len(a.grid[0])
	for r, row := range a.grid {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, row 0 has %d", ErrRaggedGrid, r, len(row), cols)
		}
	}

	cells := make([][]*tilemap.Map, rows)
	for r := range cells {
		cells[r] = make([]*tilemap.Map, cols)
	}
	var err error
	Traverse(rows, cols, func(r, c int) {
		if err != nil {
			return
		}
		variants := a.grid[r][c]
		if len(variants) == 0 {
			err = fmt.Errorf("%w: cell (%d,%d) has no variants", ErrRaggedGrid, r, c)
			return
		}
		var seg *tilemap.Map
		seg, err = Pick(a.sel, variants)
		if err != nil {
			err = fmt.Errorf("cell (%d,%d): %w", r, c, err)
			return
		}
		if seg == nil {
			err = fmt.Errorf("%w: cell (%d,%d) resolved to a nil segment", ErrRaggedGrid, r, c)
			return
		}
		cells[r][c] = seg
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}

// checkSegments compares every segment with the top-left one: same tile
// size, same layer count and the same layer name/kind sequence.
func checkSegments(cells [][]*tilemap.Map) error {
	ref := cells[0][0]
	var err error
	Traverse(len(cells), len(cells[0]), func(r, c int) {
		if err != nil {
			return
		}
		seg := cells[r][c]
		if seg.Width <= 0 || seg.Height <= 0 {
			err = fmt.Errorf("%w: cell (%d,%d) is %dx%d tiles", ErrSegmentSize, r, c, seg.Width, seg.Height)
			return
		}
		if seg.TileWidth != ref.TileWidth || seg.TileHeight != ref.TileHeight {
			err = fmt.Errorf("%w: cell (%d,%d) uses %dx%d, expected %dx%d",
				ErrTileSize, r, c, seg.TileWidth, seg.TileHeight, ref.TileWidth, ref.TileHeight)
			return
		}
		if len(seg.Layers) != len(ref.Layers) {
			err = fmt.Errorf("%w: cell (%d,%d) has %d layers, expected %d", ErrLayerShape, r, c, len(seg.Layers), len(ref.Layers))
			return
		}
		for li := range seg.Layers {
			l, want := &seg.Layers[li], &ref.Layers[li]
			if l.Name != want.Name || l.Type != want.Type {
				err = fmt.Errorf("%w: cell (%d,%d) layer %d is %s %q, expected %s %q",
					ErrLayerShape, r, c, li, l.Type, l.Name, want.Type, want.Name)
				return
			}
			if l.Type != tilemap.TileLayer && l.Type != tilemap.ObjectGroup {
				err = fmt.Errorf("%w: cell (%d,%d) layer %q has unsupported type %q", ErrLayerShape, r, c, l.Name, l.Type)
				return
			}
			if l.Type == tilemap.TileLayer && len(l.Data) != seg.Width*seg.Height {
				err = fmt.Errorf("%w: cell (%d,%d) layer %q has %d tiles, expected %d",
					ErrLayerShape, r, c, l.Name, len(l.Data), seg.Width*seg.Height)
				return
			}
		}
	})
	return err
}

// measure derives row heights, column widths and their cumulative offsets.
// Every cell of a row must share the row height and every cell of a column
// the column width.
func measure(cells [][]*tilemap.Map) (*geometry, error) {
	rows, cols := len(cells), len(cells[0])
	g := &geometry{
		rows:     rows,
		cols:     cols,
		tileW:    cells[0][0].TileWidth,
		tileH:    cells[0][0].TileHeight,
		rowTiles: make([]int, rows),
		colTiles: make([]int, cols),
		rowOff:   make([]int, rows),
		colOff:   make([]int, cols),
	}
	for r := 0; r < rows; r++ {
		g.rowTiles[r] = cells[r][0].Height
	}
	for c := 0; c < cols; c++ {
		g.colTiles[c] = cells[0][c].Width
	}

	var err error
	Traverse(rows, cols, func(r, c int) {
		if err != nil {
			return
		}
		seg := cells[r][c]
		if seg.Height != g.rowTiles[r] {
			err = fmt.Errorf("%w: cell (%d,%d) is %dpx high, row %d is %dpx",
				ErrRowHeight, r, c, seg.Height*g.tileH, r, g.rowTiles[r]*g.tileH)
			return
		}
		if seg.Width != g.colTiles[c] {
			err = fmt.Errorf("%w: cell (%d,%d) is %dpx wide, column %d is %dpx",
				ErrColumnWidth, r, c, seg.Width*g.tileW, c, g.colTiles[c]*g.tileW)
		}
	})
	if err != nil {
		return nil, err
	}

	for r := 0; r < rows; r++ {
		g.rowOff[r] = g.height
		g.height += g.rowTiles[r]
	}
	for c := 0; c < cols; c++ {
		g.colOff[c] = g.width
		g.width += g.colTiles[c]
	}
	return g, nil
}

// mergeTiles copies layer li of every segment into one flat array:
// out[(rowOff+ly)*width + colOff+lx] = in[ly*w + lx].
func mergeTiles(cells [][]*tilemap.Map, g *geometry, li int) []int {
	data := make([]int, g.width*g.height)
	Traverse(g.rows, g.cols, func(r, c int) {
		seg := cells[r][c]
		src := seg.Layers[li].Data
		for ly := 0; ly < seg.Height; ly++ {
			dst := (g.rowOff[r]+ly)*g.width + g.colOff[c]
			copy(data[dst:dst+seg.Width], src[ly*seg.Width:(ly+1)*seg.Width])
		}
	})
	return data
}

// mergeObjects collects copies of the objects of layer li in traversal
// order, shifted by the pixel offset of their cell.
func mergeObjects(cells [][]*tilemap.Map, g *geometry, li int) []tilemap.Object {
	var objs []tilemap.Object
	Traverse(g.rows, g.cols, func(r, c int) {
		dx, dy := g.pixelOffset(r, c)
		for _, o := range cells[r][c].Layers[li].Objects {
			o = o.Clone()
			o.X += dx
			o.Y += dy
			objs = append(objs, o)
		}
	})
	return objs
}

// markTrack chooses the finish line among the candidates of the track
// layer and numbers every other object in merged order, starting with the
// first object after the finish line and wrapping around to the start of
// the layer, so checkpoint 0 is the first one reached after the start.
// Existing names and indices from the segments are not trusted.
func markTrack(l *tilemap.Layer, sel Selector) error {
	var candidates []int
	for i := range l.Objects {
		if l.Objects[i].Properties.Bool(CandidateProperty) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return ErrNoFinishCandidates
	}
	finish, err := Pick(sel, candidates)
	if err != nil {
		return fmt.Errorf("finish line: %w", err)
	}

	n := len(l.Objects)
	for step := 0; step < n; step++ {
		i := (finish + step) % n
		o := &l.Objects[i]
		if o.Properties == nil {
			o.Properties = tilemap.Properties{}
		}
		if step == 0 {
			o.Name = FinishLineName
			delete(o.Properties, IndexProperty)
			continue
		}
		if o.Name == FinishLineName {
			o.Name = ""
		}
		o.Properties[IndexProperty] = step - 1
	}
	return nil
}

// renumberObjectIDs gives every object a unique id once the segments' own
// ids have been merged. Maps whose segments carry no ids are left alone.
func renumberObjectIDs(m *tilemap.Map) {
	hasIDs := false
	for li := range m.Layers {
		for _, o := range m.Layers[li].Objects {
			if o.ID != 0 {
				hasIDs = true
			}
		}
	}
	if !hasIDs {
		return
	}
	id := 1
	for li := range m.Layers {
		for oi := range m.Layers[li].Objects {
			m.Layers[li].Objects[oi].ID = id
			id++
		}
	}
	m.NextObjectID = id
}
