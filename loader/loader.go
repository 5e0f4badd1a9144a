// Package loader turns a catalog entry into a playable map: single-map
// tracks are read as they are, segmented tracks are read cell by cell and
// assembled.
package loader

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/milk9111/racetrack/selector"
	"github.com/milk9111/racetrack/tilemap"
	"github.com/milk9111/racetrack/track"
	"github.com/milk9111/racetrack/tracklist"
	"github.com/milk9111/racetrack/tracks"
)

type Loader struct {
	fsys fs.FS
	sel  track.Selector

	// Seed is handed to selector scripts named by a track.
	Seed int64
	// Logger, if set, receives one line per loaded track.
	Logger *log.Logger
}

// New returns a Loader reading from fsys (laid out like the tracks
// package) and choosing variants with sel unless a track names its own
// selector script.
func New(fsys fs.FS, sel track.Selector) *Loader {
	return &Loader{fsys: fsys, sel: sel}
}

// LoadNamed finds theme/name in cat and loads it.
func (l *Loader) LoadNamed(cat *tracklist.Catalog, theme, name string) (*tilemap.Map, error) {
	t, err := cat.Find(theme, name)
	if err != nil {
		return nil, err
	}
	return l.Load(t)
}

// Load reads or assembles t.
func (l *Loader) Load(t *tracklist.Track) (*tilemap.Map, error) {
	if !t.Segmented() {
		m, err := tilemap.LoadFS(l.fsys, tracks.MapPath(t.Map))
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", t.Name, err)
		}
		l.logf("loader: loaded %s (%dx%d tiles)", t.Name, m.Width, m.Height)
		return m, nil
	}

	grid, err := l.grid(t)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", t.Name, err)
	}
	sel, err := l.selector(t)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", t.Name, err)
	}

	m, err := track.NewAssembler(grid, sel).Assemble()
	if err != nil {
		if s, ok := sel.(*selector.Script); ok && s.Err() != nil {
			return nil, fmt.Errorf("loader: %s: %w: %v", t.Name, err, s.Err())
		}
		return nil, fmt.Errorf("loader: %s: %w", t.Name, err)
	}
	l.logf("loader: assembled %s from %dx%d segments (%dx%d tiles)", t.Name, len(grid), len(grid[0]), m.Width, m.Height)
	return m, nil
}

// grid reads every variant of every cell. A file listed more than once is
// read once; the assembler never modifies its input.
func (l *Loader) grid(t *tracklist.Track) (track.Grid, error) {
	cache := map[string]*tilemap.Map{}
	grid := make(track.Grid, len(t.Grid))
	for r, row := range t.Grid {
		grid[r] = make(track.Row, len(row))
		for c, cell := range row {
			variants := make(track.Cell, 0, len(cell))
			for _, name := range cell {
				m, ok := cache[name]
				if !ok {
					var err error
					m, err = tilemap.LoadFS(l.fsys, tracks.MapPath(name))
					if err != nil {
						return nil, fmt.Errorf("cell (%d,%d): %w", r, c, err)
					}
					cache[name] = m
				}
				variants = append(variants, m)
			}
			grid[r][c] = variants
		}
	}
	return grid, nil
}

func (l *Loader) selector(t *tracklist.Track) (track.Selector, error) {
	if t.Selector == "" {
		return l.sel, nil
	}
	src, err := fs.ReadFile(l.fsys, tracks.ScriptPath(t.Selector))
	if err != nil {
		return nil, fmt.Errorf("read selector: %w", err)
	}
	return selector.NewScript(t.Selector, src, l.Seed)
}

func (l *Loader) logf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}
