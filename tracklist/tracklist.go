// Package tracklist describes the selectable tracks: themes, track names
// and, for assembled tracks, which segment files may fill each grid cell.
package tracklist

import (
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the root of tracks.yaml.
type Catalog struct {
	Themes []Theme `yaml:"themes"`
}

type Theme struct {
	Name   string  `yaml:"name"`
	Tracks []Track `yaml:"tracks"`
}

// Track is either a single map file (Map) or a grid of segment variants
// (Grid[row][column] lists the files one cell may be filled with). Paths
// are relative to the maps directory. Selector optionally names a tengo
// script, relative to the scripts directory, that makes the random choices.
type Track struct {
	Name     string       `yaml:"name"`
	Map      string       `yaml:"map,omitempty"`
	Grid     [][][]string `yaml:"grid,omitempty"`
	Selector string       `yaml:"selector,omitempty"`
}

// Segmented reports whether t is assembled from a segment grid.
func (t *Track) Segmented() bool { return len(t.Grid) > 0 }

// Files returns every map file t refers to, in grid traversal order.
func (t *Track) Files() []string {
	if !t.Segmented() {
		if t.Map == "" {
			return nil
		}
		return []string{t.Map}
	}
	var files []string
	for _, row := range t.Grid {
		for _, cell := range row {
			files = append(files, cell...)
		}
	}
	return files
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("tracklist: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFS reads the catalog name from fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("tracklist: load %s: %w", name, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Validate checks names are present and unique and that every track names
// exactly one of map or grid, with a rectangular, non-empty grid.
func (c *Catalog) Validate() error {
	if len(c.Themes) == 0 {
		return fmt.Errorf("tracklist: no themes")
	}
	themes := map[string]bool{}
	for _, th := range c.Themes {
		if strings.TrimSpace(th.Name) == "" {
			return fmt.Errorf("tracklist: theme without name")
		}
		if themes[th.Name] {
			return fmt.Errorf("tracklist: duplicate theme %q", th.Name)
		}
		themes[th.Name] = true

		names := map[string]bool{}
		for i := range th.Tracks {
			t := &th.Tracks[i]
			if strings.TrimSpace(t.Name) == "" {
				return fmt.Errorf("tracklist: %s: track %d without name", th.Name, i)
			}
			if names[t.Name] {
				return fmt.Errorf("tracklist: %s: duplicate track %q", th.Name, t.Name)
			}
			names[t.Name] = true
			if err := t.validate(); err != nil {
				return fmt.Errorf("tracklist: %s/%s: %w", th.Name, t.Name, err)
			}
		}
	}
	return nil
}

func (t *Track) validate() error {
	switch {
	case t.Map != "" && t.Segmented():
		return fmt.Errorf("both map and grid set")
	case t.Map == "" && !t.Segmented():
		return fmt.Errorf("neither map nor grid set")
	case t.Map != "":
		return nil
	}
	cols := len(t.Grid[0])
	for r, row := range t.Grid {
		if len(row) == 0 {
			return fmt.Errorf("grid row %d is empty", r)
		}
		if len(row) != cols {
			return fmt.Errorf("grid row %d has %d cells, row 0 has %d", r, len(row), cols)
		}
		for c, cell := range row {
			if len(cell) == 0 {
				return fmt.Errorf("grid cell (%d,%d) has no variants", r, c)
			}
			for _, f := range cell {
				if strings.TrimSpace(f) == "" {
					return fmt.Errorf("grid cell (%d,%d) has an empty file name", r, c)
				}
			}
		}
	}
	return nil
}

// Find returns the named track of the named theme.
func (c *Catalog) Find(theme, name string) (*Track, error) {
	for ti := range c.Themes {
		th := &c.Themes[ti]
		if th.Name != theme {
			continue
		}
		for i := range th.Tracks {
			if th.Tracks[i].Name == name {
				return &th.Tracks[i], nil
			}
		}
		return nil, fmt.Errorf("tracklist: theme %q has no track %q", theme, name)
	}
	return nil, fmt.Errorf("tracklist: no theme %q", theme)
}

// Ref identifies a track by theme and name.
type Ref struct {
	Theme string
	Track string
}

func (r Ref) String() string { return r.Theme + "/" + r.Track }

// Refs lists every track in catalog order.
func (c *Catalog) Refs() []Ref {
	var refs []Ref
	for _, th := range c.Themes {
		for _, t := range th.Tracks {
			refs = append(refs, Ref{Theme: th.Name, Track: t.Name})
		}
	}
	return refs
}
