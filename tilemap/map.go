// Package tilemap reads and writes the JSON map documents exported by the
// Tiled map editor. Only the orthogonal, uncompressed subset used by track
// segments is supported: tile layers with a flat row-major data array and
// object groups.
package tilemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Layer kinds as they appear in the "type" field of a layer.
const (
	TileLayer   = "tilelayer"
	ObjectGroup = "objectgroup"
)

// Map is one Tiled map document.
type Map struct {
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	TileWidth    int        `json:"tilewidth"`
	TileHeight   int        `json:"tileheight"`
	Orientation  string     `json:"orientation,omitempty"`
	RenderOrder  string     `json:"renderorder,omitempty"`
	Version      any        `json:"version,omitempty"`
	TiledVersion string     `json:"tiledversion,omitempty"`
	Infinite     bool       `json:"infinite,omitempty"`
	NextLayerID  int        `json:"nextlayerid,omitempty"`
	NextObjectID int        `json:"nextobjectid,omitempty"`
	Tilesets     []Tileset  `json:"tilesets,omitempty"`
	Properties   Properties `json:"properties,omitempty"`
	Layers       []Layer    `json:"layers"`
}

// Layer is either a tile layer (Data set) or an object group (Objects set).
type Layer struct {
	ID         int        `json:"id,omitempty"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Data       []int      `json:"data,omitempty"`
	Objects    []Object   `json:"objects,omitempty"`
	DrawOrder  string     `json:"draworder,omitempty"`
	Encoding   string     `json:"encoding,omitempty"`
	Width      int        `json:"width,omitempty"`
	Height     int        `json:"height,omitempty"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Opacity    float64    `json:"opacity"`
	Visible    bool       `json:"visible"`
	Properties Properties `json:"properties,omitempty"`
}

// Object is a positioned entity inside an object group. X and Y are pixel
// coordinates of the top-left corner; Rotation is in degrees, clockwise,
// around that corner.
type Object struct {
	ID         int        `json:"id,omitempty"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Rotation   float64    `json:"rotation"`
	Visible    bool       `json:"visible"`
	Properties Properties `json:"properties,omitempty"`
}

// Tileset references the image a range of tile ids is cut from. ImagePath
// is the game-side asset path used when the tileset is loaded for display.
type Tileset struct {
	FirstGID    int    `json:"firstgid"`
	Name        string `json:"name,omitempty"`
	Image       string `json:"image,omitempty"`
	ImagePath   string `json:"imagePath,omitempty"`
	ImageWidth  int    `json:"imagewidth,omitempty"`
	ImageHeight int    `json:"imageheight,omitempty"`
	TileWidth   int    `json:"tilewidth,omitempty"`
	TileHeight  int    `json:"tileheight,omitempty"`
	TileCount   int    `json:"tilecount,omitempty"`
	Columns     int    `json:"columns,omitempty"`
	Margin      int    `json:"margin,omitempty"`
	Spacing     int    `json:"spacing,omitempty"`
	Source      string `json:"source,omitempty"`
}

// UnmarshalJSON decodes a layer. Tiled treats a missing visible or opacity
// as a shown, opaque layer, so those are the defaults.
func (l *Layer) UnmarshalJSON(b []byte) error {
	type plain Layer
	p := plain{Visible: true, Opacity: 1}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*l = Layer(p)
	return nil
}

// UnmarshalJSON decodes an object; a missing visible means visible.
func (o *Object) UnmarshalJSON(b []byte) error {
	type plain Object
	p := plain{Visible: true}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Object(p)
	return nil
}

// IsTileLayer reports whether l carries tile data.
func (l *Layer) IsTileLayer() bool { return l.Type == TileLayer }

// IsObjectGroup reports whether l carries objects.
func (l *Layer) IsObjectGroup() bool { return l.Type == ObjectGroup }

// Load reads and validates a map from a file on disk.
func Load(path string) (*Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tilemap: read %s: %w", path, err)
	}
	m, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("tilemap: %s: %w", path, err)
	}
	return m, nil
}

// LoadFS reads and validates a map from fsys (e.g. the embedded tracks).
func LoadFS(fsys fs.FS, name string) (*Map, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("tilemap: read %s: %w", name, err)
	}
	m, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("tilemap: %s: %w", name, err)
	}
	return m, nil
}

// Parse decodes a map document and checks that it is well formed.
func Parse(b []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal map: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks dimensions, layer kinds and tile data lengths.
func (m *Map) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid map dimensions: %dx%d", m.Width, m.Height)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return fmt.Errorf("invalid tile size: %dx%d", m.TileWidth, m.TileHeight)
	}
	for i := range m.Layers {
		l := &m.Layers[i]
		switch l.Type {
		case TileLayer:
			if l.Encoding != "" && l.Encoding != "csv" {
				return fmt.Errorf("layer %q: unsupported encoding %q", l.Name, l.Encoding)
			}
			if len(l.Data) != m.Width*m.Height {
				return fmt.Errorf("layer %q: tile data length %d, expected %d", l.Name, len(l.Data), m.Width*m.Height)
			}
		case ObjectGroup:
		default:
			return fmt.Errorf("layer %q: unsupported layer type %q", l.Name, l.Type)
		}
	}
	return nil
}

// Layer returns the first layer named name.
func (m *Map) Layer(name string) (*Layer, bool) {
	for i := range m.Layers {
		if m.Layers[i].Name == name {
			return &m.Layers[i], true
		}
	}
	return nil, false
}

// TileAt returns the tile id at tile coordinates (tx, ty) of the named tile
// layer. ok is false for unknown layers and out-of-range coordinates.
func (m *Map) TileAt(layer string, tx, ty int) (int, bool) {
	l, ok := m.Layer(layer)
	if !ok || !l.IsTileLayer() {
		return 0, false
	}
	if tx < 0 || ty < 0 || tx >= m.Width || ty >= m.Height {
		return 0, false
	}
	return l.Data[ty*m.Width+tx], true
}

// PixelSize returns the map extent in pixels.
func (m *Map) PixelSize() (w, h int) {
	return m.Width * m.TileWidth, m.Height * m.TileHeight
}

// Clone returns a deep copy of m. Tileset entries are plain values and are
// copied with the slice.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := *m
	out.Properties = m.Properties.Clone()
	if m.Tilesets != nil {
		out.Tilesets = append([]Tileset(nil), m.Tilesets...)
	}
	out.Layers = make([]Layer, len(m.Layers))
	for i := range m.Layers {
		out.Layers[i] = m.Layers[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of l.
func (l Layer) Clone() Layer {
	out := l
	out.Properties = l.Properties.Clone()
	if l.Data != nil {
		out.Data = append([]int(nil), l.Data...)
	}
	if l.Objects != nil {
		out.Objects = make([]Object, len(l.Objects))
		for i := range l.Objects {
			out.Objects[i] = l.Objects[i].Clone()
		}
	}
	return out
}

// Clone returns a copy of o with its own property map.
func (o Object) Clone() Object {
	out := o
	out.Properties = o.Properties.Clone()
	return out
}

// Marshal encodes m as indented JSON.
func (m *Map) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes m to w as indented JSON.
func (m *Map) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
