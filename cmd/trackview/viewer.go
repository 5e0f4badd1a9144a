package main

import (
	"fmt"
	"image/color"
	"io/fs"
	"log"
	"math"
	"os"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/racetrack/course"
	"github.com/milk9111/racetrack/loader"
	"github.com/milk9111/racetrack/selector"
	"github.com/milk9111/racetrack/tilemap"
	"github.com/milk9111/racetrack/tracklist"
	"github.com/milk9111/racetrack/tracks"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	margin     = 40
)

// Viewer is the ebiten game showing one assembled track at a time.
type Viewer struct {
	dir     string
	fsys    fs.FS
	cat     *tracklist.Catalog
	refs    []tracklist.Ref
	current int
	seed    int64
	players int

	course *course.Course
	starts []course.Start
	tiles  *ebiten.Image
	err    error
	stale  bool

	ui      *ebitenui.UI
	status  func(string)
	watcher *tracks.Watcher
}

func NewViewer(dir string, seed int64, players int) (*Viewer, error) {
	v := &Viewer{seed: seed, players: players}
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		v.dir = dir
	}
	if err := v.loadCatalog(); err != nil {
		return nil, err
	}

	if v.dir != "" {
		w, err := tracks.WatchTree(v.dir)
		if err != nil {
			log.Printf("trackview: not watching %s: %v", v.dir, err)
		} else {
			v.watcher = w
		}
	}

	v.ui, v.status = NewControlsUI(v)
	return v, nil
}

func (v *Viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
}

func (v *Viewer) loadCatalog() error {
	v.fsys = tracks.FS(v.dir)
	cat, err := tracklist.LoadFS(v.fsys, tracks.Catalog)
	if err != nil {
		return err
	}
	v.cat = cat
	v.refs = cat.Refs()
	if v.current >= len(v.refs) {
		v.current = 0
	}
	return nil
}

// Select shows the first track matching theme and name; empty values match
// anything. The track is built on the next Update.
func (v *Viewer) Select(theme, name string) {
	for i, ref := range v.refs {
		if (theme == "" || ref.Theme == theme) && (name == "" || ref.Track == name) {
			v.current = i
			break
		}
	}
	v.stale = true
}

func (v *Viewer) Reroll() {
	v.seed++
	v.rebuild()
}

func (v *Viewer) Next() {
	if len(v.refs) == 0 {
		return
	}
	v.current = (v.current + 1) % len(v.refs)
	v.rebuild()
}

func (v *Viewer) rebuild() {
	v.err = v.build()
	if v.err != nil {
		log.Print(v.err)
	}
	if v.status != nil {
		v.status(v.describe())
	}
}

func (v *Viewer) build() error {
	if len(v.refs) == 0 {
		return fmt.Errorf("trackview: catalog has no tracks")
	}
	ref := v.refs[v.current]

	l := loader.New(v.fsys, selector.NewRand(v.seed))
	l.Seed = v.seed
	l.Logger = log.Default()
	m, err := l.LoadNamed(v.cat, ref.Theme, ref.Track)
	if err != nil {
		return err
	}
	c, err := course.New(m)
	if err != nil {
		return err
	}
	starts, _, err := c.StartingPositions(v.players, selector.NewRand(v.seed))
	if err != nil {
		return err
	}

	v.course, v.starts = c, starts
	v.tiles = renderTiles(m)
	return nil
}

func (v *Viewer) describe() string {
	if len(v.refs) == 0 {
		return "no tracks"
	}
	s := fmt.Sprintf("%s  seed %d", v.refs[v.current], v.seed)
	if v.course != nil && v.err == nil {
		s += fmt.Sprintf("  %d markers", len(v.course.Markers))
	}
	return s
}

func (v *Viewer) Update() error {
	if v.stale {
		v.stale = false
		v.rebuild()
	}
	v.ui.Update()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.Reroll()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		v.Next()
	}

	if v.watcher != nil {
		select {
		case name := <-v.watcher.Events:
			log.Printf("trackview: %s changed", name)
			if err := v.loadCatalog(); err != nil {
				v.err = err
				log.Print(err)
			} else {
				v.rebuild()
			}
		case err := <-v.watcher.Errors:
			log.Printf("trackview: watch: %v", err)
		default:
		}
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	if v.err != nil {
		ebitenutil.DebugPrintAt(screen, v.err.Error(), margin, margin)
	} else if v.tiles != nil {
		scale, ox, oy := v.fit(screen)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(ox, oy)
		screen.DrawImage(v.tiles, op)

		toScreen := func(x, y float64) (float32, float32) {
			return float32(x*scale + ox), float32(y*scale + oy)
		}
		for i, g := range v.course.Markers {
			drawGate(screen, g, toScreen, colornames.Gold)
			c := g.Center()
			x, y := toScreen(c.X, c.Y)
			ebitenutil.DebugPrintAt(screen, fmt.Sprint(i), int(x)+4, int(y)+4)
		}
		drawGate(screen, v.course.Finish, toScreen, colornames.Crimson)
		for _, o := range v.course.Obstacles {
			x, y := toScreen(o.X, o.Y)
			vector.FillRect(screen, x-3, y-3, 6, 6, colornames.Orange, false)
		}
		for _, s := range v.starts {
			x, y := toScreen(s.X, s.Y)
			vector.StrokeRect(screen, x-4, y-4, 8, 8, 2, colornames.Deepskyblue, false)
		}
	}

	v.ui.Draw(screen)
}

// fit scales the map to the screen, keeping its aspect ratio.
func (v *Viewer) fit(screen *ebiten.Image) (scale, ox, oy float64) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	mw, mh := v.tiles.Bounds().Dx(), v.tiles.Bounds().Dy()
	scale = math.Min(float64(sw-2*margin)/float64(mw), float64(sh-2*margin)/float64(mh))
	if scale <= 0 {
		scale = 1
	}
	ox = (float64(sw) - float64(mw)*scale) / 2
	oy = (float64(sh) - float64(mh)*scale) / 2
	return scale, ox, oy
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func drawGate(screen *ebiten.Image, g course.Gate, toScreen func(x, y float64) (float32, float32), clr color.Color) {
	a, b := g.Ends()
	ax, ay := toScreen(a.X, a.Y)
	bx, by := toScreen(b.X, b.Y)
	vector.StrokeLine(screen, ax, ay, bx, by, 3, clr, true)
}

// renderTiles draws every tile layer of m into one image, one flat colour
// per tile id.
func renderTiles(m *tilemap.Map) *ebiten.Image {
	w, h := m.PixelSize()
	img := ebiten.NewImage(w, h)
	for _, l := range m.Layers {
		if !l.IsTileLayer() {
			continue
		}
		for i, gid := range l.Data {
			if gid == 0 {
				continue
			}
			x := float32((i % m.Width) * m.TileWidth)
			y := float32((i / m.Width) * m.TileHeight)
			vector.FillRect(img, x, y, float32(m.TileWidth), float32(m.TileHeight), tileColor(l.Name, gid), false)
		}
	}
	return img
}

var layerColors = map[string]color.RGBA{
	"background": colornames.Sandybrown,
	"foreground": colornames.Peru,
	"drops":      colornames.Black,
}

// tileColor shades the layer colour by tile id so neighbouring ids differ.
func tileColor(layer string, gid int) color.RGBA {
	base, ok := layerColors[layer]
	if !ok {
		base = colornames.Gray
	}
	shade := uint8((gid * 37) % 48)
	sub := func(c uint8) uint8 {
		if c < shade {
			return 0
		}
		return c - shade
	}
	return color.RGBA{R: sub(base.R), G: sub(base.G), B: sub(base.B), A: 0xff}
}
