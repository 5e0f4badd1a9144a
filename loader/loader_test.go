package loader

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/milk9111/racetrack/selector"
	"github.com/milk9111/racetrack/tilemap"
	"github.com/milk9111/racetrack/track"
	"github.com/milk9111/racetrack/tracklist"
	"github.com/milk9111/racetrack/tracks"
)

func segmentJSON(t *testing.T, fill int, candidates ...bool) []byte {
	t.Helper()
	var objs []tilemap.Object
	for i, c := range candidates {
		props := tilemap.Properties{track.IndexProperty: i}
		if c {
			props[track.CandidateProperty] = "1"
		}
		objs = append(objs, tilemap.Object{X: float64(i), Y: float64(i), Properties: props})
	}
	m := &tilemap.Map{
		Width: 2, Height: 1, TileWidth: 32, TileHeight: 32,
		Layers: []tilemap.Layer{
			{Name: "background", Type: tilemap.TileLayer, Data: []int{fill, fill}},
			{Name: track.TrackLayerName, Type: tilemap.ObjectGroup, Objects: objs},
		},
	}
	b, err := m.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

const catalog = `
themes:
  - name: Test
    tracks:
      - name: Single
        map: single.json
      - name: Pair
        grid:
          - - [a.json, b.json]
            - [c.json]
      - name: Scripted
        selector: last.tengo
        grid:
          - - [a.json, b.json]
            - [c.json]
      - name: Broken
        grid:
          - - [a.json]
            - [missing.json]
      - name: NoFinish
        grid:
          - - [plain.json]
`

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		tracks.Catalog:       {Data: []byte(catalog)},
		"maps/single.json":   {Data: segmentJSON(t, 9, true)},
		"maps/a.json":        {Data: segmentJSON(t, 1, true, false)},
		"maps/b.json":        {Data: segmentJSON(t, 2, true, false)},
		"maps/c.json":        {Data: segmentJSON(t, 3, true)},
		"maps/plain.json":    {Data: segmentJSON(t, 4, false)},
		"scripts/last.tengo": {Data: []byte("pick = count - 1")},
	}
}

func TestLoadSingleMap(t *testing.T) {
	fsys := testFS(t)
	cat, err := tracklist.LoadFS(fsys, tracks.Catalog)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	var logs bytes.Buffer
	l := New(fsys, selector.Fixed(0))
	l.Logger = log.New(&logs, "", 0)

	m, err := l.LoadNamed(cat, "Test", "Single")
	if err != nil {
		t.Fatalf("LoadNamed: %v", err)
	}
	if m.Width != 2 || m.Layers[0].Data[0] != 9 {
		t.Fatalf("unexpected map %+v", m)
	}
	// single maps are used as authored
	if m.Layers[1].Objects[0].Name == track.FinishLineName {
		t.Fatalf("single map should not be reassembled")
	}
	if !strings.Contains(logs.String(), "loaded Single") {
		t.Fatalf("expected a log line, got %q", logs.String())
	}
}

func TestLoadAssemblesGrid(t *testing.T) {
	fsys := testFS(t)
	cat, _ := tracklist.LoadFS(fsys, tracks.Catalog)

	cases := []struct {
		name     string
		track    string
		sel      track.Selector
		wantData []int
		finish   int
	}{
		{"first_variant", "Pair", selector.Fixed(0), []int{1, 1, 3, 3}, 0},
		{"second_variant", "Pair", selector.NewSequence(1, 1), []int{2, 2, 3, 3}, 2},
		{"script_overrides_selector", "Scripted", selector.Fixed(0), []int{2, 2, 3, 3}, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := New(fsys, c.sel).LoadNamed(cat, "Test", c.track)
			if err != nil {
				t.Fatalf("LoadNamed: %v", err)
			}
			data := m.Layers[0].Data
			for i := range c.wantData {
				if data[i] != c.wantData[i] {
					t.Fatalf("expected data %v, got %v", c.wantData, data)
				}
			}
			objs := m.Layers[1].Objects
			if objs[c.finish].Name != track.FinishLineName {
				t.Fatalf("expected object %d to be the finish line, got %+v", c.finish, objs)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := testFS(t)
	cat, _ := tracklist.LoadFS(fsys, tracks.Catalog)
	l := New(fsys, selector.Fixed(0))

	if _, err := l.LoadNamed(cat, "Test", "Broken"); err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("expected missing file error, got %v", err)
	}
	if _, err := l.LoadNamed(cat, "Test", "NoFinish"); !errors.Is(err, track.ErrNoFinishCandidates) {
		t.Fatalf("expected ErrNoFinishCandidates, got %v", err)
	}
	if _, err := l.LoadNamed(cat, "Test", "Nope"); err == nil {
		t.Fatalf("expected error for unknown track")
	}

	fsys["scripts/last.tengo"] = &fstest.MapFile{Data: []byte("pick = count")}
	_, err := New(fsys, selector.Fixed(0)).LoadNamed(cat, "Test", "Scripted")
	if !errors.Is(err, track.ErrSelection) {
		t.Fatalf("expected ErrSelection from a bad script, got %v", err)
	}
}

func TestLoadEmbeddedTracks(t *testing.T) {
	fsys := tracks.FS("")
	cat, err := tracklist.LoadFS(fsys, tracks.Catalog)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	l := New(fsys, selector.NewRand(3))
	l.Seed = 3
	for _, ref := range cat.Refs() {
		if _, err := l.LoadNamed(cat, ref.Theme, ref.Track); err != nil {
			t.Fatalf("%s: %v", ref, err)
		}
	}
}

func TestScriptedTrackIsReproducible(t *testing.T) {
	fsys := tracks.FS("")
	cat, err := tracklist.LoadFS(fsys, tracks.Catalog)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	load := func(name string, seed int64) string {
		l := New(fsys, selector.Fixed(0))
		l.Seed = seed
		m, err := l.LoadNamed(cat, "Desert", name)
		if err != nil {
			t.Fatalf("%s (seed %d): %v", name, seed, err)
		}
		b, err := m.Marshal()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return string(b)
	}

	for _, name := range []string{"Two-Segment Shuffle", "Long Haul"} {
		outputs := map[string]bool{}
		for seed := int64(1); seed <= 20; seed++ {
			first := load(name, seed)
			if again := load(name, seed); again != first {
				t.Fatalf("%s: seed %d gave two different maps", name, seed)
			}
			outputs[first] = true
		}
		if len(outputs) < 2 {
			t.Fatalf("%s: every seed gave the same map", name)
		}
	}
}
