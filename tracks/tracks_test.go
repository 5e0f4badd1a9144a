package tracks

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/racetrack/selector"
	"github.com/milk9111/racetrack/tilemap"
	"github.com/milk9111/racetrack/track"
	"github.com/milk9111/racetrack/tracklist"
)

func TestEmbeddedCatalogIsComplete(t *testing.T) {
	cat, err := tracklist.LoadFS(Files, Catalog)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	for _, ref := range cat.Refs() {
		tr, _ := cat.Find(ref.Theme, ref.Track)
		for _, f := range tr.Files() {
			if _, err := tilemap.LoadFS(Files, MapPath(f)); err != nil {
				t.Fatalf("%s: %v", ref, err)
			}
		}
		if tr.Selector != "" {
			if _, err := fs.ReadFile(Files, ScriptPath(tr.Selector)); err != nil {
				t.Fatalf("%s: selector: %v", ref, err)
			}
		}
	}
}

func TestEmbeddedSegmentsAssemble(t *testing.T) {
	cat, err := tracklist.LoadFS(Files, Catalog)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	for _, ref := range cat.Refs() {
		tr, _ := cat.Find(ref.Theme, ref.Track)
		if !tr.Segmented() {
			continue
		}
		grid := make(track.Grid, len(tr.Grid))
		for r, row := range tr.Grid {
			grid[r] = make(track.Row, len(row))
			for c, cell := range row {
				for _, f := range cell {
					m, err := tilemap.LoadFS(Files, MapPath(f))
					if err != nil {
						t.Fatalf("%s: %v", ref, err)
					}
					grid[r][c] = append(grid[r][c], m)
				}
			}
		}
		for seed := int64(1); seed <= 5; seed++ {
			if _, err := track.NewAssembler(grid, selector.NewRand(seed)).Assemble(); err != nil {
				t.Fatalf("%s (seed %d): %v", ref, seed, err)
			}
		}
	}
}

func TestFSPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	override := []byte("themes:\n- name: Disk\n  tracks:\n  - {name: Only, map: only.json}\n")
	if err := os.WriteFile(filepath.Join(dir, Catalog), override, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fsys := FS(dir)
	cat, err := tracklist.LoadFS(fsys, Catalog)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if cat.Themes[0].Name != "Disk" {
		t.Fatalf("expected disk catalog, got theme %q", cat.Themes[0].Name)
	}

	// files missing on disk come from the embedded copy
	if _, err := tilemap.LoadFS(fsys, MapPath("desert/square-loop.json")); err != nil {
		t.Fatalf("embedded fallback: %v", err)
	}
	if _, err := fs.ReadFile(fsys, "maps/nope.json"); err == nil {
		t.Fatalf("expected error for a file in neither place")
	}
}

func TestIsTrackFile(t *testing.T) {
	cases := map[string]bool{
		"maps/a.json":       true,
		"tracks.yaml":       true,
		"tracks.YML":        true,
		"scripts/x.tengo":   true,
		"maps/a.json.swp":   false,
		"tilesets/sand.png": false,
	}
	for path, want := range cases {
		if got := IsTrackFile(path); got != want {
			t.Fatalf("IsTrackFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatchTreeReportsChanges(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "maps", "desert")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := WatchTree(root)
	if err != nil {
		t.Fatalf("WatchTree: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(sub, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(sub, "left.json")
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case name := <-w.Events:
		if name != target {
			t.Fatalf("expected event for %s, got %s", target, name)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", target)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
