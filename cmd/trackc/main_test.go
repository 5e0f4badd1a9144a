package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/racetrack/tracklist"
	"github.com/milk9111/racetrack/tracks"
)

func TestResolveSeed(t *testing.T) {
	clock := func() time.Time { return time.Unix(0, 12345) }
	if got := resolveSeed(7, clock); got != 7 {
		t.Fatalf("expected explicit seed 7 to be kept, got %d", got)
	}
	if got := resolveSeed(0, clock); got != 12345 {
		t.Fatalf("expected zero seed to come from the clock, got %d", got)
	}
}

func TestBuildIsReproduciblePerSeed(t *testing.T) {
	fsys := tracks.FS("")
	cat, err := tracklist.LoadFS(fsys, tracks.Catalog)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	dir := t.TempDir()

	build := func(name string, seed int64) string {
		o := options{theme: "Desert", track: "Two-Segment Shuffle", seed: seed, out: filepath.Join(dir, name)}
		if err := o.build(cat, fsys); err != nil {
			t.Fatalf("build: %v", err)
		}
		b, err := os.ReadFile(o.out)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return string(b)
	}

	seed := resolveSeed(0, time.Now)
	if build("a.json", seed) != build("b.json", seed) {
		t.Fatalf("seed %d gave two different maps", seed)
	}
}

func TestPickTrack(t *testing.T) {
	cat, err := tracklist.LoadFS(tracks.FS(""), tracks.Catalog)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	cases := []struct {
		theme, track string
		wantTrack    string
		wantErr      bool
	}{
		{"", "", "Two-Segment Track", false},
		{"Desert", "Long Haul", "Long Haul", false},
		{"", "Square Loop", "Square Loop", false},
		{"Jungle", "", "", true},
	}
	for _, c := range cases {
		o := options{theme: c.theme, track: c.track}
		_, name, err := o.pick(cat)
		if (err != nil) != c.wantErr || name != c.wantTrack {
			t.Fatalf("pick(%q,%q) = %q, %v", c.theme, c.track, name, err)
		}
	}
}
