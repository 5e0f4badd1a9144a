// Command trackc assembles a track from the catalog and writes the merged
// Tiled map.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/milk9111/racetrack/course"
	"github.com/milk9111/racetrack/loader"
	"github.com/milk9111/racetrack/selector"
	"github.com/milk9111/racetrack/tracklist"
	"github.com/milk9111/racetrack/tracks"
	"golang.design/x/clipboard"
)

type options struct {
	dir   string
	theme string
	track string
	seed  int64
	out   string
	clip  bool
}

func main() {
	var o options
	flag.StringVar(&o.dir, "dir", "tracks", "track directory; files missing there come from the built-in tracks")
	flag.StringVar(&o.theme, "theme", "", "theme name (default: first theme)")
	flag.StringVar(&o.track, "track", "", "track name (default: first track of the theme)")
	flag.Int64Var(&o.seed, "seed", 0, "variant selection seed (0 picks a random seed)")
	flag.StringVar(&o.out, "o", "", "write the assembled map here instead of stdout")
	list := flag.Bool("list", false, "list the catalog and exit")
	flag.BoolVar(&o.clip, "clip", false, "also copy the assembled map to the clipboard")
	watch := flag.Bool("watch", false, "reassemble whenever a track file under -dir changes")
	flag.Parse()

	fsys := tracks.FS(dirIfExists(o.dir))
	cat, err := tracklist.LoadFS(fsys, tracks.Catalog)
	if err != nil {
		log.Fatal(err)
	}

	if *list {
		for _, ref := range cat.Refs() {
			fmt.Println(ref)
		}
		return
	}

	o.seed = resolveSeed(o.seed, time.Now)
	log.Printf("trackc: seed %d", o.seed)

	if o.clip {
		if err := clipboard.Init(); err != nil {
			log.Fatalf("clipboard: %v", err)
		}
	}

	if err := o.build(cat, fsys); err != nil {
		if !*watch {
			log.Fatal(err)
		}
		log.Print(err)
	}
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := o.watch(ctx); err != nil {
		log.Fatal(err)
	}
}

// build assembles the selected track once and writes it out.
func (o *options) build(cat *tracklist.Catalog, fsys fs.FS) error {
	theme, name, err := o.pick(cat)
	if err != nil {
		return err
	}

	l := loader.New(fsys, selector.NewRand(o.seed))
	l.Seed = o.seed
	l.Logger = log.Default()
	m, err := l.LoadNamed(cat, theme, name)
	if err != nil {
		return err
	}

	c, err := course.New(m)
	if err != nil {
		return err
	}
	log.Printf("trackc: %s/%s: finish at (%.0f,%.0f) rotated %.0f, %d markers, %d obstacles",
		theme, name, c.Finish.X, c.Finish.Y, c.Finish.Rotation, len(c.Markers), len(c.Obstacles))

	b, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := o.write(b); err != nil {
		return err
	}
	if o.clip {
		<-clipboard.Write(clipboard.FmtText, b)
	}
	return nil
}

func (o *options) pick(cat *tracklist.Catalog) (string, string, error) {
	refs := cat.Refs()
	for _, ref := range refs {
		if o.theme != "" && ref.Theme != o.theme {
			continue
		}
		if o.track != "" && ref.Track != o.track {
			continue
		}
		return ref.Theme, ref.Track, nil
	}
	return "", "", fmt.Errorf("trackc: no track matches theme %q track %q", o.theme, o.track)
}

func (o *options) write(b []byte) error {
	var w io.Writer = os.Stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if o.out != "" {
		log.Printf("trackc: wrote %s", o.out)
	}
	return nil
}

// watch rebuilds after every change below o.dir until ctx is done. The
// catalog is reread each time.
func (o *options) watch(ctx context.Context) error {
	w, err := tracks.WatchTree(o.dir)
	if err != nil {
		return fmt.Errorf("trackc: watch %s: %w", o.dir, err)
	}
	defer w.Close()
	log.Printf("trackc: watching %s", o.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			log.Printf("trackc: watch: %v", err)
		case name := <-w.Events:
			log.Printf("trackc: %s changed", name)
			fsys := tracks.FS(o.dir)
			cat, err := tracklist.LoadFS(fsys, tracks.Catalog)
			if err != nil {
				log.Print(err)
				continue
			}
			if err := o.build(cat, fsys); err != nil {
				log.Print(err)
			}
		}
	}
}

// resolveSeed replaces a zero seed with one taken from the clock. The
// result is used for both the default selector and selector scripts.
func resolveSeed(seed int64, now func() time.Time) int64 {
	if seed != 0 {
		return seed
	}
	return now().UnixNano()
}

func dirIfExists(dir string) string {
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		return dir
	}
	return ""
}
