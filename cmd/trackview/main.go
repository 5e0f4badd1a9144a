// Command trackview shows assembled tracks: R rerolls the segment variants,
// N moves on to the next track in the catalog.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	dir := flag.String("dir", "tracks", "track directory; files missing there come from the built-in tracks")
	theme := flag.String("theme", "", "theme to start on")
	trackName := flag.String("track", "", "track to start on")
	seed := flag.Int64("seed", 1, "first variant selection seed")
	players := flag.Int("players", 4, "starting positions to show (1-4)")
	flag.Parse()

	v, err := NewViewer(*dir, *seed, *players)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()
	v.Select(*theme, *trackName)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("trackview")

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
