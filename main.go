package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug overlay")
	segments := flag.Int("segments", 0, "override total_segments from director.yaml")
	seed := flag.Int64("seed", 0, "anomaly seed (0 = random)")
	watch := flag.Bool("watch", false, "watch prefabs/ and reload on change")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("hallways")

	app, err := NewApp(AppOptions{
		Debug:    *debug,
		Segments: *segments,
		Seed:     *seed,
		Watch:    *watch,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	if err := ebiten.RunGame(app); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
