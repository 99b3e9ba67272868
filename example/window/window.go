package main

import (
	"context"
	"flag"
	"log"

	"github.com/swdee/go-kftrack"
	"github.com/swdee/go-kftrack/render"
	"github.com/swdee/go-kftrack/tracker"
	"gocv.io/x/gocv"
)

// key codes returned by WaitKey
const (
	keyEsc   = 27
	keySpace = 32
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	configFile := flag.String("c", "", "Config file (JSON, comments allowed)")
	walk := flag.Bool("w", false, "Use a random walk instead of a Lissajous curve")

	flag.Parse()

	cfg := kftrack.DefaultConfig()

	if *configFile != "" {
		var err error
		cfg, err = kftrack.LoadConfig(*configFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	var source kftrack.PositionSource = kftrack.NewLissajousSource(cfg.Width, cfg.Height)

	if *walk {
		source = kftrack.NewRandomWalkSource(cfg.Width, cfg.Height, cfg.Seed+2)
	}

	loop := kftrack.NewLoop(cfg, source)

	// hand snapshots to the window goroutine, dropping any the window is
	// too slow to show
	snaps := make(chan kftrack.Snapshot, 1)

	loop.AddPublisher(kftrack.PublisherFunc(func(s kftrack.Snapshot) {
		select {
		case snaps <- s:
		default:
		}
	}))

	sched := kftrack.NewScheduler(loop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Run(ctx)

	renderer := render.NewRenderer(cfg.Width, cfg.Height)

	img := gocv.NewMat()
	defer img.Close()

	// create simple window to show the simulation
	window := gocv.NewWindow("Kalman filter tracking")
	defer window.Close()

	log.Printf("space: pause, c: clear, v/a: velocity/acceleration model, f: toggle fallback, 1/2/3/x/i: toggle truth/measured/filtered/cross/text, esc: quit")

	model := cfg.Model
	fallback := cfg.Fallback

	for {
		select {
		case s := <-snaps:
			renderer.Draw(&img, s)
			window.IMShow(img)
		default:
		}

		var cmd kftrack.Command

		switch window.WaitKey(1) {
		case keyEsc:
			log.Printf("Shutting down: ESC pressed")
			return
		case keySpace:
			cmd = kftrack.TogglePause{}
		case 'c':
			cmd = kftrack.ClearTracks{}
		case 'v':
			model = tracker.ConstantVelocity
			cmd = kftrack.SetModelOrder(model)
		case 'a':
			model = tracker.ConstantAcceleration
			cmd = kftrack.SetModelOrder(model)
		case 'f':
			if fallback == tracker.FallbackPredictOnly {
				fallback = tracker.FallbackSynthesize
			} else {
				fallback = tracker.FallbackPredictOnly
			}
			cmd = kftrack.SetFallbackMode(fallback)
		case '1':
			renderer.Style.Truth.Show = !renderer.Style.Truth.Show
		case '2':
			renderer.Style.Measured.Show = !renderer.Style.Measured.Show
		case '3':
			renderer.Style.Filtered.Show = !renderer.Style.Filtered.Show
		case 'x':
			renderer.Style.ShowCross = !renderer.Style.ShowCross
		case 'i':
			renderer.ShowInfo = !renderer.ShowInfo
		}

		if cmd != nil {
			if err := sched.Send(ctx, cmd); err != nil {
				log.Printf("Error sending command: %v", err)
			}
		}
	}
}
