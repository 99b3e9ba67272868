package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/swdee/go-kftrack"
	"github.com/swdee/go-kftrack/diag"
	"github.com/swdee/go-kftrack/render"
	"github.com/swdee/go-kftrack/tracker"
	"gocv.io/x/gocv"
)

const (
	// plotEvery is the number of ticks between redraws of the diagnostics
	// overlay, plotting is slow compared to a tick
	plotEvery = 25
	// overlay size in pixels
	overlayWidth  = 240
	overlayHeight = 120
)

// Demo defines the struct for running the tracking stream demo
type Demo struct {
	cfg      kftrack.Config
	loop     *kftrack.Loop
	sched    *kftrack.Scheduler
	renderer *render.Renderer
	recorder *diag.Recorder
	// pointer is set when positions come from the browser mouse
	pointer *kftrack.PointerSource
	// showPlot draws the diagnostics overlay on frames
	showPlot bool

	// frame is the Mat reused for rendering, only touched on the tick
	// goroutine
	frame   gocv.Mat
	overlay image.Image

	mu sync.Mutex
	// clients receive encoded JPEG frames
	clients map[uuid.UUID]chan []byte
	last    kftrack.Snapshot
}

// NewDemo returns an instance of Demo, a streaming HTTP server showing the
// tracked point
func NewDemo(cfg kftrack.Config, sourceName string, showPlot bool) (*Demo, error) {

	d := &Demo{
		cfg:      cfg,
		renderer: render.NewRenderer(cfg.Width, cfg.Height),
		recorder: diag.NewRecorder(cfg.TrailSize),
		showPlot: showPlot,
		frame:    gocv.NewMat(),
		clients:  make(map[uuid.UUID]chan []byte),
	}

	var source kftrack.PositionSource

	switch sourceName {
	case "lissajous":
		source = kftrack.NewLissajousSource(cfg.Width, cfg.Height)
	case "walk":
		source = kftrack.NewRandomWalkSource(cfg.Width, cfg.Height, cfg.Seed+2)
	case "pointer":
		d.pointer = kftrack.NewPointerSource(tracker.Pt(float64(cfg.Width)/2, float64(cfg.Height)/2))
		source = d.pointer
	default:
		return nil, fmt.Errorf("unknown position source %q, use lissajous, walk or pointer", sourceName)
	}

	d.loop = kftrack.NewLoop(cfg, source)
	d.loop.AddPublisher(d.recorder)
	d.loop.AddPublisher(kftrack.PublisherFunc(d.publish))

	d.sched = kftrack.NewScheduler(d.loop)

	return d, nil
}

// publish renders the snapshot and fans the JPEG out to connected clients.
// It runs on the scheduler goroutine
func (d *Demo) publish(snap kftrack.Snapshot) {

	d.renderer.Draw(&d.frame, snap)

	if d.showPlot {
		if snap.Tick%plotEvery == 0 {
			if img, err := d.recorder.Plot(2*overlayWidth, 2*overlayHeight); err == nil {
				d.overlay = diag.Thumbnail(img, overlayWidth, overlayHeight)
			}
		}

		if d.overlay != nil {
			pt := image.Pt(d.frame.Cols()-overlayWidth, d.frame.Rows()-overlayHeight)

			if err := render.Overlay(&d.frame, d.overlay, pt); err != nil {
				log.Printf("Error drawing overlay: %v", err)
			}
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, d.frame)

	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}

	jpg := make([]byte, buf.Len())
	copy(jpg, buf.GetBytes())
	buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = snap

	for _, ch := range d.clients {
		select {
		case ch <- jpg:
		default:
			// client is behind, drop the frame
		}
	}
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	id := uuid.New()
	frames := make(chan []byte, 2)

	d.mu.Lock()
	d.clients[id] = frames
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.clients, id)
		d.mu.Unlock()
	}()

	log.Printf("New client connection established %s\n", id)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected %s\n", id)
			return

		case jpg := <-frames:
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(jpg)
			w.Write([]byte("\r\n"))

			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Control is the HTTP handler applying a command, eg:
// /control?cmd=process_variance&value=1e-4
func (d *Demo) Control(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()

	cmd, err := kftrack.ParseCommand(q.Get("cmd"), q.Get("value"))

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := d.sched.Send(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if _, ok := cmd.(kftrack.ClearTracks); ok {
		d.recorder.Reset()
	}

	log.Printf("Queued command %v", cmd)
	w.WriteHeader(http.StatusNoContent)
}

// Pointer is the HTTP handler receiving mouse positions from the browser
func (d *Demo) Pointer(w http.ResponseWriter, r *http.Request) {

	if d.pointer == nil {
		http.Error(w, "position source is not pointer", http.StatusConflict)
		return
	}

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)

	if errX != nil || errY != nil {
		http.Error(w, "invalid x or y", http.StatusBadRequest)
		return
	}

	d.pointer.Set(tracker.Pt(x, y))
	w.WriteHeader(http.StatusNoContent)
}

// status is the JSON document served at /status
type status struct {
	Tick                int     `json:"tick"`
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	EstimateX           float64 `json:"estimate_x"`
	EstimateY           float64 `json:"estimate_y"`
	Measurement         bool    `json:"measurement"`
	LastMeasurementTick int     `json:"last_measurement_tick"`
	CovarianceTrace     float64 `json:"covariance_trace"`
	Model               string  `json:"model"`
	Fallback            string  `json:"fallback"`
}

// Status is the HTTP handler returning the latest snapshot as JSON
func (d *Demo) Status(w http.ResponseWriter, r *http.Request) {

	d.mu.Lock()
	snap := d.last
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(status{
		Tick:                snap.Tick,
		X:                   snap.Raw.X,
		Y:                   snap.Raw.Y,
		EstimateX:           snap.Estimate.X,
		EstimateY:           snap.Estimate.Y,
		Measurement:         snap.Measurement,
		LastMeasurementTick: snap.LastMeasurementTick,
		CovarianceTrace:     snap.CovarianceTrace,
		Model:               snap.Model.String(),
		Fallback:            snap.Fallback.String(),
	})
}

// Chart is the HTTP handler rendering the tracks and covariance trace
func (d *Demo) Chart(w http.ResponseWriter, r *http.Request) {

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := diag.RenderPage(w, d.loop.Trail(), d.recorder, d.cfg.Width, d.cfg.Height); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Plot is the HTTP handler returning the diagnostics plot as PNG
func (d *Demo) Plot(w http.ResponseWriter, r *http.Request) {

	img, err := d.recorder.Plot(800, 400)

	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	png.Encode(w, img)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>go-kftrack</title></head>
<body style="background:#222;color:#ddd;font-family:sans-serif">
<img id="view" src="/stream" width="{{.Width}}" height="{{.Height}}" style="cursor:crosshair">
<p>
<a href="#" onclick="cmd('pause')">pause</a> |
<a href="#" onclick="cmd('clear')">clear</a> |
<a href="#" onclick="cmd('model','velocity')">velocity model</a> |
<a href="#" onclick="cmd('model','acceleration')">acceleration model</a> |
<a href="#" onclick="cmd('fallback','predict')">predict only</a> |
<a href="#" onclick="cmd('fallback','synthesize')">synthesize</a> |
<a href="/chart">chart</a> | <a href="/plot.png">plot</a>
</p>
<script>
function cmd(c, v) { fetch('/control?cmd=' + c + '&value=' + (v || '')); return false; }
document.getElementById('view').addEventListener('mousemove', function (e) {
  fetch('/pointer?x=' + e.offsetX + '&y=' + e.offsetY);
});
document.addEventListener('keydown', function (e) { if (e.code === 'Space') { cmd('pause'); e.preventDefault(); } });
</script>
</body></html>`))

// Index is the HTTP handler serving the viewer page
func (d *Demo) Index(w http.ResponseWriter, r *http.Request) {
	indexTmpl.Execute(w, d.cfg)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	configFile := flag.String("c", "", "Config file (JSON, comments allowed)")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	sourceName := flag.String("s", "lissajous", "Position source [lissajous|walk|pointer]")
	showPlot := flag.Bool("p", true, "Draw the diagnostics plot overlay on the stream")

	flag.Parse()

	cfg := kftrack.DefaultConfig()

	if *configFile != "" {
		var err error
		cfg, err = kftrack.LoadConfig(*configFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	demo, err := NewDemo(cfg, *sourceName, *showPlot)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go demo.sched.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", demo.Index)
	mux.HandleFunc("/stream", demo.Stream)
	mux.HandleFunc("/control", demo.Control)
	mux.HandleFunc("/pointer", demo.Pointer)
	mux.HandleFunc("/status", demo.Status)
	mux.HandleFunc("/chart", demo.Chart)
	mux.HandleFunc("/plot.png", demo.Plot)

	srv := &http.Server{Addr: *httpAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	// start http server
	log.Printf("Open browser and view tracking at http://%s/", *httpAddr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
