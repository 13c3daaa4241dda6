package main

import (
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/device"
	diag "github.com/coreman2200/ambilight/internal/diagnostics"
	"github.com/coreman2200/ambilight/internal/frame"
	"github.com/coreman2200/ambilight/internal/layout"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/pattern"
	"github.com/coreman2200/ambilight/internal/render"
	"github.com/coreman2200/ambilight/internal/sequence"
	"github.com/coreman2200/ambilight/internal/ws"
)

func main() {
	// ---- Flags (AMBILIGHT_<NAME> environment variables fill unset ones) ----
	var (
		configPath   = flag.String("config", "config.yaml", "path to the output config (YAML or JSON)")
		screenX      = flag.Int("screen-x", 640, "capture width in pixels (both views)")
		screenY      = flag.Int("screen-y", 360, "capture height in pixels")
		fps          = flag.Int("fps", 30, "target frames per second")
		brightness   = flag.Float64("brightness", 1, "brightness, values above 1 amplify")
		desaturation = flag.Float64("desaturation", 0, "desaturation 0..1")
		gamma        = flag.Float64("gamma", 1, "gamma exponent")
		crossfade    = flag.Float64("crossfade", 0, "0 = left view, 1 = right view")
		imagePath    = flag.String("image", "", "still image used as the capture (left view)")
		imageRight   = flag.String("image-right", "", "still image for the right view; defaults to -image")
		patternName  = flag.String("pattern", "rainbow", "test pattern when no image is given: index_sweep | rgb_channels | rainbow | split")
		program      = flag.String("program", "", "parameter schedule (YAML)")
		addr         = flag.String("addr", ":8080", "preview HTTP listen address, empty to disable")
		simOnly      = flag.Bool("sim-only", false, "drive every output with the console simulator")
		writeConfig  = flag.String("write-config", "", "write the normalized config to this path and exit")
		debug        = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	applyEnv(flag.CommandLine)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			log.Fatal().Err(err).Msg("write config")
		}
		log.Info().Str("path", *writeConfig).Msg("config written")
		return
	}

	screen := layout.Screen{X: *screenX, Y: *screenY}
	opts := []device.Option{device.WithLogger(log.Logger)}
	if *simOnly {
		opts = append(opts, device.WithKind(led.KindSim))
	}
	managers, err := device.NewManagers(cfg, screen, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("outputs")
	}

	// ---- Source frame ----
	hold := max(*fps/2, 1)
	src := newSource(screen)
	switch {
	case *imagePath != "" && *imageRight != "":
		src.still, err = frame.LoadPair(*imagePath, *imageRight, screen.X, screen.Y)
	case *imagePath != "":
		src.still, err = frame.Load(*imagePath, screen.X, screen.Y)
	default:
		var kind pattern.Kind
		if kind, err = pattern.ParseKind(*patternName); err == nil {
			src.defaultPlan = pattern.Plan{Kind: kind, Hold: hold}
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("source")
	}

	// ---- Parameters ----
	base := render.Params{
		Brightness:   *brightness,
		Desaturation: *desaturation,
		Gamma:        *gamma,
		Crossfade:    *crossfade,
	}.Sanitize()
	var sched *sequence.Schedule
	if *program != "" {
		if sched, err = sequence.LoadSchedule(*program); err != nil {
			log.Fatal().Err(err).Str("path", *program).Msg("program")
		}
	}
	player := sequence.NewPlayer(sched, base)
	player.Start()

	// ---- Preview ----
	infos := make([]ws.OutputInfo, len(managers))
	for i, m := range managers {
		infos[i] = ws.OutputInfo{
			Index:     i,
			Type:      cfg.Outputs[i].Type,
			Order:     m.Order().String(),
			Leds:      len(m.Nodes()),
			Transport: m.HasTransport(),
		}
	}
	hub := ws.NewHub(infos, base, *fps)
	var srv *http.Server
	if *addr != "" {
		srv = &http.Server{
			Addr:         *addr,
			Handler:      hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", *addr).Int("outputs", len(managers)).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("http server crashed")
			}
		}()
	}

	// ---- Frame loop ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Second / time.Duration(max(1, *fps))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := make([]bool, len(managers))
	colors := make([][]render.ColorRGB, len(managers))
	last := time.Now()

loop:
	for {
		select {
		case s := <-ch:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			break loop
		case now := <-ticker.C:
			if k, ok := hub.TakePattern(); ok {
				src.run(pattern.Plan{Kind: k, Hold: hold})
			}
			img := src.next()

			if cmd, ok := hub.TakeProgram(); ok {
				applyProgram(player, cmd)
			}
			player.SetBase(hub.Params())
			params := player.Tick(now.Sub(last).Seconds())
			last = now

			for i, m := range managers {
				err := m.Update(img, params)
				hub.SetStatus(i, device.Status(err))
				if down := err != nil; down != failing[i] {
					failing[i] = down
					reportTransition(m, err)
					hub.PushDiag(diag.ForUpdate(i, m.Kind(), err))
				}
				colors[i] = m.Colors()
			}
			hub.Publish(colors)
		}
	}

	if srv != nil {
		_ = srv.Close()
	}
	if err := device.CloseAll(managers); err != nil {
		log.Warn().Err(err).Msg("close outputs")
	}
}

// source yields the capture frame for each tick: the still image, or a test
// pattern painted into its own canvas so the still image survives it.
type source struct {
	still       *frame.RGB
	canvas      *frame.RGB
	runner      *pattern.Runner
	defaultPlan pattern.Plan
}

func newSource(screen layout.Screen) *source {
	return &source{canvas: frame.NewRGB(screen.X, screen.Y)}
}

func (s *source) run(plan pattern.Plan) { s.runner = pattern.NewRunner(plan) }

func (s *source) next() *frame.RGB {
	if s.runner != nil {
		if s.runner.Step(s.canvas) {
			return s.canvas
		}
		log.Info().Str("pattern", string(s.runner.Kind())).Msg("test pattern done")
		s.runner = nil
	}
	if s.still != nil {
		return s.still
	}
	if s.defaultPlan.Kind != pattern.None {
		s.run(s.defaultPlan)
		s.runner.Step(s.canvas)
	}
	return s.canvas
}

// applyProgram forwards a control-channel command to the schedule player.
func applyProgram(p *sequence.Player, cmd ws.ProgramCommand) {
	switch cmd.Action {
	case "pause":
		p.Pause()
	case "resume":
		p.Resume()
	case "restart":
		p.Start()
	}
	if cmd.Seek != nil {
		p.Seek(*cmd.Seek)
	}
	log.Info().Str("action", cmd.Action).Str("state", string(p.State())).Msg("program")
}

// reportTransition logs an output going down or coming back. Repeated
// failures are not logged again.
func reportTransition(m *device.Manager, err error) {
	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Int("output", m.Index()).Str("kind", m.Kind().String()).Int("status", device.Status(err)).Msg("output state changed")
}

// applyEnv sets every flag not given on the command line from
// AMBILIGHT_<NAME>, with dashes turned into underscores.
func applyEnv(fset *flag.FlagSet) {
	given := map[string]bool{}
	fset.Visit(func(f *flag.Flag) { given[f.Name] = true })
	fset.VisitAll(func(f *flag.Flag) {
		if given[f.Name] {
			return
		}
		key := "AMBILIGHT_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		v, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		if err := fset.Set(f.Name, v); err != nil {
			log.Warn().Err(err).Str("env", key).Msg("ignoring environment override")
		}
	})
}
