// Command cube-hunter runs the cube shooting game in a terminal, or headless with a bot
// at the stick for soak runs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/lixenwraith/cube-hunter/audio"
	"github.com/lixenwraith/cube-hunter/config"
	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/engine"
	"github.com/lixenwraith/cube-hunter/input"
	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/rng"
	"github.com/lixenwraith/cube-hunter/status"
	"github.com/lixenwraith/cube-hunter/telemetry"
)

// hudRows is the pixel height reserved below the field for the score line
const hudRows = 3 * render.PixelsPerRow

// options are the parsed command-line flags
type options struct {
	configPath string
	debug      bool
	headless   bool
	duration   time.Duration
	seed       uint64
	statusAddr string
	mute       bool
}

func parseFlags(args []string) (*options, error) {
	parser := argparse.NewParser("cube-hunter", "Shoot the wandering cubes before they expire")

	cfgPath := parser.String("c", "config", &argparse.Options{Help: "TOML config file"})
	debug := parser.Flag("d", "debug", &argparse.Options{Help: "Write debug logs to logs/cube-hunter.log"})
	headless := parser.Flag("H", "headless", &argparse.Options{Help: "Run without a terminal, steered by a bot"})
	duration := parser.String("t", "duration", &argparse.Options{Help: "Stop after this long (e.g. 30s)"})
	seed := parser.String("s", "seed", &argparse.Options{Help: "Fixed RNG seed"})
	statusAddr := parser.String("a", "status-addr", &argparse.Options{Help: "Serve the debug status feed on this address"})
	mute := parser.Flag("m", "mute", &argparse.Options{Help: "Disable sound"})

	if err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("%s", parser.Usage(err))
	}

	opts := &options{
		configPath: *cfgPath,
		debug:      *debug,
		headless:   *headless,
		statusAddr: *statusAddr,
		mute:       *mute,
	}
	if *duration != "" {
		d, err := time.ParseDuration(*duration)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid duration %q", *duration)
		}
		opts.duration = d
	}
	if *seed != "" {
		v, err := strconv.ParseUint(*seed, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", *seed, err)
		}
		opts.seed = v
	}
	return opts, nil
}

// loadConfig layers defaults, the config file, .env and the environment, then the flags
func loadConfig(opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.statusAddr != "" {
		cfg.Telemetry.Addr = opts.statusAddr
	}
	if opts.mute {
		cfg.Audio.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seedRNG fixes the seed from config, or derives it from the first stick reading
func seedRNG(gen *rng.Generator, seed uint64, sampler input.Sampler) error {
	if seed != 0 {
		return gen.Seed(uint32(seed>>32), uint32(seed))
	}
	raw, err := sampler.Sample()
	if err != nil {
		return err
	}
	a, b := rng.SeedFromSample(raw.X, raw.Y, time.Now())
	return gen.Seed(a, b)
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if logFile := setupLogging(opts.debug); logFile != nil {
		defer logFile.Close()
	}
	log := logrus.WithField("app", "cube-hunter")

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	headless := opts.headless || !term.IsTerminal(int(os.Stdout.Fd()))
	reg := status.NewRegistry()
	reg.Bools.Get(status.Headless).Store(headless)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	var (
		screen  tcell.Screen
		surface render.Surface
		tsurf   *render.TcellSurface
	)
	fieldH := cfg.Crosshair.FieldHeight + hudRows
	if headless {
		surface = render.NewRecorder(4096)
	} else {
		screen, err = tcell.NewScreen()
		if err == nil {
			err = screen.Init()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
			return 1
		}
		core.SetRestoreHook(screen.Fini)
		defer screen.Fini()
		screen.EnableMouse()
		tsurf = render.NewTcellSurface(screen, cfg.Crosshair.FieldWidth, fieldH)
		surface = tsurf
	}

	var sound audio.Player = audio.Silent{}
	if cfg.Audio.Enabled {
		p, err := audio.NewSpeakerPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume)
		if err != nil {
			log.WithError(err).Warn("audio unavailable, continuing without sound")
		} else {
			sound = p
		}
	}
	defer sound.Close()

	gen := rng.New()
	queue := input.NewQueue(cfg.Input.QueueSize)
	var pipeline *input.Pipeline

	game, err := engine.NewGame(engine.Options{
		Config:   cfg,
		RNG:      gen,
		Surface:  surface,
		Sound:    sound,
		Queue:    queue,
		Registry: reg,
		Log:      log,
		OnReset: func() {
			if pipeline != nil {
				pipeline.ResetStats()
			}
		},
		// Off-field screens keep the crosshair where the game left it
		OnField: func(shown bool) {
			if pipeline != nil {
				pipeline.SetPaused(!shown)
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build game: %v\n", err)
		return 1
	}

	var (
		sampler input.Sampler
		stick   *input.Stick
	)
	if headless {
		sampler = input.NewAutopilot(game.Crosshair(), game.Targets, cfg.Crosshair.BaseSpeed, 2, cfg.Seed)
	} else {
		stick = input.NewStick(game.Crosshair(), render.PixelsPerCol, render.PixelsPerRow)
		defer stick.Close()
		sampler = stick
	}

	if err := seedRNG(gen, cfg.Seed, sampler); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed RNG: %v\n", err)
		return 1
	}

	pipeline = input.NewPipeline(input.PipelineConfig{
		Sampler:   sampler,
		Crosshair: game.Crosshair(),
		Speed:     game.Modifiers(),
		Queue:     queue,
		Period:    cfg.Input.SamplePeriod.Duration,
		Smoothing: cfg.Input.Smoothing.Duration,
		BaseSpeed: cfg.Crosshair.BaseSpeed,
		Field: input.Field{
			Width:  cfg.Crosshair.FieldWidth,
			Height: cfg.Crosshair.FieldHeight,
			Size:   cfg.Crosshair.Size,
		},
		Buckets:  cfg.Input.JitterBuckets,
		Registry: reg,
		Log:      log.WithField("component", "input"),
	})
	core.Go(func() {
		if err := pipeline.Run(ctx); err != nil {
			log.WithError(err).Error("input pipeline stopped")
		}
	})

	if cfg.Telemetry.Addr != "" {
		srv := telemetry.NewServer(game, cfg.Telemetry.StreamInterval.Duration, log)
		core.Go(func() {
			if err := srv.ListenAndServe(ctx, cfg.Telemetry.Addr); err != nil {
				log.WithError(err).Error("status feed stopped")
			}
		})
	}

	if err := game.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer game.Stop()

	if headless {
		runHeadless(ctx, game)
		return 0
	}
	runInteractive(ctx, cfg, screen, tsurf, stick, game)
	return 0
}

// runHeadless restarts finished games until ctx ends, then prints the final metrics
func runHeadless(ctx context.Context, game *engine.Game) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			summary, _ := json.Marshal(game.Snapshot().Metrics)
			fmt.Println(string(summary))
			return
		case <-ticker.C:
			if s := game.Session(); s.Over() && !s.Restarting() {
				game.RequestRestart()
			}
		}
	}
}

// runInteractive feeds terminal events to the stick and the game buttons until quit
func runInteractive(ctx context.Context, cfg *config.Config, screen tcell.Screen, surf *render.TcellSurface, stick *input.Stick, game *engine.Game) {
	restartBtn := input.NewDebouncer(cfg.Debounce.Restart.Duration)
	scoreBtn := input.NewDebouncer(cfg.Debounce.ScoreEntry.Duration)

	events := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	for {
		var ev tcell.Event
		select {
		case <-ctx.Done():
			return
		case ev = <-events:
		}

		switch e := ev.(type) {
		case *tcell.EventResize:
			surf.Resize()
			screen.Sync()

		case *tcell.EventMouse:
			col, row := e.Position()
			ox, oy := surf.Offset()
			stick.HandleEvent(tcell.NewEventMouse(col-ox, row-oy, e.Buttons(), e.Modifiers()))

		case *tcell.EventKey:
			if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
				return
			}
			if e.Key() == tcell.KeyRune {
				switch e.Rune() {
				case 'q':
					return
				case 'r':
					if restartBtn.Allow() {
						game.RequestRestart()
					}
					continue
				case 's':
					if scoreBtn.Allow() {
						game.RequestScoreEntry()
					}
					continue
				}
			}
			stick.HandleEvent(e)
		}
	}
}
