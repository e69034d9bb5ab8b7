// Command explorer runs the light-seeking exploration controller against a
// robot on a serial port, or against recorded telemetry.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/lightseeker/internal/config"
	"github.com/banshee-data/lightseeker/internal/db"
	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/robot"
	"github.com/banshee-data/lightseeker/internal/serialmux"
	"github.com/banshee-data/lightseeker/internal/timeutil"
	"github.com/banshee-data/lightseeker/internal/units"
	"github.com/banshee-data/lightseeker/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to explorer JSON config (defaults built in)")
	port        = flag.String("port", "/dev/rfcomm0", "Serial port of the robot")
	baud        = flag.Int("baud", 0, "Override the configured baud rate")
	replayPath  = flag.String("replay", "", "Replay recorded telemetry instead of opening the serial port")
	realtime    = flag.Bool("realtime", false, "Pace replay at the configured tick interval")
	dbPath      = flag.String("db", "", "SQLite file to record the run in (disabled when empty)")
	debugAddr   = flag.String("debug-addr", "", "Serve /debug/ admin routes on this localhost address, e.g. localhost:6060 (disabled when empty)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

type options struct {
	configPath string
	port       string
	baud       int
	replayPath string
	realtime   bool
	dbPath     string
	debugAddr  string
}

// runResult summarises a finished run for logging and tests.
type runResult struct {
	runID   string
	ticks   int
	reached bool
	target  explore.Record
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, options{
		configPath: *configPath,
		port:       *port,
		baud:       *baud,
		replayPath: *replayPath,
		realtime:   *realtime,
		dbPath:     *dbPath,
		debugAddr:  *debugAddr,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("explorer: %v", err)
	}
	log.Printf("run finished after %d ticks, target reached: %t", res.ticks, res.reached)
}

func loadConfig(path string) (*config.ExplorerConfig, error) {
	if path == "" {
		return config.DefaultExplorerConfig(), nil
	}
	return config.LoadExplorerConfig(path)
}

func run(ctx context.Context, opts options) (runResult, error) {
	var res runResult

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return res, err
	}
	ctrlCfg := cfg.ControllerConfig()
	cruise, _ := units.BodyVelocity(ctrlCfg.MaxSpeed, ctrlCfg.MaxSpeed)
	log.Printf("max wheel speed %.2f rad/s (%.3f m/s cruise), tick %s, memory %d",
		ctrlCfg.MaxSpeed, cruise, ctrlCfg.TickInterval, ctrlCfg.MemoryCapacity)

	var debug *debugServer
	if opts.debugAddr != "" {
		debug, err = startDebugServer(opts.debugAddr)
		if err != nil {
			return res, err
		}
		defer debug.shutdown()
		log.Printf("debug routes at http://%s/debug/", debug.addr())
	}

	observers := explore.MultiObserver{explore.LogObserver{}}
	if opts.dbPath != "" {
		store, err := db.OpenDB(opts.dbPath)
		if err != nil {
			return res, fmt.Errorf("failed to open run store: %w", err)
		}
		defer store.Close()

		if debug != nil {
			if err := store.AttachAdminRoutes(debug.mux); err != nil {
				return res, err
			}
		}

		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return res, fmt.Errorf("failed to encode config: %w", err)
		}
		rec, err := store.StartRun(string(cfgJSON))
		if err != nil {
			return res, err
		}
		res.runID = rec.ID()
		log.Printf("recording run %s to %s", rec.ID(), opts.dbPath)
		observers = append(observers, rec)
	}

	ctrl, err := explore.NewController(ctrlCfg, observers)
	if err != nil {
		return res, err
	}

	if opts.replayPath != "" {
		err = runReplay(ctx, ctrl, opts)
	} else {
		err = runSerial(ctx, ctrl, cfg, opts, debug)
	}

	res.ticks = ctrl.Ticks()
	res.reached = ctrl.Reached()
	res.target, _ = ctrl.Target()
	return res, err
}

func runReplay(ctx context.Context, ctrl *explore.Controller, opts options) error {
	f, err := os.Open(opts.replayPath)
	if err != nil {
		return fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()

	replay, err := robot.LoadReplay(f)
	if err != nil {
		return fmt.Errorf("failed to load replay %s: %w", opts.replayPath, err)
	}
	log.Printf("replaying %d frames from %s", replay.Len(), opts.replayPath)

	var step explore.StepDriver = replay
	if opts.realtime {
		pacer := robot.NewPacer(replay, timeutil.RealClock{}, ctrl.Config().TickInterval)
		defer pacer.Stop()
		step = pacer
	}
	return ctrl.Run(ctx, robot.Assemble(step, replay, replay))
}

func runSerial(ctx context.Context, ctrl *explore.Controller, cfg *config.ExplorerConfig, opts options, debug *debugServer) error {
	serialOpts := cfg.GetSerial()
	if opts.baud > 0 {
		serialOpts.BaudRate = opts.baud
	}

	mux, err := serialmux.NewRealSerialMux(opts.port, serialOpts)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", opts.port, err)
	}
	defer mux.Close()
	if debug != nil {
		mux.AttachAdminRoutes(debug.mux)
	}

	link := robot.NewLink(mux)
	defer link.Close()

	if err := mux.Initialize(ctrl.Config().TickInterval); err != nil {
		return fmt.Errorf("failed to initialize robot: %w", err)
	}
	log.Printf("connected to robot on %s at %d baud", opts.port, serialOpts.BaudRate)

	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mux.Monitor(monitorCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	runErr := ctrl.Run(ctx, link)

	if err := link.Halt(); err != nil {
		log.Printf("failed to halt robot: %v", err)
	}
	cancelMonitor()
	wg.Wait()
	return runErr
}
