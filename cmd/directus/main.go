package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/directus/engine/internal/config"
	"github.com/directus/engine/internal/core/event"
	coresys "github.com/directus/engine/internal/core/system"
	"github.com/directus/engine/internal/persist"
	"github.com/directus/engine/internal/render"
	"github.com/directus/engine/internal/resource"
	"github.com/directus/engine/internal/scene"
	"github.com/directus/engine/internal/scripting"
	"github.com/directus/engine/internal/system"
	"github.com/directus/engine/internal/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Directus  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          scene runtime · headless         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mEngine:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - utf8.RuneCountInString(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - utf8.RuneCountInString(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Engine.Name)

	// 3. Services
	printSection("Services")

	bus := event.NewBus()

	pool := worker.NewPool(cfg.Workers.Count, cfg.Workers.QueueSize, log)
	defer pool.Close()
	printStat("Workers", cfg.Workers.Count)

	resources := resource.NewManager(cfg.Resources.Directory, log)

	scripts, err := scripting.NewEngine(cfg.Resources.ScriptDirectory, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	printOK("Lua runtime ready")

	renderer := render.NewHeadless(cfg.Renderer.Width, cfg.Renderer.Height, cfg.Renderer.MaxResolution, log)
	w, h := renderer.Resolution()
	printOK(fmt.Sprintf("Headless renderer %dx%d", w, h))

	// 4. Optional scene index
	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("Schema version", int(version))

		system.RegisterSceneIndex(bus, persist.NewSceneIndexRepo(db), log)
	}
	fmt.Println()

	// 5. Scene
	printSection("Scene")

	sc := scene.New(scene.Deps{
		Resources:       resources,
		Tasks:           pool,
		Renderer:        renderer,
		Scripting:       scripts,
		Events:          bus,
		Log:             log,
		ScriptDirectory: cfg.Resources.ScriptDirectory,
	})

	loaded := false
	if cfg.Scene.StartupFile != "" {
		if err := sc.LoadFromFile(cfg.Scene.StartupFile); err != nil {
			log.Warn("startup scene not loaded", zap.String("path", cfg.Scene.StartupFile), zap.Error(err))
		} else {
			loaded = true
			printOK("Loaded " + cfg.Scene.StartupFile)
		}
	}
	if !loaded && cfg.Scene.CreateDefault {
		sc.Initialize()
		printOK("Default scene created")
	}
	sc.Start()
	defer sc.OnDisable()

	printStat("Entities", sc.Count())
	printStat("Renderables", len(sc.Renderables()))
	printStat("Resources", resources.Count())
	fmt.Println()

	// 6. Create systems and register with runner
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewResolveSystem(sc))
	runner.Register(system.NewSceneUpdateSystem(sc))
	runner.Register(system.NewRenderSystem(sc, renderer))

	var autosave *system.AutoSaveSystem
	if cfg.Scene.AutosaveFile != "" {
		autosave = system.NewAutoSaveSystem(sc, cfg.Scene.AutosaveFile, log, cfg.Scene.AutosaveInterval)
		runner.Register(autosave)
	}

	// 7. Start engine loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("Running")
	printReady(fmt.Sprintf("Engine loop started (tick: %s)", cfg.Engine.TickRate))
	fmt.Println()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			runner.Tick(now.Sub(last))
			last = now
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			// Let queued async saves/loads finish before the final save.
			pool.Wait()
			if autosave != nil && cfg.Scene.SaveOnExit {
				if err := autosave.SaveNow(); err != nil {
					log.Error("save on exit failed", zap.Error(err))
				}
			}
			// Deliver the final save event to the scene index.
			runner.TickPhase(coresys.PhaseInput, 0)
			for _, st := range runner.Stats() {
				log.Debug("phase timing",
					zap.Stringer("phase", st.Phase),
					zap.Duration("total", st.Total),
					zap.Duration("per_tick", st.PerTick),
				)
			}
			log.Info("engine stopped", zap.Uint64("ticks", runner.Ticks()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
