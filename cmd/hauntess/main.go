package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hauntess/server/internal/config"
	"github.com/hauntess/server/internal/core/event"
	coresys "github.com/hauntess/server/internal/core/system"
	"github.com/hauntess/server/internal/core/timer"
	"github.com/hauntess/server/internal/data"
	"github.com/hauntess/server/internal/handler"
	"github.com/hauntess/server/internal/haunt"
	gonet "github.com/hauntess/server/internal/net"
	"github.com/hauntess/server/internal/persist"
	"github.com/hauntess/server/internal/schema"
	"github.com/hauntess/server/internal/scripting"
	"github.com/hauntess/server/internal/simhost"
	"github.com/hauntess/server/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Content.StartMap)

	printSection("Content")

	content, err := data.LoadContentTable(cfg.Content.MapsFile)
	if err != nil {
		return fmt.Errorf("load content table: %w", err)
	}
	printStat("maps", content.Count())

	preset, err := loadPreset(cfg, log)
	if err != nil {
		return err
	}
	fmt.Println()

	printSection("Journal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var journal haunt.Journal = haunt.NopJournal{}
	if cfg.Journal.DSN != "" {
		db, err := persist.NewDB(ctx, cfg.Journal, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		repo := persist.NewJournalRepo(db)
		aj := persist.NewAsyncJournal(repo, cfg.Journal.QueueSize, log)
		jctx, stopJournal := context.WithCancel(context.Background())
		go aj.Run(jctx)
		defer func() {
			stopJournal()
			aj.Wait()
		}()
		journal = aj
	} else {
		printSkip("disabled (no dsn)")
	}
	fmt.Println()

	printSection("World")

	bus := event.NewBus()
	sched := timer.NewScheduler()
	host := simhost.New(content, bus, log)

	opts := haunt.Options{
		MasterName:  cfg.Haunt.MasterName,
		ReloadDelay: cfg.Haunt.ReloadDelay,
		SpawnDelay:  cfg.Haunt.SpawnDelay,
		IncludeBots: cfg.Haunt.IncludeBots,
		Visibility:  cfg.Haunt.Visibility,
		Preset:      preset,
	}
	ctl := haunt.NewController(host, sched, journal, opts, log)
	ctl.Subscribe(bus)

	if err := host.LoadMap(cfg.Content.StartMap); err != nil {
		return fmt.Errorf("start map: %w", err)
	}
	printOK(fmt.Sprintf("loaded %s", host.MapName()))

	bots := 0
	for _, name := range cfg.Content.Bots {
		slot, err := host.Connect(name, true)
		if err != nil {
			log.Warn("bot not connected", zap.String("name", name), zap.Error(err))
			continue
		}
		if err := host.Spawn(slot); err != nil {
			log.Warn("bot not spawned", zap.String("name", name), zap.Error(err))
			continue
		}
		bots++
	}
	printStat("bots", bots)

	fmt.Println()

	store := gonet.NewSessionStore()
	deps := &handler.Deps{
		Config:     cfg,
		Log:        log,
		Host:       host,
		Controller: ctl,
		Content:    content,
	}

	var (
		netServer *gonet.Server
		incoming  <-chan *gonet.Session
	)
	if cfg.Console.BindAddress != "" {
		netServer, err = gonet.NewServer(cfg.Console.BindAddress, gonet.Options{
			InQueueSize:  cfg.Console.InQueueSize,
			OutQueueSize: cfg.Console.OutQueueSize,
			ReadTimeout:  cfg.Console.ReadTimeout,
			WriteTimeout: cfg.Console.WriteTimeout,
			Greeting:     fmt.Sprintf("%s console. type help for commands.", cfg.Server.Name),
			Auth:         gonet.BcryptAuthenticator(cfg.Console.PasswordHash),
		}, log)
		if err != nil {
			return fmt.Errorf("console server: %w", err)
		}
		go netServer.AcceptLoop()
		incoming = netServer.NewSessions()
	}

	consoleSys := system.NewConsoleSystem(incoming, store, deps, cfg.Console.MaxLinesPerTick, log)
	if cfg.Console.Stdin {
		var id uint64
		if netServer != nil {
			id = netServer.NextID()
		}
		local := gonet.NewLocalSession(os.Stdin, os.Stdout, id, cfg.Console.InQueueSize, cfg.Console.OutQueueSize, log)
		local.Start("")
		consoleSys.Adopt(local)
	}

	runner := coresys.NewRunner()
	runner.Register(consoleSys)
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewTimerSystem(sched))
	runner.Register(ctl.Enforcer())
	runner.Register(system.NewReplicationSystem(host, log))
	runner.Register(system.NewOutputSystem(store))
	runner.Register(system.NewCleanupSystem(host))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	if netServer != nil {
		printReady(fmt.Sprintf("console listening on %s", netServer.Addr().String()))
	}
	if cfg.Console.Stdin {
		printReady("stdin console attached")
	}
	printReady(fmt.Sprintf("tick loop started (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()),
				zap.Stringer("mode", ctl.State().Mode()),
				zap.Uint64("ticks", runner.Ticks()),
			)
			if netServer != nil {
				netServer.Shutdown()
			}
			store.ForEach(func(s *gonet.Session) { s.Close() })
			log.Info("server stopped")
			return nil
		}
	}
}

// loadPreset runs the configured preset through the fog scripts. A
// rejected script result keeps the configured preset.
func loadPreset(cfg *config.Config, log *zap.Logger) (schema.FogParams, error) {
	base := cfg.Haunt.Fog.Params()

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return base, fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()

	if !engine.HasPreset() {
		printSkip("no fog preset script")
		return base, nil
	}
	preset, err := engine.FogPreset(base)
	if err != nil {
		log.Warn("fog preset script rejected, using configured preset", zap.Error(err))
		return base, nil
	}
	if diff := schema.Diff(&base, &preset); len(diff) > 0 {
		log.Info("fog preset adjusted by script", zap.Strings("fields", diff))
	}
	printOK("fog preset script applied")
	return preset, nil
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
