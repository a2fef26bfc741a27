package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"chored/internal/config"
	"chored/internal/services/debug"
	"chored/internal/services/loop"
	"chored/internal/storage"
	logx "chored/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./chored.yaml", "path to config file (yaml or json)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logSvc, log := logx.New(logsCfg(cfg))
	defer logSvc.Close()
	cfgm.SetLogger(log)
	cfgm.SetValidator(func(_ context.Context, c *config.Config) error { return validate(c) })

	store, err := storage.Open(storeCfg(cfg), log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	svc := loop.New(loopCfg(cfg), store, log)
	reg := newRegistrar(svc, log)
	if err := reg.apply(cfg); err != nil {
		return err
	}

	if cfg.Loop.Enabled {
		svc.Start(ctx)
	}

	dbg := debug.New(debugCfg(cfg), svc, log)
	if cfg.Debug.Enabled {
		dbg.Start()
	}
	defer dbg.Stop()

	// Config hot reload.
	go func() {
		if err := cfgm.Watch(ctx); err != nil {
			log.Warn("config watch exited", logx.Err(err))
		}
	}()
	updates := cfgm.Subscribe(1)
	defer cfgm.Unsubscribe(updates)

	if ack, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn("sd_notify ready failed", logx.Err(err))
	} else if ack {
		log.Debug("sd_notify ready acknowledged")
	}
	log.Info("chored running", logx.String("config", cfgPath))

	last := cfg
	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			svc.Stop(context.Background())
			log.Info("chored stopped")
			return nil

		case newCfg, ok := <-updates:
			if !ok {
				return nil
			}
			sections, attrs := config.SummarizeConfigChange(last, newCfg)
			if len(sections) == 0 {
				continue
			}
			log.Info("config reloaded", append(attrs, logx.Any("sections", sections))...)

			logSvc.Apply(logsCfg(newCfg))
			svc.Apply(loopCfg(newCfg))
			dbg.Reconfigure(debugCfg(newCfg))
			if err := reg.apply(newCfg); err != nil {
				log.Warn("chore re-register failed", logx.Err(err))
			}
			switch {
			case newCfg.Loop.Enabled && !last.Loop.Enabled:
				svc.Start(ctx)
			case !newCfg.Loop.Enabled && last.Loop.Enabled:
				svc.Stop(context.Background())
			}
			// Storage driver changes need a restart; everything else is live.
			if !storageEqual(last.Storage, newCfg.Storage) {
				log.Warn("storage config changed; restart to apply")
			}
			last = newCfg
		}
	}
}

func validate(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	// Interval syntax is the loop service's business; check it here so a
	// bad reload is rejected before reaching the ring.
	for _, cc := range cfg.Chores {
		if _, _, err := loop.ParseEvery(cc.Every); err != nil {
			return fmt.Errorf("chore %q: %w", cc.Name, err)
		}
	}
	return nil
}

func logsCfg(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func loopCfg(cfg *config.Config) loop.Config {
	poll, _ := config.ParseDurationField("loop.poll", cfg.Loop.Poll)
	return loop.Config{
		Enabled:     cfg.Loop.Enabled,
		Poll:        poll,
		HistorySize: cfg.Loop.HistorySize,
		OverrunWarn: cfg.Loop.OverrunWarn,
	}
}

func debugCfg(cfg *config.Config) debug.Config {
	return debug.Config{
		Enabled: cfg.Debug.Enabled,
		Addr:    cfg.Debug.Addr,
		Token:   cfg.Debug.Token,
	}
}

func storeCfg(cfg *config.Config) storage.Config {
	if cfg.Storage == nil {
		return storage.Config{}
	}
	busy, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	return storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
		MaxRows:     cfg.Storage.MaxRows,
	}
}

func storageEqual(a, b *config.StorageConfig) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
