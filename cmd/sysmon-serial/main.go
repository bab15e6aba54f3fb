package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carverauto/sysmon-serial/pkg/config"
	"github.com/carverauto/sysmon-serial/pkg/console"
	"github.com/carverauto/sysmon-serial/pkg/driver"
	"github.com/carverauto/sysmon-serial/pkg/lifecycle"
	"github.com/carverauto/sysmon-serial/pkg/logger"
	"github.com/carverauto/sysmon-serial/pkg/sampler"
	"github.com/carverauto/sysmon-serial/pkg/transport"
	"github.com/carverauto/sysmon-serial/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("sysmon-serial failed: %v", err)
	}
}

func run() error {
	daemon := flag.Bool("daemon", false, "Run in background mode: structured logs to console and log file, no status lines")
	flag.Parse()

	mode := driver.ModeInteractive
	if *daemon {
		mode = driver.ModeBackground
	}

	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	cfg := driver.DefaultConfig()
	configPath := config.ResolvePath(driver.EnvPrefix+"CONFIG", driver.ConfigCandidates()...)

	if err := config.NewConfig(nil, driver.EnvPrefix).LoadAndValidate(ctx, configPath, cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := loggerConfig(cfg, mode)

	componentLogger, err := lifecycle.CreateComponentLogger(ctx, "sysmon-serial", logCfg)
	if err != nil {
		return fmt.Errorf("failed to create component logger: %w", err)
	}
	defer func() { _ = componentLogger.Close() }()

	componentLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("config", configPath).
		Str("log_file", logCfg.File).
		Msg("Loaded configuration")

	s := sampler.NewSampler(componentLogger, cfg.SamplerConfig())
	tr := transport.New(componentLogger, cfg.TransportConfig())
	drv := driver.New(componentLogger, cfg, mode, s, tr)

	var con *console.Console

	if mode == driver.ModeInteractive {
		con = console.New(os.Stdout)
		con.Banner(drv.ResolveDevice(), mode)
		drv.OnCycle = con.Report
	}

	if err := drv.Run(ctx); err != nil {
		return fmt.Errorf("monitor stopped: %w", err)
	}

	if con != nil {
		con.Stopped()
	}

	return nil
}

// loggerConfig derives the logger settings for mode: background mode appends
// JSON lines to the log file, interactive mode prints human-readable lines only.
func loggerConfig(cfg *driver.Config, mode driver.Mode) *logger.Config {
	logCfg := *cfg.Logging

	if mode == driver.ModeBackground {
		logCfg.File = cfg.LogFile
		return &logCfg
	}

	logCfg.File = ""
	logCfg.Format = logger.FormatConsole

	return &logCfg
}
