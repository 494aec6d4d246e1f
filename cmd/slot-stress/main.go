package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/slotstore/ecs"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "slot-stress: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if stop := startProfile(cfg.Output.Profile); stop != nil {
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := stress(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if cfg.Output.Report != "" {
		if err := report.WriteFile(cfg.Output.Report); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", cfg.Output.Report))
	}
	return nil
}

// parseConfig layers command line flags over an optional config file.
func parseConfig(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("slot-stress", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "TOML or YAML config file")

	d := defaults()
	duration := fs.DurationP("duration", "d", d.Run.Duration, "how long to run when no cycle limit is set")
	cycles := fs.Int("cycles", d.Run.Cycles, "stop after this many cycles (0 = no limit)")
	owners := fs.IntP("owners", "n", d.Run.Owners, "number of live owners")
	churn := fs.Float64("churn", d.Run.Churn, "fraction of owners churned per cycle")
	reserve := fs.Int("reserve", d.Run.Reserve, "capacity reserved per container up front")
	seed := fs.Int64("seed", d.Run.Seed, "random seed")
	logLevel := fs.String("log-level", d.Logging.Level, "debug, info, warn or error")
	logFormat := fs.String("log-format", d.Logging.Format, "console or json")
	prof := fs.String("profile", d.Output.Profile, "cpu, mem or off")
	reportPath := fs.String("report", d.Output.Report, "also write the report to this file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := d
	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Explicit flags win over the file.
	if fs.Changed("duration") {
		cfg.Run.Duration = *duration
	}
	if fs.Changed("cycles") {
		cfg.Run.Cycles = *cycles
	}
	if fs.Changed("owners") {
		cfg.Run.Owners = *owners
	}
	if fs.Changed("churn") {
		cfg.Run.Churn = *churn
	}
	if fs.Changed("reserve") {
		cfg.Run.Reserve = *reserve
	}
	if fs.Changed("seed") {
		cfg.Run.Seed = *seed
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = *logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = *logFormat
	}
	if fs.Changed("profile") {
		cfg.Output.Profile = *prof
	}
	if fs.Changed("report") {
		cfg.Output.Report = *reportPath
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
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
	// The report owns stdout.
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

func startProfile(mode string) func() {
	var p interface{ Stop() }
	switch mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		return nil
	}
	return p.Stop
}

// stress populates a registry and cycles it until the context ends, the
// duration elapses or the cycle limit is hit.
func stress(ctx context.Context, cfg *Config, logger *zap.Logger) (*Report, error) {
	registry := ecs.NewRegistry(
		ecs.WithLogger(logger.Named("registry")),
		ecs.WithInitialCapacity(cfg.Run.Reserve),
	)
	w := newWorkload(cfg.Run, registry, logger.Named("workload"))

	report := &Report{
		Duration: cfg.Run.Duration,
		Cycles:   cfg.Run.Cycles,
		Owners:   cfg.Run.Owners,
		Churn:    cfg.Run.Churn,
		Reserve:  cfg.Run.Reserve,
		Seed:     cfg.Run.Seed,
	}

	logger.Info("populating", zap.Int("owners", cfg.Run.Owners))
	if err := w.populate(); err != nil {
		return nil, err
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	if cfg.Run.Cycles == 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Run.Duration)
		defer cancel()
	}

	logger.Info("running",
		zap.Duration("duration", cfg.Run.Duration),
		zap.Int("cycles", cfg.Run.Cycles),
	)

	start := time.Now()
Loop:
	for cfg.Run.Cycles == 0 || report.TotalCycles < int64(cfg.Run.Cycles) {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		cycleStart := time.Now()
		if err := w.cycle(); err != nil {
			return nil, fmt.Errorf("cycle %d: %w", report.TotalCycles, err)
		}
		report.CycleTime.Samples = append(report.CycleTime.Samples, time.Since(cycleStart))
		report.TotalCycles++
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("run interrupted", zap.Error(err))
	}

	report.TotalTime = time.Since(start)
	report.CycleTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Spawned = w.Spawned
	report.Destroyed = w.Destroyed
	report.Churned = w.Churned
	report.Registry = registry.CollectStats()

	logger.Info("finished",
		zap.Int64("cycles", report.TotalCycles),
		zap.Int("records", report.Registry.TotalRecords),
	)

	if err := w.shutdown(); err != nil {
		return nil, fmt.Errorf("shutdown: %w", err)
	}
	return report, nil
}
