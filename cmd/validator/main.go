package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/accuracybot/config"
	"github.com/alejandrodnm/accuracybot/internal/adapters/notify"
	"github.com/alejandrodnm/accuracybot/internal/application/reconcile"
	"github.com/alejandrodnm/accuracybot/internal/ports"
)

func main() {
	os.Exit(run())
}

// run devuelve el código de salida; los defers se ejecutan antes de salir.
func run() int {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	sourceKind := flag.String("source", "", "snapshot source: sqlite|postgres|file|http (overrides config)")
	sourceDir := flag.String("dir", "", "export directory for -source file (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	jsonOut := flag.Bool("json", false, "print the report as JSON instead of text")
	noSave := flag.Bool("no-save", false, "do not store the report in the history table")
	importDir := flag.String("import", "", "import a JSON export directory into the SQL source and exit")
	history := flag.Int("history", 0, "print the last N saved reports and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	if *sourceKind != "" {
		cfg.Source.Kind = *sourceKind
	}
	if *sourceDir != "" {
		cfg.Source.Dir = *sourceDir
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *jsonOut {
		cfg.Output.Format = "json"
	}
	if *noSave {
		cfg.Storage.SaveReports = false
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *importDir != "":
		return runImport(ctx, cfg, *importDir)
	case *history > 0:
		return runHistory(ctx, cfg, *history)
	}

	slog.Info("accuracybot starting",
		"config", *configPath,
		"source", cfg.Source.Kind,
		"save_reports", cfg.Storage.SaveReports,
		"output", cfg.Output.Format,
	)

	source, closeSource, err := openSource(cfg.Source)
	if err != nil {
		slog.Error("failed to open source", "err", err, "kind", cfg.Source.Kind)
		return 1
	}
	defer closeSource()

	var store ports.ReportStore
	if cfg.Storage.SaveReports {
		s, err := openStore(cfg.Storage)
		if err != nil {
			slog.Error("failed to open report storage", "err", err, "driver", cfg.Storage.Driver)
			return 1
		}
		defer s.Close()
		store = s
	}

	var renderer ports.Renderer = notify.NewConsole()
	if cfg.Output.Format == "json" {
		renderer = notify.NewJSON()
	}

	report, err := reconcile.New(source, store).Run(ctx)
	if err != nil {
		// Si el reporte se construyó y solo falló el guardado, igual se muestra.
		slog.Error("reconciliation failed", "err", err)
		if report.ID == "" {
			return 1
		}
	}

	if err := renderer.Render(ctx, report); err != nil {
		slog.Error("render failed", "err", err)
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// El reporte va a stdout; los logs a stderr para no mezclarse con -json.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
