package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"console-cli/internal/app"
	"console-cli/internal/config"
	"console-cli/internal/logger"
	"console-cli/internal/prefs"
	"console-cli/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	logger.Configure()

	root, err := parseRootArgs(args, stderr)
	if err != nil {
		return 2
	}
	cfg, err := config.Load(root.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	cfg = config.ApplyKVOverrides(cfg, root.overrides)

	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		fmt.Fprintf(stderr, "warning: failed to initialize log file: %v\n", err)
	} else {
		defer logFile.Close()
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warnf("invalid log_level %q: %v", cfg.LogLevel, err)
	}
	exchange := logger.NewExchangeLogger(nil)
	if entry, closer, _, err := logger.SetupComponentFile("exchange", logger.DefaultExchangeLogPath); err != nil {
		logger.Warnf("failed to initialize exchange log (%s): %v", logger.DefaultExchangeLogPath, err)
	} else {
		exchange = logger.NewExchangeLogger(entry)
		defer closer.Close()
	}

	storage := openStorage(cfg, stderr)
	defer storage.Close()

	a := app.New(app.Options{
		Async:    true,
		Gate:     prefs.NewGate(storage),
		Exchange: exchange,
	})
	res, err := tui.Run(tui.Options{
		App:            a,
		FrameInterval:  time.Duration(cfg.FrameMillis) * time.Millisecond,
		ProcessTimeout: time.Duration(cfg.ProcessTimeoutSecs) * time.Second,
	})
	if res.SaveErr != nil {
		fmt.Fprintf(stderr, "warning: preferences not saved: %v\n", res.SaveErr)
	}
	if err != nil {
		logger.Named("main").WithError(err).Error("tui exited with error")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger.Named("main").WithFields(logger.Fields{
		"session_id": res.SessionID,
		"exchanges":  res.Exchanges,
	}).Info("session ended")
	return 0
}

// openStorage 打开偏好数据库；失败时退回内存存储，会话照常进行。
func openStorage(cfg config.Config, stderr io.Writer) prefs.Storage {
	if !cfg.Persist {
		return prefs.NewMemoryStorage()
	}
	st, err := prefs.OpenBolt(cfg.StatePath)
	if err != nil {
		logger.Warnf("preferences unavailable: %v", err)
		fmt.Fprintf(stderr, "warning: preferences will not be saved: %v\n", err)
		return prefs.NewMemoryStorage()
	}
	return st
}
