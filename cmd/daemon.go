package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chronoq/chronoq/cmd/common"
	"github.com/chronoq/chronoq/internal/daemon"
	"github.com/chronoq/chronoq/pkg/logger"
	"github.com/urfave/cli"
)

var (
	logFile string

	daemonFlags = append([]cli.Flag{
		cli.StringFlag{
			Name:        "log-file, f",
			Usage:       "append daemon logs to this file in addition to the console",
			Destination: &logFile,
		},
	}, connFlags...)
)

func runDaemon(ctx *cli.Context) error {
	l, err := buildLogger()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "open_log", err)
		return nil
	}
	defer l.Close()

	r := daemon.NewRunner(l, &daemon.Config{
		Addr:            daemonAddr(),
		Secret:          secret,
		ShutdownTimeout: DefaultShutdownTimeout,
		Version:         currentBuildArgs.Version,
		Commit:          currentBuildArgs.Commit,
		BuildType:       currentBuildArgs.BuildType,
	})

	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Run(sctx); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "run", err)
	}
	return nil
}

func buildLogger() (logger.Logger, error) {
	console := logger.NewStandardLogger(log.Default())
	if logFile == "" {
		return console, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	file := logger.NewStandardLogger(log.New(f, "", log.LstdFlags))
	return logger.NewMultiLogger(console, &closingLogger{file, f}), nil
}

// closingLogger closes the underlying file when the logger is closed.
type closingLogger struct {
	logger.Logger
	f *os.File
}

func (c *closingLogger) Close() error {
	if err := c.Logger.Close(); err != nil {
		return err
	}
	return c.f.Close()
}
