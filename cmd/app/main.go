package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kayayo/cmd"
	apihttp "kayayo/internal/adapters/in/http"
	"kayayo/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("kayayo stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	lg := logger.New(logger.Options{
		Service: "kayayo",
		Env:     configs.AppEnv,
		Level:   configs.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = cmd.MigrateDatabase(ctx, configs); err != nil {
		return err
	}
	gormDB, err := cmd.OpenDatabase(configs, lg)
	if err != nil {
		return err
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, lg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			lg.Error("close publishers", "error", closeErr)
		}
	}()

	doc, err := apihttp.LoadSwagger()
	if err != nil {
		return err
	}
	e, err := app.CreateEcho(doc)
	if err != nil {
		return err
	}
	e.Logger.SetLevel(echoLogLevel(configs.LogLevel))

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http server listening", "port", configs.HTTPPort)
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		lg.Info("shutting down")
		app.CloseStreams()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func echoLogLevel(level string) log.Lvl {
	switch logger.ParseLevel(level) {
	case slog.LevelDebug:
		return log.DEBUG
	case slog.LevelWarn:
		return log.WARN
	case slog.LevelError:
		return log.ERROR
	default:
		return log.INFO
	}
}
