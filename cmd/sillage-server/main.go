// Sillage server entrypoint
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jdelorme/sillage/internal/app"
	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := server.NewServer(a)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	a.Logger.Info().
		Str("host", a.Config.Server.Host).
		Int("port", a.Config.Server.Port).
		Msg("Server started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Logger.Error().Err(err).Msg("Server failed")
		a.Close()
		os.Exit(1)
	case sig := <-stop:
		a.Logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
