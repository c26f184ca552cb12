package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"senate-lobbyist-source/internal/api"
	"senate-lobbyist-source/internal/db"
	"senate-lobbyist-source/internal/source"
	"senate-lobbyist-source/internal/store"
	"senate-lobbyist-source/internal/syncer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Syncs lobbyists into the database on a schedule and serves them over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stdout, "lobbyistd ", log.LstdFlags)

		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Printf("configuration loaded successfully from %s", path)

		src, err := source.New(&cfg.Source)
		if err != nil {
			return err
		}

		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		logger.Println("database initialized successfully")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		appStore := store.NewGormStore(gormDB)
		syncSvc := syncer.NewService(&cfg.Sync, src, appStore)
		router := api.NewRouter(&cfg.Server, appStore, syncSvc)
		go syncSvc.Run(ctx)

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}

		serveErr := make(chan error, 1)
		go func() {
			logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-stop:
			logger.Println("Shutdown signal received, stopping services...")
		case err := <-serveErr:
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server Shutdown: %w", err)
		}

		logger.Println("Server gracefully stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
