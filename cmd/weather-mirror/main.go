package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-mirror/internal/api/http"
	"github.com/i474232898/weather-mirror/internal/mqtt"
	"github.com/i474232898/weather-mirror/internal/scheduler"
	"github.com/i474232898/weather-mirror/internal/weather"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weather-mirror",
		Short: "wttr.in forecast mirror",
		Long:  "Fetches the wttr.in forecast for one location, keeps the last good snapshot and serves a display-ready view",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "settings file path (yaml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(fetchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the refresh scheduler and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(configFile, verbose)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      a.cfg.MQTT.Broker,
				ClientID:    a.cfg.MQTT.ClientID,
				Username:    a.cfg.MQTT.Username,
				Password:    a.cfg.MQTT.Password,
				TopicPrefix: a.cfg.MQTT.TopicPrefix,
				Enabled:     a.cfg.MQTT.Enabled,
				Unit:        a.cfg.DisplayUnit,
				Hour12:      a.cfg.Hour12,
			}, a.logger)
			if err != nil {
				return err
			}
			defer publisher.Close()

			runTimeout := a.cfg.HTTPTimeout + 5*time.Second
			sched := scheduler.New(a.service, a.cfg.Location, a.cfg.Hour12, a.cfg.FetchInterval, runTimeout, a.logger)
			sched.OnUpdate(publisher.PublishModel)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := httpapi.NewApp("weather-mirror")
			httpapi.RegisterRoutes(app, sched, httpapi.Options{
				Unit:           a.cfg.DisplayUnit,
				Hour12:         a.cfg.Hour12,
				Gatherer:       a.registry,
				RefreshTimeout: runTimeout,
			})

			go func() {
				a.logger.Info("listening", zap.String("port", a.cfg.Port))
				if err := app.Listen(":" + a.cfg.Port); err != nil {
					a.logger.Error("fiber server stopped", zap.Error(err))
				}
			}()

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				a.logger.Error("error during shutdown", zap.Error(err))
			}
			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	var (
		unit   string
		hour24 bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the pipeline once and print the view as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(configFile, verbose)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			displayUnit := a.cfg.DisplayUnit
			if unit != "" {
				if displayUnit, err = weather.ParseUnit(unit); err != nil {
					return fmt.Errorf("--unit %q: %w", unit, err)
				}
			}
			hour12 := a.cfg.Hour12 && !hour24

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.HTTPTimeout+5*time.Second)
			defer cancel()

			m, err := a.service.GetWeather(ctx, a.cfg.Location, hour12)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(weather.BuildView(m, displayUnit, hour12, time.Now()))
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "temperature unit, f or c (default from config)")
	cmd.Flags().BoolVar(&hour24, "24h", false, "24-hour clock")
	return cmd
}
