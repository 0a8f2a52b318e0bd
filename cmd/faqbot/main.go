package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"faqbot/internal/config"
	"faqbot/internal/observability"
	"faqbot/internal/server"
	"faqbot/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           "faqbot",
		Short:         "FAQ question answering with a generative fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/faqbot/config.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracing, err := observability.Init(ctx, cfg.Tracing)
			if err != nil {
				return err
			}
			if tracing.Enabled() {
				logger.Info("trace export enabled", "endpoint", cfg.Tracing.OTLPEndpoint, "sample_rate", cfg.Tracing.SampleRate)
			}
			defer func() {
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(shutCtx); err != nil {
					logger.Warn("trace flush failed", "error", err)
				}
			}()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return server.New(a.service, cfg.Server, logger).Run(ctx)
		},
	}

	var chatLanguage string
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the FAQ in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(configPath)
			if err != nil {
				return err
			}
			// the TUI owns stdout, so logs go to stderr at warn level
			logger := newLogger(config.LogConfig{Level: "warn", Format: "text"}, os.Stderr)
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			_, err = tea.NewProgram(tui.New(a.service, chatLanguage), tea.WithAltScreen()).Run()
			return err
		},
	}
	chatCmd.Flags().StringVar(&chatLanguage, "language", "", "Answer language (ISO 639-1)")

	var askLanguage string
	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			res := a.service.Ask(cmd.Context(), strings.Join(args, " "), askLanguage)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	askCmd.Flags().StringVar(&askLanguage, "language", "", "Answer language (ISO 639-1)")

	rootCmd.AddCommand(serveCmd, chatCmd, askCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "faqbot:", err)
		os.Exit(1)
	}
}

// setup loads and validates configuration and installs the default logger.
func setup(configPath string) (*config.AppConfig, *slog.Logger, error) {
	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if configPath == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(configPath)
		path = configPath
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("config loaded", "path", path)
	return cfg, logger, nil
}
