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

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/balances/internal/api"
	"github.com/mtlprog/balances/internal/config"
	"github.com/mtlprog/balances/internal/export"
	"github.com/mtlprog/balances/internal/logger"
	"github.com/mtlprog/balances/internal/overview"
	"github.com/mtlprog/balances/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "balances",
		Usage: "Stellar account balances with reserve, spendable amount and display unit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error", EnvVars: []string{"LOG_LEVEL"}, Value: "info"},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			showCommand(),
			claimableCommand(),
			exportCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and refresh watched accounts",
		Action: func(c *cli.Context) error {
			ctx := c.Context
			cfg := config.Load()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			tracker := overview.NewTracker(a.overview)

			if len(cfg.WatchAccounts) > 0 {
				var hook worker.AfterRefreshHook
				if cfg.GoogleSpreadsheetID != "" && cfg.GoogleCredentialsJSON != "" {
					sw, err := export.NewSheetsWriter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsJSON)
					if err != nil {
						return err
					}
					hook = export.NewService(sw)
				}
				refreshWorker := worker.NewRefreshWorker(tracker, cfg.WatchAccounts, cfg.RefreshInterval, hook)
				go refreshWorker.Run(ctx)
			}

			if cfg.AdminAPIKey == "" {
				slog.Warn("ADMIN_API_KEY not set, refresh endpoint is unprotected")
			}

			handler := api.NewHandler(a.overview, a.claimable, tracker, cfg.WatchAccounts, a.resolver)
			srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "port", cfg.HTTPPort, "horizon", cfg.HorizonURL)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-serverErr:
				return fmt.Errorf("HTTP server: %w", err)
			}
			slog.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}
			slog.Info("shutdown complete")
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print the derived balances of an account",
		ArgsUsage: "<account>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			accountID := c.Args().First()
			if accountID == "" {
				return cli.Exit("account id required", 2)
			}

			a, err := newApp(c.Context, config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			ov, err := a.overview.Overview(c.Context, accountID)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, ov)
			}
			return printOverview(c.App.Writer, ov)
		},
	}
}

func claimableCommand() *cli.Command {
	return &cli.Command{
		Name:      "claimable",
		Usage:     "print the claimable balances of an account",
		ArgsUsage: "<account>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			accountID := c.Args().First()
			if accountID == "" {
				return cli.Exit("account id required", 2)
			}

			a, err := newApp(c.Context, config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.claimable.List(c.Context, accountID)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, records)
			}
			return printClaimable(c.App.Writer, records)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "derive balances of accounts and write them to a workbook or Google Sheets",
		ArgsUsage: "[account...] (defaults to WATCH_ACCOUNTS)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xlsx", Usage: "write an .xlsx file to this path"},
			&cli.BoolFlag{Name: "sheets", Usage: "write to GOOGLE_SPREADSHEET_ID"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			accounts := c.Args().Slice()
			if len(accounts) == 0 {
				accounts = cfg.WatchAccounts
			}
			if len(accounts) == 0 {
				return cli.Exit("no accounts given and WATCH_ACCOUNTS is empty", 2)
			}

			writer, err := exportWriter(c, cfg)
			if err != nil {
				return err
			}

			a, err := newApp(c.Context, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			tracker := overview.NewTracker(a.overview)
			states := make([]overview.State, 0, len(accounts))
			for _, id := range accounts {
				state, err := tracker.Refresh(c.Context, id)
				if err != nil {
					return fmt.Errorf("account %s: %w", id, err)
				}
				states = append(states, state)
			}

			if err := export.NewService(writer).Export(c.Context, states); err != nil {
				return err
			}
			slog.Info("export completed", "accounts", len(states))
			return nil
		},
	}
}

func exportWriter(c *cli.Context, cfg config.Config) (export.SheetWriter, error) {
	switch {
	case c.String("xlsx") != "":
		return export.NewXLSXWriter(c.String("xlsx")), nil
	case c.Bool("sheets"):
		if cfg.GoogleSpreadsheetID == "" || cfg.GoogleCredentialsJSON == "" {
			return nil, cli.Exit("GOOGLE_SPREADSHEET_ID and GOOGLE_CREDENTIALS_JSON are required for --sheets", 2)
		}
		return export.NewSheetsWriter(c.Context, cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsJSON)
	default:
		return nil, cli.Exit("one of --xlsx or --sheets is required", 2)
	}
}
