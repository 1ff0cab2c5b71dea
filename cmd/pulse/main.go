package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PortfolioPulse/internal/analyzer"
	"PortfolioPulse/internal/config"
	"PortfolioPulse/internal/notifier"
	"PortfolioPulse/internal/scheduler"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Global config
var cfg *config.Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pulse",
	Short:         "PortfolioPulse: mutual fund portfolio analytics and narrative summaries",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("[INFO] no .env file loaded, using process environment")
		}
		configFile, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(config.Path(configFile))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $CONFIG_PATH or "+config.DefaultPath+")")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(purgeCacheCmd)
	rootCmd.AddCommand(runsCmd)
}

// withApp builds the app for one command and always releases it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled bulk analysis, cache purge and the Telegram command bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("[INFO] PortfolioPulse starting...")

		// Context for graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var n notifier.Notifier = notifier.Noop{}
		var tn *notifier.TelegramNotifier
		if cfg.NotifyEnabled() {
			tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			n = tn
		} else {
			log.Println("[INFO] Telegram not configured, digests disabled")
		}

		sched := scheduler.NewScheduler(ctx, a.svc, n, cfg.Schedule.BulkLimit)
		if err := sched.RegisterAll(cfg.Schedule.BulkCron, cfg.Schedule.PurgeCron); err != nil {
			return fmt.Errorf("register cron tasks: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Println("[INFO] Telegram polling started")
		}

		// Optional: run immediately on start
		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing bulk analysis now")
			go sched.RunBulkNow()
		}

		log.Println("[INFO] PortfolioPulse is running. Press Ctrl+C to stop.")
		<-ctx.Done()
		log.Println("[INFO] shutdown signal received, stopping...")
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [investor_id]",
	Short: "Analyse one investor, attach the narrative and store the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, err := a.svc.Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

// --- Bulk Command ---

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Analyse up to --limit investors concurrently",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Bulk.DefaultLimit
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, err := a.svc.AnalyzeBulk(ctx, limit, analyzer.TriggerManual)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

func init() {
	bulkCmd.Flags().Int("limit", 0, "number of investors to analyse (default: bulk.default_limit)")
}

// --- Summary Command ---

var summaryCmd = &cobra.Command{
	Use:   "summary [investor_id]",
	Short: "Print the last stored analysis for an investor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, err := a.svc.CachedAnalysis(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

// --- Dashboard Command ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Aggregate the whole investor population",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			d, err := a.svc.Dashboard(ctx)
			if err != nil {
				return err
			}
			return printJSON(d)
		})
	},
}

// --- Purge Cache Command ---

var purgeCacheCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Remove expired narratives from the cache store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			n, err := a.svc.PurgeCache(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("purged %d expired summaries\n", n)
			return nil
		})
	},
}

// --- Runs Command ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent bulk runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			runs, err := a.svc.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(runs)
		})
	},
}

func init() {
	runsCmd.Flags().Int("limit", 10, "number of runs to list")
}
