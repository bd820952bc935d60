package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bugbounty_sla_bot/internal/app"
	"bugbounty_sla_bot/internal/domain/report"
	"bugbounty_sla_bot/internal/domain/sla"
	"bugbounty_sla_bot/internal/infra/config"
	idb "bugbounty_sla_bot/internal/infra/database"
	"bugbounty_sla_bot/internal/infra/logger"
	"bugbounty_sla_bot/internal/infra/scheduler"
	"bugbounty_sla_bot/internal/infra/snapshot"
	"bugbounty_sla_bot/internal/infra/telegram"

	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

var version = "dev"

var cfg *config.AppConfig

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "slabot",
	Short:   "Bug bounty SLA tracker",
	Long:    "slabot mirrors bug bounty reports, computes triage SLA statistics and nags about reports nearing their fix deadline.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Init(cfg)
		return nil
	},
	SilenceUsage: true,
}

var (
	syncAll       bool
	statsStartDay int
)

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Ignore the last sync time and re-read every report")
	statsCmd.Flags().IntVar(&statsStartDay, "start-day", 0, "Contract month start day (1-28), defaults to CONTRACT_START_DAY")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(nextNagCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("slabot", version)
	},
}

// core holds the SLA engine and the report store built from configuration.
type core struct {
	db    *sql.DB
	cal   *sla.Calendar
	sched *sla.NagScheduler
	agg   *sla.Aggregator
	repo  report.Repository
}

func openCore(ctx context.Context) (*core, error) {
	cal, err := sla.NewCalendar(cfg.BusinessTimezone, sla.USFederalHolidays)
	if err != nil {
		return nil, err
	}
	sched, err := sla.NewNagScheduler(cal, cfg.NagPolicy)
	if err != nil {
		return nil, err
	}

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	logger.Log.Debug("Database connection established successfully")

	return &core{
		db:    db,
		cal:   cal,
		sched: sched,
		agg:   sla.NewAggregator(cal),
		repo:  idb.NewPostgresReportRepository(db, sla.NewDeriver(cal, sched).Func()),
	}, nil
}

func (c *core) Close() error {
	return c.db.Close()
}

func (c *core) syncService() (*app.SyncService, error) {
	if err := cfg.RequireSnapshot(); err != nil {
		return nil, err
	}
	return app.NewSyncService(c.repo, snapshot.NewFileSource(cfg.SnapshotPath), logger.For("sync")), nil
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull report changes from the snapshot file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		svc, err := c.syncService()
		if err != nil {
			return err
		}
		result, err := svc.Sync(ctx, syncAll)
		if err != nil {
			return err
		}
		fmt.Printf("Synced %d reports (%d new, %d activities)\n", result.Reports, result.Created, result.Activities)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print SLA statistics per contract month",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		startDay := statsStartDay
		if startDay == 0 {
			startDay = cfg.ContractStartDay
		}
		stats, err := app.ComputeStats(ctx, c.repo, c.agg, startDay)
		if err != nil {
			return err
		}
		fmt.Print(app.FormatStats(stats, startDay))
		return nil
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute derived SLA fields for every report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		svc := app.NewSyncService(c.repo, nil, logger.For("recompute"))
		n, err := svc.Recompute(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Recomputed %d reports\n", n)
		return nil
	},
}

var nextNagCmd = &cobra.Command{
	Use:   "next-nag <id>",
	Short: "Show when a report is nagged next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report ID %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		rec, err := c.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		view := app.ReportView{
			Record:    rec,
			Remaining: c.sched.Remaining(rec.CreatedAt, time.Now()),
			URL:       rec.URL(cfg.ReportURLTemplate),
		}
		fmt.Print(app.FormatReport(view, c.cal.Location()))
		if !rec.NextNagAt.Valid {
			fmt.Println("No nag scheduled: the report is closed or not eligible for a bounty.")
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler and the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireBot(); err != nil {
			return err
		}
		mainLogger := logger.For("main")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		syncSvc, err := c.syncService()
		if err != nil {
			return err
		}

		telebotLogger := logger.For("telebot")
		bot, err := telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := telebotLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler failed")
			},
		})
		if err != nil {
			return fmt.Errorf("could not create Telegram bot: %w", err)
		}

		nagSvc := app.NewNagService(c.repo, c.sched, telegram.NewTelebotAdapter(bot), cfg.NagChatID, cfg.ReportURLTemplate, logger.For("nag"))
		adminSvc := app.NewAdminService(c.repo, c.agg, c.sched, cfg.AdminTelegramID, cfg.ContractStartDay, cfg.ReportURLTemplate)

		handlers := telegram.NewAdminHandlers(adminSvc, c.cal.Location(), logger.For("telegram"))
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, logger.For("telegram"))
		telegram.RegisterAdminHandlers(ctx, bot, handlers)
		telegram.RegisterReviewHandlers(ctx, bot, handlers)

		syncer := scheduler.SyncFunc(func(ctx context.Context, full bool) (int, error) {
			result, err := syncSvc.Sync(ctx, full)
			if err != nil {
				return 0, err
			}
			return result.Reports, nil
		})
		slaScheduler := scheduler.NewSLAScheduler(syncer, nagSvc, c.cal.Location(), logger.For("scheduler"), cfg.CronSpecSync, cfg.CronSpecNag)
		if err := slaScheduler.Start(); err != nil {
			return err
		}

		go bot.Start()
		mainLogger.WithField("environment", cfg.Environment).Info("Bot and scheduler are running")

		<-ctx.Done()

		mainLogger.Info("Shutting down application...")
		slaScheduler.Stop()
		bot.Stop()
		mainLogger.Info("Application shut down gracefully")
		return nil
	},
}
