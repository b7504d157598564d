package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/meetplan/internal/application/usecases"
	"github.com/example/meetplan/internal/auth"
	"github.com/example/meetplan/internal/config"
	"github.com/example/meetplan/internal/logging"
	"github.com/example/meetplan/internal/web"
)

func newServerCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}

			logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			limiter := web.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
			go limiter.Run(ctx, time.Minute, 10*time.Minute)

			ws := &web.Server{
				Propose: usecases.ProposeMeetings{Logger: logger},
				Free:    usecases.FreePeriods{Logger: logger},
				Logger:  logger,
				Limiter: limiter,
			}
			ws.CalendarOptions = calendarOptions(cfg.MergeBusy)
			if cfg.AuthDisabled {
				logger.Warn("operator login disabled, every route is public")
			} else {
				ws.Auth = auth.NewStore(cfg.OperatorUsername, cfg.OperatorPasswordBcrypt, cfg.CookieHashKey, cfg.CookieBlockKey)
			}

			logger.Info("starting meetplan",
				zap.String("version", Version),
				zap.String("env", cfg.Env),
				zap.Bool("merge_busy", cfg.MergeBusy),
			)
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), logger)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}
