package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hotel-pms/internal/app"
	"github.com/iliyamo/hotel-pms/internal/queue"
)

func ConsumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append booking events from RabbitMQ to the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
				cfg.AuditDir = dir
			}
			log := app.NewLogger(cfg.Env)
			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			audit := queue.NewAuditLog(cfg.AuditDir)
			log.Info("consuming booking events", "queue", queue.QueueName, "audit_log", audit.Path())
			err = queue.NewConsumer(cfg.AMQPURL, audit, log).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().String("dir", "", "Directory for booking.log (default AUDIT_LOG_DIR)")
	return cmd
}
