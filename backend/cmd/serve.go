package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"skillcred/backend/database"
	"skillcred/backend/events"
	"skillcred/backend/routes"
	"skillcred/backend/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply schema migrations before serving")
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(rt.db); err != nil {
			return err
		}
		rt.logger.Println("schema migrated")
	}

	publisher, err := events.NewAMQPPublisher(rt.cfg.AMQPURL, rt.cfg.AMQPExchange, rt.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	badges := services.NewBadgeService(rt.gateway)
	app := routes.NewApp(rt.cfg, rt.logger, &routes.Services{
		Gateway:  rt.gateway,
		Catalog:  rt.catalog,
		Attempts: services.NewAttemptService(rt.gateway, rt.catalog, badges, publisher, rt.logger),
		Badges:   badges,
	})

	errc := make(chan error, 1)
	go func() {
		rt.logger.Printf("listening on :%s", rt.cfg.ServerPort)
		errc <- app.Listen(":" + rt.cfg.ServerPort)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	rt.logger.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
