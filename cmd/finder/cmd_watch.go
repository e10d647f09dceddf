package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-homes/pkg/messaging"
	"github.com/matst80/slask-homes/pkg/tracking"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print tracked searches as they are published",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func printEvents(cmd *cobra.Command) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		var events []tracking.SearchEvent
		if err := sonic.Unmarshal(d.Body, &events); err != nil {
			return err
		}
		for _, e := range events {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\tfallback=%t\t%q\t%s\n", e.Timestamp, e.SessionId, e.Total, e.Fallback, e.Query, e.Error)
		}
		return nil
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.TrackingEnabled() {
		return fmt.Errorf("RABBIT_URL is not set")
	}
	conn, err := amqp.Dial(cfg.RabbitUrl)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbit: %w", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := messaging.DefineTopic(ch, tracking.Prefix, messaging.SearchTracked); err != nil {
		return err
	}
	if err := messaging.ListenToTopic(ch, tracking.Prefix, messaging.SearchTracked, logger, printEvents(cmd)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
