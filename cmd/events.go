/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sendico/apiserver/config"
	"github.com/sendico/apiserver/internal/mq"
	"github.com/sendico/apiserver/types"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect resource events on the message queue",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print events from MQ_CHANNEL until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		defer queue.Close()

		out := cmd.OutOrStdout()
		err = queue.Subscribe(ctx, cfg.MQ.Channel, func(ctx context.Context, msg mq.Message) error {
			var event types.Event
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				fmt.Fprintf(out, "%s undecodable: %s\n", msg.ID, msg.Data)
				return nil
			}
			fmt.Fprintf(out, "%s %-16s %-36s by %s\n",
				event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), event.Type, event.ResourceID, event.Actor)
			return nil
		})
		if errors.Is(err, mq.ErrDisabled) {
			return errors.New("MQ_DRIVER is none; set it to rabbitmq or pubsub")
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
