package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/events"
	"github.com/alfredjeanlab/gantry/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream run events live from NATS",
	GroupID: "runs",
	Long: `Subscribes to the server's event stream and prints each event as it
arrives. The NATS URL comes from --nats, GANTRY_NATS_URL, or the active
remote. Press Ctrl-C to stop.`,
	Args: cobra.NoArgs,
	// Event streaming talks to NATS directly; no HTTP client needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.ForceNoColor()
		} else {
			ui.Init()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		natsURL := resolveNATSURL(cmd)
		if natsURL == "" {
			return fmt.Errorf("no NATS URL: set --nats, GANTRY_NATS_URL, or configure the active remote")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(natsURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		fmt.Fprintf(os.Stderr, "watching %s (Ctrl-C to stop)\n", topic)
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), ui.RenderAccent(msg.Topic), msg.Data)
			}
		}
	},
}

func resolveNATSURL(cmd *cobra.Command) string {
	if url, _ := cmd.Flags().GetString("nats"); url != "" {
		return url
	}
	if url := os.Getenv("GANTRY_NATS_URL"); url != "" {
		return url
	}
	return activeRemoteNATSURL()
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS server URL")
	watchCmd.Flags().String("topic", "gantry.>", "subject to subscribe to (NATS wildcards allowed)")
}
