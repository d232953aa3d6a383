package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockdeck/internal/model"
	"stockdeck/internal/realtime"
	"stockdeck/internal/view"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the real-time inventory update channel",
	Long: `Watch opens the update channel and prints every inventory event as it
arrives. The local list view reloads on each event, so the printed
quantities always reflect the backend state after the change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		v := view.NewInventoryView(sess.API(), model.InventoryFilters{})
		v.Activate(cmd.Context())

		channel := realtime.NewChannel()
		defer channel.Close()

		events := make(chan *model.InventoryUpdateEvent, 16)
		var lastSeen string
		channel.OnChange(func() {
			event := channel.LastEvent()
			if event == nil {
				return
			}
			// The id field is not guaranteed on every event variant; dedup
			// only when one is present.
			if event.ID != "" {
				if event.ID == lastSeen {
					return
				}
				lastSeen = event.ID
			}
			select {
			case events <- event:
			default:
			}
		})

		// The channel follows the session token; logout would disconnect it.
		sess.OnChange(func() {
			channel.SetToken(cli.serverURL, sess.Token())
		})
		channel.SetToken(cli.serverURL, sess.Token())

		fmt.Println("Watching for inventory updates (Ctrl-C to stop)...")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case event := <-events:
				printEvent(event)
				v.HandleEvent(context.WithoutCancel(cmd.Context()), event)

			case <-quit:
				fmt.Println("Stopped.")
				return nil
			}
		}
	},
}

func printEvent(e *model.InventoryUpdateEvent) {
	verb := string(e.OperationType)
	fmt.Printf("[%s] %s %s at %s: %+d -> %d (by %s)\n",
		e.UpdatedAt.Format("15:04:05"), verb, e.SKUName, e.StoreName,
		e.DeltaQuantity, e.NewQuantity, e.UserName)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
