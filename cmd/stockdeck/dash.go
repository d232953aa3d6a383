package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockdeck/internal/view"
	"stockdeck/pkg/uid"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Show the overview metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		if err := sess.RefreshProfile(cmd.Context()); err != nil {
			return err
		}

		v := view.NewDashboardView(sess.API(), sess.User().IsManager())
		v.Activate(cmd.Context())

		m := v.Metrics()
		w := table()
		fmt.Fprintf(w, "SKUs\t%d\n", m.TotalSKUs)
		fmt.Fprintf(w, "Inventory records\t%d\n", m.TotalInventory)
		fmt.Fprintf(w, "Stores with stock\t%d\n", m.UniqueStores)
		if m.TotalUsers >= 0 {
			fmt.Fprintf(w, "Accounts\t%d\n", m.TotalUsers)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(m.LowStock) > 0 {
			fmt.Printf("\nLow stock (< %d):\n", view.LowStockThreshold)
			w = table()
			for i := range m.LowStock {
				r := &m.LowStock[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					uid.Short(r.ID), r.SKUName(), r.StoreName(), r.Quantity)
			}
			return w.Flush()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashCmd)
}
