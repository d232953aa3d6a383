package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"stockdeck/internal/export"
	"stockdeck/internal/model"
	"stockdeck/internal/session"
	"stockdeck/internal/view"
	"stockdeck/pkg/uid"
)

var invFilters struct {
	storeID  string
	skuID    string
	page     int
	pageSize int
	sortBy   string
	order    string
}

var invCmd = &cobra.Command{
	Use:   "inv",
	Short: "Inventory operations",
}

var invListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory records",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		v := newInventoryView(sess)
		v.Reload(cmd.Context())
		if msg := v.List().Err(); msg != "" {
			return fmt.Errorf("%s", msg)
		}

		list, _ := v.List().Data()
		w := table()
		fmt.Fprintln(w, "ID\tSKU\tSTORE\tQUANTITY\tVERSION")
		for i := range list.Items {
			r := &list.Items[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				uid.Short(r.ID), r.SKUName(), r.StoreName(), r.Quantity, r.Version)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("Page %d/%d, %d total\n", list.Page, list.TotalPages, list.Total)
		return nil
	},
}

var invGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one inventory record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		record, err := sess.API().GetInventory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRecord(record)
		return nil
	},
}

var invAdjustCmd = &cobra.Command{
	Use:   "adjust <id> <delta>",
	Short: "Apply a signed quantity delta",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}

		v := newInventoryView(sess)
		if err := v.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := v.Adjust(cmd.Context(), delta); err != nil {
			return err
		}
		printRecord(v.Selected())
		return nil
	},
}

var invSetCmd = &cobra.Command{
	Use:   "set <id> <quantity>",
	Short: "Set an absolute quantity (manager only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}

		v := newInventoryView(sess)
		if err := v.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := v.SetQuantity(cmd.Context(), quantity); err != nil {
			return err
		}
		printRecord(v.Selected())
		return nil
	},
}

var invCreateCmd = &cobra.Command{
	Use:   "create <sku-id> <store-id> <quantity>",
	Short: "Create an inventory record (manager only)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}

		// Load the current page first so the duplicate check sees it.
		v := newInventoryView(sess)
		v.Reload(cmd.Context())
		if err := v.Create(cmd.Context(), model.CreateInventoryRequest{
			SKUID:    args[0],
			StoreID:  args[1],
			Quantity: quantity,
		}); err != nil {
			return err
		}
		fmt.Println("Inventory record created.")
		return nil
	},
}

var invDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an inventory record (manager only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		v := newInventoryView(sess)
		if err := v.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := v.Delete(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Inventory record deleted.")
		return nil
	},
}

var invExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered inventory page as CSV to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		list, err := sess.API().ListInventory(cmd.Context(), model.InventoryFilters{
			StoreID:  invFilters.storeID,
			SKUID:    invFilters.skuID,
			Page:     invFilters.page,
			PageSize: invFilters.pageSize,
			SortBy:   invFilters.sortBy,
			Order:    invFilters.order,
		})
		if err != nil {
			return err
		}
		return export.InventoryCSV(os.Stdout, list.Items)
	},
}

func newInventoryView(sess *session.Store) *view.InventoryView {
	return view.NewInventoryView(sess.API(), model.InventoryFilters{
		StoreID:  invFilters.storeID,
		SKUID:    invFilters.skuID,
		Page:     invFilters.page,
		PageSize: invFilters.pageSize,
		SortBy:   invFilters.sortBy,
		Order:    invFilters.order,
	})
}

func addInvFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&invFilters.storeID, "store", "", "filter by store id")
	cmd.Flags().StringVar(&invFilters.skuID, "sku", "", "filter by sku id")
	cmd.Flags().IntVar(&invFilters.page, "page", 1, "page number")
	cmd.Flags().IntVar(&invFilters.pageSize, "page-size", 20, "page size")
	cmd.Flags().StringVar(&invFilters.sortBy, "sort-by", "updated_at", "sort column")
	cmd.Flags().StringVar(&invFilters.order, "order", "desc", "sort order (asc|desc)")
}

func printRecord(r *model.InventoryRecord) {
	w := table()
	fmt.Fprintf(w, "ID\t%s\n", r.ID)
	fmt.Fprintf(w, "SKU\t%s\n", r.SKUName())
	fmt.Fprintf(w, "Store\t%s\n", r.StoreName())
	fmt.Fprintf(w, "Quantity\t%d\n", r.Quantity)
	fmt.Fprintf(w, "Version\t%d\n", r.Version)
	w.Flush()
}

func init() {
	addInvFilterFlags(invListCmd)
	addInvFilterFlags(invExportCmd)
	invCmd.AddCommand(invListCmd, invGetCmd, invAdjustCmd, invSetCmd, invCreateCmd, invDeleteCmd, invExportCmd)
	rootCmd.AddCommand(invCmd)
}
