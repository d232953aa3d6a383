package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stockdeck/internal/export"
	"stockdeck/internal/model"
	"stockdeck/internal/view"
	"stockdeck/pkg/uid"
)

var skuFilters struct {
	page     int
	pageSize int
	search   string
	category string
	sortBy   string
	order    string
}

var skuCmd = &cobra.Command{
	Use:   "sku",
	Short: "Catalog operations",
}

var skuListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		v := view.NewSKUView(sess.API(), model.SKUFilters{
			Page:     skuFilters.page,
			PageSize: skuFilters.pageSize,
			Search:   skuFilters.search,
			Category: skuFilters.category,
			SortBy:   skuFilters.sortBy,
			Order:    skuFilters.order,
		})
		v.Reload(cmd.Context())
		if msg := v.List().Err(); msg != "" {
			return fmt.Errorf("%s", msg)
		}

		list, _ := v.List().Data()
		w := table()
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tVERSION")
		for _, sku := range list.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\n",
				uid.Short(sku.ID), sku.Name, sku.Category, sku.Price, sku.Version)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("Page %d/%d, %d total\n", list.Page, list.TotalPages, list.Total)
		return nil
	},
}

var skuCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the known categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		cats, err := sess.API().ListSKUCategories(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(cats.Categories, "\n"))
		return nil
	},
}

var skuGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		sku, err := sess.API().GetSKU(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSKU(sku)
		return nil
	},
}

var skuCreateCmd = &cobra.Command{
	Use:   "create <name> <category> <price> [description]",
	Short: "Create a catalog entry (manager only)",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		req, err := skuRequestFromArgs(args)
		if err != nil {
			return err
		}
		sku, err := sess.API().CreateSKU(cmd.Context(), *req)
		if err != nil {
			return err
		}
		printSKU(sku)
		return nil
	},
}

var skuUpdateCmd = &cobra.Command{
	Use:   "update <id> <name> <category> <price> [description]",
	Short: "Replace a catalog entry (manager only)",
	Args:  cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		req, err := skuRequestFromArgs(args[1:])
		if err != nil {
			return err
		}
		sku, err := sess.API().UpdateSKU(cmd.Context(), args[0], *req)
		if err != nil {
			return err
		}
		printSKU(sku)
		return nil
	},
}

var skuDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a catalog entry (manager only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		if err := sess.API().DeleteSKU(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("SKU deleted.")
		return nil
	},
}

var skuExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered catalog page as CSV to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		list, err := sess.API().ListSKUs(cmd.Context(), model.SKUFilters{
			Page:     skuFilters.page,
			PageSize: skuFilters.pageSize,
			Search:   skuFilters.search,
			Category: skuFilters.category,
			SortBy:   skuFilters.sortBy,
			Order:    skuFilters.order,
		})
		if err != nil {
			return err
		}
		return export.SKUsCSV(os.Stdout, list.Items)
	},
}

func skuRequestFromArgs(args []string) (*model.SKURequest, error) {
	price, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", args[2])
	}
	req := model.SKURequest{Name: args[0], Category: args[1], Price: price}
	if len(args) == 4 {
		req.Description = args[3]
	}
	return &req, nil
}

func printSKU(sku *model.SKU) {
	w := table()
	fmt.Fprintf(w, "ID\t%s\n", sku.ID)
	fmt.Fprintf(w, "Name\t%s\n", sku.Name)
	fmt.Fprintf(w, "Category\t%s\n", sku.Category)
	fmt.Fprintf(w, "Description\t%s\n", sku.Description)
	fmt.Fprintf(w, "Price\t%.2f\n", sku.Price)
	fmt.Fprintf(w, "Version\t%d\n", sku.Version)
	w.Flush()
}

func addSKUFilterFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&skuFilters.page, "page", 1, "page number")
	cmd.Flags().IntVar(&skuFilters.pageSize, "page-size", 20, "page size")
	cmd.Flags().StringVar(&skuFilters.search, "search", "", "search name and description")
	cmd.Flags().StringVar(&skuFilters.category, "category", "", "filter by category")
	cmd.Flags().StringVar(&skuFilters.sortBy, "sort-by", "created_at", "sort column")
	cmd.Flags().StringVar(&skuFilters.order, "order", "desc", "sort order (asc|desc)")
}

func init() {
	addSKUFilterFlags(skuListCmd)
	addSKUFilterFlags(skuExportCmd)
	skuCmd.AddCommand(skuListCmd, skuCategoriesCmd, skuGetCmd, skuCreateCmd,
		skuUpdateCmd, skuDeleteCmd, skuExportCmd)
	rootCmd.AddCommand(skuCmd)
}
