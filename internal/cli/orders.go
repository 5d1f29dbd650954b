package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"idb-pricer/internal/models"
	"idb-pricer/internal/store"
)

// newOrdersCmd creates the orders command group for the saved-order
// store.
func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage saved orders",
		Long:  "List, inspect and delete orders saved with 'price --save'.",
	}

	cmd.AddCommand(newOrdersListCmd(app))
	cmd.AddCommand(newOrdersShowCmd(app))
	cmd.AddCommand(newOrdersDeleteCmd(app))
	return cmd
}

func requireStore(app *App) error {
	if app.Store == nil {
		return fmt.Errorf("order store unavailable")
	}
	return nil
}

func newOrdersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				output.Error("%v", err)
				return err
			}

			ticker, _ := cmd.Flags().GetString("ticker")
			structType, _ := cmd.Flags().GetString("type")
			limit, _ := cmd.Flags().GetInt("limit")

			orders, err := app.Store.ListOrders(cmd.Context(), store.OrderFilter{
				Ticker:        ticker,
				StructureType: models.StructureType(structType),
				Limit:         limit,
			})
			if err != nil {
				output.Error("Failed to list orders: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(orders)
			}

			if len(orders) == 0 {
				output.Dim("No saved orders.")
				return nil
			}

			table := NewTable(output, "ID", "Saved", "Ticker", "Structure", "Mid", "Shorthand")
			for _, o := range orders {
				table.AddRow(
					o.ID,
					o.CreatedAt.Format("02-Jan 15:04"),
					o.Ticker,
					FormatStructureType(o.Structure.Type),
					FormatPrice(o.ImpliedMid),
					TruncateString(o.RawText, 40),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("ticker", "", "filter by underlying ticker")
	cmd.Flags().String("type", "", "filter by structure type")
	cmd.Flags().Int("limit", 20, "maximum number of orders to show")
	return cmd
}

func newOrdersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				output.Error("%v", err)
				return err
			}

			order, err := app.Store.GetOrder(cmd.Context(), args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(order)
			}

			output.Bold("%s %s", order.Ticker, FormatStructureType(order.Structure.Type))
			output.Dim("  %s", order.Canonical)
			output.Printf("  Saved: %s   Raw: %q\n", order.CreatedAt.Format("02-Jan-2006 15:04:05"), order.RawText)
			output.Println()

			table := NewTable(output, "Side", "Wt", "Expiry", "Strike", "Type")
			for _, leg := range order.Structure.Legs {
				table.AddRow(
					output.SideColor(string(leg.Side)),
					fmt.Sprintf("%d", leg.Weight),
					FormatExpiry(leg.Expiry),
					FormatStrike(leg.Strike),
					string(leg.Type),
				)
			}
			table.Render()
			output.Println()

			if order.Incomplete {
				output.Warning("  Incomplete market at save time")
				output.Printf("  Implied Mid: %s\n", FormatPrice(order.ImpliedMid))
			} else {
				output.Printf("  Implied: %s (%s) / %s (%s)   Mid: %s\n",
					FormatPrice(order.ImpliedBid), FormatSize(order.BidSize),
					FormatPrice(order.ImpliedOffer), FormatSize(order.OfferSize),
					FormatPrice(order.ImpliedMid))
			}
			if order.Spot > 0 {
				output.Printf("  Spot: %s\n", FormatPrice(order.Spot))
			}
			return nil
		},
	}
}

func newOrdersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				output.Error("%v", err)
				return err
			}

			if err := app.Store.DeleteOrder(cmd.Context(), args[0]); err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Deleted %s", args[0])
			return nil
		},
	}
}
