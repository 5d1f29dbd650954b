package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"idb-pricer/internal/models"
	"idb-pricer/internal/parse"
	"idb-pricer/internal/store"
)

// newParseCmd creates the parse command: shorthand in, structure out,
// no market data.
func newParseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <shorthand>",
		Short: "Parse broker shorthand without pricing",
		Long: `Parse an interdealer broker shorthand message into a structured
order and show the canonical form.

Examples:
  pricer parse "AAPL jun26 300 calls vs 251.30 30d 500x 5.90 bid"
  pricer parse "AAPL 240/220 PS 1X2 vs 250 500x"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			text := strings.Join(args, " ")

			ref, err := refDate(cmd)
			if err != nil {
				return err
			}

			order, err := app.Engine.Parse(text, ref)
			if err != nil {
				output.Error("Parse failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(order)
			}
			renderOrder(output, order)
			return nil
		},
	}

	cmd.Flags().String("ref", "", "reference date for expiry resolution (YYYY-MM-DD, default today)")
	return cmd
}

// newPriceCmd creates the price command: parse, fetch quotes and show
// the implied structure market.
func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price <shorthand>",
		Short: "Parse and price broker shorthand",
		Long: `Parse an interdealer broker shorthand message, fetch per-leg
quotes and derive the implied structure market and net Greeks.

Examples:
  pricer price "AAPL jun26 300 calls vs 251.30 30d 500x 5.90 bid"
  pricer price "IWM feb 257 apr 280 Risky" --save`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			text := strings.Join(args, " ")

			ref, err := refDate(cmd)
			if err != nil {
				return err
			}

			order, data, err := app.Engine.ParseAndPrice(cmd.Context(), text, ref)
			if err != nil {
				output.Error("Pricing failed: %v", err)
				return err
			}

			save, _ := cmd.Flags().GetBool("save")

			if output.IsJSON() {
				result := map[string]interface{}{
					"order":  order,
					"market": data,
					"greeks": app.Engine.NetGreeks(order, data),
				}
				if save {
					id, err := saveOrder(cmd, app, order, data)
					if err != nil {
						return err
					}
					result["saved_id"] = id
				}
				return output.JSON(result)
			}

			renderOrder(output, order)
			output.Println()
			renderMarket(output, order, data)
			output.Println()
			output.Bold("Net Greeks")
			output.Printf("  %s\n", FormatGreeks(app.Engine.NetGreeks(order, data)))

			if save {
				if id, err := saveOrder(cmd, app, order, data); err != nil {
					output.Error("Save failed: %v", err)
					return err
				} else {
					output.Println()
					output.Success("✓ Saved as %s", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("ref", "", "reference date for expiry resolution (YYYY-MM-DD, default today)")
	cmd.Flags().Bool("save", false, "save the priced order to the store")
	return cmd
}

func refDate(cmd *cobra.Command) (time.Time, error) {
	refStr, _ := cmd.Flags().GetString("ref")
	if refStr == "" {
		return time.Now(), nil
	}
	ref, err := time.Parse("2006-01-02", refStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --ref date %q: %w", refStr, err)
	}
	return ref, nil
}

func renderOrder(output *Output, order *models.ParsedOrder) {
	s := &order.Structure
	output.Bold("%s %s", order.Ticker, FormatStructureType(s.Type))
	output.Dim("  %s", parse.Canonical(order))
	output.Println()

	table := NewTable(output, "Side", "Wt", "Expiry", "Strike", "Type")
	for _, leg := range s.Legs {
		table.AddRow(
			output.SideColor(string(leg.Side)),
			fmt.Sprintf("%d", leg.Weight),
			FormatExpiry(leg.Expiry),
			FormatStrike(leg.Strike),
			string(leg.Type),
		)
	}
	table.Render()

	var details []string
	if s.TiePrice > 0 {
		tie := fmt.Sprintf("Tie: %s", FormatPrice(s.TiePrice))
		if s.TieDelta > 0 {
			tie += fmt.Sprintf(" on a %dd", int(s.TieDelta))
		}
		details = append(details, tie)
	}
	if s.Quantity > 0 {
		details = append(details, fmt.Sprintf("Qty: %s", FormatQuantity(s.Quantity)))
	}
	if s.QuotedSide != models.QuoteTwoSided && s.QuotedPrice > 0 {
		details = append(details, fmt.Sprintf("Quoted: %s %s", FormatPrice(s.QuotedPrice), FormatQuoteSide(s.QuotedSide)))
	}
	if len(details) > 0 {
		output.Printf("  %s\n", strings.Join(details, "   "))
	}

	if len(order.Unmatched) > 0 {
		output.Warning("  Unrecognized tokens: %s", strings.Join(order.Unmatched, " "))
	}
}

func renderMarket(output *Output, order *models.ParsedOrder, data *models.StructureMarketData) {
	output.Bold("Market")
	if data.Spot > 0 {
		output.Printf("  Spot: %s\n", FormatPrice(data.Spot))
	}

	table := NewTable(output, "Leg", "Bid", "Ask", "BidSz", "AskSz", "Theo")
	for i, leg := range order.Structure.Legs {
		d := data.Legs[i]
		if !d.HasScreen() && d.Theo == 0 {
			table.AddRow(FormatLeg(leg), "-", "-", "-", "-", "-")
			continue
		}
		table.AddRow(
			FormatLeg(leg),
			FormatPrice(d.Bid),
			FormatPrice(d.Ask),
			FormatSize(d.BidSize),
			FormatSize(d.AskSize),
			FormatPrice(d.Theo),
		)
	}
	table.Render()
	output.Println()

	if data.Incomplete {
		output.Warning("  Incomplete market: implied bid/offer unavailable")
		output.Printf("  Implied Mid: %s\n", FormatPrice(data.ImpliedMid))
		return
	}

	output.Printf("  Implied: %s %s / %s %s   Mid: %s\n",
		output.Green(FormatPrice(data.ImpliedBid)),
		output.DimText(fmt.Sprintf("(%s)", FormatSize(data.BidSize))),
		output.Red(FormatPrice(data.ImpliedOffer)),
		output.DimText(fmt.Sprintf("(%s)", FormatSize(data.OfferSize))),
		output.BoldText(FormatPrice(data.ImpliedMid)))
}

func saveOrder(cmd *cobra.Command, app *App, order *models.ParsedOrder, data *models.StructureMarketData) (string, error) {
	if app.Store == nil {
		return "", fmt.Errorf("order store unavailable")
	}

	stored := &store.StoredOrder{
		Ticker:       order.Ticker,
		RawText:      order.RawText,
		Canonical:    parse.Canonical(order),
		Structure:    order.Structure,
		ImpliedBid:   data.ImpliedBid,
		ImpliedOffer: data.ImpliedOffer,
		ImpliedMid:   data.ImpliedMid,
		BidSize:      data.BidSize,
		OfferSize:    data.OfferSize,
		Incomplete:   data.Incomplete,
		Spot:         data.Spot,
	}
	if err := app.Store.SaveOrder(cmd.Context(), stored); err != nil {
		return "", err
	}
	return stored.ID, nil
}
