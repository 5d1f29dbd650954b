package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"idb-pricer/internal/models"
)

// newPayoffCmd creates the payoff command: expiration payoff curve for
// a parsed structure.
func newPayoffCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payoff <shorthand>",
		Short: "Show the expiration payoff curve for a structure",
		Long: `Parse broker shorthand and chart the structure payoff at
expiration across a spot range around the strikes.

Examples:
  pricer payoff "AAPL jun26 240/220 ps"
  pricer payoff "TSLA mar 250 strad" --low 180 --high 320`,
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

			low, _ := cmd.Flags().GetFloat64("low")
			high, _ := cmd.Flags().GetFloat64("high")
			if low <= 0 || high <= low {
				low, high = defaultPayoffRange(&order.Structure)
			}

			steps := app.Config.UI.PayoffSteps
			if steps <= 0 {
				steps = 40
			}
			points := order.Structure.PayoffRange(low, high, steps)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"order":  order,
					"payoff": points,
				})
			}

			renderOrder(output, order)
			output.Println()
			renderPayoff(output, points)
			return nil
		},
	}

	cmd.Flags().String("ref", "", "reference date for expiry resolution (YYYY-MM-DD, default today)")
	cmd.Flags().Float64("low", 0, "lower bound of the spot range")
	cmd.Flags().Float64("high", 0, "upper bound of the spot range")
	return cmd
}

// defaultPayoffRange spans 20% beyond the outer strikes.
func defaultPayoffRange(s *models.OptionStructure) (float64, float64) {
	low, high := s.Legs[0].Strike, s.Legs[0].Strike
	for _, leg := range s.Legs[1:] {
		if leg.Strike < low {
			low = leg.Strike
		}
		if leg.Strike > high {
			high = leg.Strike
		}
	}
	return low * 0.8, high * 1.2
}

// renderPayoff draws a horizontal bar chart of the payoff curve.
func renderPayoff(output *Output, points []models.PayoffPoint) {
	output.Bold("Payoff at Expiration")

	maxAbs := 0.0
	for _, p := range points {
		if v := abs(p.Value); v > maxAbs {
			maxAbs = v
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	const barWidth = 30
	for _, p := range points {
		n := int(abs(p.Value) / maxAbs * barWidth)
		bar := strings.Repeat("█", n)
		if p.Value >= 0 {
			output.Printf("  %s │ %s %s\n",
				PadLeft(FormatPrice(p.Spot), 9),
				output.Green(bar),
				output.DimText(fmt.Sprintf("%+.2f", p.Value)))
		} else {
			output.Printf("  %s │ %s %s\n",
				PadLeft(FormatPrice(p.Spot), 9),
				output.Red(bar),
				output.DimText(fmt.Sprintf("%+.2f", p.Value)))
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
