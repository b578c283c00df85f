package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dom/tablebook/internal/domain"
)

var restaurantsPage int

var restaurantsCmd = &cobra.Command{
	Use:   "restaurants",
	Short: "Browse the restaurant catalog",
	RunE:  runRestaurants,
}

func init() {
	restaurantsCmd.Flags().IntVar(&restaurantsPage, "page", 1, "catalog page to show")
	rootCmd.AddCommand(restaurantsCmd)
}

func runRestaurants(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	page, err := a.client.ListRestaurants(cmd.Context(), restaurantsPage)
	if err != nil {
		return fmt.Errorf("failed to load restaurants: %w", err)
	}

	for _, r := range page.Data {
		fmt.Printf("#%d  %s  %s  %s  %s", r.ID, r.Name, priceTier(r.Price), strings.Join(r.Cuisine, ", "), r.Address)
		if r.Metro != "" {
			fmt.Printf("  M %s", r.Metro)
		}
		fmt.Println()
	}
	fmt.Printf("Page %d of %d\n", restaurantsPage, page.TotalPages)
	return nil
}

func priceTier(price int) string {
	switch price {
	case domain.PriceLow:
		return "₽"
	case domain.PriceMedium:
		return "₽₽"
	default:
		return "₽₽₽"
	}
}
