package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dom/tablebook/internal/booking"
)

var (
	bookRestaurantID int64
	bookDate         string
	bookTime         string
	bookGuests       int
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Reserve a table at a restaurant",
	RunE:  runBook,
}

func init() {
	bookCmd.Flags().Int64Var(&bookRestaurantID, "restaurant", 0, "restaurant id")
	bookCmd.Flags().StringVar(&bookDate, "date", "", "date as DD.MM.YYYY")
	bookCmd.Flags().StringVar(&bookTime, "time", "", "time as HH:MM")
	bookCmd.Flags().IntVar(&bookGuests, "guests", 2, "number of guests (1-10)")
	bookCmd.MarkFlagRequired("restaurant")
	rootCmd.AddCommand(bookCmd)
}

func runBook(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	// The guests control clamps, it never errors; the workflow trusts
	// it the same way the form's stepper is trusted.
	guests := min(max(bookGuests, 1), 10)

	a.workflow.Create(cmd.Context(), booking.CreateInput{
		DateText:     booking.NormalizeDateInput(bookDate),
		TimeText:     booking.NormalizeTimeInput(bookTime),
		Guests:       guests,
		UserID:       user.ID,
		RestaurantID: bookRestaurantID,
	})
	a.workflow.Wait()
	return nil
}
