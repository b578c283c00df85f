package cmd

import (
	"github.com/spf13/cobra"
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List your bookings",
	RunE:  runBookings,
}

func init() {
	rootCmd.AddCommand(bookingsCmd)
}

func runBookings(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	a.workflow.Open(cmd.Context(), user.ID)
	a.workflow.Wait()
	return nil
}
