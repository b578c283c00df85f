package cmd

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dom/tablebook/internal/domain"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <booking-id>",
	Short: "Cancel one of your bookings",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid booking id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	user, err := a.requireUser()
	if err != nil {
		return err
	}

	// Cancellation operates on the loaded collection, so fetch it
	// first and make sure the id is actually ours.
	a.workflow.Open(cmd.Context(), user.ID)
	a.workflow.Wait()
	found := false
	for _, b := range a.workflow.Bookings() {
		if b.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("booking %d: %w", id, domain.ErrBookingNotFound)
	}

	confirm := promptui.Prompt{
		Label:     fmt.Sprintf("Cancel booking %d? This cannot be undone", id),
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		fmt.Println("Kept the booking.")
		return nil
	}

	if err := a.workflow.Cancel(cmd.Context(), id); err != nil {
		return err
	}
	a.workflow.Wait()
	fmt.Println("Booking cancelled.")
	return nil
}
