package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dom/tablebook/internal/booking"
	"github.com/dom/tablebook/internal/domain"
)

// consoleView renders workflow state changes as plain terminal output.
type consoleView struct {
	out io.Writer
}

func (v *consoleView) BookingsChanged(bookings []domain.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(v.out, "No active bookings.")
		return
	}
	for _, b := range bookings {
		name := "Restaurant"
		address := ""
		if b.Restaurant != nil {
			name = b.Restaurant.Name
			address = b.Restaurant.Address
		}
		fmt.Fprintf(v.out, "#%d  %s  %s %s  %d guests", b.ID, name, b.Date, b.Time, b.Guests)
		if address != "" {
			fmt.Fprintf(v.out, "  (%s)", address)
		}
		fmt.Fprintln(v.out)
	}
}

func (v *consoleView) LoadingChanged(loading bool) {
	if loading {
		fmt.Fprintln(v.out, "Loading bookings...")
	}
}

func (v *consoleView) FieldErrors(errs booking.FieldErrors) {
	for field, msg := range errs {
		fmt.Fprintf(v.out, "  %s: %s\n", field, msg)
	}
}

func (v *consoleView) Notice(msg string) {
	fmt.Fprintln(v.out, msg)
}

func (v *consoleView) Success(msg string, _ time.Duration) {
	fmt.Fprintf(v.out, "✓ %s\n", msg)
}

func (v *consoleView) CloseForm() {}
