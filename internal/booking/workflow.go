// Package booking holds the reservation workflow: field validation,
// submission, the in-memory booking list and its cancellation
// bookkeeping.
package booking

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dom/tablebook/internal/api"
	"github.com/dom/tablebook/internal/domain"
)

// SuccessNoticeDuration is how long the booking-confirmed
// acknowledgment stays visible before dismissing itself.
const SuccessNoticeDuration = 2500 * time.Millisecond

// ErrCancelPending rejects a second cancellation of a booking whose
// first cancellation has not completed yet.
var ErrCancelPending = errors.New("cancellation already in progress")

// API is the slice of the backend the workflow needs.
type API interface {
	CreateBooking(ctx context.Context, data api.NewBooking) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// View is the rendering boundary. The workflow pushes state changes
// through it and never knows how they are drawn.
type View interface {
	BookingsChanged(bookings []domain.Booking)
	LoadingChanged(loading bool)
	FieldErrors(errs FieldErrors)
	Notice(msg string)
	Success(msg string, visible time.Duration)
	CloseForm()
}

// Workflow owns the in-memory booking collection. Network calls run on
// their own goroutines; their continuations re-acquire the workflow
// lock before touching shared state, so interleaving is safe without
// the caller doing anything.
type Workflow struct {
	api    API
	view   View
	clock  func() time.Time
	logger zerolog.Logger

	mu       sync.Mutex
	bookings []domain.Booking
	loading  bool
	deleting map[int64]bool
	listSeq  uint64

	pending sync.WaitGroup
}

type Option func(*Workflow)

func WithClock(clock func() time.Time) Option {
	return func(w *Workflow) { w.clock = clock }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

func NewWorkflow(backend API, view View, opts ...Option) *Workflow {
	w := &Workflow{
		api:      backend,
		view:     view,
		clock:    time.Now,
		logger:   zerolog.Nop(),
		deleting: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open fetches the user's bookings and replaces the collection with
// the response wholesale; nothing is cached between opens. Each fetch
// carries a sequence number and a response that is no longer the
// latest issued fetch is discarded, so a slow first open can never
// overwrite a newer one. The loading flag is cleared whichever way the
// latest fetch ends.
func (w *Workflow) Open(ctx context.Context, userID int64) {
	w.mu.Lock()
	w.listSeq++
	seq := w.listSeq
	w.loading = true
	w.mu.Unlock()
	w.view.LoadingChanged(true)

	w.pending.Add(1)
	go func() {
		defer w.pending.Done()

		bookings, err := w.api.ListBookings(ctx, userID)

		w.mu.Lock()
		if seq != w.listSeq {
			w.mu.Unlock()
			w.logger.Debug().Uint64("seq", seq).Msg("discarding stale bookings response")
			return
		}
		w.loading = false
		if err == nil {
			w.bookings = bookings
		}
		w.mu.Unlock()

		w.view.LoadingChanged(false)
		if err != nil {
			w.logger.Error().Err(err).Msg("failed to load bookings")
			return
		}
		w.view.BookingsChanged(slices.Clone(bookings))
	}()
}

// CreateInput is what the booking form submits. Guests is clamped to
// 1–10 by the input control before it gets here; the workflow does not
// re-check it.
type CreateInput struct {
	DateText     string
	TimeText     string
	Guests       int
	UserID       int64
	RestaurantID int64
}

// Create validates the date and time text and either surfaces
// per-field errors (no network call, form stays open) or submits the
// reservation. Submission is optimistic: the form closes and the
// success acknowledgment shows as soon as the request is dispatched,
// without waiting for the server. A late server-side failure is logged
// only (see DESIGN.md).
func (w *Workflow) Create(ctx context.Context, in CreateInput) {
	errs := FieldErrors{}
	if _, err := ValidateDate(in.DateText, w.clock()); err != nil {
		errs["date"] = err.Error()
	}
	if _, _, err := ValidateTime(in.TimeText); err != nil {
		errs["time"] = err.Error()
	}
	if len(errs) > 0 {
		w.view.FieldErrors(errs)
		w.view.Notice("please fix the errors in the form")
		return
	}

	data := api.NewBooking{
		Time:         in.TimeText,
		Date:         in.DateText,
		Guests:       in.Guests,
		UserID:       in.UserID,
		RestaurantID: in.RestaurantID,
	}
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		created, err := w.api.CreateBooking(ctx, data)
		if err != nil {
			w.logger.Error().Err(err).Int64("restaurantId", data.RestaurantID).
				Msg("booking submission failed after form closed")
			return
		}
		w.logger.Info().Int64("bookingId", created.ID).Msg("booking confirmed")
	}()

	w.view.CloseForm()
	w.view.Success("table booked", SuccessNoticeDuration)
}

// Cancel deletes a booking already present in the collection. The id
// is marked in flight while the request runs so a duplicate submission
// for the same booking is rejected; other ids are unaffected. The
// entry is removed from the collection once the call completes whether
// or not the server confirmed it, and the marker is cleared.
func (w *Workflow) Cancel(ctx context.Context, id int64) error {
	w.mu.Lock()
	if w.deleting[id] {
		w.mu.Unlock()
		return ErrCancelPending
	}
	w.deleting[id] = true
	w.mu.Unlock()

	w.pending.Add(1)
	go func() {
		defer w.pending.Done()

		if err := w.api.DeleteBooking(ctx, id); err != nil {
			// Removed locally anyway; the next open refetches truth.
			w.logger.Error().Err(err).Int64("bookingId", id).
				Msg("booking deletion not confirmed by server")
		}

		w.mu.Lock()
		w.bookings = slices.DeleteFunc(w.bookings, func(b domain.Booking) bool {
			return b.ID == id
		})
		delete(w.deleting, id)
		remaining := slices.Clone(w.bookings)
		w.mu.Unlock()

		w.view.BookingsChanged(remaining)
	}()
	return nil
}

// Bookings returns a copy of the current collection.
func (w *Workflow) Bookings() []domain.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.bookings)
}

// Loading reports whether a list fetch is outstanding.
func (w *Workflow) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// InFlight reports whether a cancellation for the id is outstanding,
// letting the UI disable that entry's control.
func (w *Workflow) InFlight(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deleting[id]
}

// Wait blocks until every dispatched network call has completed. The
// CLI calls it before exiting; tests call it before asserting.
func (w *Workflow) Wait() {
	w.pending.Wait()
}
