// Package testutil provides an in-process stand-in for the booking
// backend so client tests can exercise the real wire contract without
// a network.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dom/tablebook/internal/domain"
)

const jwtSecret = "testutil-backend-secret"

// Backend serves the collaborator contract over httptest: phone+name
// auth issuing signed tokens, booking CRUD guarded by bearer auth, and
// a paginated restaurant catalog.
type Backend struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]domain.User // keyed by phone
	bookings      map[int64]domain.Booking
	nextUserID    int64
	nextBookingID int64
	restaurants   []domain.Restaurant

	rejectAll atomic.Bool
	pageSize  int
}

// NewBackend starts a backend with a small seeded catalog. The server
// shuts down with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		users:         make(map[string]domain.User),
		bookings:      make(map[int64]domain.Booking),
		nextUserID:    1,
		nextBookingID: 1,
		restaurants:   seedRestaurants(),
		pageSize:      6,
	}

	r := chi.NewRouter()
	r.Post("/users/auth", b.handleAuth)
	r.Get("/restaurants", b.handleListRestaurants)
	r.Group(func(r chi.Router) {
		r.Use(b.requireAuth)
		r.Post("/bookings", b.handleCreateBooking)
		r.Get("/bookings", b.handleListBookings)
		r.Delete("/bookings/{id}", b.handleDeleteBooking)
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

func seedRestaurants() []domain.Restaurant {
	return []domain.Restaurant{
		{ID: 1, Name: "Severyanin", Address: "Stolyarny lane 18", Cuisine: []string{"russian"}, Price: domain.PriceHigh, Metro: "Sennaya"},
		{ID: 2, Name: "Testo", Address: "Rubinstein st 23", Cuisine: []string{"italian", "pasta"}, Price: domain.PriceMedium, Metro: "Dostoevskaya"},
		{ID: 3, Name: "Pho My Linh", Address: "Ligovsky ave 61", Cuisine: []string{"vietnamese"}, Price: domain.PriceLow},
		{ID: 4, Name: "Hamlet + Jacks", Address: "Volynsky lane 2", Cuisine: []string{"modern"}, Price: domain.PriceHigh, Metro: "Nevsky prospekt"},
		{ID: 5, Name: "Bekitzer", Address: "Rubinstein st 40", Cuisine: []string{"israeli", "street food"}, Price: domain.PriceMedium},
		{ID: 6, Name: "Koryushka", Address: "Petropavlovskaya fortress 3", Cuisine: []string{"seafood"}, Price: domain.PriceHigh, Metro: "Gorkovskaya"},
		{ID: 7, Name: "Duo Gastrobar", Address: "Kirochnaya st 8", Cuisine: []string{"fusion"}, Price: domain.PriceMedium, Metro: "Chernyshevskaya"},
	}
}

// RejectAllAsUnauthorized makes every protected endpoint answer 401,
// simulating a credential the server no longer honors.
func (b *Backend) RejectAllAsUnauthorized() {
	b.rejectAll.Store(true)
}

// SeedBooking stores a booking directly, bypassing the API, and
// returns its assigned id.
func (b *Backend) SeedBooking(t *testing.T, booking domain.Booking) int64 {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	booking.ID = b.nextBookingID
	b.nextBookingID++
	b.bookings[booking.ID] = booking
	return booking.ID
}

// BookingCount reports how many bookings the backend currently holds.
func (b *Backend) BookingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bookings)
}

func (b *Backend) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Phone == "" || req.Name == "" {
		http.Error(w, "Phone and name are required", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	user, ok := b.users[req.Phone]
	if !ok {
		user = domain.User{ID: b.nextUserID, Name: req.Name, Phone: req.Phone}
		b.nextUserID++
		b.users[req.Phone] = user
	}
	b.mu.Unlock()

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.rejectAll.Load() {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(*jwt.Token) (any, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data struct {
			Time         string `json:"time"`
			Date         string `json:"date"`
			Guests       int    `json:"guests"`
			UserID       int64  `json:"userId"`
			RestaurantID int64  `json:"restaurantId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Data.Date == "" || req.Data.Time == "" || req.Data.UserID == 0 || req.Data.RestaurantID == 0 {
		http.Error(w, "Missing booking fields", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	booking := domain.Booking{
		ID:           b.nextBookingID,
		UserID:       req.Data.UserID,
		RestaurantID: req.Data.RestaurantID,
		Date:         req.Data.Date,
		Time:         req.Data.Time,
		Guests:       req.Data.Guests,
	}
	b.nextBookingID++
	b.bookings[booking.ID] = booking
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, booking)
}

func (b *Backend) handleListBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid userId", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	result := make([]domain.Booking, 0)
	for _, booking := range b.bookings {
		if booking.UserID != userID {
			continue
		}
		if restaurant, ok := b.restaurantByID(booking.RestaurantID); ok {
			booking.Restaurant = &domain.RestaurantSnapshot{
				ID:      restaurant.ID,
				Name:    restaurant.Name,
				Address: restaurant.Address,
			}
		}
		result = append(result, booking)
	}
	b.mu.Unlock()

	// Map iteration order is random; the client treats the response as
	// the authoritative ordering, so keep it stable by id.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	writeJSON(w, http.StatusOK, result)
}

func (b *Backend) restaurantByID(id int64) (domain.Restaurant, bool) {
	for _, restaurant := range b.restaurants {
		if restaurant.ID == id {
			return restaurant, true
		}
	}
	return domain.Restaurant{}, false
}

func (b *Backend) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	_, ok := b.bookings[id]
	delete(b.bookings, id)
	b.mu.Unlock()

	if !ok {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid page", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	totalPages := (len(b.restaurants) + b.pageSize - 1) / b.pageSize
	start := (page - 1) * b.pageSize
	end := min(start+b.pageSize, len(b.restaurants))
	data := []domain.Restaurant{}
	if start < len(b.restaurants) {
		data = b.restaurants[start:end]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":       data,
		"totalPages": totalPages,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
