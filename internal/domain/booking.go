package domain

// RestaurantSnapshot is the denormalized restaurant data the server
// embeds in each listed booking. It is display data only and is never
// fetched independently.
type RestaurantSnapshot struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Booking is a reserved table. Date and Time carry the masked wire
// format (DD.MM.YYYY and HH:MM) the server stores verbatim. A booking
// is immutable once created; the only follow-up operation is deletion.
type Booking struct {
	ID           int64               `json:"id"`
	UserID       int64               `json:"userId"`
	RestaurantID int64               `json:"restaurantId"`
	Date         string              `json:"date"`
	Time         string              `json:"time"`
	Guests       int                 `json:"guests"`
	Restaurant   *RestaurantSnapshot `json:"restaurant,omitempty"`
}
