package domain

// User is the account record returned by the authentication endpoint.
// The server owns the id; the client never generates one.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
