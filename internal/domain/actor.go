package domain

// Actor identifies who performs an operation and for which restaurant.
// Every lifecycle operation receives it explicitly.
type Actor struct {
	RestaurantID int
	UserID       string
	Role         string
}
