package domain

type Customer struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}
