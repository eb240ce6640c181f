package cart

// Profile is the slice of the client profile the cart flow needs.
type Profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Cart is one-to-one with a client and fetched lazily on first load.
type Cart struct {
	ID       int64 `json:"id"`
	ClientID int64 `json:"clientId"`
}

// Item is a single cart line. Price, name, image and stock are denormalized
// by the backend onto the line so the cart screen renders without extra
// product lookups.
type Item struct {
	ID                   int64   `json:"id"`
	ProductID            int64   `json:"productId"`
	Quantity             int     `json:"quantity"`
	ProductPrice         float64 `json:"productPrice"`
	ProductName          string  `json:"productName"`
	ProductImagePath     string  `json:"productImagePath"`
	ProductStockQuantity int     `json:"productStockQuantity"`
}

// TotalPrice is the sum of price x quantity over the given items.
func TotalPrice(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.ProductPrice * float64(item.Quantity)
	}
	return total
}
