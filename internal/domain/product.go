package domain

// Product is a catalog entry as served by the commerce API.
type Product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Cost     float64 `json:"cost"`
	Rating   int     `json:"rating"`
	ImageURL string  `json:"image"`
}

// FindProduct returns the product with the given id, or nil.
func FindProduct(catalog []Product, id string) *Product {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}

// Address is a saved shipping address.
type Address struct {
	ID   string `json:"_id"`
	Text string `json:"address"`
}

// FindAddress returns the index of the address with the given id, or -1.
func FindAddress(addresses []Address, id string) int {
	for i := range addresses {
		if addresses[i].ID == id {
			return i
		}
	}
	return -1
}
