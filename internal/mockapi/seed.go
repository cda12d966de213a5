package mockapi

import "github.com/utafrali/storefront/internal/domain"

// SeedProducts returns the catalog the fake API starts with.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: "v4sLtEcMpzabRyfx", Name: "iPhone XR", Category: "Phones", Cost: 100, Rating: 4, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "upLK9JbQ4rMhTwt4", Name: "Basketball", Category: "Sports", Cost: 100, Rating: 5, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "BW0jAAeDJmlZCF8i", Name: "Tan Leatherette Weekender Duffle", Category: "Fashion", Cost: 150, Rating: 4, ImageURL: "https://crio-directus-assets.s3.ap-south-1.amazonaws.com/ff071a1c-1099-48f9-9b03-f858ccc53832.png"},
		{ID: "KCRwjF7lN97HnEaY", Name: "Atomberg 1200mm BLDC motor Ceiling Fan", Category: "Home & Kitchen", Cost: 60, Rating: 5, ImageURL: "https://crio-directus-assets.s3.ap-south-1.amazonaws.com/1b5b5ff0-5d6e-4ee7-a4f4-1c2c5d7fc7e4.jpg"},
		{ID: "a4sLtEcMpzabRyfx", Name: "Apple AirPods", Category: "Electronics", Cost: 129, Rating: 4, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "TwMM4OAhmK0VQ93S", Name: "Leather Ankle Boots", Category: "Fashion", Cost: 80, Rating: 3, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "YnPvJ2BWd8TRFiMH", Name: "Stainless Steel Water Bottle", Category: "Home & Kitchen", Cost: 25, Rating: 4, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "PmInA797xJhMIPti", Name: "Yoga Mat", Category: "Sports", Cost: 40, Rating: 5, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
	}
}
