package catalog

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/models"
)

type seedItem struct {
	name, description       string
	category, subcategory   string
	brand                   string
	price, mrp              int64
	rating                  float64
	reviews                 int64
	stock                   int
	featured, best, arrival bool
	image                   string
}

var seedItems = []seedItem{
	{"Galaxy M14 5G (6GB/128GB)", "6000mAh battery, 50MP triple camera, 90Hz display", "Electronics", "Mobiles", "Samsung", 13490, 17990, 4.2, 18432, 40, true, true, false, "mobiles/galaxy-m14.jpg"},
	{"Redmi Note 13 Pro", "200MP camera, 120Hz AMOLED, 67W turbo charging", "Electronics", "Mobiles", "Xiaomi", 23999, 28999, 4.3, 9211, 25, false, true, true, "mobiles/redmi-note-13-pro.jpg"},
	{"Nord CE 3 Lite", "108MP camera, 67W SUPERVOOC, 5000mAh", "Electronics", "Mobiles", "OnePlus", 17999, 19999, 4.1, 6540, 0, false, false, false, "mobiles/nord-ce3-lite.jpg"},
	{"IdeaPad Slim 3 (i5, 16GB, 512GB)", "15.6 inch FHD laptop with backlit keyboard", "Electronics", "Laptops", "Lenovo", 52990, 74990, 4.0, 2310, 12, true, false, false, "laptops/ideapad-slim-3.jpg"},
	{"Vivobook 15 (Ryzen 5)", "Thin and light laptop, 8GB RAM, 512GB SSD", "Electronics", "Laptops", "ASUS", 41990, 55990, 4.1, 1876, 8, false, false, true, "laptops/vivobook-15.jpg"},
	{"Rockerz 450 Bluetooth Headphones", "15 hours playback, padded ear cushions", "Electronics", "Audio", "boAt", 1299, 3990, 4.1, 401223, 120, true, true, false, "audio/rockerz-450.jpg"},
	{"Airdopes 141 TWS Earbuds", "42 hours playback, ENx noise cancellation", "Electronics", "Audio", "boAt", 999, 4490, 3.9, 310998, 200, false, true, false, "audio/airdopes-141.jpg"},
	{"WH-CH520 Wireless Headphones", "50 hours battery, DSEE sound upscaling", "Electronics", "Audio", "Sony", 4490, 5990, 4.4, 12877, 30, false, false, true, "audio/wh-ch520.jpg"},
	{"Men's Slim Fit Cotton Shirt", "100% cotton, full sleeves, machine wash", "Fashion", "Men", "Allen Solly", 899, 1999, 4.0, 5621, 60, false, false, false, "fashion/allen-solly-shirt.jpg"},
	{"Men's Running Shoes", "Lightweight mesh upper, cushioned sole", "Fashion", "Men", "Puma", 2249, 4999, 4.2, 8790, 35, true, false, false, "fashion/puma-running.jpg"},
	{"Women's Printed Kurta", "Rayon straight kurta with three-quarter sleeves", "Fashion", "Women", "Libas", 649, 1899, 4.1, 15432, 80, false, true, false, "fashion/libas-kurta.jpg"},
	{"Women's Analog Watch", "Rose gold dial, stainless steel strap", "Fashion", "Women", "Titan", 3295, 3295, 4.5, 2101, 15, false, false, true, "fashion/titan-watch.jpg"},
	{"Unbranded Cotton Tote Bag", "Reusable canvas tote for everyday use", "Fashion", "Women", "", 199, 0, 3.6, 312, 300, false, false, false, "fashion/tote-bag.jpg"},
	{"Non-Stick Cookware Set (3 pcs)", "Induction friendly kadhai, tawa and frying pan", "Home & Kitchen", "Cookware", "Prestige", 1899, 3250, 4.2, 22109, 45, true, true, false, "home/prestige-cookware.jpg"},
	{"Mixer Grinder 750W", "3 stainless steel jars, overload protection", "Home & Kitchen", "Appliances", "Bajaj", 3199, 4500, 4.0, 31876, 22, false, true, false, "home/bajaj-mixer.jpg"},
	{"Electric Kettle 1.5L", "Auto shut-off, boil dry protection", "Home & Kitchen", "Appliances", "Pigeon", 549, 1195, 3.9, 65012, 0, false, false, false, "home/pigeon-kettle.jpg"},
	{"Cotton Double Bedsheet", "King size bedsheet with two pillow covers", "Home & Kitchen", "Furnishing", "Bombay Dyeing", 999, 2499, 4.1, 7321, 70, false, false, true, "home/bedsheet.jpg"},
	{"Atomic Habits", "An easy and proven way to build good habits", "Books", "Self-Help", "Penguin", 499, 799, 4.7, 98123, 150, true, true, false, "books/atomic-habits.jpg"},
	{"The Psychology of Money", "Timeless lessons on wealth, greed, and happiness", "Books", "Finance", "Jaico", 299, 399, 4.6, 76543, 90, false, true, false, "books/psychology-of-money.jpg"},
	{"Ikigai", "The Japanese secret to a long and happy life", "Books", "Self-Help", "Penguin", 350, 550, 4.5, 54321, 0, false, false, true, "books/ikigai.jpg"},
	{"Vitamin C Face Serum 30ml", "Brightening serum with 10% vitamin C", "Beauty", "Skincare", "Minimalist", 599, 699, 4.2, 43210, 140, false, false, true, "beauty/vitamin-c-serum.jpg"},
	{"Matte Lipstick", "Long-lasting matte finish, 4.2g", "Beauty", "Makeup", "Lakme", 325, 500, 4.0, 11234, 110, false, false, false, "beauty/lakme-lipstick.jpg"},
	{"Aloe Vera Gel 300ml", "Multipurpose gel for skin and hair", "Beauty", "Skincare", "", 249, 0, 4.3, 8765, 60, false, false, false, "beauty/aloe-gel.jpg"},
	{"Yoga Mat 6mm", "Anti-slip mat with carry strap", "Sports", "Fitness", "Boldfit", 499, 1499, 4.1, 19876, 55, true, false, false, "sports/yoga-mat.jpg"},
}

// SeedProducts returns the static starter catalog. Ids are assigned in
// listing order starting at 1.
func SeedProducts() []models.Product {
	products := make([]models.Product, 0, len(seedItems))
	for i, item := range seedItems {
		p := models.Product{
			ID:          uint64(i + 1),
			Name:        item.name,
			Description: item.description,
			Category:    item.category,
			Subcategory: item.subcategory,
			Price:       decimal.NewFromInt(item.price),
			Rating:      item.rating,
			ReviewCount: item.reviews,
			Stock:       item.stock,
			Images:      pq.StringArray{item.image},
			Featured:    item.featured,
			BestSeller:  item.best,
			NewArrival:  item.arrival,
		}
		if item.mrp > 0 {
			mrp := decimal.NewFromInt(item.mrp)
			p.MRP = &mrp
		}
		if item.brand != "" {
			brand := item.brand
			p.Brand = &brand
		}
		products = append(products, p)
	}
	return products
}
