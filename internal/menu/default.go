package menu

import "github.com/shopspring/decimal"

type entry struct {
	name  string
	price int64
}

func category(name string, entries ...entry) Category {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{Name: e.name, UnitPrice: decimal.NewFromInt(e.price)})
	}
	return Category{Name: name, Items: items}
}

// Default returns the house menu, prices in rupees.
func Default() *Catalog {
	return MustNew(
		category("Pakistani Dishes",
			entry{"Chicken Karahi", 450},
			entry{"Mutton Karahi", 650},
			entry{"Chicken Biryani", 320},
			entry{"Mutton Biryani", 480},
			entry{"Chicken Tikka", 380},
			entry{"Seekh Kebab", 350},
			entry{"Chapli Kebab", 320},
			entry{"Nihari", 420},
			entry{"Haleem", 280},
			entry{"Chicken Handi", 400},
			entry{"Mutton Handi", 550},
			entry{"Daal Chawal", 180},
			entry{"Aloo Gosht", 380},
			entry{"Palak Gosht", 420},
			entry{"Chicken Jalfrezi", 360},
		),
		category("Chinese Dishes",
			entry{"Chicken Chow Mein", 280},
			entry{"Beef Chow Mein", 320},
			entry{"Chicken Fried Rice", 250},
			entry{"Vegetable Fried Rice", 200},
			entry{"Sweet & Sour Chicken", 340},
			entry{"Chicken Manchurian", 320},
			entry{"Hot & Sour Soup", 150},
			entry{"Chicken Corn Soup", 180},
			entry{"Spring Rolls", 220},
			entry{"Honey Chicken", 360},
			entry{"Szechuan Chicken", 380},
			entry{"Dragon Chicken", 400},
			entry{"Crispy Beef", 450},
			entry{"Vegetable Manchurian", 240},
			entry{"Chicken 65", 350},
		),
		category("Beverages & Desserts",
			entry{"Fresh Lime", 80},
			entry{"Mango Lassi", 120},
			entry{"Rooh Afza", 60},
			entry{"Green Tea", 50},
			entry{"Kashmiri Chai", 80},
			entry{"Kulfi", 100},
			entry{"Kheer", 120},
			entry{"Gulab Jamun", 100},
			entry{"Ras Malai", 150},
			entry{"Ice Cream", 80},
			entry{"Fresh Juice", 100},
			entry{"Cold Drinks", 60},
		),
	)
}
