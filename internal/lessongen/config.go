package lessongen

// Config carries the vocabularies and pools the generators draw from.
type Config struct {
	// OptionCount is the size of every synthesized single-select or
	// multiple-choice option set.
	OptionCount int
	// DefaultPriceVariation is the price band used when a price_variation
	// source does not carry its own.
	DefaultPriceVariation float64

	ValidDishTypes      []string
	Allergens           []string
	DietaryRestrictions []string
	Accommodations      []string
	Temperatures        []string
	WineCategories      []string

	Fallback FallbackPools
}

// FallbackPools pad option sets when a restaurant's catalog is too small to
// supply enough distinct distractors.
type FallbackPools struct {
	DishNames []string
	Varietals []string
	Producers []string
	Countries []string
	Regions   []string
	Styles    []string
	WineNames []string
	ImageURLs []string
}

func DefaultConfig() Config {
	return Config{
		OptionCount:           4,
		DefaultPriceVariation: 15,
		ValidDishTypes:        []string{"Appetizer", "Salad", "Soup", "Entree", "Side", "Dessert", "Sushi", "Sandwich"},
		Allergens:             []string{"Dairy", "Eggs", "Fish", "Shellfish", "Tree Nuts", "Peanuts", "Wheat", "Soy", "Sesame", "Mustard", "Celery"},
		DietaryRestrictions:   []string{"Vegetarian", "Vegan", "Gluten Free", "Dairy Free", "Nut Free", "Pescatarian", "Halal", "Kosher", "Keto"},
		Accommodations:        []string{"Can be made gluten free", "Can be made dairy free", "Sauce on the side", "Can be made vegetarian", "Can be made without nuts", "No substitutions"},
		Temperatures:          []string{"Hot", "Warm", "Room Temperature", "Cold"},
		WineCategories:        []string{"Red", "White", "Rosé", "Sparkling", "Dessert", "Orange", "Fortified"},
		Fallback: FallbackPools{
			DishNames: []string{"House Salad", "Roasted Half Chicken", "Grilled Salmon", "Braised Short Rib", "Mushroom Risotto", "Chocolate Torte"},
			Varietals: []string{"Cabernet Sauvignon", "Chardonnay", "Pinot Noir", "Sauvignon Blanc", "Riesling", "Syrah", "Malbec", "Tempranillo", "Sangiovese"},
			Producers: []string{"Domaine Leflaive", "Château Margaux", "Ridge Vineyards", "Antinori", "Penfolds", "Cloudy Bay", "Dr. Loosen"},
			Countries: []string{"France", "Italy", "Spain", "United States", "Argentina", "Australia", "Germany", "New Zealand"},
			Regions:   []string{"Bordeaux", "Burgundy", "Tuscany", "Rioja", "Napa Valley", "Mendoza", "Barossa Valley", "Mosel"},
			Styles:    []string{"Light-bodied", "Medium-bodied", "Full-bodied", "Crisp and Dry", "Off-dry", "Sweet"},
			WineNames: []string{"Reserve Cabernet", "Estate Chardonnay", "Old Vine Zinfandel", "Brut Rosé", "Grand Cru Riesling", "Gran Reserva"},
			ImageURLs: []string{
				"https://static.servewise.app/labels/placeholder-1.png",
				"https://static.servewise.app/labels/placeholder-2.png",
				"https://static.servewise.app/labels/placeholder-3.png",
				"https://static.servewise.app/labels/placeholder-4.png",
			},
		},
	}
}

func (c Config) optionCount() int {
	if c.OptionCount < 2 {
		return 4
	}
	return c.OptionCount
}
