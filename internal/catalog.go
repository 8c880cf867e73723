package internal

// CategoryDescriptions backs the category listing endpoint.
var CategoryDescriptions = map[string]string{
	CategoryAppetizers: "Quick 1-5 minute boosts",
	CategoryEntrees:    "Main activities 15-60 minutes",
	CategorySnacks:     "Light activities 5-15 minutes",
	CategoryDesserts:   "Easy dopamine hits",
	CategorySides:      "Background stimulation",
	CategorySpecials:   "Planned treats and bucket-filling activities",
}

// SeedActivities is the built-in example catalog offered during setup.
// Rows are templates: no owner, no id, no completion history.
var SeedActivities = map[string][]Activity{
	CategoryAppetizers: {
		{Name: "One minute of jumping jacks", Category: CategoryAppetizers, Duration: 1},
		{Name: "Listen to a favorite song", Category: CategoryAppetizers, Duration: 3},
		{Name: "Do a few stretches or yoga poses", Category: CategoryAppetizers, Duration: 5},
		{Name: "Take a warm shower", Category: CategoryAppetizers, Duration: 10},
		{Name: "Drink a cup of coffee", Category: CategoryAppetizers, Duration: 2},
	},
	CategoryEntrees: {
		{Name: "Playing an instrument", Category: CategoryEntrees, Duration: 30},
		{Name: "Going for a brisk walk", Category: CategoryEntrees, Duration: 20},
		{Name: "Working on a hobby", Category: CategoryEntrees, Duration: 45},
		{Name: "Exercising or HIIT class", Category: CategoryEntrees, Duration: 30},
		{Name: "Journaling", Category: CategoryEntrees, Duration: 15},
	},
	CategorySnacks: {
		{Name: "Browse inspirational quotes", Category: CategorySnacks, Duration: 5},
		{Name: "Organize desk or workspace", Category: CategorySnacks, Duration: 10},
		{Name: "Quick meditation", Category: CategorySnacks, Duration: 7},
		{Name: "Call a friend briefly", Category: CategorySnacks, Duration: 8},
		{Name: "Look at cute animal photos", Category: CategorySnacks, Duration: 3},
	},
	CategoryDesserts: {
		{Name: "Scrolling through social media", Category: CategoryDesserts, Duration: 15},
		{Name: "Playing Candy Crush", Category: CategoryDesserts, Duration: 10},
		{Name: "Watching TV/Reality shows", Category: CategoryDesserts, Duration: 30},
		{Name: "NY Times game app", Category: CategoryDesserts, Duration: 10},
		{Name: "Texting friends", Category: CategoryDesserts, Duration: 5},
	},
	CategorySides: {
		{Name: "Listening to white noise", Category: CategorySides},
		{Name: "Playing a podcast", Category: CategorySides},
		{Name: "Using a fidget tool", Category: CategorySides},
		{Name: "ASMR videos", Category: CategorySides},
		{Name: "Upbeat instrumental music", Category: CategorySides},
	},
	CategorySpecials: {
		{Name: "Attending a concert", Category: CategorySpecials, Duration: 180},
		{Name: "Getting a massage", Category: CategorySpecials, Duration: 60},
		{Name: "Weekend getaway", Category: CategorySpecials, Duration: 1440},
		{Name: "Going out to dinner", Category: CategorySpecials, Duration: 120},
		{Name: "Visiting a nail salon", Category: CategorySpecials, Duration: 60},
	},
}
