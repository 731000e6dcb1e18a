package entity

// ViewerMeals is a day of the published viewer, keyed by localized meal labels.
type ViewerMeals struct {
	Lunch  []string `json:"점심"`
	Dinner []string `json:"저녁"`
}

// ViewerWeek mirrors WeeklyMenu with viewer meal labels.
type ViewerWeek struct {
	Mon ViewerMeals `json:"월"`
	Tue ViewerMeals `json:"화"`
	Wed ViewerMeals `json:"수"`
	Thu ViewerMeals `json:"목"`
	Fri ViewerMeals `json:"금"`
}

type ViewerData struct {
	Date  string     `json:"date"`
	Menus ViewerWeek `json:"menus"`
	Text  string     `json:"text"`
}

// ViewerProjection is one restaurant entry of the published menu-data.json.
type ViewerProjection struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Price     Price      `json:"price"`
	Data      ViewerData `json:"data"`
	ImageURLs []string   `json:"imageUrls"`
}
