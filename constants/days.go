package constants

// Weekday labels used as keys of a weekly menu, Monday to Friday.
const (
	Monday    = "월"
	Tuesday   = "화"
	Wednesday = "수"
	Thursday  = "목"
	Friday    = "금"
)

// Weekdays is the fixed five-day set in display order.
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday}

// Meal labels used by the published viewer.
const (
	ViewerLunchLabel  = "점심"
	ViewerDinnerLabel = "저녁"
)

// IsWeekday reports whether label is one of the five recognised day keys.
func IsWeekday(label string) bool {
	for _, d := range Weekdays {
		if d == label {
			return true
		}
	}
	return false
}
