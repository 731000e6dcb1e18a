package llm

import "github.com/aoperat/centumbob/constants"

// BuildMenuJSONSchema returns the JSON Schema (draft 2020-12 subset) of a weekly menu
// extraction. Extra keys are tolerated; the validator drops them.
func BuildMenuJSONSchema() map[string]any {
	day := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"lunch":  itemsProp(),
			"dinner": itemsProp(),
		},
		"required": []string{"lunch", "dinner"},
	}

	days := make(map[string]any, len(constants.Weekdays))
	for _, d := range constants.Weekdays {
		days[d] = day
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"price": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lunch":  map[string]any{"type": "string"},
					"dinner": map[string]any{"type": "string"},
				},
				"required": []string{"lunch", "dinner"},
			},
			"menus": map[string]any{
				"type":       "object",
				"properties": days,
				"required":   constants.Weekdays,
			},
		},
		"required": []string{"price", "menus"},
	}
}

func itemsProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
