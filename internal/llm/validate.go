package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const menuSchemaURL = "menu.schema.json"

var loadMenuSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := json.Marshal(BuildMenuJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("encode menu schema: %w", err)
	}
	return jsonschema.CompileString(menuSchemaURL, string(doc))
})

// ValidateMenuJSON checks model output against BuildMenuJSONSchema. The error lists every
// violation so it can be logged next to the raw reply.
func ValidateMenuJSON(data []byte) error {
	schema, err := loadMenuSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("menu reply is not JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("menu reply does not match schema: %w", err)
	}
	return nil
}
