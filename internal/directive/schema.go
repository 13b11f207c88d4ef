package directive

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/sokinpui/ghost/model"
)

// editListSchema renders the JSON schema of the patch-mode response.
func editListSchema() string {
	r := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	s := r.Reflect(&model.EditList{})
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		// Reflected schemas always marshal.
		panic(err)
	}
	return string(data)
}
