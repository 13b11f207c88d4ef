package directive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sokinpui/ghost/model"
)

// ParseError reports a patch-mode response that does not have the required shape.
type ParseError struct {
	// Edit is the 1-based index of the offending edit, or 0 for the whole response.
	Edit   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "malformed edit list"
	if e.Edit > 0 {
		msg = fmt.Sprintf("%s: edit #%d", msg, e.Edit)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseEdits extracts and validates the edit list in a model response. JSON is
// taken from the first ```json fence if there is one, else from the response
// itself. Every edit must carry string-typed "old" and "new" fields.
func ParseEdits(response string) (model.EditList, error) {
	payload, err := extractJSON(response)
	if err != nil {
		return model.EditList{}, err
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(payload, &object); err != nil {
		return model.EditList{}, &ParseError{Reason: "response is not a JSON object", Err: err}
	}
	rawEdits, ok := object["edits"]
	if !ok {
		return model.EditList{}, &ParseError{Reason: `missing "edits" field`}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(rawEdits, &items); err != nil || isNull(rawEdits) {
		return model.EditList{}, &ParseError{Reason: `"edits" is not an array of objects`, Err: err}
	}

	list := model.EditList{Edits: make([]model.Edit, 0, len(items))}
	for i, item := range items {
		if item == nil {
			return model.EditList{}, &ParseError{Edit: i + 1, Reason: "edit is not an object"}
		}
		old, err := stringField(item, "old", i+1)
		if err != nil {
			return model.EditList{}, err
		}
		replacement, err := stringField(item, "new", i+1)
		if err != nil {
			return model.EditList{}, err
		}
		list.Edits = append(list.Edits, model.Edit{Old: old, New: replacement})
	}
	return list, nil
}

func stringField(item map[string]json.RawMessage, name string, index int) (string, error) {
	raw, ok := item[name]
	if !ok {
		return "", &ParseError{Edit: index, Reason: fmt.Sprintf("missing %q field", name)}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", &ParseError{Edit: index, Reason: fmt.Sprintf("%q is not a string", name)}
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", &ParseError{Edit: index, Reason: fmt.Sprintf("%q is not a string", name), Err: err}
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// extractJSON picks the JSON payload out of a response that may wrap it in
// markdown or surround it with prose.
func extractJSON(response string) ([]byte, error) {
	blocks, err := ExtractCodeBlocks([]byte(response))
	if err != nil {
		return nil, &ParseError{Reason: "response is not parseable markdown", Err: err}
	}
	for _, b := range blocks {
		if strings.EqualFold(b.Lang, "json") {
			return []byte(strings.TrimSpace(b.Content)), nil
		}
	}
	if b, ok := soleCodeBlock([]byte(response)); ok {
		return []byte(strings.TrimSpace(b.Content)), nil
	}

	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil, &ParseError{Reason: "response is empty"}
	}
	if !strings.HasPrefix(trimmed, "{") {
		start, end := strings.Index(trimmed, "{"), strings.LastIndex(trimmed, "}")
		if start < 0 || end < start {
			return nil, &ParseError{Reason: "no JSON object found in response"}
		}
		trimmed = trimmed[start : end+1]
	}
	return []byte(trimmed), nil
}

// UnwrapDocument returns the body of response if the whole response is a single
// fenced block, otherwise response unchanged.
func UnwrapDocument(response string) string {
	if b, ok := soleCodeBlock([]byte(response)); ok {
		return b.Content
	}
	return response
}
