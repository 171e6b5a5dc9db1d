package llm

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// wrapperKeys are object keys models commonly use to wrap the author array
// when the service forces a top-level JSON object.
var wrapperKeys = []string{"authors", "affiliations", "records", "results", "items", "data"}

// recoverObjects finds the author objects in a raw completion. Markdown fences
// and prose around the JSON are tolerated. Top-level JSON values are decoded
// left to right and each is consumed whole, so objects nested in a value are
// never considered on their own. The first array (or wrapper object) holding
// at least one object wins; an empty one is used only when nothing better
// follows. A value cut off by the end of the text makes the whole response
// unusable. ok is false when nothing usable was found.
func recoverObjects(raw string) (objs []map[string]any, skipped int, ok bool) {
	text := stripCodeFences(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
	if text == "" {
		return nil, 0, false
	}

	foundEmpty, emptySkipped := false, 0
	for i := 0; i < len(text); {
		if text[i] != '[' && text[i] != '{' {
			i++
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, 0, false
			}
			// resume after the point where the bracketed prose stopped being JSON
			var se *json.SyntaxError
			if errors.As(err, &se) && se.Offset > 1 {
				i += int(se.Offset) - 1
			} else {
				i++
			}
			continue
		}
		i += int(dec.InputOffset())

		var (
			got  []map[string]any
			sk   int
			good bool
		)
		switch val := v.(type) {
		case []any:
			got, sk, good = objectsFromArray(val)
		case map[string]any:
			got, sk, good = unwrapObject(val)
		}
		switch {
		case good && len(got) > 0:
			return got, sk, true
		case good && !foundEmpty:
			foundEmpty, emptySkipped = true, sk
		}
	}
	if foundEmpty {
		return []map[string]any{}, emptySkipped, true
	}
	return nil, 0, false
}

func objectsFromArray(arr []any) ([]map[string]any, int, bool) {
	objs := make([]map[string]any, 0, len(arr))
	skipped := 0
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			objs = append(objs, m)
			continue
		}
		skipped++
	}
	// [1] or ["a"] in surrounding prose is not an answer
	if len(arr) > 0 && len(objs) == 0 {
		return nil, 0, false
	}
	return objs, skipped, true
}

// unwrapObject accepts {"authors": [...]}, one bare author object, or an
// object with a single array-valued key.
func unwrapObject(obj map[string]any) ([]map[string]any, int, bool) {
	for _, k := range wrapperKeys {
		for key, v := range obj {
			if !strings.EqualFold(key, k) {
				continue
			}
			if arr, ok := v.([]any); ok {
				return objectsFromArray(arr)
			}
		}
	}

	if looksLikeAuthor(obj) {
		return []map[string]any{obj}, 0, true
	}

	var only []any
	arrays := 0
	for _, v := range obj {
		if arr, ok := v.([]any); ok {
			only = arr
			arrays++
		}
	}
	if arrays == 1 {
		return objectsFromArray(only)
	}
	return nil, 0, false
}

func looksLikeAuthor(obj map[string]any) bool {
	for k := range obj {
		if canonicalField(k) == authorNameField {
			return true
		}
	}
	return false
}

// stripCodeFences removes a surrounding ```json ... ``` block.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
