// Package extract turns loosely-typed research output into typed records.
//
// Free-text extraction hands back JSON of uneven shape. Every blob is
// validated against the caller's schema first, then decoded with
// mapstructure; shapes the schema does not anticipate degrade to a key-value
// rendering instead of failing the stage.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError reports a blob that failed schema validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("blob failed schema validation: %s", strings.Join(e.Problems, "; "))
}

// CleanJSON strips markdown code fences language models like to wrap JSON in.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	s = strings.Trim(s, "`")
	return strings.TrimSpace(s)
}

// Decode validates raw JSON against schema and decodes it into target.
// target follows mapstructure conventions with the "mapstructure" tag.
func Decode(raw, schema string, target any) error {
	cleaned := CleanJSON(raw)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		return fmt.Errorf("validate blob: %w", err)
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, desc := range result.Errors() {
			verr.Problems = append(verr.Problems, desc.String())
		}
		return verr
	}

	var intermediate any
	if err := json.Unmarshal([]byte(cleaned), &intermediate); err != nil {
		return fmt.Errorf("parse blob: %w", err)
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	if err := decoder.Decode(intermediate); err != nil {
		return fmt.Errorf("decode blob: %w", err)
	}
	return nil
}

// RenderFallback renders an arbitrary decoded blob as sorted key-value lines.
// Used when a blob arrives in a shape no typed record anticipates, so the
// content still reaches the report instead of being dropped.
func RenderFallback(blob map[string]any) string {
	keys := make([]string, 0, len(blob))
	for k := range blob {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, renderValue(blob[k]))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
