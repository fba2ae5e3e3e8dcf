// Package knowledge parses the model's synthesis reply into a Knowledge Core.
//
// The reply shape is only requested from the model, never guaranteed, so
// every structured accessor tolerates missing or mistyped fields.
package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Core is either a structured JSON value or the raw reply text. Fields is
// set only when that value is an object.
type Core struct {
	Raw    string
	Fields map[string]any

	value      any
	structured bool
}

// Parse never fails. Anything other than exactly one JSON value is kept as
// raw text.
func Parse(text string) *Core {
	v, err := decodeValue(text)
	if err != nil {
		return &Core{Raw: text}
	}
	fields, _ := v.(map[string]any)
	return &Core{Raw: text, Fields: fields, value: v, structured: true}
}

func decodeValue(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after json value")
	}
	return v, nil
}

func (c *Core) Structured() bool {
	return c != nil && c.structured
}

// Text is the stored form: two-space indented JSON when structured, the raw
// reply otherwise. Parse(c.Text()).Text() == c.Text().
func (c *Core) Text() string {
	if c == nil {
		return ""
	}
	if !c.Structured() {
		return c.Raw
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.value); err != nil {
		return c.Raw
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Title looks in every place the two synthesis prompts put a title.
func (c *Core) Title() string {
	return c.firstString(
		[]string{"metadata", "project_title"},
		[]string{"metadata", "title"},
	)
}

// ImagePrompts returns visual_brief.image_prompts, or the single
// social_fuel.visual_brief description when that is all the core has.
func (c *Core) ImagePrompts() []string {
	if prompts := stringSlice(c.lookup("visual_brief", "image_prompts")); len(prompts) > 0 {
		return prompts
	}
	if brief, ok := c.lookup("social_fuel", "visual_brief").(string); ok && brief != "" {
		return []string{brief}
	}
	return nil
}

// Hooks merges social_fuel.hooks and content_hooks.
func (c *Core) Hooks() map[string]string {
	hooks := map[string]string{}
	for _, path := range [][]string{{"social_fuel", "hooks"}, {"content_hooks"}} {
		m, ok := c.lookup(path...).(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			if s, ok := v.(string); ok && s != "" {
				hooks[k] = s
			}
		}
	}
	if len(hooks) == 0 {
		return nil
	}
	return hooks
}

func (c *Core) lookup(path ...string) any {
	if c == nil || c.Fields == nil {
		return nil
	}
	var cur any = c.Fields
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func (c *Core) firstString(paths ...[]string) string {
	for _, p := range paths {
		if s, ok := c.lookup(p...).(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
