// Package prompt implements plain {{variable}} string templates.
//
// Rendering performs no sanitization or escaping: interpolated values flow
// into the model prompt verbatim. Callers that interpolate user input are
// crossing a trust boundary (prompt injection) and own that decision.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template is a parsed prompt template with a fixed set of required slots.
type Template struct {
	text string
	vars []string
}

// Parse validates that the template declares every slot in required and
// returns the parsed template. A template missing a required slot is a
// configuration defect and should fail the process at startup.
func Parse(text string, required ...string) (*Template, error) {
	declared := extractVariables(text)
	declaredSet := make(map[string]bool, len(declared))
	for _, v := range declared {
		declaredSet[v] = true
	}

	var missing []string
	for _, r := range required {
		if !declaredSet[r] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("template missing required slots: %s", strings.Join(missing, ", "))
	}

	return &Template{text: text, vars: declared}, nil
}

// Render substitutes vars into the template. It fails only when a declared
// slot has no value; arbitrary slot content is accepted verbatim.
func (t *Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, v := range t.vars {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	result := variablePattern.ReplaceAllStringFunc(t.text, func(match string) string {
		key := match[2 : len(match)-2] // strip {{ and }}
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	})

	return result, nil
}

// Variables returns the slot names declared in the template.
func (t *Template) Variables() []string {
	out := make([]string, len(t.vars))
	copy(out, t.vars)
	return out
}

func extractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}
