package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterClose matches a closing fence occupying a whole line. A
// longer dash run (a thematic break) does not close the block.
var frontmatterClose = regexp.MustCompile(`\n---[ \t\r]*\n`)

// frontmatter holds the YAML metadata block recognized at the top of a
// documentation page. The docs corpus uses it to declare which component
// a page documents.
type frontmatter struct {
	// Components is a single name or a list of names; only the first is
	// attached to the page.
	Components yaml.Node `yaml:"components"`

	// Category overrides the slug-derived category when present.
	Category string `yaml:"category"`
}

// componentNames returns the declared component names in order.
func (f *frontmatter) componentNames() []string {
	switch f.Components.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(f.Components.Value); v != "" {
			return []string{v}
		}
	case yaml.SequenceNode:
		var names []string
		for _, n := range f.Components.Content {
			if v := strings.TrimSpace(n.Value); v != "" {
				names = append(names, v)
			}
		}
		return names
	}
	return nil
}

// extractFrontmatter splits a leading YAML frontmatter block ("---" fences)
// from the document body. Absent or malformed frontmatter degrades to an
// empty record and the full text as body.
func extractFrontmatter(raw string) (*frontmatter, string) {
	empty := &frontmatter{}

	if !strings.HasPrefix(raw, "---") {
		return empty, raw
	}

	rest := raw[3:]
	loc := frontmatterClose.FindStringIndex(rest)
	if loc == nil {
		return empty, raw
	}

	yamlText := rest[:loc[0]]
	body := rest[loc[1]:]

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(yamlText), &fm); err != nil {
		return empty, raw
	}
	return &fm, body
}
