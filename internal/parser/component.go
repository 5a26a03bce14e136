package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rxdocs/rxmcp/internal/docs"
)

// componentPrefix is the canonical framework prefix for component names.
const componentPrefix = "rx."

// maxDescriptionLen bounds component descriptions extracted from prose.
const maxDescriptionLen = 200

// componentFencePattern matches a fenced component-schema block.
var componentFencePattern = regexp.MustCompile("(?s)```component\\s*\\n(.*?)```")

// tableRowPattern matches one markdown table row.
var tableRowPattern = regexp.MustCompile(`^\s*\|(.+)\|\s*$`)

// componentSchema is the fenced block form of a component declaration.
type componentSchema struct {
	Name       string    `yaml:"name"`
	Category   string    `yaml:"category"`
	Properties yaml.Node `yaml:"properties"`
}

// extractComponent builds the Component record for a page, or nil when the
// page does not document one. A malformed schema block is logged and
// skipped; the page itself is always kept.
func extractComponent(fm *frontmatter, page *docs.Page) *docs.Component {
	component := &docs.Component{SourceSlug: page.Slug}

	// The fenced schema block is the most explicit declaration.
	if block := findComponentBlock(page.Sections); block != "" {
		var schema componentSchema
		if err := yaml.Unmarshal([]byte(block), &schema); err != nil {
			logSkippedComponent(page.Slug, "malformed component block", err)
			return nil
		}
		if schema.Name == "" {
			logSkippedComponent(page.Slug, "component block without name", nil)
			return nil
		}
		component.Name = NormalizeComponentName(schema.Name)
		component.Category = schema.Category
		component.Properties = propertiesFromNode(&schema.Properties)
	}

	// Frontmatter declaration, the corpus convention.
	if component.Name == "" {
		names := fm.componentNames()
		if len(names) == 0 {
			return nil
		}
		component.Name = NormalizeComponentName(names[0])
	}

	if component.Category == "" {
		component.Category = fm.Category
	}
	if component.Category == "" {
		component.Category = CategoryFromSlug(page.Slug)
	}

	component.Description = describePage(page)

	if len(component.Properties) == 0 {
		component.Properties = propertiesFromTable(page.Sections)
	}

	return component
}

// NormalizeComponentName lowercases a component name and ensures the
// canonical "rx." prefix.
func NormalizeComponentName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if !strings.HasPrefix(name, componentPrefix) {
		name = componentPrefix + name
	}
	return name
}

// CategoryFromSlug derives the category for component pages under the
// library tree: "library/layout/box" -> "layout". A two-segment slug
// like "library/layout" also qualifies.
func CategoryFromSlug(slug string) string {
	parts := strings.Split(slug, "/")
	if len(parts) >= 2 && parts[0] == "library" {
		return parts[1]
	}
	return ""
}

// describePage extracts the first sentence of the first non-empty section.
func describePage(page *docs.Page) string {
	for _, s := range page.Sections {
		if text := StripMarkdown(s.Body); text != "" {
			return FirstSentence(text, maxDescriptionLen)
		}
	}
	return ""
}

// findComponentBlock returns the contents of the first fenced component
// block in any section, or empty.
func findComponentBlock(sections []docs.Section) string {
	for _, s := range sections {
		if m := componentFencePattern.FindStringSubmatch(s.Body); m != nil {
			return m[1]
		}
	}
	return ""
}

// propertiesFromNode converts a YAML mapping node to properties, keeping
// declaration order. Non-mapping nodes yield nothing.
func propertiesFromNode(node *yaml.Node) []docs.Property {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	var props []docs.Property
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		if name == "" {
			continue
		}
		props = append(props, docs.Property{
			Name:        name,
			Description: strings.TrimSpace(node.Content[i+1].Value),
		})
	}
	return props
}

// propertiesFromTable extracts properties from the first markdown table
// whose header names a property column and a description column.
func propertiesFromTable(sections []docs.Section) []docs.Property {
	for _, s := range sections {
		if props := parsePropsTable(s.Body); len(props) > 0 {
			return props
		}
	}
	return nil
}

func parsePropsTable(body string) []docs.Property {
	lines := strings.Split(body, "\n")

	for i := 0; i+1 < len(lines); i++ {
		header := tableRowPattern.FindStringSubmatch(lines[i])
		if header == nil {
			continue
		}
		nameCol, descCol := propColumns(splitTableRow(header[1]))
		if nameCol < 0 || descCol < 0 {
			continue
		}
		// The next row must be the |---|---| separator.
		if !strings.Contains(lines[i+1], "-") || !tableRowPattern.MatchString(lines[i+1]) {
			continue
		}

		var props []docs.Property
		for _, line := range lines[i+2:] {
			row := tableRowPattern.FindStringSubmatch(line)
			if row == nil {
				break
			}
			cells := splitTableRow(row[1])
			if nameCol >= len(cells) {
				continue
			}
			name := stripCellMarkup(cells[nameCol])
			if name == "" {
				continue
			}
			desc := ""
			if descCol < len(cells) {
				desc = stripCellMarkup(cells[descCol])
			}
			props = append(props, docs.Property{Name: name, Description: desc})
		}
		if len(props) > 0 {
			return props
		}
	}
	return nil
}

// propColumns locates the property-name and description columns in a
// header row, -1 when absent.
func propColumns(cells []string) (nameCol, descCol int) {
	nameCol, descCol = -1, -1
	for i, c := range cells {
		switch strings.ToLower(stripCellMarkup(c)) {
		case "prop", "props", "property", "name":
			if nameCol < 0 {
				nameCol = i
			}
		case "description", "desc":
			if descCol < 0 {
				descCol = i
			}
		}
	}
	return nameCol, descCol
}

func splitTableRow(row string) []string {
	cells := strings.Split(row, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// stripCellMarkup removes inline code and emphasis markers from a cell.
func stripCellMarkup(cell string) string {
	return strings.Trim(StripMarkdown(cell), "` ")
}
