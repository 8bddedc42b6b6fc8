package tableau

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strconv"
	"strings"
)

type ListingKind int

const (
	ListingUnparseable ListingKind = iota
	ListingStructured
	ListingMarkup
)

func (k ListingKind) String() string {
	switch k {
	case ListingStructured:
		return "structured"
	case ListingMarkup:
		return "markup"
	default:
		return "unparseable"
	}
}

// Listing is the outcome of reading a raw project listing. Projects is
// non-empty unless Kind is ListingUnparseable.
type Listing struct {
	Kind     ListingKind
	Projects []Project
}

// ParseProjectListing reads a raw project listing body. The body is first
// read as a json object, and only when it is not json at all, as an xml
// document.
func ParseProjectListing(body []byte) Listing {
	var data any
	err := json.Unmarshal(body, &data)
	if err == nil {
		projects := structuredProjects(data)
		if len(projects) == 0 {
			return Listing{Kind: ListingUnparseable}
		}
		return Listing{Kind: ListingStructured, Projects: projects}
	}

	projects, err := markupProjects(body)
	if err != nil || len(projects) == 0 {
		return Listing{Kind: ListingUnparseable}
	}
	return Listing{Kind: ListingMarkup, Projects: projects}
}

// Err returns a *ListingParseError carrying the start of `body` when the
// listing is unparseable.
func (l Listing) Err(body []byte) error {
	if l.Kind != ListingUnparseable {
		return nil
	}
	return &ListingParseError{Snippet: snippet(string(body), SnippetLength)}
}

// structuredProjects looks for the records under, in order, projects.project,
// a projects array or a top level project field.
func structuredProjects(data any) []Project {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	var records any
	projects, hasProjects := obj["projects"]
	nested, isObject := projects.(map[string]any)
	_, hasNested := nested["project"]
	_, isArray := projects.([]any)
	switch {
	case hasProjects && isObject && hasNested:
		records = nested["project"]
	case hasProjects && isArray:
		records = projects
	default:
		records = obj["project"]
	}

	switch records := records.(type) {
	case []any:
		var out []Project
		for _, r := range records {
			record, ok := r.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, projectFromObject(record))
		}
		return out
	case map[string]any:
		return []Project{projectFromObject(records)}
	}
	return nil
}

func projectFromObject(obj map[string]any) Project {
	return Project{
		ID:              scalarString(obj["id"]),
		Name:            scalarString(obj["name"]),
		Description:     scalarString(obj["description"]),
		ParentProjectID: scalarString(obj["parentProjectId"]),
	}
}

func scalarString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

type markupNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Text     string       `xml:",chardata"`
	Children []markupNode `xml:",any"`
}

func (n markupNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func hasTagSuffix(name xml.Name, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(name.Local), suffix)
}

// markupProjects walks every element of an xml document in document order
// and turns each element whose tag ends with "project" into a record. A
// child element whose tag ends with "name" overrides the name attribute.
func markupProjects(body []byte) ([]Project, error) {
	var root markupNode
	decoder := xml.NewDecoder(bytes.NewReader(body))
	err := decoder.Decode(&root)
	if err != nil {
		return nil, err
	}

	var out []Project
	var walk func(n markupNode)
	walk = func(n markupNode) {
		if hasTagSuffix(n.XMLName, "project") {
			var p Project
			p.ID, _ = n.attr("id")
			p.Name, _ = n.attr("name")
			for _, child := range n.Children {
				// whitespace-only text still counts, it is taken verbatim
				if hasTagSuffix(child.XMLName, "name") && child.Text != "" {
					p.Name = child.Text
				}
			}
			out = append(out, p)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	return out, nil
}
