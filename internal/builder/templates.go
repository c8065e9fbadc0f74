package builder

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pageNames lists the page templates layered on top of layout.html.
var pageNames = []string{
	"index",
	"meetings",
	"meeting",
	"agenda",
	"documents",
	"decisions",
	"proposals",
}

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"datefmt": dateFormat,
	}

	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout template: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))

	for _, name := range pageNames {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}

		page, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}

		pages[name] = page
	}

	return pages, nil
}

// dateFormat renders upstream date strings as "January 2, 2006". Unparseable
// values pass through unchanged.
func dateFormat(value string) string {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("January 2, 2006")
		}
	}

	return value
}
