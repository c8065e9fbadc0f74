package builder

import (
	"path"
	"strings"

	"unigov/internal/models"
)

// Output path conventions. Cross-page links are derived from these pure
// functions only; nothing is looked up from stored relationships.

// IndexPath is the site index location under the output root.
const IndexPath = "index.html"

// ListingPath returns the listing page path for one (body, session,
// category) unit, relative to the output root.
func ListingPath(body, session string, category models.Category) string {
	return path.Join("ga", body, session, string(category), "index.html")
}

// DetailPath returns the detail page path for one record, relative to the
// output root.
func DetailPath(body, session string, category models.Category, id string) string {
	return path.Join("ga", body, session, string(category), Slug(id), "index.html")
}

// ListingHref returns the directory-style URL for a listing page.
func ListingHref(baseURL, body, session string, category models.Category) string {
	return hrefFor(baseURL, ListingPath(body, session, category))
}

// DetailHref returns the directory-style URL for a detail page.
func DetailHref(baseURL, body, session string, category models.Category, id string) string {
	return hrefFor(baseURL, DetailPath(body, session, category, id))
}

// IndexHref returns the URL of the site index.
func IndexHref(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/"
}

func hrefFor(baseURL, pagePath string) string {
	dir := strings.TrimSuffix(pagePath, "index.html")

	return strings.TrimSuffix(baseURL, "/") + "/" + dir
}

// Slug makes a record id safe for use as a path segment. Document symbols
// like "A/80/L.1" contain slashes.
func Slug(id string) string {
	var sb strings.Builder

	for _, r := range strings.ToLower(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}

	return sb.String()
}
