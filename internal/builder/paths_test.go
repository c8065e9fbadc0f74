package builder

import (
	"testing"

	"unigov/internal/models"

	"github.com/stretchr/testify/require"
)

func TestListingPath(t *testing.T) {
	path := ListingPath("plenary", "80", models.CategoryMeetings)
	require.Equal(t, "ga/plenary/80/meetings/index.html", path)
}

func TestDetailPath(t *testing.T) {
	path := DetailPath("c1", "80", models.CategoryMeetings, "m-1")
	require.Equal(t, "ga/c1/80/meetings/m-1/index.html", path)
}

func TestHrefs(t *testing.T) {
	base := "https://example.org/unigov"

	require.Equal(t, "https://example.org/unigov/", IndexHref(base))
	require.Equal(t, "https://example.org/unigov/", IndexHref(base+"/"))

	require.Equal(t,
		"https://example.org/unigov/ga/plenary/80/decisions/",
		ListingHref(base, "plenary", "80", models.CategoryDecisions))

	require.Equal(t,
		"https://example.org/unigov/ga/plenary/80/meetings/m-1/",
		DetailHref(base, "plenary", "80", models.CategoryMeetings, "m-1"))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"m-1", "m-1"},
		{"A/80/L.1", "a-80-l.1"},
		{"A/C.1/80/L.12/Rev.1", "a-c.1-80-l.12-rev.1"},
		{"Already_safe-1.0", "already_safe-1.0"},
		{"spaces and (parens)", "spaces-and--parens-"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Slug(tt.in))
	}
}
