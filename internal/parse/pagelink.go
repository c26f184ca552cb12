package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedLink is returned when a pagination link does not carry a page
// number after its first '='.
var ErrMalformedLink = errors.New("malformed page link")

// PageFromLink extracts the page number from an upstream "next" link such as
// "https://lda.senate.gov/api/v1/lobbyists/?page=3".
//
// The link is split on '=' and the second segment must be an integer, so a
// link with other query parameters before or after "page" is rejected.
func PageFromLink(link string) (int, error) {
	parts := strings.Split(link, "=")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: no '=' in %q", ErrMalformedLink, link)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedLink, link, err)
	}
	return page, nil
}
