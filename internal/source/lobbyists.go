package source

import (
	"fmt"
	"iter"
	"strconv"

	"senate-lobbyist-source/internal/parse"
)

// registrantFields maps nested registrant keys to the top-level keys they are
// copied to.
var registrantFields = []struct {
	from string
	to   string
}{
	{"id", "registrant_id"},
	{"name", "registrant_name"},
	{"description", "registrant_description"},
	{"contact_name", "registrant_contact_name"},
	{"contact_telephone", "registrant_telephone"},
	{"dt_updated", "registrant_updated_at"},
}

// Lobbyists is the /lobbyists resource.
type Lobbyists struct{}

// Name implements Stream.
func (Lobbyists) Name() string { return "lobbyists" }

// PrimaryKey implements Stream.
func (Lobbyists) PrimaryKey() string { return "id" }

// Path implements Stream.
func (Lobbyists) Path(*PageToken) string { return "lobbyists" }

// RequestParams sets "page" from the token's link, or to 1 without one.
func (Lobbyists) RequestParams(token *PageToken) (map[string]string, error) {
	page := 1
	if token != nil && token.NextURL != "" {
		n, err := parse.PageFromLink(token.NextURL)
		if err != nil {
			return nil, err
		}
		page = n
	}
	return map[string]string{"page": strconv.Itoa(page)}, nil
}

// NextPageToken returns nil when the page has no "next" link. The link is
// validated here so that a malformed one fails on the page that carried it.
func (Lobbyists) NextPageToken(page *Page) (*PageToken, error) {
	if page == nil || page.Next == nil {
		return nil, nil
	}
	if _, err := parse.PageFromLink(*page.Next); err != nil {
		return nil, err
	}
	return &PageToken{NextURL: *page.Next}, nil
}

// ParseResponse yields each result with its registrant fields copied to the
// top level. Records are modified in place.
func (Lobbyists) ParseResponse(page *Page) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if page == nil {
			return
		}
		for _, record := range page.Results {
			if err := flattenRegistrant(record); err != nil {
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

func flattenRegistrant(record Record) error {
	raw, ok := record["registrant"]
	if !ok {
		return fmt.Errorf("%w: id=%v", ErrMissingRegistrant, record["id"])
	}
	registrant, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: id=%v has registrant of type %T", ErrMissingRegistrant, record["id"], raw)
	}
	for _, f := range registrantFields {
		v, ok := registrant[f.from]
		if !ok {
			return fmt.Errorf("%w: %q on record id=%v", ErrMissingField, f.from, record["id"])
		}
		record[f.to] = v
	}
	return nil
}
