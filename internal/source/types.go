package source

import "errors"

var (
	// ErrMissingRegistrant is returned when a record has no registrant object.
	ErrMissingRegistrant = errors.New("record has no registrant object")
	// ErrMissingField is returned when a registrant lacks a field that is
	// copied onto the record.
	ErrMissingField = errors.New("registrant field missing")
)

// Record is one entry of a response's "results" array.
type Record map[string]any

// Page models one paginated response of the LDA API.
type Page struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}

// PageToken carries the raw "next" link between requests. A nil token means
// the first page.
type PageToken struct {
	NextURL string
}
