package source

import "iter"

// Stream is one API resource exposed as a sequence of records.
type Stream interface {
	// Name identifies the stream in emitted messages.
	Name() string
	// PrimaryKey is the record field that uniquely identifies a record.
	PrimaryKey() string
	// Path is the resource path relative to the base URL.
	Path(token *PageToken) string
	// RequestParams builds the query parameters for the page named by token.
	RequestParams(token *PageToken) (map[string]string, error)
	// NextPageToken returns nil once the last page has been read.
	NextPageToken(page *Page) (*PageToken, error)
	// ParseResponse yields the records of one page in order.
	ParseResponse(page *Page) iter.Seq2[Record, error]
}
