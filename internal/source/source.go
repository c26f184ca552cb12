package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"senate-lobbyist-source/config"
)

// StatusError reports a non-2xx response from the upstream API.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

func newStatusError(res *resty.Response) *StatusError {
	return &StatusError{
		URL:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
	}
}

// ReadStats summarises one Read call.
type ReadStats struct {
	Pages   int
	Records int
}

// Source reads the LDA API streams.
type Source struct {
	client      *resty.Client
	checkClient *resty.Client
	streams     []Stream
}

// New creates a source from the upstream configuration. It fails before any
// request is made if no API key is configured.
func New(cfg *config.SourceConfig) (*Source, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Source{
		client:      newClient(cfg, cfg.MaxRetries, limiter),
		checkClient: newClient(cfg, 0, limiter),
		streams:     []Stream{Lobbyists{}},
	}, nil
}

// Streams returns every stream this source exposes.
func (s *Source) Streams() []Stream {
	return s.streams
}

// Stream looks a stream up by name.
func (s *Source) Stream(name string) (Stream, bool) {
	for _, st := range s.streams {
		if st.Name() == name {
			return st, true
		}
	}
	return nil, false
}

// CheckConnection issues one authenticated GET against the base URL. Any
// transport or status error is returned with ok=false; it is never retried.
func (s *Source) CheckConnection(ctx context.Context) (bool, error) {
	res, err := s.checkClient.R().SetContext(ctx).Get("/")
	if err != nil {
		return false, fmt.Errorf("connection check failed: %w", err)
	}
	if !res.IsSuccess() {
		return false, newStatusError(res)
	}
	return true, nil
}

// Read walks every page of stream and passes each record to emit. Pages are
// requested one at a time; a page's records are emitted before its next link
// is resolved, so a malformed link fails the read after that page. An error
// from emit stops the read.
func (s *Source) Read(ctx context.Context, stream Stream, emit func(Record) error) (ReadStats, error) {
	var stats ReadStats
	var token *PageToken
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		params, err := stream.RequestParams(token)
		if err != nil {
			return stats, fmt.Errorf("%s: failed to build request params: %w", stream.Name(), err)
		}

		page, err := s.fetchPage(ctx, stream.Path(token), params)
		if err != nil {
			return stats, fmt.Errorf("%s: failed to fetch page %s: %w", stream.Name(), params["page"], err)
		}
		stats.Pages++

		for record, err := range stream.ParseResponse(page) {
			if err != nil {
				return stats, fmt.Errorf("%s: failed to parse page %s: %w", stream.Name(), params["page"], err)
			}
			if err := emit(record); err != nil {
				return stats, err
			}
			stats.Records++
		}
		log.Printf("%s: read page %s, %d records so far", stream.Name(), params["page"], stats.Records)

		next, err := stream.NextPageToken(page)
		if err != nil {
			return stats, fmt.Errorf("%s: failed to read next page token: %w", stream.Name(), err)
		}
		if next == nil {
			return stats, nil
		}
		token = next
	}
}

func (s *Source) fetchPage(ctx context.Context, path string, params map[string]string) (*Page, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	if !res.IsSuccess() {
		return nil, newStatusError(res)
	}

	var page Page
	if err := json.Unmarshal(res.Body(), &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api response: %w", err)
	}
	return &page, nil
}
