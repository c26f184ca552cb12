package source

import (
	"log"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"senate-lobbyist-source/config"
	"senate-lobbyist-source/internal/auth"
)

// newClient builds a resty client for the LDA API. retries is the number of
// extra attempts for transport errors, 429 and 5xx responses.
func newClient(cfg *config.SourceConfig, retries int, limiter *rate.Limiter) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeaders(auth.Header(cfg.APIKey, cfg.AuthHeader)).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	if cfg.HTTPProxy != "" {
		if _, err := url.Parse(cfg.HTTPProxy); err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Source will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			client.SetProxy(cfg.HTTPProxy)
		}
	}

	if retries > 0 {
		client.SetRetryCount(retries).
			SetRetryWaitTime(cfg.RetryWait).
			SetRetryMaxWaitTime(cfg.RetryWait * 16).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
			})
	}

	if limiter != nil {
		client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}

	return client
}
