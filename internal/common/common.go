package common

import (
	"fmt"
	"net/http"
	"time"
)

// CodeError is a client-facing error carrying the HTTP status it should
// surface with. Anything else that escapes the estimation path is
// reported as an opaque server error.
type CodeError struct {
	Code int
	Msg  string
}

func (c CodeError) Error() string {
	return c.Msg
}

// Shared client for upstream provider calls. The timeout bounds every
// request so a slow upstream degrades to fallback instead of stalling
// the estimation path.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// DoWithRetry executes the request against the shared client, retrying
// transport errors and non-2xx responses up to three attempts.
func DoWithRetry(req *http.Request, name string) (*http.Response, error) {
	var resp *http.Response
	var err error

	validResp, retries := false, 3
	for !validResp {
		resp, err = httpClient.Do(req)
		if err != nil {
			if retries > 1 {
				retries--
				continue
			}
			return nil, fmt.Errorf("error on %v api request: %w", name, err)
		} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			if retries > 1 {
				retries--
				continue
			}
			return nil, fmt.Errorf("error code %d returned from %v", resp.StatusCode, name)
		} else {
			validResp = true
		}
	}
	return resp, nil
}

// Do executes the request once against the shared client. Used for
// requests with bodies, which cannot be blindly re-sent.
func Do(req *http.Request, name string) (*http.Response, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error on %v api request: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("error code %d returned from %v", resp.StatusCode, name)
	}
	return resp, nil
}
