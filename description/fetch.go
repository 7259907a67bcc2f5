package description

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/castbridge/upnpgo/internal/log"
)

// attemptTimeout is the per-attempt HTTP timeout.
const attemptTimeout = 30 * time.Second

// FetchErrorKind discriminates the FetchError taxonomy.
type FetchErrorKind int

const (
	FetchTimeout FetchErrorKind = iota
	FetchStatus
	FetchTransport
)

// FetchError is returned by Fetcher.Get. It always carries the URL that
// failed so a caller aggregating per-service errors (see Builder) can
// report exactly which fetch failed.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTimeout:
		return fmt.Sprintf("description: fetch %s: timed out after retry", e.URL)
	case FetchStatus:
		return fmt.Sprintf("description: fetch %s: unexpected status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("description: fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher is the HTTP description fetcher: GET with a 30s per-attempt
// timeout, one retry on timeout with a fresh connection, then parse the
// body into a generic Node tree.
type Fetcher struct {
	client *http.Client
	logger log.Logger
}

// NewFetcher creates a Fetcher. Each attempt gets its own http.Client so a
// retry genuinely opens a fresh connection rather than reusing a pooled one
// that may be wedged.
func NewFetcher() *Fetcher {
	return &Fetcher{logger: log.Default()}
}

func freshClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DisableKeepAlives = true
	return &http.Client{Timeout: attemptTimeout, Transport: tr}
}

// Get retrieves url and parses it into a Node tree, retrying exactly once
// on a timeout.
func (f *Fetcher) Get(ctx context.Context, url string) (*Node, error) {
	body, err := f.getWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	node, err := ParseXML(body)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, URL: url, Err: fmt.Errorf("parse XML: %w", err)}
	}
	return node, nil
}

func (f *Fetcher) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	body, err := f.attempt(ctx, url)
	if err == nil {
		return body, nil
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != FetchTimeout {
		return nil, err
	}
	f.logger.Debug(ctx, "description: retrying after timeout", "url", url)
	body, err2 := f.attempt(ctx, url)
	if err2 != nil {
		if errors.As(err2, &fe) && fe.Kind == FetchTimeout {
			return nil, &FetchError{Kind: FetchTimeout, URL: url}
		}
		return nil, err2
	}
	return body, nil
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, URL: url, Err: err}
	}
	resp, err := freshClient().Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &FetchError{Kind: FetchTimeout, URL: url, Err: err}
		}
		return nil, &FetchError{Kind: FetchTransport, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Kind: FetchStatus, URL: url, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
