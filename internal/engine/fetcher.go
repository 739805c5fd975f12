package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-triangles/internal/config"
)

// VCardFetcher opens the address book behind a URL as a vCard stream.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// StatusError is returned when the address book server answers with
// anything other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", config.ErrFetchStatus, e.Status)
}

// Unauthorized reports whether the server refused the stored credentials.
func (e *StatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// HTTPFetcher downloads address books with a plain GET, which covers CardDAV
// export URLs and .vcf files on WebDAV shares.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher bounded by config.HTTPTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: config.HTTPTimeout}}
}

// Fetch opens the address book at addressBook. The caller closes the stream
// and applies the size limit (see SyncConfig.MaxBytes).
func (f *HTTPFetcher) Fetch(ctx context.Context, addressBook, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(addressBook)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	switch u.Scheme {
	case config.SchemeHTTP, config.SchemeHTTPS:
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrProtocol, u.Scheme)
	}

	// Query strings often carry access tokens.
	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addressBook, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.AcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	log.Debug(config.MsgFetchStart)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchRefused, config.LogKeyStatus, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if err := checkContentType(resp.Header.Get(config.HeaderContentType)); err != nil {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchRefused, config.LogKeyError, err)
		return nil, err
	}

	log.Info(config.MsgFetchOpen, config.LogKeySizeBytes, resp.ContentLength)
	return resp.Body, nil
}

// checkContentType accepts vCard media types and the generic types file
// servers use for .vcf files. An HTML body is usually a login page.
func checkContentType(header string) error {
	if header == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrContentType, err)
	}
	switch mediaType {
	case config.MimeVCard, config.MimeXVCard, config.MimeDirectory, config.MimeTextPlain, config.MimeOctetStream:
		return nil
	}
	return fmt.Errorf("%s: %q", config.ErrContentType, mediaType)
}
