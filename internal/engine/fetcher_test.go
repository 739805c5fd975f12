package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-triangles/internal/config"
	"github.com/tartampluch/go-triangles/internal/engine"
)

const addressBook = "BEGIN:VCARD\nVERSION:3.0\nFN:Ada Lovelace\nBDAY:1815-12-10\nEND:VCARD\n"

// newAddressBookServer serves addressBook and forwards each request it sees.
func newAddressBookServer(t *testing.T, status int) (*httptest.Server, <-chan *http.Request) {
	t.Helper()
	seen := make(chan *http.Request, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.Clone(context.Background()):
		default:
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = io.WriteString(w, addressBook)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, seen
}

func TestHTTPFetcher_Fetch_Credentials(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		pass     string
		wantAuth bool
	}{
		{"WithBasicAuth", "ada", "analytical", true},
		{"Anonymous", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, requests := newAddressBookServer(t, http.StatusOK)

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, tt.user, tt.pass)
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()

			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, addressBook, string(body))

			seen := <-requests
			assert.Equal(t, config.UserAgent, seen.Header.Get(config.HeaderUserAgent))

			user, pass, ok := seen.BasicAuth()
			assert.Equal(t, tt.wantAuth, ok)
			assert.Equal(t, tt.user, user)
			assert.Equal(t, tt.pass, pass)
		})
	}
}

func TestHTTPFetcher_Fetch_BadStatus(t *testing.T) {
	tests := []struct {
		status       int
		unauthorized bool
	}{
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
		{http.StatusNotFound, false},
		{http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts, _ := newAddressBookServer(t, tt.status)

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
			require.Error(t, err)
			assert.Nil(t, rc)

			var statusErr *engine.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.Code)
			assert.Equal(t, tt.unauthorized, statusErr.Unauthorized())
			assert.Contains(t, err.Error(), config.ErrFetchStatus)
		})
	}
}

func TestHTTPFetcher_Fetch_ContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{"text/vcard; charset=utf-8", false},
		{"text/x-vcard", false},
		{"text/directory;profile=vCard", false},
		{"text/plain", false},
		{"application/octet-stream", false},
		{"text/html; charset=utf-8", true},
		{"application/json", true},
		{"not a media type;;", true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get(config.HeaderAccept), config.MimeVCard)
				w.Header().Set(config.HeaderContentType, tt.contentType)
				_, _ = io.WriteString(w, addressBook)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), config.ErrContentType)
				assert.Nil(t, rc)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, rc.Close())
		})
	}
}

func TestHTTPFetcher_Fetch_RejectsURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"ControlCharacter", string([]byte{0x7f}), config.ErrInvalidURL},
		{"FTP", "ftp://example.com/contacts.vcf", config.ErrProtocol},
		{"File", "file:///etc/passwd", config.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.NewHTTPFetcher().Fetch(context.Background(), tt.url, "", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPFetcher_Fetch_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
