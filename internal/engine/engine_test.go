package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-triangles/internal/chart"
	"github.com/tartampluch/go-triangles/internal/config"
	"github.com/tartampluch/go-triangles/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func writeVCard(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_Local_Success(t *testing.T) {
	path := writeVCard(t, `BEGIN:VCARD
VERSION:4.0
FN:John Doe
BDAY:2000-01-01
END:VCARD`)

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
	}

	icsData, entries, count, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count, "Should identify one birthday today")

	require.Len(t, entries, 1)
	assert.Equal(t, "John Doe", entries[0].Name)
	assert.Equal(t, 25, entries[0].AgeNext)

	// Chart is fed with a zero-based month: January -> 0.
	expected, err := chart.ForDate(1, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, expected, entries[0].Chart)
	assert.Equal(t, "9; 7; 16", entries[0].Chart.Mission)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:Chart: John Doe (25)")
	assert.Contains(t, icsStr, "DESCRIPTION:01/01/2000: 1 0 2 3 6 | mission 9")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"), "Previous, current and next year")
}

func TestRunSync_Web_UsesFetcherAndCredentials(t *testing.T) {
	vcardContent := `BEGIN:VCARD
VERSION:3.0
FN:Leap Baby
BDAY:2000-02-29
END:VCARD`

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com/book.vcf", "alice", "secret").
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	// 2025 is not a leap year: Feb 29 -> March 1.
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	_, entries, count, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "http://example.com/book.vcf",
		WebUser: "alice",
		WebPass: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, entries, 1)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), entries[0].NextOccurrence)
	assert.Equal(t, 1, entries[0].Chart.Date.Month, "February is month 1")

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_SkipsUnchartableCards(t *testing.T) {
	path := writeVCard(t, `BEGIN:VCARD
VERSION:3.0
FN:No Year
BDAY:--05-12
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Garbage Date
BDAY:not-a-date
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Birthday
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Smith;Jane;;;
BDAY:19900715
END:VCARD`)

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	_, entries, count, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name, "Smith", "Falls back to the structured name")
	assert.Equal(t, "12; 5; 17", entries[0].Chart.Mission)
}

func TestRunSync_EmptySourceReturnsStub(t *testing.T) {
	path := writeVCard(t, "")

	gen := &engine.Generator{Clock: engine.RealClock{}}
	icsData, entries, count, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, count)
	assert.Equal(t, config.StubVCalendar, string(icsData))
}

func TestRunSync_NotBornYet(t *testing.T) {
	path := writeVCard(t, `BEGIN:VCARD
VERSION:3.0
FN:Newborn
BDAY:2025-04-10
END:VCARD`)

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	icsData, _, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	require.NoError(t, err)
	icsStr := string(icsData)
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"), "No event for 2024")
	assert.Contains(t, icsStr, "SUMMARY:Chart: Newborn (birth)")
}

func TestRunSync_Formatters(t *testing.T) {
	path := writeVCard(t, `BEGIN:VCARD
VERSION:3.0
FN:Ada
BDAY:1990-07-15
END:VCARD`)

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		FormatSummary: func(name string, age int) string {
			return fmt.Sprintf("Leaf of %s at %d", name, age)
		},
		FormatDescription: func(c chart.Chart) string {
			return "Mission " + strings.ReplaceAll(c.Mission, "; ", "-")
		},
	}

	icsData, _, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:            config.SourceModeLocal,
		LocalPath:       path,
		ReminderTrigger: "-P1D",
	})

	require.NoError(t, err)
	icsStr := string(icsData)
	assert.Contains(t, icsStr, "SUMMARY:Leaf of Ada at 35")
	assert.Contains(t, icsStr, "DESCRIPTION:Mission 12-5-17")
	assert.Contains(t, icsStr, "BEGIN:VALARM")
	assert.Contains(t, icsStr, "TRIGGER:-P1D")
}

func TestRunSync_ConfigErrors(t *testing.T) {
	gen := &engine.Generator{Clock: engine.RealClock{}}

	tests := []struct {
		name    string
		cfg     engine.SyncConfig
		wantErr string
	}{
		{"Local without path", engine.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"Web without URL", engine.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"Web without fetcher", engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"}, config.ErrFetcherMissing},
		{"Unknown mode", engine.SyncConfig{Mode: "ftp"}, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_FetchError(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "", "").
		Return(nil, errors.New("connection refused"))

	gen := &engine.Generator{Clock: engine.RealClock{}, Fetcher: mockFetcher}
	_, _, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://example.com",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	mockFetcher.AssertExpectations(t)
}

func TestRunSync_RejectedCredentials(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "https://dav.example.com/ada.vcf", "ada", "wrong").
		Return(nil, &engine.StatusError{Code: 401, Status: "401 Unauthorized"})

	gen := &engine.Generator{Clock: engine.RealClock{}, Fetcher: mockFetcher}
	_, _, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "https://dav.example.com/ada.vcf",
		WebUser: "ada",
		WebPass: "wrong",
	})

	var statusErr *engine.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, statusErr.Unauthorized())
	assert.Contains(t, err.Error(), config.ErrVCardParse)
	mockFetcher.AssertExpectations(t)
}

func TestRunSync_SourceTooLarge(t *testing.T) {
	card := "BEGIN:VCARD\nVERSION:3.0\nFN:A\nBDAY:2000-01-01\nEND:VCARD\n"
	path := writeVCard(t, strings.Repeat(card, 50))

	gen := &engine.Generator{Clock: engine.RealClock{}}
	_, entries, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
		MaxBytes:  int64(len(card) * 3),
	})

	require.ErrorIs(t, err, engine.ErrSourceTooLarge)
	assert.Nil(t, entries)
}

// brokenStream hands out one card, then fails every read.
type brokenStream struct {
	data string
}

func (b *brokenStream) Read(p []byte) (int, error) {
	if b.data == "" {
		return 0, errors.New("connection reset by peer")
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func (b *brokenStream) Close() error { return nil }

func TestRunSync_StreamFailureStopsDecoding(t *testing.T) {
	stream := &brokenStream{data: "BEGIN:VCARD\nVERSION:3.0\nFN:A\nBDAY:2000-01-01\nEND:VCARD\nBEGIN:VCARD\nFN:B"}
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "", "").Return(stream, nil)

	done := make(chan error, 1)
	go func() {
		gen := &engine.Generator{Clock: engine.RealClock{}, Fetcher: mockFetcher}
		_, _, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
			Mode:   config.SourceModeWeb,
			WebURL: "http://example.com",
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset by peer")
	case <-time.After(5 * time.Second):
		t.Fatal("RunSync kept decoding a failed stream")
	}
}

func TestRunSync_CancelledContext(t *testing.T) {
	path := writeVCard(t, "BEGIN:VCARD\nVERSION:3.0\nFN:A\nBDAY:2000-01-01\nEND:VCARD\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &engine.Generator{Clock: engine.RealClock{}}
	_, _, _, err := gen.RunSync(ctx, engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	assert.ErrorIs(t, err, context.Canceled)
}
