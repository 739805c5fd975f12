package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/tartampluch/go-triangles/internal/config"
)

// ErrSourceTooLarge is returned when an address book exceeds SyncConfig.MaxBytes.
var ErrSourceTooLarge = errors.New(config.ErrSourceTooLarge)

// sourceReader caps a contact stream at max bytes and remembers the first
// read failure, so the decode loop can tell a broken stream from a broken card.
type sourceReader struct {
	io.Closer
	r    io.Reader
	left int64
	max  int64
	err  error
}

func newSourceReader(rc io.ReadCloser, max int64) *sourceReader {
	if max <= 0 {
		max = config.DefaultMaxSourceBytes
	}
	return &sourceReader{Closer: rc, r: rc, left: max, max: max}
}

func (s *sourceReader) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	if s.left <= 0 {
		var one [1]byte
		n, err := s.r.Read(one[:])
		if n > 0 {
			s.err = fmt.Errorf("%w (%d bytes)", ErrSourceTooLarge, s.max)
			return 0, s.err
		}
		return 0, s.record(err)
	}

	if int64(len(p)) > s.left {
		p = p[:s.left]
	}
	n, err := s.r.Read(p)
	s.left -= int64(n)
	return n, s.record(err)
}

func (s *sourceReader) record(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return err
}

// Err reports the first non-EOF read failure, if any.
func (s *sourceReader) Err() error {
	return s.err
}
