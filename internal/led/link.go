package led

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Port is a byte-stream medium such as a serial port.
type Port interface {
	io.Writer
	io.Closer
	ResetOutputBuffer() error
	Drain() error
}

// PortOpener opens the medium. It is called on every reconnect.
type PortOpener func() (Port, error)

// ErrBackoff is returned by Link.Write while a reopen is being held off.
var ErrBackoff = errors.New("link: waiting to reopen")

// LinkState is the connection state of a Link.
type LinkState int

const (
	LinkClosed LinkState = iota
	LinkOpen
)

func (s LinkState) String() string {
	if s == LinkOpen {
		return "open"
	}
	return "closed"
}

// Backoff bounds how often a failed link is reopened. The delay after the
// n-th consecutive failure is Initial*2^(n-1), capped at Max. A zero Initial
// disables it.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

func DefaultBackoff() Backoff {
	return Backoff{Initial: 100 * time.Millisecond, Max: 3 * time.Second}
}

func (b Backoff) delay(failures int) time.Duration {
	if b.Initial <= 0 || failures <= 0 {
		return 0
	}
	d := b.Initial
	for i := 1; i < failures; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// Link owns a Port and applies the reconnect policy: a closed link is opened
// on the next write; a write fault closes, reopens and retries once; a second
// fault leaves the link closed until the next frame.
type Link struct {
	name    string
	open    PortOpener
	port    Port
	state   LinkState
	backoff Backoff

	failures int
	retryAt  time.Time
	now      func() time.Time
	log      zerolog.Logger
}

type LinkOption func(*Link)

func WithBackoff(b Backoff) LinkOption { return func(l *Link) { l.backoff = b } }

func WithClock(now func() time.Time) LinkOption { return func(l *Link) { l.now = now } }

func WithLinkLogger(lg zerolog.Logger) LinkOption { return func(l *Link) { l.log = lg } }

func NewLink(name string, open PortOpener, opts ...LinkOption) *Link {
	l := &Link{
		name:    name,
		open:    open,
		backoff: DefaultBackoff(),
		now:     time.Now,
		log:     log.Logger,
	}
	for _, o := range opts {
		o(l)
	}
	l.log = l.log.With().Str("link", name).Logger()
	return l
}

func (l *Link) State() LinkState { return l.state }

// Failures is the number of consecutive failed frames.
func (l *Link) Failures() int { return l.failures }

// Write sends buf as one blocking transfer.
func (l *Link) Write(buf []byte) error {
	if l.state == LinkClosed {
		if l.failures > 0 && l.now().Before(l.retryAt) {
			return ErrBackoff
		}
		if err := l.connect(); err != nil {
			return l.fail(fmt.Errorf("open %s: %w", l.name, err))
		}
	}

	err := l.send(buf)
	if err == nil {
		l.recovered()
		return nil
	}

	l.log.Warn().Err(err).Msg("write failed; reopening")
	l.disconnect()
	if err := l.connect(); err != nil {
		return l.fail(fmt.Errorf("reopen %s: %w", l.name, err))
	}
	if err := l.send(buf); err != nil {
		l.disconnect()
		return l.fail(fmt.Errorf("write %s: %w", l.name, err))
	}
	l.recovered()
	return nil
}

// Close releases the port. A later Write reopens it.
func (l *Link) Close() error {
	if l.state == LinkClosed {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	l.state = LinkClosed
	return err
}

func (l *Link) connect() error {
	p, err := l.open()
	if err != nil {
		return err
	}
	l.port = p
	l.state = LinkOpen
	l.log.Debug().Msg("opened")
	return nil
}

func (l *Link) disconnect() {
	if l.port != nil {
		_ = l.port.Close()
	}
	l.port = nil
	l.state = LinkClosed
}

func (l *Link) send(buf []byte) error {
	if err := l.port.ResetOutputBuffer(); err != nil {
		return err
	}
	n, err := l.port.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return l.port.Drain()
}

func (l *Link) fail(err error) error {
	l.failures++
	d := l.backoff.delay(l.failures)
	l.retryAt = l.now().Add(d)
	if l.failures == 1 {
		l.log.Error().Err(err).Msg("link down")
	} else {
		l.log.Debug().Err(err).Int("failures", l.failures).Dur("retry_in", d).Msg("link still down")
	}
	return err
}

func (l *Link) recovered() {
	if l.failures > 0 {
		l.log.Info().Int("failures", l.failures).Msg("link recovered")
	}
	l.failures = 0
	l.retryAt = time.Time{}
}
