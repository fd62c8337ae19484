package cardid

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrSessionClosed is returned by Transmit after Close.
var ErrSessionClosed = errors.New("card session closed")

// RetryPolicy bounds how often OpenSession tries to reach a card.
// It never applies to transmits: re-running a sequence midway could repeat a
// non-idempotent SELECT.
type RetryPolicy struct {
	Attempts int           // total tries, values below 1 mean 1
	Delay    time.Duration // pause between tries
}

// Channel owns the connection to the physical reader.
type Channel struct {
	factory    ContextFactory
	readerName string
	retry      RetryPolicy
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithReaderName restricts reader selection to the first reader whose name
// contains name. By default the first reader listed is used.
func WithReaderName(name string) ChannelOption {
	return func(c *Channel) {
		c.readerName = name
	}
}

// WithRetry sets the retry policy of OpenSession.
func WithRetry(p RetryPolicy) ChannelOption {
	return func(c *Channel) {
		c.retry = p
	}
}

// NewChannel creates a Channel over the given PC/SC binding.
func NewChannel(factory ContextFactory, opts ...ChannelOption) *Channel {
	c := &Channel{factory: factory}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenSession connects to the card in the selected reader, retrying
// transient failures according to the channel's RetryPolicy. ctx only
// interrupts the wait between attempts; PC/SC calls themselves block.
func (c *Channel) OpenSession(ctx context.Context) (*Session, error) {
	attempts := c.retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(c.retry.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, lastErr
			case <-timer.C:
			}
		}

		s, err := c.open()
		if err == nil {
			return s, nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
	}

	return nil, lastErr
}

// retryable reports whether a later attempt could succeed without user
// action beyond plugging in a reader or presenting a card.
func retryable(err error) bool {
	return errors.Is(err, ErrReaderEnumeration) ||
		errors.Is(err, ErrNoReader) ||
		errors.Is(err, ErrCardAbsent) ||
		errors.Is(err, ErrReaderBusy)
}

func (c *Channel) open() (*Session, error) {
	sc, err := c.factory.EstablishContext()
	if err != nil {
		return nil, &Error{Kind: KindContext, Err: err}
	}

	session, err := c.connect(sc)
	if err != nil {
		// Nothing else owns the context yet.
		_ = sc.Release()
		return nil, err
	}
	return session, nil
}

func (c *Channel) connect(sc SmartCardContext) (*Session, error) {
	readers, err := sc.ListReaders()
	if err != nil {
		return nil, &Error{Kind: KindReaderEnumeration, Err: err}
	}

	reader, ok := c.pickReader(readers)
	if !ok {
		return nil, &Error{Kind: KindNoReader, Reader: c.readerName}
	}

	card, err := sc.Connect(reader)
	if err != nil {
		kind := KindConnect
		if errors.Is(err, ErrNoCardPresent) {
			kind = KindCardAbsent
		}
		return nil, &Error{Kind: kind, Reader: reader, Err: err}
	}

	return &Session{Reader: reader, sc: sc, card: card}, nil
}

func (c *Channel) pickReader(readers []string) (string, bool) {
	for _, r := range readers {
		if c.readerName == "" || strings.Contains(r, c.readerName) {
			return r, true
		}
	}
	return "", false
}

// Session is an open connection to the card in one reader.
// It must be closed exactly once; Close is safe to call again.
type Session struct {
	Reader string

	sc     SmartCardContext
	card   SmartCard
	closed bool
}

// Transmit sends raw command bytes and returns the raw response, status word included.
func (s *Session) Transmit(cmd []byte) ([]byte, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.card.Transmit(cmd)
}

// Close disconnects the card, leaving it powered, and releases the PC/SC context.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	return errors.Join(s.card.Disconnect(), s.sc.Release())
}
