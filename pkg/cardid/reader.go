package cardid

import (
	"context"

	"github.com/gregLibert/card-id/pkg/iso7816"
	"github.com/gregLibert/card-id/pkg/tlv"
	"go.uber.org/zap"
)

// Reader reads one identifier per call from the card presented at a reader.
type Reader struct {
	channel  *Channel
	profile  Profile
	exchange ExchangeOptions
	log      *zap.SugaredLogger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Reader) {
		r.log = l
	}
}

// WithStrictSelect makes a failed CEPAS SELECT abort the read instead of
// only being logged.
func WithStrictSelect(strict bool) Option {
	return func(r *Reader) {
		r.exchange.StrictIntermediate = strict
	}
}

// NewReader creates a Reader for profile over channel.
func NewReader(channel *Channel, profile Profile, opts ...Option) *Reader {
	r := &Reader{
		channel: channel,
		profile: profile,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadIdentifier opens a session, runs the profile's APDU sequence and decodes
// the result. The session is closed before returning, whatever the outcome.
func (r *Reader) ReadIdentifier(ctx context.Context) (Identifier, error) {
	session, err := r.channel.OpenSession(ctx)
	if err != nil {
		return Identifier{}, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.log.Warnf("Failed to release card session: %v", err)
		}
	}()

	log := r.log.With("reader", session.Reader, "profile", r.profile.String())
	log.Info("Connected to card")

	payload, results, err := Exchange(iso7816.NewClient(session), r.profile.Steps(), r.exchange)
	for _, res := range results {
		r.logStep(log, res)
	}
	if err != nil {
		return Identifier{}, err
	}

	id, err := r.profile.Decode(payload)
	if err != nil {
		return Identifier{}, err
	}

	switch r.profile {
	case Cepas:
		log.Infof("CAN: %s", id.Primary)
		log.Infof("CSN: %s", id.Secondary)
	default:
		log.Infof("UID: %s", id.Primary)
		log.Debugf("UID decimal: %s (reversed %s)", id.Decimal(), id.ReversedDecimal())
	}

	return id, nil
}

func (r *Reader) logStep(log *zap.SugaredLogger, res StepResult) {
	status := res.Trace.Status()
	log = log.With("step", res.Step.Name)

	if status != iso7816.SW_NO_ERROR {
		log.Warnf("Card answered %s", status.Verbose())
	} else {
		log.Debugf("Card answered %s with %d bytes", status.Verbose(), len(res.Trace.Data()))
	}

	for _, tx := range res.Trace {
		log.Debugf(">> %s", tx.Command)
		log.Debugf("<< %s", tx.Response)
	}

	if res.Step.Command.Instruction.Raw != iso7816.INS_SELECT || len(res.Trace.Data()) == 0 {
		return
	}
	if summary, err := tlv.Summarize(res.Trace.Data()); err == nil {
		log.Debugf("Select response:\n%s", summary)
	} else {
		log.Debugf("Select response (not BER-TLV): %X", res.Trace.Data())
	}
}
