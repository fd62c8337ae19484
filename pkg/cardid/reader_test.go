package cardid

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedReader(f *fakeFactory, p Profile, opts ...Option) (*Reader, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(core).Sugar())}, opts...)
	return NewReader(NewChannel(f), p, opts...), logs
}

func TestReader_Generic(t *testing.T) {
	card := newFakeCard(map[string]string{cmdGetUID: "DEADBEEF9000"})
	sc := newFakeContext(testReader, card)

	r, logs := newObservedReader(&fakeFactory{ctx: sc}, Generic)
	id, err := r.ReadIdentifier(context.Background())
	if err != nil {
		t.Fatalf("ReadIdentifier: %v", err)
	}
	if id.Primary != "DE:AD:BE:EF" {
		t.Errorf("UID = %q; want DE:AD:BE:EF", id.Primary)
	}
	if card.disconnected != 1 || sc.released != 1 {
		t.Errorf("disconnected=%d released=%d; want 1 and 1", card.disconnected, sc.released)
	}
	if logs.FilterMessage("UID: DE:AD:BE:EF").Len() != 1 {
		t.Errorf("UID was not logged: %v", logs.All())
	}
}

func TestReader_Cepas(t *testing.T) {
	card := newFakeCard(map[string]string{
		cmdCepasSelect: "6F0A8408A0000003410001019000",
		cmdReadPurse:   cepasPurse + "9000",
	})
	sc := newFakeContext(testReader, card)

	r, logs := newObservedReader(&fakeFactory{ctx: sc}, Cepas)
	id, err := r.ReadIdentifier(context.Background())
	if err != nil {
		t.Fatalf("ReadIdentifier: %v", err)
	}
	if id.Primary != "1122334455667788" || id.Secondary != "AA:BB:CC:DD:EE:FF:00:11" {
		t.Errorf("got CAN %q CSN %q", id.Primary, id.Secondary)
	}
	if logs.FilterMessage("CAN: 1122334455667788").Len() != 1 {
		t.Error("CAN was not logged")
	}
	if logs.FilterMessage("CSN: AA:BB:CC:DD:EE:FF:00:11").Len() != 1 {
		t.Error("CSN was not logged")
	}
	if logs.FilterMessageSnippet("Select response:").Len() != 1 {
		t.Error("SELECT response was not summarized")
	}
}

func TestReader_ReleasesOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		setup   func(*fakeCard)
		want    error
	}{
		{
			name:    "transmit failure",
			profile: Generic,
			setup:   func(c *fakeCard) { c.fail[cmdGetUID] = true },
			want:    ErrTransmit,
		},
		{
			name:    "status word failure",
			profile: Generic,
			setup:   func(c *fakeCard) { c.responses[cmdGetUID] = "6300" },
			want:    ErrStatusWord,
		},
		{
			name:    "short purse record",
			profile: Cepas,
			setup: func(c *fakeCard) {
				c.responses[cmdCepasSelect] = "9000"
				c.responses[cmdReadPurse] = "0102030405060708090A9000"
			},
			want: ErrResponseTooShort,
		},
		{
			name:    "malformed response",
			profile: Generic,
			setup:   func(c *fakeCard) { c.responses[cmdGetUID] = "90" },
			want:    ErrTransmit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := newFakeCard(map[string]string{})
			tt.setup(card)
			sc := newFakeContext(testReader, card)

			r, _ := newObservedReader(&fakeFactory{ctx: sc}, tt.profile)
			id, err := r.ReadIdentifier(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
			if id.Primary != "" || id.Secondary != "" {
				t.Errorf("identifier %+v returned alongside an error", id)
			}
			if card.disconnected != 1 || sc.released != 1 {
				t.Errorf("disconnected=%d released=%d; want 1 and 1", card.disconnected, sc.released)
			}
		})
	}
}

func TestReader_NoReaders(t *testing.T) {
	sc := &fakeContext{}

	r, _ := newObservedReader(&fakeFactory{ctx: sc}, Generic)
	_, err := r.ReadIdentifier(context.Background())
	if !errors.Is(err, ErrNoReader) {
		t.Fatalf("err = %v; want ErrNoReader", err)
	}
	if len(sc.connects) != 0 {
		t.Errorf("connect attempted: %v", sc.connects)
	}
	if sc.released != 1 {
		t.Errorf("released = %d; want 1", sc.released)
	}
}

func TestReader_StrictSelect(t *testing.T) {
	card := newFakeCard(map[string]string{
		cmdCepasSelect: "6A82",
		cmdReadPurse:   cepasPurse + "9000",
	})
	sc := newFakeContext(testReader, card)

	r, logs := newObservedReader(&fakeFactory{ctx: sc}, Cepas)
	if _, err := r.ReadIdentifier(context.Background()); err != nil {
		t.Fatalf("lenient read: %v", err)
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() == 0 {
		t.Error("failed SELECT should be logged as a warning")
	}

	card.sent = nil
	strict, _ := newObservedReader(&fakeFactory{ctx: sc}, Cepas, WithStrictSelect(true))
	if _, err := strict.ReadIdentifier(context.Background()); !errors.Is(err, ErrStatusWord) {
		t.Fatalf("strict read err = %v; want ErrStatusWord", err)
	}
	if len(card.sent) != 1 {
		t.Errorf("sent = %v; READ PURSE should be skipped", card.sent)
	}
}

func TestReader_DefaultLogger(t *testing.T) {
	card := newFakeCard(map[string]string{cmdGetUID: "01029000"})
	r := NewReader(NewChannel(&fakeFactory{ctx: newFakeContext(testReader, card)}), Generic)

	if _, err := r.ReadIdentifier(context.Background()); err != nil {
		t.Fatalf("ReadIdentifier: %v", err)
	}
}
