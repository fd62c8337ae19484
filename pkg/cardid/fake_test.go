package cardid

import (
	"encoding/hex"
	"errors"
	"strings"
)

// fakeFactory hands out the same fakeContext on every EstablishContext call.
type fakeFactory struct {
	ctx         *fakeContext
	err         error
	established int
}

func (f *fakeFactory) EstablishContext() (SmartCardContext, error) {
	f.established++
	if f.err != nil {
		return nil, f.err
	}
	return f.ctx, nil
}

type fakeContext struct {
	readers    []string
	listErr    error
	cards      map[string]*fakeCard
	connectErr error
	connects   []string
	released   int
}

func newFakeContext(reader string, card *fakeCard) *fakeContext {
	return &fakeContext{
		readers: []string{reader},
		cards:   map[string]*fakeCard{reader: card},
	}
}

func (c *fakeContext) ListReaders() ([]string, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.readers, nil
}

func (c *fakeContext) Connect(reader string) (SmartCard, error) {
	c.connects = append(c.connects, reader)
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	card, ok := c.cards[reader]
	if !ok {
		return nil, ErrNoCardPresent
	}
	return card, nil
}

func (c *fakeContext) Release() error {
	c.released++
	return nil
}

// fakeCard answers from a table of upper-case hex command -> hex response.
// Commands listed in fail return a transport error.
type fakeCard struct {
	responses    map[string]string
	fail         map[string]bool
	sent         []string
	disconnected int
}

func newFakeCard(responses map[string]string) *fakeCard {
	return &fakeCard{responses: responses, fail: map[string]bool{}}
}

var errTransport = errors.New("SCARD_E_COMM_DATA_LOST")

func (c *fakeCard) Transmit(cmd []byte) ([]byte, error) {
	key := strings.ToUpper(hex.EncodeToString(cmd))
	c.sent = append(c.sent, key)
	if c.fail[key] {
		return nil, errTransport
	}
	resp, ok := c.responses[key]
	if !ok {
		return []byte{0x6D, 0x00}, nil
	}
	out, err := hex.DecodeString(strings.ReplaceAll(resp, " ", ""))
	if err != nil {
		panic(err)
	}
	return out, nil
}

func (c *fakeCard) Disconnect() error {
	c.disconnected++
	return nil
}

const (
	testReader = "ACS ACR122U PICC Interface"

	cmdGetUID      = "FFCA000000"
	cmdCepasSelect = "00A40000020000"
	cmdReadPurse   = "903203000000"
)

// cepasPurse is a 27-byte purse record: CAN at 8..15, CSN at 17..24.
const cepasPurse = "0101000000000000" + "1122334455667788" + "00" + "AABBCCDDEEFF0011" + "0000"
