package cardid

import (
	"errors"
	"fmt"

	"github.com/ebfe/scard"
)

// PCSC is the production ContextFactory backed by the system PC/SC service
// (pcsclite on Linux and macOS, WinSCard on Windows).
type PCSC struct{}

// EstablishContext opens a new PC/SC resource manager context.
func (PCSC) EstablishContext() (SmartCardContext, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, err
	}
	return &pcscContext{ctx: ctx}, nil
}

type pcscContext struct {
	ctx *scard.Context
}

func (c *pcscContext) ListReaders() ([]string, error) {
	readers, err := c.ctx.ListReaders()
	if errors.Is(err, scard.ErrNoReadersAvailable) {
		return nil, nil
	}
	return readers, err
}

// Connect opens the card in shared mode, letting the reader negotiate T=0 or T=1.
func (c *pcscContext) Connect(reader string) (SmartCard, error) {
	card, err := c.ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	switch {
	case err == nil:
		return &pcscCard{card: card}, nil
	case errors.Is(err, scard.ErrNoSmartcard), errors.Is(err, scard.ErrRemovedCard):
		return nil, fmt.Errorf("%w: %v", ErrNoCardPresent, err)
	case errors.Is(err, scard.ErrSharingViolation):
		return nil, fmt.Errorf("%w: %v", ErrReaderBusy, err)
	default:
		return nil, err
	}
}

func (c *pcscContext) Release() error {
	return c.ctx.Release()
}

type pcscCard struct {
	card *scard.Card
}

func (c *pcscCard) Transmit(cmd []byte) ([]byte, error) {
	return c.card.Transmit(cmd)
}

func (c *pcscCard) Disconnect() error {
	return c.card.Disconnect(scard.LeaveCard)
}
