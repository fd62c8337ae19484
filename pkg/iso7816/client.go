package iso7816

import (
	"errors"
	"fmt"
)

// CLIENT & PROTOCOL LOGIC:
// The Client is a thin driver over the physical connection. It handles the
// ISO 7816-3 transport behaviours that T=0 exposes to the application layer:
//
// 1. "61 XX" (Response Available):
//    XX bytes are waiting. The client sends GET RESPONSE to retrieve them.
//
// 2. "6C XX" (Wrong Length):
//    The expected length was wrong. The client re-sends the command with Le = XX.
//
// Send() returns a Trace holding every physical exchange made for the
// logical request.

// maxFollowUps bounds the number of GET RESPONSE / re-issue round trips a
// single Send may perform. A card that keeps answering 61XX or 6CXX is faulty.
const maxFollowUps = 16

// ErrTooManyFollowUps is returned when the card never settles on a final status.
var ErrTooManyFollowUps = errors.New("card kept requesting GET RESPONSE or Le correction")

// Transmitter abstracts the physical card connection.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the high-level communication with the card.
type Client struct {
	Card Transmitter
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits a command and handles protocol logic (61xx, 6Cxx).
// On error the trace collected so far is returned alongside it.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	return c.send(cmd, nil)
}

func (c *Client) send(cmd *CommandAPDU, trace Trace) (Trace, error) {
	if len(trace) > maxFollowUps {
		return trace, ErrTooManyFollowUps
	}

	rawCmd, err := cmd.Bytes()
	if err != nil {
		return trace, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return trace, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return trace, err
	}

	trace = append(trace, Transaction{Command: cmd, Response: resp})

	sw1 := resp.Status.SW1()
	sw2 := resp.Status.SW2()

	// SW2 = 00 stands for 256 in both cases.
	ne := int(sw2)
	if ne == 0 {
		ne = MaxShortLe
	}

	switch sw1 {
	case 0x61:
		// GET RESPONSE must use the same logical channel as the original command.
		getResp := NewCommandAPDU(cmd.Class.Interindustry(), MustInstruction(INS_GET_RESPONSE), 0x00, 0x00, nil, ne)
		return c.send(getResp, trace)

	case 0x6C:
		return c.send(cmd.WithNe(ne), trace)
	}

	return trace, nil
}
