package iso7816

import (
	"bytes"
	"fmt"
)

// APDU (Application Protocol Data Unit) structures and encodings according to ISO/IEC 7816-3 and 7816-4.
//
// COMMAND APDU (C-APDU):
//   - Header: CLA, INS, P1, P2.
//   - Body: optional Lc + Data, optional Le.
//
// ENCODING CASES (ISO 7816-3):
//   - Case 1: Header only.
//   - Case 2: Header + Le.
//   - Case 3: Header + Lc + Data.
//   - Case 4: Header + Lc + Data + Le.
//
// Short Length mode encodes Lc/Le on 1 byte (max 255/256). Extended mode is
// triggered if Lc > 255 or Le > 256.
//
// RESPONSE APDU (R-APDU):
//   - Body: optional response data.
//   - Trailer: SW1 SW2.
//
// Some cards define commands that do not follow any ISO case (CEPAS READ PURSE
// sends '90 32 03 00 00 00'). Those are built with NewRawCommand and are sent
// byte for byte.

// APDU Limits and Constants according to ISO 7816-3.
const (
	MaxShortLc    = 255
	MaxShortLe    = 256 // encoded as 0x00
	MaxExtendedLc = 65535
	MaxExtendedLe = 65536 // encoded as 0x0000
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)

	raw []byte
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// NewRawCommand wraps a pre-encoded command. The header is decoded for
// reporting; the bytes are transmitted unchanged. The last byte of a raw
// command is treated as its Le.
func NewRawCommand(raw []byte) (*CommandAPDU, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("raw command too short: length %d", len(raw))
	}

	cla := Class{Raw: raw[0], IsProprietary: true}
	if raw[0] != 0xFF {
		c, err := NewClass(raw[0])
		if err != nil {
			return nil, err
		}
		cla = c
	}

	cmd := &CommandAPDU{
		Class:       cla,
		Instruction: Instruction{Raw: InsCode(raw[1])},
		P1:          raw[2],
		P2:          raw[3],
		raw:         bytes.Clone(raw),
	}
	if len(raw) > 4 {
		cmd.Ne = int(raw[len(raw)-1])
		if cmd.Ne == 0 {
			cmd.Ne = MaxShortLe
		}
	}

	return cmd, nil
}

// IsRaw reports whether the command was built from pre-encoded bytes.
func (c *CommandAPDU) IsRaw() bool {
	return c.raw != nil
}

// WithNe returns a copy of the command expecting ne response bytes.
// For raw commands the trailing Le byte is replaced.
func (c *CommandAPDU) WithNe(ne int) *CommandAPDU {
	clone := *c
	clone.Ne = ne
	if c.raw != nil && len(c.raw) > 4 {
		clone.raw = bytes.Clone(c.raw)
		clone.raw[len(clone.raw)-1] = byte(ne)
	}
	return &clone
}

// Bytes encodes the CommandAPDU into its byte representation (C-APDU).
// It selects Short or Extended encoding from the length of Data (Nc) and
// the expected response length (Ne).
func (c *CommandAPDU) Bytes() ([]byte, error) {
	if c.raw != nil {
		return bytes.Clone(c.raw), nil
	}

	buf := new(bytes.Buffer)

	class, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}
	buf.WriteByte(class)
	buf.WriteByte(byte(c.Instruction.Raw))
	buf.WriteByte(c.P1)
	buf.WriteByte(c.P2)

	nc := len(c.Data)
	ne := c.Ne

	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("data too long: %d bytes", nc)
	}
	if ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length too large: %d", ne)
	}

	isExtended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if !isExtended {
			buf.WriteByte(byte(nc))
		} else {
			buf.WriteByte(0x00)
			buf.WriteByte(byte(nc >> 8))
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	if ne > 0 {
		if !isExtended {
			// 0x00 represents 256
			buf.WriteByte(byte(ne))
		} else {
			// Case 2 Extended needs a leading 00 to distinguish Le from Lc.
			if nc == 0 {
				buf.WriteByte(0x00)
			}
			// 0x0000 represents 65536
			buf.WriteByte(byte(ne >> 8))
			buf.WriteByte(byte(ne))
		}
	}

	return buf.Bytes(), nil
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU parses raw bytes received from the card into a ResponseAPDU.
// The input must contain at least 2 bytes (SW1, SW2). Data is copied so the
// caller may reuse the receive buffer.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	indexSW1 := len(raw) - 2

	return &ResponseAPDU{
		Data:   bytes.Clone(raw[:indexSW1]),
		Status: NewStatusWord(raw[indexSW1], raw[indexSW1+1]),
	}, nil
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
