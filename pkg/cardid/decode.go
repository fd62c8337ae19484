package cardid

import (
	"bytes"
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// Identifier is the value decoded from a card.
type Identifier struct {
	Profile Profile
	// Primary is the identifier handed to the output: the colon-separated
	// UID for Generic, the CAN for Cepas.
	Primary string
	// Secondary is informational only: the colon-separated CSN for Cepas.
	Secondary string

	raw []byte
}

func (id Identifier) String() string {
	return id.Primary
}

// Decimal returns the bytes behind Primary read as a big-endian unsigned integer.
func (id Identifier) Decimal() string {
	return new(big.Int).SetBytes(id.primaryBytes()).String()
}

// ReversedDecimal returns the same bytes read little-endian, the form
// printed on some access-control badges.
func (id Identifier) ReversedDecimal() string {
	b := slices.Clone(id.primaryBytes())
	slices.Reverse(b)
	return new(big.Int).SetBytes(b).String()
}

func (id Identifier) primaryBytes() []byte {
	if id.Profile == Cepas && len(id.raw) >= CepasMinPayload {
		return id.raw[CepasCANOffset : CepasCANOffset+CepasCANLength]
	}
	return id.raw
}

// Decode turns the final response data, status word removed, into an Identifier.
func (p Profile) Decode(payload []byte) (Identifier, error) {
	id := Identifier{Profile: p, raw: bytes.Clone(payload)}

	switch p {
	case Cepas:
		if len(payload) < CepasMinPayload {
			return Identifier{}, &Error{
				Kind: KindResponseTooShort,
				Step: "READ PURSE",
				Need: CepasMinPayload,
				Got:  len(payload),
			}
		}
		id.Primary = hexJoin(payload[CepasCANOffset:CepasCANOffset+CepasCANLength], "")
		id.Secondary = hexJoin(payload[CepasCSNOffset:CepasCSNOffset+CepasCSNLength], ":")
	case Generic:
		id.Primary = hexJoin(payload, ":")
	default:
		return Identifier{}, fmt.Errorf("no decoder for profile %s", p)
	}

	return id, nil
}

// hexJoin renders each byte as two upper-case hex digits joined by sep.
func hexJoin(data []byte, sep string) string {
	pairs := make([]string, len(data))
	for i, b := range data {
		pairs[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(pairs, sep)
}
