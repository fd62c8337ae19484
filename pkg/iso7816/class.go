package iso7816

import (
	"fmt"

	"github.com/gregLibert/card-id/pkg/bits"
)

// Class Byte (CLA) Structure according to ISO/IEC 7816-4.
//
// Bit 8: Proprietary (1) or Interindustry (0).
// Bit 7: Type of Interindustry (0=First, 1=Further).
// Bit 5: Command Chaining (0=Last/Only, 1=More follow).
//
// 1. First Interindustry Class (00xx xxxx):
//    - Bits 4-3: Secure Messaging.
//    - Bits 2-1: Logical Channel number (0-3).
//
// 2. Further Interindustry Class (01xx xxxx):
//    - Bit 6: Secure Messaging (No SM or SM active).
//    - Bits 4-1: Logical Channel number minus 4.
//
// Proprietary classes are carried opaquely. This covers the CEPAS purse
// commands (CLA '90') and the PC/SC pseudo-APDUs addressed to the reader
// itself (CLA 'FF', see PC/SC Part 3).

// SecureMessaging defines the security level applied to the APDU.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1
	SMHeaderNoProc SecureMessaging = 2
	SMHeaderAuth   SecureMessaging = 3
)

// Class represents the parsed ISO 7816-4 Class byte (CLA).
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // Logical channel number (0-19)
}

// PCSCClass is the CLA used by PC/SC reader pseudo-APDUs such as GET DATA (UID).
// ISO 7816-4 reserves 0xFF, so NewClass rejects it; the reader intercepts
// these commands before they reach the card.
var PCSCClass = Class{Raw: 0xFF, IsProprietary: true}

// NewClass creates a Class object by decoding a raw CLA byte.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA value: 0xFF is reserved")
	}

	c := Class{Raw: cla}

	if bits.IsSet(cla, 8) {
		c.IsProprietary = true
		return c, nil
	}

	c.IsChained = bits.IsSet(cla, 5)

	if !bits.IsSet(cla, 7) {
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
	} else {
		if bits.IsSet(cla, 6) {
			c.SecureMessaging = SMHeaderNoProc
		}
		c.Channel = bits.LowNibble(cla) + 4
	}

	return c, nil
}

// Encode converts the Class object back to its byte representation.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}

	if c.Channel > 19 {
		return 0, fmt.Errorf("channel %d out of range (max 19)", c.Channel)
	}

	var res byte

	if c.Channel <= 3 {
		if c.IsChained {
			res = bits.Set(res, 5)
		}
		res |= byte(c.SecureMessaging) << 2
		res |= c.Channel
		return res, nil
	}

	if c.SecureMessaging == SMProprietary || c.SecureMessaging == SMHeaderAuth {
		return 0, fmt.Errorf("SM indicator %d not supported for further interindustry range (ch 4-19)", c.SecureMessaging)
	}

	res = bits.Set(res, 7)
	if c.IsChained {
		res = bits.Set(res, 5)
	}
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	res |= c.Channel - 4

	return res, nil
}

// Interindustry returns the channel-0, no-SM interindustry class with the
// same logical channel. GET RESPONSE is always sent with an interindustry class,
// even when the original command used a proprietary one.
func (c Class) Interindustry() Class {
	if c.IsProprietary {
		return Class{}
	}
	c.IsChained = false
	return c
}

// Verbose returns a one-line description of the CLA byte.
func (c Class) Verbose() string {
	if c.IsProprietary {
		return fmt.Sprintf("Class: Proprietary (0x%02X)", c.Raw)
	}

	chaining := "last"
	if c.IsChained {
		chaining = "chained"
	}

	return fmt.Sprintf("Class: Interindustry | Channel: %d | SM: %d | Chaining: %s",
		c.Channel, c.SecureMessaging, chaining)
}
