package cardid

import (
	"fmt"
	"strings"

	"github.com/gregLibert/card-id/pkg/iso7816"
	"github.com/gregLibert/card-id/pkg/tlv"
)

// Profile selects the APDU sequence run against the card and how its final
// response is decoded. It is fixed for the whole session.
type Profile int

const (
	// Generic reads the UID through the reader's GET DATA pseudo-APDU.
	Generic Profile = iota
	// Cepas selects the CEPAS applet, then reads the purse record holding the CAN and CSN.
	Cepas
)

// Profiles lists every supported profile.
var Profiles = []Profile{Generic, Cepas}

func (p Profile) String() string {
	switch p {
	case Generic:
		return "generic"
	case Cepas:
		return "cepas"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// ParseProfile resolves a profile name, case-insensitively. The empty string is Generic.
func ParseProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "generic", "uid":
		return Generic, nil
	case "cepas":
		return Cepas, nil
	default:
		return Generic, fmt.Errorf("unknown card profile %q", name)
	}
}

// ProfileFromFlag maps the legacy is_cepas switch to a profile.
func ProfileFromFlag(isCepas bool) Profile {
	if isCepas {
		return Cepas
	}
	return Generic
}

// Layout of the CEPAS purse record, in bytes from the start of the payload.
const (
	CepasCANOffset = 8
	CepasCANLength = 8
	CepasCSNOffset = 17
	CepasCSNLength = 8

	// CepasMinPayload is the shortest purse record that holds both fields.
	CepasMinPayload = CepasCSNOffset + CepasCSNLength
)

// CEPAS command table.
const (
	// SELECT file 0000 with FCI; wakes the CEPAS applet on the card.
	cepasSelectFID = 0x0000
	// READ PURSE: CLA 90, INS 32, P1 03 (purse file), P2 00, Lc 00, Le 00.
	cepasReadPurse = "90 32 03 00 00 00"
)

// Step is one command of a profile's sequence.
type Step struct {
	Name    string
	Command *iso7816.CommandAPDU
}

// Steps returns the ordered command sequence of the profile. The final
// step's response carries the identifier.
func (p Profile) Steps() []Step {
	switch p {
	case Cepas:
		return []Step{
			{Name: "SELECT CEPAS", Command: iso7816.SelectFile(interindustry(), [2]byte{cepasSelectFID >> 8, cepasSelectFID & 0xFF})},
			{Name: "READ PURSE", Command: mustRaw(cepasReadPurse)},
		}
	default:
		return []Step{
			{Name: "GET DATA (UID)", Command: iso7816.GetUID()},
		}
	}
}

func interindustry() iso7816.Class {
	cls, _ := iso7816.NewClass(0x00)
	return cls
}

func mustRaw(h string) *iso7816.CommandAPDU {
	cmd, err := iso7816.NewRawCommand(tlv.Hex(h))
	if err != nil {
		panic(err)
	}
	return cmd
}
