package iso7816

import (
	"fmt"

	"github.com/gregLibert/card-id/pkg/bits"
)

// Instruction Byte (INS) Logic according to ISO/IEC 7816-4.
//
// 1. Data Encoding (Bit 1):
//    In the interindustry class, bit 1 set means the data field is BER-TLV encoded.
//
// 2. Reserved Ranges:
//    INS values whose upper nibble is '6' or '9' are invalid. They are reserved
//    for SW1 values and T=0 procedure bytes.

// InsCode is a typed representation of the instruction byte.
type InsCode byte

// Instruction codes used by the identifier readers.
const (
	INS_SELECT       InsCode = 0xA4
	INS_READ_BINARY  InsCode = 0xB0
	INS_READ_RECORD  InsCode = 0xB2
	INS_GET_RESPONSE InsCode = 0xC0
	INS_GET_DATA     InsCode = 0xCA

	// INS_CEPAS_READ_PURSE is the CEPAS proprietary READ PURSE instruction (CLA '90').
	INS_CEPAS_READ_PURSE InsCode = 0x32
)

var insNames = map[InsCode]string{
	INS_SELECT:           "INS_SELECT",
	INS_READ_BINARY:      "INS_READ_BINARY",
	INS_READ_RECORD:      "INS_READ_RECORD",
	INS_GET_RESPONSE:     "INS_GET_RESPONSE",
	INS_GET_DATA:         "INS_GET_DATA",
	INS_CEPAS_READ_PURSE: "INS_CEPAS_READ_PURSE",
}

func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("InsCode(0x%02X)", byte(i))
}

// Instruction represents the parsed ISO 7816-4 Instruction byte (INS).
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction creates an Instruction object with validation.
// It rejects '6X' and '9X' values as they are invalid according to ISO 7816-3.
func NewInstruction(ins InsCode) (Instruction, error) {
	switch bits.HighNibble(byte(ins)) {
	case 0x6, 0x9:
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}

	return Instruction{
		Raw:      ins,
		IsBERTLV: bits.IsSet(byte(ins), 1),
	}, nil
}

// MustInstruction is NewInstruction for the package's own constants.
func MustInstruction(ins InsCode) Instruction {
	i, err := NewInstruction(ins)
	if err != nil {
		panic(err)
	}
	return i
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	format := "Standard"
	if i.IsBERTLV {
		format = "BER-TLV"
	}
	return fmt.Sprintf("INS: 0x%02X | Command: %s | Format: %s", byte(i.Raw), i.Raw, format)
}
