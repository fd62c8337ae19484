package iso7816

import (
	"strings"
	"testing"
)

func TestNewInstruction(t *testing.T) {
	tests := []struct {
		name    string
		ins     InsCode
		wantErr bool
		check   func(Instruction) bool
	}{
		{
			name: "Standard SELECT (A4)",
			ins:  0xA4,
			check: func(i Instruction) bool {
				return i.Raw == INS_SELECT && !i.IsBERTLV
			},
		},
		{
			name: "GET DATA (CA)",
			ins:  0xCA,
			check: func(i Instruction) bool {
				return i.Raw == INS_GET_DATA && !i.IsBERTLV
			},
		},
		{
			name: "BER-TLV flag (B1)",
			ins:  0b1011_0001,
			check: func(i Instruction) bool {
				return i.IsBERTLV
			},
		},
		{
			name: "CEPAS READ PURSE (32)",
			ins:  0x32,
			check: func(i Instruction) bool {
				return i.Raw == INS_CEPAS_READ_PURSE
			},
		},
		{
			name:    "Invalid INS 6X",
			ins:     0x6A,
			wantErr: true,
		},
		{
			name:    "Invalid INS 9X",
			ins:     0x90,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInstruction(tt.ins)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewInstruction(0x%02X) error = %v, wantErr %v", byte(tt.ins), err, tt.wantErr)
				return
			}
			if !tt.wantErr && !tt.check(got) {
				t.Errorf("NewInstruction(0x%02X) failed validation: %+v", byte(tt.ins), got)
			}
		})
	}
}

func TestMustInstruction_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustInstruction(0x61) did not panic")
		}
	}()
	MustInstruction(0x61)
}

func TestInstruction_Verbose(t *testing.T) {
	tests := []struct {
		ins      InsCode
		contains []string
	}{
		{INS_SELECT, []string{"INS: 0xA4", "Command: INS_SELECT", "Format: Standard"}},
		{INS_GET_DATA, []string{"INS: 0xCA", "Command: INS_GET_DATA"}},
		{0xB1, []string{"INS: 0xB1", "InsCode(0xB1)", "Format: BER-TLV"}},
	}

	for _, tt := range tests {
		desc := MustInstruction(tt.ins).Verbose()
		for _, part := range tt.contains {
			if !strings.Contains(desc, part) {
				t.Errorf("Verbose() = %q; want containing %q", desc, part)
			}
		}
	}
}
