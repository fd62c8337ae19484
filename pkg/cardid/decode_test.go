package cardid

import (
	"errors"
	"strings"
	"testing"

	"github.com/gregLibert/card-id/pkg/tlv"
)

func TestDecode_Generic(t *testing.T) {
	id, err := Generic.Decode(tlv.Hex("DE AD BE EF"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Primary != "DE:AD:BE:EF" {
		t.Errorf("Primary = %q; want DE:AD:BE:EF", id.Primary)
	}
	if id.Secondary != "" {
		t.Errorf("Secondary = %q; want empty", id.Secondary)
	}
	if id.String() != id.Primary {
		t.Error("String() should return Primary")
	}
}

func TestDecode_GenericShape(t *testing.T) {
	for n := 0; n <= 40; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i*37 + 11)
		}

		id, err := Generic.Decode(payload)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		digits := strings.ReplaceAll(id.Primary, ":", "")
		if len(digits) != 2*n {
			t.Errorf("n=%d: %d hex digits; want %d", n, len(digits), 2*n)
		}
		wantSep := n - 1
		if n == 0 {
			wantSep = 0
		}
		if got := strings.Count(id.Primary, ":"); got != wantSep {
			t.Errorf("n=%d: %d separators; want %d", n, got, wantSep)
		}
		if digits != strings.ToUpper(digits) {
			t.Errorf("n=%d: %q is not upper case", n, digits)
		}

		again, _ := Generic.Decode(payload)
		if again.Primary != id.Primary {
			t.Errorf("n=%d: decoding is not deterministic", n)
		}
	}
}

func TestDecode_Cepas(t *testing.T) {
	id, err := Cepas.Decode(tlv.Hex(cepasPurse))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Primary != "1122334455667788" {
		t.Errorf("CAN = %q; want 1122334455667788", id.Primary)
	}
	if id.Secondary != "AA:BB:CC:DD:EE:FF:00:11" {
		t.Errorf("CSN = %q; want AA:BB:CC:DD:EE:FF:00:11", id.Secondary)
	}
}

func TestDecode_CepasShape(t *testing.T) {
	for n := CepasMinPayload; n <= CepasMinPayload+8; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(255 - i)
		}

		id, err := Cepas.Decode(payload)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(id.Primary) != 16 || strings.Contains(id.Primary, ":") {
			t.Errorf("n=%d: CAN %q should be 16 hex digits without separators", n, id.Primary)
		}
		if parts := strings.Split(id.Secondary, ":"); len(parts) != 8 {
			t.Errorf("n=%d: CSN %q should have 8 pairs", n, id.Secondary)
		}
	}
}

func TestDecode_CepasTooShort(t *testing.T) {
	for _, n := range []int{0, 16, 24} {
		_, err := Cepas.Decode(make([]byte, n))
		if !errors.Is(err, ErrResponseTooShort) {
			t.Fatalf("n=%d: err = %v; want ErrResponseTooShort", n, err)
		}

		var cerr *Error
		if !errors.As(err, &cerr) || cerr.Need != 25 || cerr.Got != n {
			t.Errorf("n=%d: error details = %+v", n, cerr)
		}
	}
}

func TestIdentifier_Decimal(t *testing.T) {
	id, _ := Generic.Decode(tlv.Hex("01 02"))
	if got := id.Decimal(); got != "258" {
		t.Errorf("Decimal() = %s; want 258", got)
	}
	if got := id.ReversedDecimal(); got != "513" {
		t.Errorf("ReversedDecimal() = %s; want 513", got)
	}

	long, _ := Generic.Decode(tlv.Hex("FF FF FF FF FF FF FF FF FF FF"))
	if got := long.Decimal(); got != "1208925819614629174706175" {
		t.Errorf("Decimal() of 10 bytes = %s", got)
	}

	cepas, _ := Cepas.Decode(tlv.Hex(cepasPurse))
	if got := cepas.Decimal(); got != "1234605616436508552" {
		t.Errorf("CAN Decimal() = %s", got)
	}

	var empty Identifier
	if got := empty.Decimal(); got != "0" {
		t.Errorf("empty Decimal() = %s", got)
	}
}

func TestDecode_UnknownProfile(t *testing.T) {
	if _, err := Profile(7).Decode(nil); err == nil {
		t.Error("expected error for unknown profile")
	}
}
