package cardid

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProfile_Steps(t *testing.T) {
	tests := []struct {
		profile Profile
		want    []string
	}{
		{Generic, []string{"GET DATA (UID)=FFCA000000"}},
		{Cepas, []string{"SELECT CEPAS=00A40000020000", "READ PURSE=903203000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			var got []string
			for _, s := range tt.profile.Steps() {
				raw, err := s.Command.Bytes()
				if err != nil {
					t.Fatalf("%s: %v", s.Name, err)
				}
				got = append(got, s.Name+"="+strings.ToUpper(hex.EncodeToString(raw)))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Steps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		in      string
		want    Profile
		wantErr bool
	}{
		{"", Generic, false},
		{"generic", Generic, false},
		{"UID", Generic, false},
		{" Cepas ", Cepas, false},
		{"CEPAS", Cepas, false},
		{"mifare", Generic, true},
	}

	for _, tt := range tests {
		got, err := ParseProfile(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProfile(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProfile(%q) = %s; want %s", tt.in, got, tt.want)
		}
	}
}

func TestProfile_Names(t *testing.T) {
	for _, p := range Profiles {
		back, err := ParseProfile(p.String())
		if err != nil || back != p {
			t.Errorf("ParseProfile(%q) = %v, %v", p.String(), back, err)
		}
	}
	if got := Profile(9).String(); got != "Profile(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestProfileFromFlag(t *testing.T) {
	if ProfileFromFlag(true) != Cepas {
		t.Error("is_cepas=true should select Cepas")
	}
	if ProfileFromFlag(false) != Generic {
		t.Error("is_cepas=false should select Generic")
	}
}

func TestCepasLayout(t *testing.T) {
	if CepasMinPayload != 25 {
		t.Errorf("CepasMinPayload = %d; want 25", CepasMinPayload)
	}
	if CepasCANOffset+CepasCANLength > CepasCSNOffset {
		t.Error("CAN overlaps CSN")
	}
}
