// Package tlv provides helpers to build and inspect the byte strings exchanged
// with smart cards, including a BER-TLV dump for diagnostics.
package tlv

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// Summarize decodes data as BER-TLV and renders one line per tag, nested
// templates indented by two spaces. Primitive values are shown in hex, with
// their printable form when every byte is printable ASCII.
//
// It is used to log the answer to a SELECT, which cards are free to leave
// empty or fill with proprietary bytes, so callers should treat an error as
// "not TLV" rather than a failure.
func Summarize(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty data")
	}

	packets, err := bertlv.Decode(data)
	if err != nil {
		return "", fmt.Errorf("BER-TLV decode failed: %w", err)
	}

	var lines []string
	writePackets(&lines, packets, 0)
	return strings.Join(lines, "\n"), nil
}

func writePackets(lines *[]string, packets []bertlv.TLV, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, p := range packets {
		tag := strings.ToUpper(p.Tag)
		if len(p.TLVs) > 0 {
			*lines = append(*lines, indent+tag)
			writePackets(lines, p.TLVs, depth+1)
			continue
		}

		line := fmt.Sprintf("%s%s: %X", indent, tag, p.Value)
		if printable(p.Value) {
			line += fmt.Sprintf(" (%q)", string(p.Value))
		}
		*lines = append(*lines, line)
	}
}

func printable(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return MakeSafeASCII(data) == string(data)
}
