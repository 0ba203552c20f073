package main

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// parseHexBytes accepts the spellings frames are usually pasted in:
// "fc42013001028a", "FC 42 01 30 01 02 8A", "FC.42.01.30.01.02.8A",
// "fc:42:..." and "0xFC,0x42,...".
func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty hex string")
	}

	var b strings.Builder
	for _, field := range strings.FieldsFunc(s, isHexSeparator) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		if len(field) == 1 {
			field = "0" + field
		}
		b.WriteString(field)
	}

	data, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return data, nil
}

func isHexSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '.', ':', ',', '-', '[', ']':
		return true
	}
	return false
}
