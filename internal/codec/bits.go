package codec

import (
	"encoding/binary"
	"strings"
)

// BitSlice extracts the inclusive bit range [start, end] from data, counting
// from the most significant bit of data[0]. At most 64 bits can be extracted;
// wider ranges return 0. Only the bytes covering the range are read and no
// bounds checks are performed beyond the slice's own.
func BitSlice(data []byte, start, end int) uint64 {
	if end < start || end-start >= 64 {
		return 0
	}

	startByte := start / 8
	endByte := end/8 + 1 // exclusive
	span := end - startByte*8 + 1

	var word [8]byte
	copy(word[:], data[startByte:min(endByte, startByte+8)])
	result := binary.BigEndian.Uint64(word[:])

	if span <= 64 {
		result >>= 64 - span
	} else {
		// unaligned 64-bit window touching a ninth byte
		extra := span - 64
		result = result<<extra | uint64(data[startByte+8]>>(8-extra))
	}

	width := end - start + 1
	if width < 64 {
		result &= (uint64(1) << width) - 1
	}
	return result
}

// DecodeNBitString reads count characters of wordSize bits each. Codes at or
// below 0x1F are shifted up by 0x40. Padding characters are kept.
func DecodeNBitString(data []byte, count, wordSize int) string {
	var sb strings.Builder
	sb.Grow(count)

	for i := 0; i < count; i++ {
		bits := BitSlice(data, i*wordSize, (i+1)*wordSize-1)
		if bits <= 0x1F {
			bits += 0x40
		}
		sb.WriteByte(byte(bits))
	}

	return sb.String()
}

// EncodeNBitString packs s at wordSize bits per character, the inverse of
// DecodeNBitString for characters 0x20-0x5F. Characters 0x40-0x5F are stored
// as their low five bits.
func EncodeNBitString(s string, wordSize int) []byte {
	out := make([]byte, (len(s)*wordSize+7)/8)
	mask := byte(1<<wordSize) - 1

	for i := 0; i < len(s); i++ {
		code := s[i]
		if code >= 0x40 {
			code -= 0x40
		}
		code &= mask

		for b := 0; b < wordSize; b++ {
			if code&(1<<(wordSize-1-b)) == 0 {
				continue
			}
			pos := i*wordSize + b
			out[pos/8] |= 0x80 >> (pos % 8)
		}
	}

	return out
}
