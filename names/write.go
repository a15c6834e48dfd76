package names

import (
	"unicode/utf16"

	"github.com/arloliu/iopkg/endian"
)

var le = endian.GetLittleEndianEngine()

func encode(text string) (Header, []byte) {
	wide := false
	for _, c := range text {
		if c > 0x7F {
			wide = true
			break
		}
	}
	if !wide {
		return Header{Length: len(text)}, []byte(text)
	}

	units := utf16.Encode([]rune(text))
	b := make([]byte, 0, 2*len(units))
	for _, u := range units {
		b = le.AppendUint16(b, u)
	}

	return Header{Wide: true, Length: len(units)}, b
}

// AppendLegacyBatch appends texts in the legacy layout and returns the name block and the
// hash block (algorithm id followed by one hash per name).
func AppendLegacyBatch(texts []string) (nameBlock, hashBlock []byte) {
	hashBlock = le.AppendUint64(hashBlock, HashAlgorithmID)
	for _, text := range texts {
		h, data := encode(text)
		nameBlock = h.AppendTo(nameBlock)
		nameBlock = append(nameBlock, data...)
		hashBlock = le.AppendUint64(hashBlock, Hash(text))
	}

	return nameBlock, hashBlock
}

// AppendZenBatch appends texts to buf as a self-describing name batch.
func AppendZenBatch(buf []byte, texts []string) []byte {
	buf = le.AppendUint32(buf, uint32(len(texts))) //nolint: gosec
	if len(texts) == 0 {
		return buf
	}

	var strs, headers []byte
	for _, text := range texts {
		h, data := encode(text)
		if h.Wide && len(strs)%2 != 0 {
			strs = append(strs, 0)
		}
		headers = h.AppendTo(headers)
		strs = append(strs, data...)
	}

	buf = le.AppendUint32(buf, uint32(len(strs))) //nolint: gosec
	buf = le.AppendUint64(buf, HashAlgorithmID)
	for _, text := range texts {
		buf = le.AppendUint64(buf, Hash(text))
	}
	buf = append(buf, headers...)

	return append(buf, strs...)
}
