package pattern

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated reports an encoding that ends mid-term.
var ErrTruncated = errors.New("pattern: truncated encoding")

// Decode parses a canonical encoding back into a term. Captured binding
// names are not part of the encoding, so every open binding decodes
// nameless. Decode(Encode(t)) is structurally equal to t up to those names.
func Decode(data []byte) (Term, error) {
	term, rest, err := decodeTerm(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("pattern: %d trailing bytes after term", len(rest))
	}
	return term, nil
}

func decodeTerm(data []byte) (Term, []byte, error) {
	if len(data) == 0 {
		return nil, nil, ErrTruncated
	}
	tag, rest := data[0], data[1:]

	switch tag {
	case tagNil:
		return Nil{}, rest, nil
	case tagBool:
		if len(rest) < 1 {
			return nil, nil, ErrTruncated
		}
		return Bool{Value: rest[0] != 0}, rest[1:], nil
	case tagInt:
		if len(rest) < 8 {
			return nil, nil, ErrTruncated
		}
		return Int{Value: int64(binary.BigEndian.Uint64(rest[:8]))}, rest[8:], nil
	case tagString, tagUri:
		payload, rest, err := readBytes(rest)
		if err != nil {
			return nil, nil, err
		}
		if tag == tagString {
			return Str{Value: string(payload)}, rest, nil
		}
		return Uri{Value: string(payload)}, rest, nil
	case tagOpenBinding:
		return OpenBinding{}, rest, nil
	case tagList, tagTuple, tagSet, tagPar:
		count, rest, err := readCount(rest)
		if err != nil {
			return nil, nil, err
		}
		// Every element takes at least one byte, so a count beyond the
		// remaining input is corrupt; check before allocating.
		if count > len(rest) {
			return nil, nil, ErrTruncated
		}
		elems := make([]Term, count)
		for i := range elems {
			var e Term
			e, rest, err = decodeTerm(rest)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = e
		}
		switch tag {
		case tagList:
			return List{Elems: elems}, rest, nil
		case tagTuple:
			return Tuple{Elems: elems}, rest, nil
		case tagSet:
			return Set{Elems: elems}, rest, nil
		default:
			return Par{Elems: elems}, rest, nil
		}
	case tagMap:
		count, rest, err := readCount(rest)
		if err != nil {
			return nil, nil, err
		}
		if count > len(rest) {
			return nil, nil, ErrTruncated
		}
		entries := make([]MapEntry, count)
		for i := range entries {
			var key []byte
			key, rest, err = readBytes(rest)
			if err != nil {
				return nil, nil, err
			}
			var val Term
			val, rest, err = decodeTerm(rest)
			if err != nil {
				return nil, nil, err
			}
			entries[i] = MapEntry{Key: string(key), Value: val}
		}
		return Map{Entries: entries}, rest, nil
	case tagSend:
		ch, rest, err := decodeTerm(rest)
		if err != nil {
			return nil, nil, err
		}
		count, rest, err := readCount(rest)
		if err != nil {
			return nil, nil, err
		}
		if count > len(rest) {
			return nil, nil, ErrTruncated
		}
		args := make([]Term, count)
		for i := range args {
			var a Term
			a, rest, err = decodeTerm(rest)
			if err != nil {
				return nil, nil, err
			}
			args[i] = a
		}
		return Send{Chan: ch, Args: args}, rest, nil
	default:
		return nil, nil, fmt.Errorf("pattern: unknown tag 0x%02x", tag)
	}
}

func readCount(data []byte) (int, []byte, error) {
	if len(data) < 4 {
		return 0, nil, ErrTruncated
	}
	return int(binary.BigEndian.Uint32(data[:4])), data[4:], nil
}

func readBytes(data []byte) ([]byte, []byte, error) {
	n, rest, err := readCount(data)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) < n {
		return nil, nil, ErrTruncated
	}
	return rest[:n], rest[n:], nil
}
