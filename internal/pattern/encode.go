package pattern

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// Tag bytes of the canonical encoding. Every term encodes as its tag
// followed by a fixed-width or length-prefixed payload, so structurally
// distinct terms can never collide: the scheme discriminates by
// construction, not by hashing.
const (
	tagNil         byte = 0x01
	tagBool        byte = 0x02
	tagInt         byte = 0x03
	tagString      byte = 0x04
	tagUri         byte = 0x05
	tagOpenBinding byte = 0x06
	tagList        byte = 0x10
	tagTuple       byte = 0x11
	tagSet         byte = 0x12
	tagMap         byte = 0x13
	tagSend        byte = 0x20
	tagPar         byte = 0x21
)

// Encode serializes a term into its canonical byte sequence. The result is
// byte-stable across calls and processes: no addresses, no map iteration
// order. Order-insensitive constructs (sets, maps, parallel composition)
// canonicalize child order before writing.
func Encode(t Term) []byte {
	var buf bytes.Buffer
	writeTerm(&buf, t)
	return buf.Bytes()
}

// OpenBindingKey is the fixed encoding shared by every open binding,
// whatever its captured name. The index uses it as the catch-all edge.
func OpenBindingKey() []byte {
	return []byte{tagOpenBinding}
}

func writeTerm(buf *bytes.Buffer, t Term) {
	switch term := t.(type) {
	case Nil:
		buf.WriteByte(tagNil)
	case Bool:
		buf.WriteByte(tagBool)
		if term.Value {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case Int:
		buf.WriteByte(tagInt)
		var payload [8]byte
		binary.BigEndian.PutUint64(payload[:], uint64(term.Value))
		buf.Write(payload[:])
	case Str:
		buf.WriteByte(tagString)
		writeBytes(buf, []byte(term.Value))
	case Uri:
		buf.WriteByte(tagUri)
		writeBytes(buf, []byte(term.Value))
	case OpenBinding:
		// The captured name is display metadata; it must not influence
		// the encoding.
		buf.WriteByte(tagOpenBinding)
	case List:
		writeOrdered(buf, tagList, term.Elems)
	case Tuple:
		writeOrdered(buf, tagTuple, term.Elems)
	case Set:
		writeUnordered(buf, tagSet, term.Elems)
	case Map:
		buf.WriteByte(tagMap)
		// Order by key, then by the value's encoded bytes: the key alone is
		// not a total order when the source repeats a key.
		entries := make([]encodedEntry, len(term.Entries))
		for i, e := range term.Entries {
			entries[i] = encodedEntry{key: e.Key, value: Encode(e.Value)}
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].key != entries[j].key {
				return entries[i].key < entries[j].key
			}
			return bytes.Compare(entries[i].value, entries[j].value) < 0
		})
		writeCount(buf, len(entries))
		for _, e := range entries {
			writeBytes(buf, []byte(e.key))
			buf.Write(e.value)
		}
	case Send:
		buf.WriteByte(tagSend)
		writeTerm(buf, term.Chan)
		writeCount(buf, len(term.Args))
		for _, a := range term.Args {
			writeTerm(buf, a)
		}
	case Par:
		writeUnordered(buf, tagPar, term.Elems)
	}
}

type encodedEntry struct {
	key   string
	value []byte
}

func writeOrdered(buf *bytes.Buffer, tag byte, elems []Term) {
	buf.WriteByte(tag)
	writeCount(buf, len(elems))
	for _, e := range elems {
		writeTerm(buf, e)
	}
}

func writeUnordered(buf *bytes.Buffer, tag byte, elems []Term) {
	buf.WriteByte(tag)
	writeCount(buf, len(elems))
	encoded := make([][]byte, len(elems))
	for i, e := range elems {
		encoded[i] = Encode(e)
	}
	sort.Slice(encoded, func(i, j int) bool { return bytes.Compare(encoded[i], encoded[j]) < 0 })
	for _, enc := range encoded {
		buf.Write(enc)
	}
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeCount(buf, len(b))
	buf.Write(b)
}

func writeCount(buf *bytes.Buffer, n int) {
	var payload [4]byte
	binary.BigEndian.PutUint32(payload[:], uint32(n))
	buf.Write(payload[:])
}
