package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode parses an encoded tuple of the declared shape out of buf and
// returns the values slot by slot. Text slots get freshly allocated
// strings; the input buffer is never retained.
func Decode(buf []byte, shape ...Type) ([]any, error) {
	offsets, err := scanRecords(buf, len(shape))
	if err != nil {
		return nil, err
	}

	vals := make([]any, len(shape))
	for i, t := range shape {
		slot, size := readHeader(buf, offsets[i])
		if slot != int32(i) {
			return nil, &Error{
				Op:   "decode",
				Code: InvalidSlot,
				Slot: i,
				Msg:  fmt.Sprintf("record carries slot id %d", slot),
			}
		}
		if t != Text && int(size) != t.FixedSize() {
			return nil, &Error{
				Op:   "decode",
				Code: InvalidSlot,
				Slot: i,
				Msg:  fmt.Sprintf("%s record has size %d, want %d", t, size, t.FixedSize()),
			}
		}
		if t == Text && int(size) > MaxTextLen {
			return nil, &Error{
				Op:   "decode",
				Code: OversizedArgument,
				Slot: i,
				Msg:  fmt.Sprintf("text record is %d bytes, limit %d", size, MaxTextLen),
			}
		}
		data := buf[offsets[i]+recordHeaderLen : offsets[i]+recordHeaderLen+int(size)]
		vals[i] = decodeValue(t, data)
	}
	return vals, nil
}

// scanRecords walks the record headers and returns the byte offset of each
// of the first n records. The buffer ending early is a truncation error.
func scanRecords(buf []byte, n int) ([]int, error) {
	offsets := make([]int, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		if pos+recordHeaderLen > len(buf) {
			return nil, &Error{
				Op:   "decode",
				Code: TruncatedInput,
				Slot: i,
				Msg:  fmt.Sprintf("buffer ends inside record %d header", i),
			}
		}
		_, size := readHeader(buf, pos)
		if size < 0 {
			return nil, &Error{
				Op:   "decode",
				Code: InvalidSlot,
				Slot: i,
				Msg:  fmt.Sprintf("record %d declares negative size %d", i, size),
			}
		}
		if pos+recordHeaderLen+int(size) > len(buf) {
			return nil, &Error{
				Op:   "decode",
				Code: TruncatedInput,
				Slot: i,
				Msg:  fmt.Sprintf("buffer ends inside record %d body", i),
			}
		}
		offsets = append(offsets, pos)
		pos += recordHeaderLen + int(size)
	}
	return offsets, nil
}

func readHeader(buf []byte, pos int) (slot, size int32) {
	slot = int32(binary.LittleEndian.Uint32(buf[pos : pos+4]))
	size = int32(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
	return slot, size
}

func decodeValue(t Type, data []byte) any {
	switch t {
	case Bool:
		return data[0] != 0
	case Int8:
		return int8(data[0])
	case Uint8:
		return data[0]
	case Int16:
		return int16(binary.LittleEndian.Uint16(data))
	case Uint16:
		return binary.LittleEndian.Uint16(data)
	case Int32:
		return int32(binary.LittleEndian.Uint32(data))
	case Uint32:
		return binary.LittleEndian.Uint32(data)
	case Int64:
		return int64(binary.LittleEndian.Uint64(data))
	case Uint64:
		return binary.LittleEndian.Uint64(data)
	case Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(data))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data))
	case Text:
		return string(data)
	default:
		return nil
	}
}
