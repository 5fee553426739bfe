package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder builds one encoded tuple at a time against a shape declared at
// construction. Append must be called once per slot, in declared order; the
// slot index wraps after the last slot so a single Encoder can stream
// consecutive tuples, each Append at index 0 starting a fresh buffer.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	shape []Type
	idx   int
	buf   []byte
	vals  []any // decoded copy of the finished tuple, nil until complete
}

// NewEncoder creates an encoder for the declared tuple shape.
func NewEncoder(shape ...Type) *Encoder {
	return &Encoder{
		shape: shape,
		buf:   getBuf(minEncodedSize(shape)),
	}
}

// NewEncoderBytes creates an encoder over an existing encoded buffer and
// parses it immediately; Values reports the decoded tuple.
func NewEncoderBytes(buf []byte, shape ...Type) (*Encoder, error) {
	vals, err := Decode(buf, shape...)
	if err != nil {
		return nil, err
	}
	e := &Encoder{
		shape: shape,
		buf:   append(getBuf(len(buf))[:0], buf...),
		vals:  vals,
	}
	return e, nil
}

// Count returns the number of declared slots.
func (e *Encoder) Count() int {
	return len(e.shape)
}

// Index returns the slot the next Append will fill.
func (e *Encoder) Index() int {
	return e.idx
}

// Bytes returns the encoded buffer. The slice aliases the encoder's
// internal storage and is invalidated by the next Append or Clear.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Values returns the decoded tuple once every slot has been appended, or
// nil while a tuple is still in progress.
func (e *Encoder) Values() []any {
	return e.vals
}

// Complete reports whether the current tuple has all its slots.
func (e *Encoder) Complete() bool {
	return e.vals != nil
}

// Clear resets the slot counter and drops any buffered tuple.
func (e *Encoder) Clear() {
	e.idx = 0
	e.buf = e.buf[:0]
	e.vals = nil
}

// release returns the internal buffer to the pool. The encoder must not be
// used afterwards.
func (e *Encoder) release() {
	putBuf(e.buf)
	e.buf = nil
	e.vals = nil
}

// Append encodes the next slot. The value's runtime type must match the
// slot's declared kind. Appending to slot 0 discards the previous tuple.
// After the final slot the whole buffer is re-parsed as a sanity check
// against truncation.
func (e *Encoder) Append(v any) error {
	if len(e.shape) == 0 {
		return &Error{Op: "append", Code: InvalidSlot, Slot: -1, Msg: "encoder has no declared slots"}
	}
	if e.idx == 0 {
		e.buf = e.buf[:0]
		e.vals = nil
	}

	declared := e.shape[e.idx]
	got, ok := TypeOf(v)
	if !ok || got != declared {
		return &Error{
			Op:   "append",
			Code: TypeOrder,
			Slot: e.idx,
			Msg:  fmt.Sprintf("slot declared %s, got %T", declared, v),
		}
	}

	if declared == Text {
		s := v.(string)
		if len(s) > MaxTextLen {
			return &Error{
				Op:   "append",
				Code: OversizedArgument,
				Slot: e.idx,
				Msg:  fmt.Sprintf("text argument is %d bytes, limit %d", len(s), MaxTextLen),
			}
		}
		e.putHeader(int32(len(s)))
		e.buf = append(e.buf, s...)
	} else {
		e.putHeader(int32(declared.FixedSize()))
		e.buf = e.putFixed(declared, v)
	}

	if e.idx == len(e.shape)-1 {
		if err := e.finish(); err != nil {
			return err
		}
	}
	e.idx = (e.idx + 1) % len(e.shape)
	return nil
}

// AppendAll appends a full tuple in order, stopping at the first failure.
func (e *Encoder) AppendAll(vals ...any) error {
	for _, v := range vals {
		if err := e.Append(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) putHeader(size int32) {
	var hdr [recordHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(e.idx))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(size))
	e.buf = append(e.buf, hdr[:]...)
}

func (e *Encoder) putFixed(t Type, v any) []byte {
	buf := e.buf
	switch t {
	case Bool:
		if v.(bool) {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case Int8:
		buf = append(buf, byte(v.(int8)))
	case Uint8:
		buf = append(buf, v.(uint8))
	case Int16:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v.(int16)))
	case Uint16:
		buf = binary.LittleEndian.AppendUint16(buf, v.(uint16))
	case Int32:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.(int32)))
	case Uint32:
		buf = binary.LittleEndian.AppendUint32(buf, v.(uint32))
	case Int64:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(asInt64(v)))
	case Uint64:
		buf = binary.LittleEndian.AppendUint64(buf, v.(uint64))
	case Float32:
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v.(float32)))
	case Float64:
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.(float64)))
	}
	return buf
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

// finish validates the completed tuple: the buffer must hold every declared
// fixed width and must re-parse cleanly. The decoded values are retained
// for Values.
func (e *Encoder) finish() error {
	if len(e.buf) < minEncodedSize(e.shape) {
		return &Error{
			Op:   "finish",
			Code: EncodingIntegrity,
			Slot: e.idx,
			Msg:  fmt.Sprintf("encoded %d bytes, declared widths need %d", len(e.buf), minEncodedSize(e.shape)),
		}
	}
	vals, err := Decode(e.buf, e.shape...)
	if err != nil {
		return &Error{Op: "finish", Code: EncodingIntegrity, Slot: e.idx, Msg: err.Error()}
	}
	e.vals = vals
	return nil
}
