package resp

import (
	"bufio"
	"io"
	"strconv"
)

// Encoder writes RESP Values to an output stream as contiguous byte
// sequences. It is not safe for concurrent use; callers serialize their
// own writes (the connection server does this per-connection).
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an Encoder writing to w. If w is already a
// *bufio.Writer it's used directly, otherwise it's wrapped in one.
func NewEncoder(w io.Writer) *Encoder {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Encoder{w: bw}
}

// Encode writes v, followed by a Flush of the underlying buffer.
func (e *Encoder) Encode(v Value) error {
	if err := e.encode(v); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) encode(v Value) error {
	switch v.Kind {
	case SimpleString:
		return e.writeLine(simpleStringPrefix, []byte(v.Str))
	case Error:
		return e.writeLine(errorPrefix, []byte(v.Str))
	case Integer:
		return e.writeLine(integerPrefix, []byte(strconv.FormatInt(v.Num, 10)))
	case BulkString:
		return e.encodeBulk(v)
	case Array:
		return e.encodeArray(v)
	default:
		return ErrInvalidFrame
	}
}

func (e *Encoder) encodeBulk(v Value) error {
	if v.BulkNull {
		return e.writeLine(bulkStringPrefix, []byte(strconv.Itoa(NullBulkLen)))
	}
	if err := e.writeLine(bulkStringPrefix, []byte(strconv.Itoa(len(v.Bulk)))); err != nil {
		return err
	}
	if _, err := e.w.Write(v.Bulk); err != nil {
		return err
	}
	_, err := e.w.WriteString("\r\n")
	return err
}

func (e *Encoder) encodeArray(v Value) error {
	if v.ArrayNull {
		return e.writeLine(arrayPrefix, []byte(strconv.Itoa(NullArrayLen)))
	}
	if err := e.writeLine(arrayPrefix, []byte(strconv.Itoa(len(v.Elems)))); err != nil {
		return err
	}
	for _, elem := range v.Elems {
		if err := e.encode(elem); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeLine(prefix byte, body []byte) error {
	if err := e.w.WriteByte(prefix); err != nil {
		return err
	}
	if _, err := e.w.Write(body); err != nil {
		return err
	}
	_, err := e.w.WriteString("\r\n")
	return err
}
