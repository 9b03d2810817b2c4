package resp

import (
	"bufio"
	"io"
	"strconv"
)

// Decoder reads RESP Values off of a buffered input stream. It is not safe
// for concurrent use.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading from r. If r is already a
// *bufio.Reader it's used directly, otherwise it's wrapped in one.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// Decode reads and returns a single complete Value, blocking for more
// input as needed. A framing violation returns ErrInvalidFrame; any other
// error (notably io.EOF between frames) is returned unwrapped.
func (d *Decoder) Decode() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	if len(line) == 0 {
		return Value{}, ErrInvalidFrame
	}

	switch line[0] {
	case simpleStringPrefix:
		return Value{Kind: SimpleString, Str: string(line[1:])}, nil
	case errorPrefix:
		return Value{Kind: Error, Str: string(line[1:])}, nil
	case integerPrefix:
		n, err := parseInt(line[1:])
		if err != nil {
			return Value{}, ErrInvalidFrame
		}
		return Value{Kind: Integer, Num: n}, nil
	case bulkStringPrefix:
		return d.decodeBulk(line[1:])
	case arrayPrefix:
		return d.decodeArray(line[1:])
	default:
		return Value{}, ErrInvalidFrame
	}
}

func (d *Decoder) decodeBulk(lenLine []byte) (Value, error) {
	n, err := parseInt(lenLine)
	if err != nil {
		return Value{}, ErrInvalidFrame
	}
	if n == NullBulkLen {
		return Value{Kind: BulkString, BulkNull: true}, nil
	}
	if n < 0 || n > MaxBulkLen {
		return Value{}, ErrInvalidFrame
	}

	buf := make([]byte, n+2) // +2 for the trailing CRLF
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Value{}, err
		}
		return Value{}, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Value{}, ErrInvalidFrame
	}
	return Value{Kind: BulkString, Bulk: buf[:n]}, nil
}

func (d *Decoder) decodeArray(lenLine []byte) (Value, error) {
	n, err := parseInt(lenLine)
	if err != nil {
		return Value{}, ErrInvalidFrame
	}
	if n == NullArrayLen {
		return Value{Kind: Array, ArrayNull: true}, nil
	}
	if n < 0 {
		return Value{}, ErrInvalidFrame
	}
	if n == 0 {
		// Matches what Arr() builds: an empty array has nil Elems.
		return Value{Kind: Array}, nil
	}

	elems := make([]Value, n)
	for i := range elems {
		elems[i], err = d.Decode()
		if err != nil {
			return Value{}, err
		}
	}
	return Value{Kind: Array, Elems: elems}, nil
}

// readLine reads up to and including the next CRLF, returning the line
// without the terminator.
func (d *Decoder) readLine() ([]byte, error) {
	line, err := d.r.ReadSlice('\n')
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrInvalidFrame
	}
	// ReadSlice's buffer is only valid until the next read; copy it out.
	out := make([]byte, len(line)-2)
	copy(out, line[:len(line)-2])
	return out, nil
}

func parseInt(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}
