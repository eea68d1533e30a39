package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrShortRead reports a field that runs past the end of the data.
	ErrShortRead = errors.New("stream: short read")
	// ErrMalformed reports a count or length field that cannot be satisfied.
	ErrMalformed = errors.New("stream: malformed data")
)

// Reader decodes fields from a byte slice. The first failure is sticky:
// afterwards every read returns a zero value and Err reports the cause.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Open reads the whole file at path.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewReader(data), nil
}

// Err returns the first decoding error, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.off = len(r.data)
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortRead, n, r.off, r.Remaining()))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadByte reads 1 byte. The error return satisfies io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	b := r.take(1)
	if b == nil {
		return 0, r.err
	}
	return b[0], nil
}

func (r *Reader) ReadBool() bool {
	b, _ := r.ReadByte()
	return b != 0
}

// ReadUint32 reads 4 bytes as little-endian uint32.
func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadInt reads 4 bytes as little-endian int32.
func (r *Reader) ReadInt() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadFloat() float32 {
	return math.Float32frombits(r.ReadUint32())
}

// ReadCount reads an int32 count whose elements each occupy at least minSize
// bytes, rejecting values the remaining data cannot hold.
func (r *Reader) ReadCount(minSize int) int {
	n := r.ReadInt()
	if r.err != nil {
		return 0
	}
	if n < 0 || (minSize > 0 && int(n) > r.Remaining()/minSize) {
		r.fail(fmt.Errorf("%w: count %d at offset %d", ErrMalformed, n, r.off-4))
		return 0
	}
	return int(n)
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() string {
	n := r.ReadCount(1)
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadStrings reads a count followed by that many strings.
func (r *Reader) ReadStrings() []string {
	n := r.ReadCount(4)
	out := make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.ReadString())
	}
	return out
}

func (r *Reader) ReadVec3() mgl32.Vec3 {
	return mgl32.Vec3{r.ReadFloat(), r.ReadFloat(), r.ReadFloat()}
}

func (r *Reader) ReadVec4() mgl32.Vec4 {
	return mgl32.Vec4{r.ReadFloat(), r.ReadFloat(), r.ReadFloat(), r.ReadFloat()}
}

func (r *Reader) ReadQuat() mgl32.Quat {
	v := r.ReadVec3()
	return mgl32.Quat{W: r.ReadFloat(), V: v}
}

// ReadRecord reads a record written by Writer.WriteRecord and returns its
// kind together with a Reader over the payload.
func (r *Reader) ReadRecord() (byte, *Reader) {
	kind, _ := r.ReadByte()
	n := r.ReadCount(1)
	b := r.take(n)
	if r.err != nil {
		return 0, NewReader(nil)
	}
	return kind, NewReader(b)
}
