// Package stream implements the sequential binary encoding used by scene files.
// All multi-byte fields are little-endian. Strings are an int32 byte length
// followed by UTF-8 bytes.
package stream

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Writer accumulates encoded fields in memory. A Writer created with Create
// flushes its buffer to the bound file on Close.
type Writer struct {
	buf  []byte
	path string
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Create returns a Writer bound to path. The file is created (or truncated)
// immediately so that an unwritable destination fails before any encoding work.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Writer{buf: make([]byte, 0, 4096), path: path}, nil
}

// WriteByte writes 1 byte. It never fails; the error return satisfies io.ByteWriter.
func (w *Writer) WriteByte(v byte) error {
	w.buf = append(w.buf, v)
	return nil
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// WriteInt writes 4 bytes little-endian signed.
func (w *Writer) WriteInt(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint32 writes 4 bytes little-endian unsigned.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteFloat writes an IEEE-754 float32.
func (w *Writer) WriteFloat(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteInt(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteStrings writes a count followed by that many strings.
func (w *Writer) WriteStrings(ss []string) {
	w.WriteInt(int32(len(ss)))
	for _, s := range ss {
		w.WriteString(s)
	}
}

func (w *Writer) WriteVec3(v mgl32.Vec3) {
	for _, f := range v {
		w.WriteFloat(f)
	}
}

func (w *Writer) WriteVec4(v mgl32.Vec4) {
	for _, f := range v {
		w.WriteFloat(f)
	}
}

// WriteQuat writes the quaternion as (x, y, z, w).
func (w *Writer) WriteQuat(q mgl32.Quat) {
	w.WriteVec3(q.V)
	w.WriteFloat(q.W)
}

// WriteRecord writes a self-describing record: [kind][int32 length][payload].
// Readers that do not understand kind can skip the payload.
func (w *Writer) WriteRecord(kind byte, payload []byte) {
	w.buf = append(w.buf, kind)
	w.WriteInt(int32(len(payload)))
	w.buf = append(w.buf, payload...)
}

// Bytes returns the encoded content.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Close writes the buffer to the bound file. Close on an unbound Writer is a no-op.
func (w *Writer) Close() error {
	if w.path == "" {
		return nil
	}
	if err := os.WriteFile(w.path, w.buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}
