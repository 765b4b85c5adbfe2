// Package npy reads and writes NumPy .npy files, the on-disk form of every
// tensor this pipeline produces. The writer emits version 1.0 headers with
// C-order little-endian data; the reader accepts the integer and float
// dtypes that hypnogram arrays ship with and flattens them to int64.
package npy

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const magic = "\x93NUMPY"

// headerAlign pads the full preamble to this multiple, per the NPY spec.
const headerAlign = 64

// maxDataBytes bounds the payload a single array header may declare. A
// corrupt or hostile shape must fail as an error, not as an allocation.
const maxDataBytes = 1 << 31

// WriteFloat32 writes data as a little-endian '<f4' array of the given
// shape. The data length must match the shape product.
func WriteFloat32(w io.Writer, shape []int, data []float32) error {
	if err := writeHeader(w, "<f4", shape, len(data)); err != nil {
		return err
	}

	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// WriteInt64 writes data as a little-endian '<i8' array of the given shape.
// The data length must match the shape product.
func WriteInt64(w io.Writer, shape []int, data []int64) error {
	if err := writeHeader(w, "<i8", shape, len(data)); err != nil {
		return err
	}

	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(v))
	}
	_, err := w.Write(buf)
	return err
}

// ReadInt64 reads an NPY array of any supported integer or float dtype and
// returns the values widened (floats truncated) to int64, together with the
// declared shape. Fortran-order and big-endian arrays are rejected.
func ReadInt64(r io.Reader) ([]int64, []int, error) {
	descr, shape, err := readHeader(r)
	if err != nil {
		return nil, nil, err
	}

	size := itemSize(descr)
	if size == 0 {
		return nil, nil, fmt.Errorf("unsupported npy dtype %q", descr)
	}

	count := 1
	for _, d := range shape {
		if d > 0 && count > maxDataBytes/size/d {
			return nil, nil, fmt.Errorf("npy shape %v declares over %d bytes", shape, maxDataBytes)
		}
		count *= d
	}

	buf := make([]byte, count*size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, fmt.Errorf("read npy data: %w", err)
	}

	values := make([]int64, count)
	for i := 0; i < count; i++ {
		b := buf[i*size:]
		switch descr {
		case "<i8":
			values[i] = int64(binary.LittleEndian.Uint64(b))
		case "<i4":
			values[i] = int64(int32(binary.LittleEndian.Uint32(b)))
		case "<i2":
			values[i] = int64(int16(binary.LittleEndian.Uint16(b)))
		case "|i1":
			values[i] = int64(int8(b[0]))
		case "|u1":
			values[i] = int64(b[0])
		case "<f4":
			values[i] = int64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case "<f8":
			values[i] = int64(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		}
	}
	return values, shape, nil
}

func itemSize(descr string) int {
	switch descr {
	case "<i8", "<f8":
		return 8
	case "<i4", "<f4":
		return 4
	case "<i2":
		return 2
	case "|i1", "|u1":
		return 1
	}
	return 0
}

func writeHeader(w io.Writer, descr string, shape []int, n int) error {
	count := 1
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("negative dimension %d", d)
		}
		count *= d
	}
	if count != n {
		return fmt.Errorf("shape %v holds %d elements, have %d", shape, count, n)
	}

	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }",
		descr, shapeTuple(shape))

	// magic + version (2) + header length (2) + dict + final newline,
	// padded with spaces to the alignment boundary.
	total := len(magic) + 2 + 2 + len(dict) + 1
	pad := (headerAlign - total%headerAlign) % headerAlign
	header := dict + strings.Repeat(" ", pad) + "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("npy header too large (%d bytes)", len(header))
	}

	out := make([]byte, 0, len(magic)+4+len(header))
	out = append(out, magic...)
	out = append(out, 1, 0)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(header)))
	out = append(out, header...)

	_, err := w.Write(out)
	return err
}

func shapeTuple(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}

	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func readHeader(r io.Reader) (string, []int, error) {
	pre := make([]byte, len(magic)+2)
	if _, err := io.ReadFull(r, pre); err != nil {
		return "", nil, fmt.Errorf("read npy preamble: %w", err)
	}
	if string(pre[:len(magic)]) != magic {
		return "", nil, fmt.Errorf("not an npy file")
	}

	major := pre[len(magic)]
	var headerLen int
	switch major {
	case 1:
		var raw [2]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return "", nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(binary.LittleEndian.Uint16(raw[:]))
	case 2, 3:
		var raw [4]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return "", nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(binary.LittleEndian.Uint32(raw[:]))
	default:
		return "", nil, fmt.Errorf("unsupported npy version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", nil, fmt.Errorf("read npy header: %w", err)
	}

	return parseHeader(string(header))
}

// parseHeader pulls descr, fortran_order, and shape out of the header dict
// literal. It tolerates whitespace variation but not reordering of quotes.
func parseHeader(h string) (string, []int, error) {
	descr, err := quotedValue(h, "'descr':")
	if err != nil {
		return "", nil, err
	}
	if strings.Contains(h, "'fortran_order': True") {
		return "", nil, fmt.Errorf("fortran-order npy arrays not supported")
	}

	open := strings.Index(h, "(")
	end := strings.Index(h, ")")
	if open < 0 || end < open {
		return "", nil, fmt.Errorf("npy header missing shape tuple")
	}

	var shape []int
	for _, part := range strings.Split(h[open+1:end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 {
			return "", nil, fmt.Errorf("bad npy shape dimension %q", part)
		}
		shape = append(shape, d)
	}
	return descr, shape, nil
}

func quotedValue(h, key string) (string, error) {
	i := strings.Index(h, key)
	if i < 0 {
		return "", fmt.Errorf("npy header missing %s", key)
	}
	rest := h[i+len(key):]
	start := strings.Index(rest, "'")
	if start < 0 {
		return "", fmt.Errorf("npy header missing %s value", key)
	}
	end := strings.Index(rest[start+1:], "'")
	if end < 0 {
		return "", fmt.Errorf("npy header missing %s value", key)
	}
	return rest[start+1 : start+1+end], nil
}
