package npy

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

// rawFile builds a version 1.0 file around an arbitrary header dict.
func rawFile(dict string, data []byte) []byte {
	total := len(magic) + 2 + 2 + len(dict) + 1
	pad := (headerAlign - total%headerAlign) % headerAlign
	header := dict + strings.Repeat(" ", pad) + "\n"

	buf := []byte(magic)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	return append(buf, data...)
}

func TestWriteInt64Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInt64(&buf, []int{3}, []int64{1, 2, 3}); err != nil {
		t.Fatalf("WriteInt64: %v", err)
	}

	raw := buf.Bytes()
	if got := string(raw[:8]); got != "\x93NUMPY\x01\x00" {
		t.Errorf("preamble = %q", got)
	}
	headerLen := int(binary.LittleEndian.Uint16(raw[8:10]))
	if (10+headerLen)%64 != 0 {
		t.Errorf("header end %d not 64-aligned", 10+headerLen)
	}

	header := string(raw[10 : 10+headerLen])
	want := "{'descr': '<i8', 'fortran_order': False, 'shape': (3,), }"
	if !strings.HasPrefix(header, want) {
		t.Errorf("header = %q, want prefix %q", header, want)
	}
	if header[len(header)-1] != '\n' {
		t.Error("header does not end in newline")
	}

	data := raw[10+headerLen:]
	if len(data) != 24 {
		t.Fatalf("data length = %d, want 24", len(data))
	}
	if v := binary.LittleEndian.Uint64(data[8:16]); v != 2 {
		t.Errorf("second element = %d, want 2", v)
	}
}

func TestInt64RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		data  []int64
	}{
		{"vector", []int{5}, []int64{0, 1, 2, 3, 4}},
		{"matrix", []int{2, 3}, []int64{9, 8, 7, -6, 5, 4}},
		{"empty", []int{0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteInt64(&buf, tt.shape, tt.data); err != nil {
				t.Fatalf("WriteInt64: %v", err)
			}

			values, shape, err := ReadInt64(&buf)
			if err != nil {
				t.Fatalf("ReadInt64: %v", err)
			}
			if len(shape) != len(tt.shape) {
				t.Fatalf("shape = %v, want %v", shape, tt.shape)
			}
			for i := range shape {
				if shape[i] != tt.shape[i] {
					t.Fatalf("shape = %v, want %v", shape, tt.shape)
				}
			}
			if len(values) != len(tt.data) {
				t.Fatalf("got %d values, want %d", len(values), len(tt.data))
			}
			for i := range values {
				if values[i] != tt.data[i] {
					t.Errorf("values[%d] = %d, want %d", i, values[i], tt.data[i])
				}
			}
		})
	}
}

func TestFloat32ReadTruncates(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFloat32(&buf, []int{2, 2}, []float32{0.5, 1.0, 2.9, -1.1}); err != nil {
		t.Fatalf("WriteFloat32: %v", err)
	}

	values, shape, err := ReadInt64(&buf)
	if err != nil {
		t.Fatalf("ReadInt64: %v", err)
	}
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 2 {
		t.Fatalf("shape = %v, want [2 2]", shape)
	}
	want := []int64{0, 1, 2, -1}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestWriteShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInt64(&buf, []int{4}, []int64{1, 2}); err == nil {
		t.Error("expected error for shape/data mismatch")
	}
	if err := WriteFloat32(&buf, []int{2, 2}, []float32{1}); err == nil {
		t.Error("expected error for shape/data mismatch")
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"bad magic", []byte("NOTNUMPY\x01\x00")},
		{"fortran order", rawFile("{'descr': '<i8', 'fortran_order': True, 'shape': (1,), }", make([]byte, 8))},
		{"big endian", rawFile("{'descr': '>i8', 'fortran_order': False, 'shape': (1,), }", make([]byte, 8))},
		{"short data", rawFile("{'descr': '<i8', 'fortran_order': False, 'shape': (4,), }", make([]byte, 8))},
		{"truncated header", []byte("\x93NUMPY\x01\x00\xff\xff")},
		{"oversized dimension", rawFile("{'descr': '<i8', 'fortran_order': False, 'shape': (1152921504606846977,), }", nil)},
		{"overflowing shape product", rawFile("{'descr': '<i8', 'fortran_order': False, 'shape': (3037000500, 3037000500), }", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ReadInt64(bytes.NewReader(tt.raw)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadSmallDtypes(t *testing.T) {
	tests := []struct {
		name string
		dict string
		data []byte
		want []int64
	}{
		{"int32", "{'descr': '<i4', 'fortran_order': False, 'shape': (2,), }",
			[]byte{5, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff}, []int64{5, -2}},
		{"uint8", "{'descr': '|u1', 'fortran_order': False, 'shape': (3,), }",
			[]byte{0, 2, 5}, []int64{0, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _, err := ReadInt64(bytes.NewReader(rawFile(tt.dict, tt.data)))
			if err != nil {
				t.Fatalf("ReadInt64: %v", err)
			}
			for i := range tt.want {
				if values[i] != tt.want[i] {
					t.Errorf("values[%d] = %d, want %d", i, values[i], tt.want[i])
				}
			}
		})
	}
}
