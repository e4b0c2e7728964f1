package recording

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Minimal reader for NPY version 1.0 files holding one-dimensional
// little-endian arrays, which is all the acquisition sidecars ever
// contain. The header is the documented python-literal dict:
//
//	{'descr': '<f8', 'fortran_order': False, 'shape': (12345,), }
var npyMagic = []byte("\x93NUMPY")

// npyHeader holds the fields parsed from an NPY header dict.
type npyHeader struct {
	descr string
	count int
}

// readNpyHeader validates the magic and parses the header of an open file,
// leaving the reader positioned at the start of the array data.
func readNpyHeader(f *os.File) (*npyHeader, error) {
	pre := make([]byte, 10)
	if _, err := io.ReadFull(f, pre); err != nil {
		return nil, fmt.Errorf("reading npy preamble: %w", err)
	}
	if string(pre[:6]) != string(npyMagic) {
		return nil, fmt.Errorf("not an npy file")
	}
	if pre[6] != 1 {
		return nil, fmt.Errorf("unsupported npy version %d.%d", pre[6], pre[7])
	}

	headerLen := int(binary.LittleEndian.Uint16(pre[8:10]))
	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("reading npy header: %w", err)
	}
	header := string(raw)

	descr, err := npyDictString(header, "descr")
	if err != nil {
		return nil, err
	}
	if strings.Contains(header, "'fortran_order': True") {
		return nil, fmt.Errorf("fortran-ordered npy not supported")
	}

	count, err := npyShapeCount(header)
	if err != nil {
		return nil, err
	}
	return &npyHeader{descr: descr, count: count}, nil
}

// npyDictString extracts a quoted string value for key from the header dict.
func npyDictString(header, key string) (string, error) {
	marker := "'" + key + "':"
	i := strings.Index(header, marker)
	if i < 0 {
		return "", fmt.Errorf("npy header missing %q", key)
	}
	rest := header[i+len(marker):]
	open := strings.Index(rest, "'")
	if open < 0 {
		return "", fmt.Errorf("npy header: malformed %q", key)
	}
	rest = rest[open+1:]
	end := strings.Index(rest, "'")
	if end < 0 {
		return "", fmt.Errorf("npy header: malformed %q", key)
	}
	return rest[:end], nil
}

// npyShapeCount parses the shape tuple and returns the element count of a
// one-dimensional array.
func npyShapeCount(header string) (int, error) {
	i := strings.Index(header, "'shape':")
	if i < 0 {
		return 0, fmt.Errorf("npy header missing shape")
	}
	rest := header[i:]
	open := strings.Index(rest, "(")
	cl := strings.Index(rest, ")")
	if open < 0 || cl < open {
		return 0, fmt.Errorf("npy header: malformed shape")
	}
	dims := strings.Split(rest[open+1:cl], ",")
	var sizes []int
	for _, d := range dims {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		n, err := strconv.Atoi(d)
		if err != nil {
			return 0, fmt.Errorf("npy header: bad dimension %q", d)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) != 1 {
		return 0, fmt.Errorf("npy: expected 1-D array, got %d dimensions", len(sizes))
	}
	return sizes[0], nil
}

// readNpyFloat64 reads a 1-D '<f8' array from path.
func readNpyFloat64(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdr, err := readNpyHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if hdr.descr != "<f8" {
		return nil, fmt.Errorf("%s: expected dtype <f8, got %s", path, hdr.descr)
	}

	raw := make([]byte, hdr.count*8)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("%s: reading data: %w", path, err)
	}
	out := make([]float64, hdr.count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}

// readNpyInt64 reads a 1-D '<i8' array from path.
func readNpyInt64(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdr, err := readNpyHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if hdr.descr != "<i8" {
		return nil, fmt.Errorf("%s: expected dtype <i8, got %s", path, hdr.descr)
	}

	raw := make([]byte, hdr.count*8)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("%s: reading data: %w", path, err)
	}
	out := make([]int64, hdr.count)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}
