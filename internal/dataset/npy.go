package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

type npyHeader struct {
	order   binary.ByteOrder
	kind    byte // 'f', 'i' or 'u'
	size    int
	fortran bool
	shape   []int
}

// decodeNPY reads a NumPy array. A 1-D array is one channel; a 2-D array
// of shape (samples, channels) is split along its second axis.
func decodeNPY(r io.Reader, _ *Info) ([]Channel, error) {
	br := bufio.NewReader(r)
	hdr, err := readNPYHeader(br)
	if err != nil {
		return nil, err
	}

	rows, cols := 0, 1
	switch len(hdr.shape) {
	case 1:
		rows = hdr.shape[0]
	case 2:
		rows, cols = hdr.shape[0], hdr.shape[1]
	default:
		return nil, fmt.Errorf("npy array has %d dimensions, want 1 or 2", len(hdr.shape))
	}

	channels := make([]Channel, cols)
	for c := range channels {
		channels[c].Samples = make([]float64, rows)
	}
	buf := make([]byte, hdr.size)
	for n := range rows * cols {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("reading npy element %d: %w", n, err)
		}
		v, err := hdr.value(buf)
		if err != nil {
			return nil, err
		}
		row, col := n/cols, n%cols
		if hdr.fortran {
			row, col = n%rows, n/rows
		}
		channels[col].Samples[row] = v
	}
	return channels, nil
}

func readNPYHeader(br *bufio.Reader) (npyHeader, error) {
	var hdr npyHeader
	magic := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, magic); err != nil {
		return hdr, fmt.Errorf("reading npy magic: %w", err)
	}
	if string(magic[:len(npyMagic)]) != string(npyMagic) {
		return hdr, fmt.Errorf("not an npy file")
	}

	var headerLen int
	switch major := magic[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return hdr, err
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return hdr, err
		}
		headerLen = int(n)
	default:
		return hdr, fmt.Errorf("unsupported npy version %d", major)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(br, raw); err != nil {
		return hdr, fmt.Errorf("reading npy header: %w", err)
	}
	text := string(raw)

	m := npyDescrRe.FindStringSubmatch(text)
	if m == nil || len(m[1]) < 3 {
		return hdr, fmt.Errorf("npy header has no descr")
	}
	descr := m[1]
	switch descr[0] {
	case '<', '|', '=':
		hdr.order = binary.LittleEndian
	case '>':
		hdr.order = binary.BigEndian
	default:
		return hdr, fmt.Errorf("unsupported npy byte order %q", descr)
	}
	hdr.kind = descr[1]
	size, err := strconv.Atoi(descr[2:])
	if err != nil {
		return hdr, fmt.Errorf("unsupported npy dtype %q", descr)
	}
	hdr.size = size

	if m := npyFortranRe.FindStringSubmatch(text); m != nil {
		hdr.fortran = m[1] == "True"
	}

	m = npyShapeRe.FindStringSubmatch(text)
	if m == nil {
		return hdr, fmt.Errorf("npy header has no shape")
	}
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return hdr, fmt.Errorf("bad npy shape %q", m[1])
		}
		hdr.shape = append(hdr.shape, n)
	}
	if _, err := hdr.value(make([]byte, hdr.size)); err != nil {
		return hdr, err
	}
	return hdr, nil
}

func (h npyHeader) value(b []byte) (float64, error) {
	switch {
	case h.kind == 'f' && h.size == 4:
		return float64(math.Float32frombits(h.order.Uint32(b))), nil
	case h.kind == 'f' && h.size == 8:
		return math.Float64frombits(h.order.Uint64(b)), nil
	case h.kind == 'i' && h.size == 1:
		return float64(int8(b[0])), nil
	case h.kind == 'i' && h.size == 2:
		return float64(int16(h.order.Uint16(b))), nil
	case h.kind == 'i' && h.size == 4:
		return float64(int32(h.order.Uint32(b))), nil
	case h.kind == 'i' && h.size == 8:
		return float64(int64(h.order.Uint64(b))), nil
	case h.kind == 'u' && h.size == 1:
		return float64(b[0]), nil
	case h.kind == 'u' && h.size == 2:
		return float64(h.order.Uint16(b)), nil
	case h.kind == 'u' && h.size == 4:
		return float64(h.order.Uint32(b)), nil
	case h.kind == 'u' && h.size == 8:
		return float64(h.order.Uint64(b)), nil
	}
	return 0, fmt.Errorf("unsupported npy dtype %c%d", h.kind, h.size)
}
