package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"embedkit/internal/vecindex"
)

// Raw vector rows are encoded as: uint32 dimension, uint32 row count, then
// count*dimension float32 values, all little-endian.

func encodeRows(dim int, rows [][]float32) []byte {
	buf := make([]byte, 8, 8+len(rows)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(rows)))
	for _, row := range rows {
		for _, v := range row {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			buf = append(buf, b[:]...)
		}
	}
	return buf
}

func decodeRows(data []byte) (dim int, rows [][]float32, err error) {
	if len(data) < 8 {
		return 0, nil, fmt.Errorf("%w: vector artifact truncated at %d bytes",
			vecindex.ErrCorruptIndex, len(data))
	}
	dim = int(binary.LittleEndian.Uint32(data[0:4]))
	count := int(binary.LittleEndian.Uint32(data[4:8]))
	body := data[8:]
	if dim <= 0 || len(body) != count*dim*4 {
		return 0, nil, fmt.Errorf("%w: vector artifact declares %d rows of dimension %d but holds %d bytes",
			vecindex.ErrCorruptIndex, count, dim, len(body))
	}

	rows = make([][]float32, count)
	for i := 0; i < count; i++ {
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			off := (i*dim + j) * 4
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[off : off+4]))
		}
		rows[i] = row
	}
	return dim, rows, nil
}
