package gds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// RecordType identifies a GDSII stream record
type RecordType uint8

// Record types used by this package. Unlisted types are skipped on read.
const (
	RecHeader       RecordType = 0x00
	RecBgnLib       RecordType = 0x01
	RecLibName      RecordType = 0x02
	RecUnits        RecordType = 0x03
	RecEndLib       RecordType = 0x04
	RecBgnStr       RecordType = 0x05
	RecStrName      RecordType = 0x06
	RecEndStr       RecordType = 0x07
	RecBoundary     RecordType = 0x08
	RecPath         RecordType = 0x09
	RecSRef         RecordType = 0x0A
	RecARef         RecordType = 0x0B
	RecText         RecordType = 0x0C
	RecLayer        RecordType = 0x0D
	RecDatatype     RecordType = 0x0E
	RecWidth        RecordType = 0x0F
	RecXY           RecordType = 0x10
	RecEndEl        RecordType = 0x11
	RecSName        RecordType = 0x12
	RecColRow       RecordType = 0x13
	RecNode         RecordType = 0x15
	RecTextType     RecordType = 0x16
	RecPresentation RecordType = 0x17
	RecString       RecordType = 0x19
	RecStrans       RecordType = 0x1A
	RecMag          RecordType = 0x1B
	RecAngle        RecordType = 0x1C
	RecPathType     RecordType = 0x21
	RecElFlags      RecordType = 0x26
	RecNodeType     RecordType = 0x2A
	RecPropAttr     RecordType = 0x2B
	RecPropValue    RecordType = 0x2C
	RecBox          RecordType = 0x2D
	RecBoxType      RecordType = 0x2E
	RecPlex         RecordType = 0x2F
	RecBgnExtn      RecordType = 0x30
	RecEndExtn      RecordType = 0x31
)

// DataType is the payload encoding of a record
type DataType uint8

const (
	DataNone     DataType = 0
	DataBitArray DataType = 1
	DataInt16    DataType = 2
	DataInt32    DataType = 3
	DataReal4    DataType = 4
	DataReal8    DataType = 5
	DataASCII    DataType = 6
)

// record is one raw stream record
type record struct {
	Type RecordType
	Data DataType
	Body []byte
}

var errShortRecord = errors.New("record shorter than its header")

// readRecord reads the next record from r
func readRecord(r io.Reader) (record, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return record{}, err
	}
	n := int(binary.BigEndian.Uint16(hdr[:2]))
	if n < 4 {
		return record{}, errShortRecord
	}
	rec := record{Type: RecordType(hdr[2]), Data: DataType(hdr[3]), Body: make([]byte, n-4)}
	if _, err := io.ReadFull(r, rec.Body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return record{}, err
	}
	return rec, nil
}

func (r record) int16s() []int16 {
	out := make([]int16, len(r.Body)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(r.Body[2*i:]))
	}
	return out
}

func (r record) int32s() []int32 {
	out := make([]int32, len(r.Body)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(r.Body[4*i:]))
	}
	return out
}

func (r record) real8s() []float64 {
	out := make([]float64, len(r.Body)/8)
	for i := range out {
		out[i] = decodeReal8(r.Body[8*i : 8*i+8])
	}
	return out
}

func (r record) firstInt16() (int, error) {
	v := r.int16s()
	if len(v) == 0 {
		return 0, fmt.Errorf("record 0x%02X: missing int16 value", uint8(r.Type))
	}
	return int(v[0]), nil
}

func (r record) firstInt32() (int64, error) {
	v := r.int32s()
	if len(v) == 0 {
		return 0, fmt.Errorf("record 0x%02X: missing int32 value", uint8(r.Type))
	}
	return int64(v[0]), nil
}

func (r record) firstReal8() (float64, error) {
	v := r.real8s()
	if len(v) == 0 {
		return 0, fmt.Errorf("record 0x%02X: missing real8 value", uint8(r.Type))
	}
	return v[0], nil
}

// text decodes an ASCII record. GDSII strings are byte strings; they are
// decoded as ISO-8859-1 so that non-ASCII bytes survive as runes.
func (r record) text() (string, error) {
	raw := strings.TrimRight(string(r.Body), "\x00")
	s, err := charmap.ISO8859_1.NewDecoder().String(raw)
	if err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}
	return s, nil
}

// decodeReal8 converts a GDSII excess-64 base-16 real
func decodeReal8(b []byte) float64 {
	neg := b[0]&0x80 != 0
	exp := int(b[0]&0x7f) - 64
	var mant uint64
	for _, c := range b[1:8] {
		mant = mant<<8 | uint64(c)
	}
	v := float64(mant) / (1 << 56) * math.Pow(16, float64(exp))
	if neg {
		v = -v
	}
	return v
}

// encodeReal8 converts a float to the GDSII excess-64 base-16 real format
func encodeReal8(v float64) [8]byte {
	var out [8]byte
	if v == 0 {
		return out
	}
	neg := v < 0
	if neg {
		v = -v
	}

	exp := 0
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}

	mant := uint64(math.Round(v * (1 << 56)))
	if mant >= 1<<56 {
		mant >>= 4
		exp++
	}

	out[0] = byte(exp + 64)
	if neg {
		out[0] |= 0x80
	}
	for i := 7; i >= 1; i-- {
		out[i] = byte(mant)
		mant >>= 8
	}
	return out
}

// recordWriter emits stream records and remembers the first error
type recordWriter struct {
	w   io.Writer
	err error
}

func (rw *recordWriter) write(t RecordType, d DataType, body []byte) {
	if rw.err != nil {
		return
	}
	if len(body)+4 > math.MaxUint16 {
		rw.err = fmt.Errorf("record 0x%02X too long (%d bytes)", uint8(t), len(body))
		return
	}
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[:2], uint16(len(body)+4))
	hdr[2], hdr[3] = byte(t), byte(d)
	if _, err := rw.w.Write(hdr[:]); err != nil {
		rw.err = err
		return
	}
	if len(body) > 0 {
		if _, err := rw.w.Write(body); err != nil {
			rw.err = err
		}
	}
}

func (rw *recordWriter) empty(t RecordType) {
	rw.write(t, DataNone, nil)
}

func (rw *recordWriter) int16s(t RecordType, vals ...int) {
	body := make([]byte, 2*len(vals))
	for i, v := range vals {
		if v < math.MinInt16 || v > math.MaxInt16 {
			rw.fail(fmt.Errorf("record 0x%02X: value %d out of int16 range", uint8(t), v))
			return
		}
		binary.BigEndian.PutUint16(body[2*i:], uint16(int16(v)))
	}
	rw.write(t, DataInt16, body)
}

func (rw *recordWriter) int32s(t RecordType, vals ...int64) {
	body := make([]byte, 4*len(vals))
	for i, v := range vals {
		if v < math.MinInt32 || v > math.MaxInt32 {
			rw.fail(fmt.Errorf("record 0x%02X: value %d out of int32 range", uint8(t), v))
			return
		}
		binary.BigEndian.PutUint32(body[4*i:], uint32(int32(v)))
	}
	rw.write(t, DataInt32, body)
}

func (rw *recordWriter) real8s(t RecordType, vals ...float64) {
	body := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		b := encodeReal8(v)
		body = append(body, b[:]...)
	}
	rw.write(t, DataReal8, body)
}

func (rw *recordWriter) text(t RecordType, s string) {
	enc, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		rw.fail(fmt.Errorf("encode %q: %w", s, err))
		return
	}
	body := []byte(enc)
	if len(body)%2 == 1 {
		body = append(body, 0)
	}
	rw.write(t, DataASCII, body)
}

func (rw *recordWriter) fail(err error) {
	if rw.err == nil {
		rw.err = err
	}
}
