package tapesoup

import (
	bin "encoding/binary"
	"errors"
)

var errCorruptGrid = errors.New("corrupt grid encoding")

type varintReader struct {
	data []byte
	err  error
}

func (r *varintReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := bin.Uvarint(r.data)
	if n <= 0 {
		r.err = errCorruptGrid
		return 0
	}
	r.data = r.data[n:]
	return v
}

func (r *varintReader) varint() int64 {
	if r.err != nil {
		return 0
	}
	v, n := bin.Varint(r.data)
	if n <= 0 {
		r.err = errCorruptGrid
		return 0
	}
	r.data = r.data[n:]
	return v
}
