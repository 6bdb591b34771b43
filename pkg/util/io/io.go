package io

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// UnknownSize is reported for readers whose length cannot be known upfront.
const UnknownSize int64 = -1

// SizeOf returns the number of bytes left in r, or UnknownSize.
func SizeOf(r io.Reader) int64 {
	switch f := r.(type) {
	case *bytes.Reader:
		return int64(f.Len())
	case *bytes.Buffer:
		return int64(f.Len())
	case *strings.Reader:
		return int64(f.Len())
	case *os.File:
		fi, err := f.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return UnknownSize
		}
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return UnknownSize
		}
		return fi.Size() - pos
	}

	return UnknownSize
}
