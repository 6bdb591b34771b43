// Package shard maps product barcodes onto the directory layout of the
// Open Food Facts image store.
package shard

import (
	"strings"
)

const (
	// Width is the canonical barcode width. Shorter codes are left padded
	// with zeroes, longer ones are used as is.
	Width = 13

	Delimiter = "/"
)

// Path is the four segment shard path of a barcode, e.g. 301/762/042/2003.
type Path struct {
	segments [4]string
}

// Resolve pads id to Width characters and splits it into segments of 3, 3,
// 3 and the rest. Ids longer than Width are never truncated, their last
// segment is simply longer than 4 characters. Segments never split a rune.
func Resolve(id string) Path {
	padded := []rune(id)
	if n := len(padded); n < Width {
		padded = append([]rune(strings.Repeat("0", Width-n)), padded...)
	}

	return Path{
		segments: [4]string{
			string(padded[0:3]),
			string(padded[3:6]),
			string(padded[6:9]),
			string(padded[9:]),
		},
	}
}

func (p Path) Segments() []string {
	res := make([]string, len(p.segments))
	copy(res, p.segments[:])
	return res
}

func (p Path) String() string {
	return strings.Join(p.segments[:], Delimiter)
}
