package gds

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Compressed reports whether a file name asks for a gzip-compressed stream
func Compressed(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".gz")
}

// decompress unwraps a gzip stream; anything else is passed through
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil || head[0] != 0x1f || head[1] != 0x8b {
		return br, nil
	}
	return gzip.NewReader(br)
}

// writeCompressed writes the library as a gzip-compressed stream
func writeCompressed(w io.Writer, lib *Library) error {
	zw := gzip.NewWriter(w)
	if err := Write(zw, lib); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
