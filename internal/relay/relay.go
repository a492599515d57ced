// Package relay forwards the output of a remote command to the caller.
package relay

import (
	"io"
	"unicode/utf8"

	"github.com/termoshtt/cport/internal/driver"
)

// Copy writes every chunk from chunks to w as it arrives, decoded lossily as
// UTF-8, and returns once chunks is closed. stdout and stderr chunks are
// merged in arrival order.
//
// A multi-byte character split across two chunks is held back until its
// remaining bytes arrive, so splitting never produces replacement
// characters. After the first write error the remaining chunks are drained
// and discarded and that error is returned.
func Copy(w io.Writer, chunks <-chan driver.Chunk) (int64, error) {
	var (
		written int64
		pending []byte
		werr    error
	)
	for c := range chunks {
		if werr != nil {
			continue
		}
		data := append(pending, c.Data...)
		data, pending = splitIncomplete(data)
		if len(data) == 0 {
			continue
		}
		n, err := io.WriteString(w, driver.Chunk{Data: data}.String())
		written += int64(n)
		werr = err
	}
	if werr == nil && len(pending) > 0 {
		n, err := io.WriteString(w, driver.Chunk{Data: pending}.String())
		written += int64(n)
		werr = err
	}
	return written, werr
}

// splitIncomplete separates a trailing, possibly incomplete UTF-8 sequence
// from data. Invalid bytes are never held back.
func splitIncomplete(data []byte) ([]byte, []byte) {
	// A sequence is at most utf8.UTFMax bytes; look for its start.
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		b := data[len(data)-i]
		if utf8.RuneStart(b) {
			if !utf8.FullRune(data[len(data)-i:]) {
				return data[:len(data)-i], append([]byte(nil), data[len(data)-i:]...)
			}
			break
		}
	}
	return data, nil
}
