package wire

import (
	"bufio"
	"fmt"
	"io"
)

// lengthDigits is the width of the hex-ASCII byte-count header preceding
// every frame payload, matching the real protocol's 6-digit length prefix.
const lengthDigits = 6

// maxFrameLen bounds a single payload so a corrupt or malicious length header
// cannot make the reader allocate unbounded memory.
const maxFrameLen = 16 * 1024 * 1024

// ReadFrame reads one length-prefixed payload and parses it as a Value.
func ReadFrame(r *bufio.Reader) (interface{}, error) {
	header := make([]byte, lengthDigits)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	var n int
	if _, err := fmt.Sscanf(string(header), "%06x", &n); err != nil {
		return nil, fmt.Errorf("wire: bad frame header %q: %w", header, err)
	}
	if n < 0 || n > maxFrameLen {
		return nil, fmt.Errorf("wire: frame length %d out of bounds", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: short frame body: %w", err)
	}
	return Parse(string(payload))
}

// WriteFrame serializes v and writes it as one length-prefixed frame.
func WriteFrame(w io.Writer, v interface{}) error {
	payload := Encode(v)
	if len(payload) > maxFrameLen {
		return fmt.Errorf("wire: frame of %d bytes exceeds max %d", len(payload), maxFrameLen)
	}
	header := fmt.Sprintf("%06x", len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := io.WriteString(w, payload)
	return err
}
