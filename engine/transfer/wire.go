package transfer

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/npillmayer/mtext/core"
)

// magic starts every framed message.
var magic = [4]byte{'M', 'T', 'X', 'G'}

// maxFrame limits the size of a single frame part when reading.
const maxFrame = 1 << 30

// WriteTo writes the message as a frame: magic, the JSON header, the
// number of payload buffers, and the buffers. Sizes are uint32
// little-endian.
func (msg *Message) WriteTo(w io.Writer) (int64, error) {
	header, err := json.Marshal(msg.Header)
	if err != nil {
		return 0, core.WrapError(err, core.ECODEC, "cannot marshal transfer header")
	}
	cw := &countingWriter{w: bufio.NewWriter(w)}
	cw.write(magic[:])
	cw.u32(len(header))
	cw.write(header)
	cw.u32(len(msg.Payload))
	for _, b := range msg.Payload {
		cw.u32(len(b))
		cw.write(b)
	}
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

// ReadMessage reads a message framed by WriteTo.
func ReadMessage(r io.Reader) (*Message, error) {
	br := bufio.NewReader(r)
	var m [4]byte
	if _, err := io.ReadFull(br, m[:]); err != nil {
		return nil, core.WrapError(err, core.ECODEC, "cannot read transfer frame")
	}
	if m != magic {
		return nil, core.Error(core.ECODEC, "not a transfer frame")
	}
	header, err := readPart(br)
	if err != nil {
		return nil, err
	}
	msg := &Message{}
	if err := json.Unmarshal(header, &msg.Header); err != nil {
		return nil, core.WrapError(err, core.ECODEC, "cannot unmarshal transfer header")
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, core.WrapError(err, core.ECODEC, "cannot read payload size")
	}
	for i := uint32(0); i < count; i++ {
		b, err := readPart(br)
		if err != nil {
			return nil, err
		}
		msg.Payload = append(msg.Payload, b)
	}
	return msg, nil
}

func readPart(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, core.WrapError(err, core.ECODEC, "cannot read frame part length")
	}
	if n > maxFrame {
		return nil, core.Error(core.ECODEC, "frame part of %d bytes too large", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, core.WrapError(err, core.ECODEC, "truncated transfer frame")
	}
	return b, nil
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (cw *countingWriter) write(b []byte) {
	if cw.err != nil {
		return
	}
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	cw.err = err
}

func (cw *countingWriter) u32(n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	cw.write(b[:])
}
