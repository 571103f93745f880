package protocol

import (
	"bytes"
	"fmt"
	"io"
	"net"

	"github.com/klauspost/compress/zlib"

	"github.com/StoreStation/vibebot/pkg/varint"
)

// maxFrameLen bounds a single frame's declared length, matching the
// largest value a 3-byte VarInt can carry. Anything larger is a
// ProtocolError: either a corrupted stream or a hostile peer.
const maxFrameLen = 2097151

// CompressionOff marks a connection that has not received set-compression.
const CompressionOff = -1

// Inbound is a decoded frame: its packet id and the remaining payload.
type Inbound struct {
	ID      int32
	Payload []byte
}

// Conn is the framed transport: length-prefixed, with an optional zlib
// compression envelope activated once the server sends a nonnegative
// threshold. It owns no goroutines; callers drive Recv from their own
// read loop and Send from theirs, per the single-threaded event model.
type Conn struct {
	nc          net.Conn
	threshold   int32
	compression bool
}

// Dial opens a TCP connection to host:port.
func Dial(host string, port uint16) (*Conn, error) {
	nc, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, err
	}
	return &Conn{nc: nc, threshold: CompressionOff}, nil
}

// SetCompression activates (or deactivates, if threshold < 0) the
// compression envelope with the given byte threshold.
func (c *Conn) SetCompression(threshold int32) {
	c.threshold = threshold
	c.compression = threshold >= 0
}

// Close tears down the underlying socket.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// NetConn returns the underlying socket, for callers that need to observe
// it (e.g. TCP_INFO diagnostics) without driving Send/Recv themselves.
func (c *Conn) NetConn() net.Conn {
	return c.nc
}

// Recv blocks for the next complete frame and decodes it into a packet id
// and payload, unwrapping the compression envelope if active.
func (c *Conn) Recv() (*Inbound, error) {
	length, _, err := varint.ReadInt32(c.nc)
	if err != nil {
		return nil, err
	}
	if length < 1 || length > maxFrameLen {
		return nil, fmt.Errorf("protocol: invalid frame length %d", length)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(c.nc, frame); err != nil {
		return nil, err
	}

	payload, err := c.decodeFrame(frame)
	if err != nil {
		return nil, err
	}

	pr := bytes.NewReader(payload)
	id, idLen, err := varint.ReadInt32(pr)
	if err != nil {
		return nil, err
	}
	return &Inbound{ID: id, Payload: payload[idLen:]}, nil
}

func (c *Conn) decodeFrame(frame []byte) ([]byte, error) {
	if !c.compression {
		return frame, nil
	}

	fr := bytes.NewReader(frame)
	uncompressedLen, n, err := varint.ReadInt32(fr)
	if err != nil {
		return nil, err
	}
	rest := frame[n:]
	if uncompressedLen == 0 {
		return rest, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("protocol: zlib open: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("protocol: zlib inflate: %w", err)
	}
	if int32(len(out)) != uncompressedLen {
		return nil, fmt.Errorf("protocol: inflated length %d != declared %d", len(out), uncompressedLen)
	}
	return out, nil
}

// Send encodes id and payload into a frame (applying the compression
// envelope if active) and writes it to the socket.
func (c *Conn) Send(id int32, payload []byte) error {
	var body bytes.Buffer
	varint.WriteInt32(&body, id)
	body.Write(payload)

	frame, err := c.encodeFrame(body.Bytes())
	if err != nil {
		return err
	}

	var out bytes.Buffer
	varint.WriteInt32(&out, int32(len(frame)))
	out.Write(frame)

	_, err = c.nc.Write(out.Bytes())
	return err
}

func (c *Conn) encodeFrame(body []byte) ([]byte, error) {
	if !c.compression {
		return body, nil
	}

	var out bytes.Buffer
	if int32(len(body)) < c.threshold {
		varint.WriteInt32(&out, 0)
		out.Write(body)
		return out.Bytes(), nil
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("protocol: zlib deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("protocol: zlib close: %w", err)
	}

	varint.WriteInt32(&out, int32(len(body)))
	out.Write(compressed.Bytes())
	return out.Bytes(), nil
}
