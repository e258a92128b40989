package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// dataPrefix marks lines that carry an envelope payload. Anything else
// (blank separators, comments) is skipped.
var dataPrefix = []byte("data: ")

// Decoder assembles protocol lines from arbitrarily sliced transport
// chunks. It buffers the trailing partial line across calls, so feeding
// it the same byte stream in any chunking yields the same envelopes.
//
// Decoder is a pure transformation: it never reads from the network and
// does not own the reader lifecycle.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode appends chunk to the internal buffer and returns all envelopes
// completed by it. Lines that fail JSON parsing are skipped; one bad
// line never aborts the stream.
func (d *Decoder) Decode(chunk []byte) []Envelope {
	d.buf.Write(chunk)

	var envs []Envelope
	for {
		data := d.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return envs
		}
		line := make([]byte, i)
		copy(line, data[:i])
		d.buf.Next(i + 1)

		if env, ok := decodeLine(line); ok {
			envs = append(envs, env)
		}
	}
}

// Flush makes a best-effort parse of any unterminated trailing bytes.
// Call it once when the underlying read reports completion. Trailing
// bytes that don't parse are discarded.
func (d *Decoder) Flush() []Envelope {
	rest := d.buf.Bytes()
	d.buf.Reset()
	if env, ok := decodeLine(rest); ok {
		return []Envelope{env}
	}
	return nil
}

// decodeLine parses one protocol line. Blank lines, non-data lines, and
// malformed JSON all report ok=false.
func decodeLine(line []byte) (Envelope, bool) {
	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, dataPrefix) {
		return Envelope{}, false
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if len(payload) == 0 {
		return Envelope{}, false
	}
	env, err := parseEnvelope(payload)
	if err != nil {
		return Envelope{}, false
	}
	return env, true
}

// readBufferSize is the transport read granularity for Consume.
const readBufferSize = 4096

// ErrStopped is returned by Consume when the handler asks to stop early.
var ErrStopped = errors.New("stream: stopped by handler")

// Handler receives decoded envelopes in stream order. Returning false
// stops consumption.
type Handler func(Envelope) bool

// Consume reads r to completion, decoding envelopes and passing each to
// fn. The context is checked between reads so an abort actually releases
// the connection; callers should also close r when ctx is done to unblock
// a pending Read. On EOF, buffered trailing bytes are flushed through fn.
func Consume(ctx context.Context, r io.Reader, fn Handler) error {
	d := NewDecoder()
	buf := make([]byte, readBufferSize)

	emit := func(envs []Envelope) bool {
		for _, env := range envs {
			if !fn(env) {
				return false
			}
		}
		return true
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if !emit(d.Decode(buf[:n])) {
				return ErrStopped
			}
		}
		if err != nil {
			if err == io.EOF {
				if !emit(d.Flush()) {
					return ErrStopped
				}
				return nil
			}
			if ctx.Err() != nil {
				// Body closed under us by the abort path.
				return ctx.Err()
			}
			return err
		}
	}
}
