package conn

import (
	"io"
	"sync"

	"github.com/mcwire/mcwire/internal/crypto"
)

// The cipher stages sit directly on the socket, below the frame layer:
// frames are encrypted after framing and decrypted before the frame
// reader parses them, length prefix included. Both stages start as plain
// pass-throughs; EnableEncryption swaps the stream in mid-connection
// without re-wrapping the reader chain, so no buffered byte is ever
// transformed twice.

type cipherReader struct {
	src io.Reader

	mu     sync.Mutex
	stream *crypto.CFB8
}

func (r *cipherReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.mu.Lock()
		if r.stream != nil {
			r.stream.XORKeyStream(p[:n], p[:n])
		}
		r.mu.Unlock()
	}
	return n, err
}

func (r *cipherReader) enable(s *crypto.CFB8) {
	r.mu.Lock()
	r.stream = s
	r.mu.Unlock()
}

type cipherWriter struct {
	dst io.Writer

	mu     sync.Mutex
	stream *crypto.CFB8
}

func (w *cipherWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	stream := w.stream
	w.mu.Unlock()

	if stream == nil {
		return w.dst.Write(p)
	}
	// Transform a copy; an io.Writer must not scribble on its input.
	enc := make([]byte, len(p))
	stream.XORKeyStream(enc, p)
	return w.dst.Write(enc)
}

func (w *cipherWriter) enable(s *crypto.CFB8) {
	w.mu.Lock()
	w.stream = s
	w.mu.Unlock()
}
