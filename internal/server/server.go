// Package server implements the TCP frame listener: an accept loop that
// decodes wire frames off each connection and dispatches them to a
// Handler, one goroutine per connection, with a cancellation signal that
// closes the listener to unblock Accept.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/hytalecompat/gameserver/internal/frame"
	"github.com/hytalecompat/gameserver/internal/registry"
	"github.com/hytalecompat/gameserver/internal/wire"
)

// maxFrameBufferBytes bounds how much unconsumed stream data a connection
// may accumulate while assembling one frame, guarding against a peer that
// declares a large length and then stalls.
const maxFrameBufferBytes = 1 << 21 // 2 MiB

// readChunkBytes is how much is read from the socket per recv call while
// a frame is still incomplete.
const readChunkBytes = 4096

// Handler dispatches one decoded frame for a connection. Implementations
// write responses directly via Conn.Send. Returning an error closes the
// connection.
type Handler interface {
	HandleFrame(ctx context.Context, c *Conn, fr frame.Frame) error
}

// Conn is one accepted connection: the raw socket plus the frame codec
// used to read and write on it.
type Conn struct {
	raw   net.Conn
	codec *frame.Codec
}

// RemoteAddr returns the connection's remote address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Send encodes id/payload as one wire frame and writes it to the
// connection.
func (c *Conn) Send(id uint32, payload []byte) error {
	buf, err := c.codec.Encode(id, payload)
	if err != nil {
		return err
	}
	_, err = c.raw.Write(buf)
	return err
}

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.raw.Close() }

// Server accepts TCP connections on addr and dispatches decoded frames to
// a Handler.
type Server struct {
	addr    string
	codec   *frame.Codec
	handler Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New builds a Server. logger defaults to slog.Default() when nil.
func New(addr string, codec *frame.Codec, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, codec: codec, handler: handler, logger: logger}
}

// Serve listens on s.addr and accepts connections until ctx is canceled.
// Cancellation closes the listener, which unblocks Accept with an error
// this method treats as a clean shutdown; Serve then waits for in-flight
// connections before returning. Suitable for errgroup.Group.Go.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("frame server listening", slog.String("addr", s.addr))

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stopped:
		}
	}()
	defer close(stopped)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, raw net.Conn) {
	defer raw.Close()
	addr := raw.RemoteAddr().String()
	s.logger.Debug("connection accepted", slog.String("remote", addr))

	c := &Conn{raw: raw, codec: s.codec}
	r := bufio.NewReader(raw)
	buf := make([]byte, 0, readChunkBytes)

	for {
		fr, n, err := readFrame(s.codec, r, &buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("connection closed on frame error", slog.String("remote", addr), slog.String("error", err.Error()))
			}
			return
		}
		buf = buf[n:]

		if err := s.handler.HandleFrame(ctx, c, fr); err != nil {
			s.logger.Warn("handler error", slog.String("remote", addr), slog.String("packet", registry.Name(fr.ID)), slog.String("error", err.Error()))
			return
		}
	}
}

// readFrame accumulates bytes from r into *buf until codec.Decode
// succeeds or a non-recoverable error occurs. On success it returns the
// decoded frame and the number of leading bytes of *buf it consumed; the
// caller re-slices *buf past that point before the next call.
func readFrame(codec *frame.Codec, r *bufio.Reader, buf *[]byte) (frame.Frame, int, error) {
	for {
		fr, n, err := codec.Decode(*buf, 0)
		if err == nil {
			return fr, n, nil
		}
		if !isIncompleteFrame(err) {
			return frame.Frame{}, 0, err
		}
		if len(*buf) >= maxFrameBufferBytes {
			return frame.Frame{}, 0, fmt.Errorf("server: frame exceeds %d byte buffer", maxFrameBufferBytes)
		}

		chunk := make([]byte, readChunkBytes)
		n2, readErr := r.Read(chunk)
		if n2 > 0 {
			*buf = append(*buf, chunk[:n2]...)
		}
		if readErr != nil {
			if n2 == 0 {
				return frame.Frame{}, 0, readErr
			}
			continue
		}
	}
}

func isIncompleteFrame(err error) bool {
	return errors.Is(err, frame.ErrTruncated) || errors.Is(err, wire.ErrVarintTruncated)
}

// Addr returns the listener's bound address, or nil if Serve hasn't
// bound one yet. Useful when addr passed to New ends in ":0".
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting new connections and waits for in-flight handlers
// to return.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	s.wg.Wait()
	return err
}
