package infra

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// maxLineSize bounds a single notification line; snapshots of large
// pages can be several hundred kilobytes.
const maxLineSize = 4 << 20

// notificationLine is the wire form of one notification.
type notificationLine struct {
	App  string    `json:"app"`
	Kind string    `json:"kind"`
	Root *NodeJSON `json:"root,omitempty"`
}

// ParseNotification decodes a single JSON line.
func ParseNotification(line []byte) (domain.Notification, error) {
	var raw notificationLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return domain.Notification{}, fmt.Errorf("invalid notification: %w", err)
	}
	if raw.App == "" {
		return domain.Notification{}, errors.New("invalid notification: missing app")
	}
	kind := domain.EventKind(raw.Kind)
	if !kind.Valid() {
		return domain.Notification{}, fmt.Errorf("invalid notification: unknown kind %q", raw.Kind)
	}

	n := domain.Notification{AppID: raw.App, Kind: kind}
	if raw.Root != nil {
		n.Root = NewJSONNode(raw.Root)
	}
	return n, nil
}

// EncodeNotification renders a notification line; used by fixtures and
// feeders writing to the socket.
func EncodeNotification(app string, kind domain.EventKind, root *NodeJSON) ([]byte, error) {
	b, err := json.Marshal(notificationLine{App: app, Kind: string(kind), Root: root})
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// StreamSource reads newline-delimited notifications from a reader (stdin).
type StreamSource struct {
	r      io.Reader
	logger *zap.Logger
}

// NewStreamSource creates a source over r.
func NewStreamSource(r io.Reader, logger *zap.Logger) *StreamSource {
	return &StreamSource{r: r, logger: logger}
}

// Subscribe starts reading. The channel closes at end of input.
func (s *StreamSource) Subscribe(ctx context.Context) (<-chan domain.Notification, error) {
	out := make(chan domain.Notification)
	go func() {
		defer close(out)
		if err := pump(ctx, s.r, out, s.logger); err != nil && ctx.Err() == nil {
			s.logger.Warn("notification stream ended with error", zap.Error(err))
		}
	}()
	return out, nil
}

// SocketSource accepts feeders on a unix socket; each connection streams
// newline-delimited notifications.
type SocketSource struct {
	path   string
	logger *zap.Logger
}

// NewSocketSource creates a source listening at path.
func NewSocketSource(path string, logger *zap.Logger) *SocketSource {
	return &SocketSource{path: path, logger: logger}
}

// Subscribe listens on the socket until ctx is canceled.
func (s *SocketSource) Subscribe(ctx context.Context) (<-chan domain.Notification, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on notification socket: %w", err)
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("failed to chmod notification socket: %w", err)
	}

	s.logger.Info("listening for notifications", zap.String("socket", s.path))

	out := make(chan domain.Notification)
	stopListener := context.AfterFunc(ctx, func() { _ = ln.Close() })

	go func() {
		var wg sync.WaitGroup
		defer func() {
			stopListener()
			_ = ln.Close()
			wg.Wait()
			_ = os.Remove(s.path)
			close(out)
		}()

		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("notification socket accept failed", zap.Error(err))
				}
				return
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				stopConn := context.AfterFunc(ctx, func() { _ = conn.Close() })
				defer stopConn()

				if err := pump(ctx, conn, out, s.logger); err != nil && ctx.Err() == nil {
					s.logger.Debug("feeder disconnected", zap.Error(err))
				}
			}()
		}
	}()

	return out, nil
}

// pump decodes lines from r into out. Malformed lines, and lines longer
// than maxLineSize, are logged and skipped; only end of input or a read
// error ends the feed.
func pump(ctx context.Context, r io.Reader, out chan<- domain.Notification, logger *zap.Logger) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	oversized := false

	for {
		chunk, err := br.ReadSlice('\n')
		switch {
		case oversized:
		case len(line)+len(chunk) > maxLineSize:
			oversized = true
			line = line[:0]
		default:
			line = append(line, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if oversized {
			logger.Warn("skipping oversized notification", zap.Int("limit_bytes", maxLineSize))
			oversized = false
		} else if derr := deliver(ctx, line, out, logger); derr != nil {
			return derr
		}
		line = line[:0]

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// deliver parses one line and sends it, unless it is blank or malformed.
func deliver(ctx context.Context, line []byte, out chan<- domain.Notification, logger *zap.Logger) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	n, err := ParseNotification(line)
	if err != nil {
		logger.Warn("skipping malformed notification", zap.Error(err))
		return nil
	}

	select {
	case out <- n:
		return nil
	case <-ctx.Done():
		if n.Root != nil {
			n.Root.Release()
		}
		return ctx.Err()
	}
}

// Ensure both sources implement domain.NotificationSource.
var _ domain.NotificationSource = (*StreamSource)(nil)
var _ domain.NotificationSource = (*SocketSource)(nil)
