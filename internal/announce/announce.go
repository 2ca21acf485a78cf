// Package announce publishes the export table of a loaded extension to a
// socket.io endpoint so that other processes can discover it.
package announce

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is emitted when Config.Event is empty.
const DefaultEvent = "extension:loaded"

// DefaultTimeout bounds the connection and acknowledgement wait when
// Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// ErrNoURL is returned when no endpoint is configured.
var ErrNoURL = errors.New("announce: no endpoint URL")

// Config describes where and how to announce.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	AckEvent           string // optional; when set, Announce waits for it
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// ExportInfo is the wire form of one export.
type ExportInfo struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Arity int    `json:"arity"`
}

// Payload is the body of the announcement event.
type Payload struct {
	Exports []ExportInfo `json:"exports"`
}

// NewPayload flattens exports into their wire form.
func NewPayload(exports []bootstrap.Export) Payload {
	p := Payload{Exports: make([]ExportInfo, 0, len(exports))}
	for _, e := range exports {
		p.Exports = append(p.Exports, ExportInfo{
			Path:  e.Name(),
			Kind:  string(e.Kind),
			Arity: e.Arity,
		})
	}
	return p
}

// toWire converts the payload into plain maps and slices, which is what
// the socket.io encoder serializes most predictably.
func (p Payload) toWire() map[string]any {
	exports := make([]any, 0, len(p.Exports))
	for _, e := range p.Exports {
		exports = append(exports, map[string]any{
			"path":  e.Path,
			"kind":  e.Kind,
			"arity": e.Arity,
		})
	}
	return map[string]any{"exports": exports}
}

// Announce connects to cfg.URL, emits the export table of handle and
// disconnects. It fails if the connection, or the acknowledgement when one
// is requested, does not arrive within the timeout.
func Announce(ctx context.Context, cfg Config, handle *bootstrap.Handle) error {
	if cfg.URL == "" {
		return ErrNoURL
	}
	if cfg.Event == "" {
		cfg.Event = DefaultEvent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := ctxlog.FromContext(ctx).With("component", "announce", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("failed to parse URL: %q has no scheme or host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	defer io.Disconnect()

	connectChan := make(chan error, 1)
	ackChan := make(chan struct{}, 1)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})
	if cfg.AckEvent != "" {
		io.Once(types.EventName(cfg.AckEvent), func(...any) {
			ackChan <- struct{}{}
		})
	}

	opCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	io.Connect()
	select {
	case err := <-connectChan:
		if err != nil {
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %v waiting for socket.io connection: %w", cfg.Timeout, opCtx.Err())
	}

	payload := NewPayload(handle.Exports())
	logger.Info("Announcing extension.", "event", cfg.Event, "exports", len(payload.Exports))
	io.Emit(cfg.Event, payload.toWire())

	if cfg.AckEvent == "" {
		return nil
	}
	select {
	case <-ackChan:
		logger.Debug("Announcement acknowledged", "event", cfg.AckEvent)
		return nil
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %v waiting for event '%s': %w", cfg.Timeout, cfg.AckEvent, opCtx.Err())
	}
}
