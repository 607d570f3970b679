// Package remotestorage persists the preferences document on a companion
// sync service over socket.io, as an alternative to the local file backend.
//
// The service is a plain keyed blob store: Save pushes the rendered document
// text under the application key, Load asks for it back. A key the service
// has never seen is the normal first-run condition and maps to
// storage.ErrNotFound.
package remotestorage

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/prefstore/internal/ctxlog"
	"github.com/vk/prefstore/internal/document"
	"github.com/vk/prefstore/internal/format"
	"github.com/vk/prefstore/internal/storage"
)

const (
	eventLoad     = "preferences:load"
	eventSave     = "preferences:save"
	eventDocument = "preferences:document"
	eventSaved    = "preferences:saved"
)

// Config describes the companion service connection.
type Config struct {
	// URL of the sync service, e.g. "https://sync.example.com/socket.io".
	URL string
	// Namespace is the socket.io namespace, usually "/".
	Namespace string
	// Key identifies this application's document on the service.
	Key string
	// Format renders and parses the document text that goes over the wire.
	Format format.Format
	// Timeout bounds each load/save round trip. Zero means 10s.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Backend is a storage.Backend that talks to the sync service. Each
// operation uses its own short-lived connection.
type Backend struct {
	cfg Config
}

// New validates cfg and returns a remote backend.
func New(cfg Config) (*Backend, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote storage: URL is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("remote storage: key is required")
	}
	if cfg.Format == nil {
		return nil, fmt.Errorf("remote storage: format is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Backend{cfg: cfg}, nil
}

type opResult struct {
	payload map[string]any
	err     error
}

func (b *Backend) Load(ctx context.Context) (*document.Document, error) {
	payload, err := b.roundTrip(ctx, eventLoad, eventDocument, map[string]any{"key": b.cfg.Key})
	if err != nil {
		return nil, err
	}

	found, _ := payload["found"].(bool)
	if !found {
		return nil, storage.ErrNotFound
	}
	contents, ok := payload["contents"].(string)
	if !ok {
		return nil, fmt.Errorf("remote storage: malformed document payload for key %q", b.cfg.Key)
	}
	return b.cfg.Format.Parse([]byte(contents))
}

func (b *Backend) Save(ctx context.Context, doc *document.Document) error {
	contents, err := b.cfg.Format.Render(doc)
	if err != nil {
		return err
	}
	_, err = b.roundTrip(ctx, eventSave, eventSaved, map[string]any{
		"key":      b.cfg.Key,
		"contents": string(contents),
	})
	return err
}

// roundTrip connects, emits one request event and waits for its reply event,
// bounded by the configured timeout.
func (b *Backend) roundTrip(ctx context.Context, emitEvent, replyEvent string, data map[string]any) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("backend", "remote", "url", b.cfg.URL, "emitEvent", emitEvent)
	logger.Debug("Remote storage round trip started")
	defer logger.Debug("Remote storage round trip finished")

	parsedURL, err := url.Parse(b.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("remote storage: parse URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))
	if b.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(b.cfg.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting remote storage client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to sync service", "sid", io.Id())
		io.Emit(emitEvent, data)
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				done <- opResult{err: fmt.Errorf("remote storage: connect: %w", err)}
				return
			}
		}
		done <- opResult{err: fmt.Errorf("remote storage: connect failed")}
	})

	io.On(types.EventName(replyEvent), func(reply ...any) {
		if len(reply) == 0 {
			done <- opResult{payload: map[string]any{}}
			return
		}
		payload, ok := reply[0].(map[string]any)
		if !ok {
			done <- opResult{err: fmt.Errorf("remote storage: unexpected %s payload %T", replyEvent, reply[0])}
			return
		}
		done <- opResult{payload: payload}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		return nil, fmt.Errorf("remote storage: timed out waiting for %q", replyEvent)
	case res := <-done:
		return res.payload, res.err
	}
}
