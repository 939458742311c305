package worker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopcircle/offline-worker/pkg/cache"
)

// Install opens the current version's store and pre-populates it from
// the static asset manifest. Every asset is fetched independently: a
// failure on one (missing icon, upstream hiccup) is logged and skipped,
// and install still completes, so the worker always reaches the waiting
// state with whatever subset could be cached.
//
// Opening the store itself is the one fatal failure: without a store
// the worker has nothing to serve from.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)

	if err := w.store.Open(ctx, w.storeName); err != nil {
		return fmt.Errorf("open store %s: %w", w.storeName, err)
	}

	for _, path := range w.precache {
		if err := w.precacheAsset(ctx, path); err != nil {
			PrecacheAssets.WithLabelValues("error").Inc()
			w.logger.Warn().Err(err).Str("path", path).Msg("Precache asset failed")
			continue
		}
		PrecacheAssets.WithLabelValues("ok").Inc()
		w.logger.Debug().Str("path", path).Msg("Precached asset")
	}

	// Signal skip-waiting: the worker is ready to activate immediately,
	// without waiting for existing clients to go away.
	w.setState(StateWaiting)
	w.logger.Info().Int("manifest_size", len(w.precache)).Msg("Install complete")
	return nil
}

func (w *Worker) precacheAsset(ctx context.Context, path string) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse manifest path: %w", err)
	}
	target := w.upstream.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	entry, err := cache.ResponseToEntry(resp)
	if err != nil {
		return err
	}
	if !entry.IsSuccess() {
		return fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	if err := w.store.Put(ctx, w.storeName, cache.NewKey(req), entry); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Activate drops every cache store whose name does not match the
// current version, then claims open clients. Both steps are
// best-effort: a store that cannot be enumerated or deleted is logged
// and left for the next activation.
func (w *Worker) Activate(ctx context.Context) error {
	if w.State() == StateActive {
		return nil
	}
	w.setState(StateActivating)

	names, err := w.store.Names(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Enumerate stores failed, skipping cleanup")
	} else {
		for _, name := range names {
			if name == w.storeName {
				continue
			}
			if err := w.store.Drop(ctx, name); err != nil {
				w.logger.Warn().Err(err).Str("stale_store", name).Msg("Drop stale store failed")
				continue
			}
			StoresDropped.Inc()
			w.logger.Info().Str("stale_store", name).Msg("Dropped stale store")
		}
	}

	if w.claimer != nil {
		if err := w.claimer.Claim(ctx); err != nil {
			w.logger.Warn().Err(err).Msg("Claiming clients failed")
		}
	}

	w.setState(StateActive)
	w.logger.Info().Msg("Activation complete")
	return nil
}

// SkipWaiting forces a waiting worker through activation immediately.
// Calling it in any other state is a no-op.
func (w *Worker) SkipWaiting(ctx context.Context) {
	if w.State() != StateWaiting {
		w.logger.Debug().Str("state", w.State().String()).Msg("Skip-waiting ignored")
		return
	}
	if err := w.Activate(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Skip-waiting activation failed")
	}
}

// HandleMessage processes one client message. The channel carries a
// single command shape; anything else is ignored. No reply is sent;
// the effect is observed through the worker becoming active.
func (w *Worker) HandleMessage(ctx context.Context, msg Message) {
	switch msg.Type {
	case MessageSkipWaiting:
		MessagesTotal.WithLabelValues(msg.Type).Inc()
		w.logger.Info().Msg("Skip-waiting requested by client")
		w.SkipWaiting(ctx)
	default:
		// The control endpoint accepts arbitrary input; unrecognized
		// types share one label to keep metric cardinality bounded.
		MessagesTotal.WithLabelValues("unknown").Inc()
		w.logger.Debug().Str("type", msg.Type).Msg("Ignoring unknown message")
	}
}
