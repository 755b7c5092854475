package config

import (
	"context"
	"time"

	"github.com/ywtatools/ywta/internal/config/watcher"
)

// Dispatcher runs fn on the goroutine that owns the settings. Settings are
// not safe for concurrent use, so reloads are never run on the watcher
// goroutine directly.
type Dispatcher func(fn func())

// Watch reloads the user document whenever it changes on disk. Each change
// is handed to dispatch, which must run the reload on the goroutine that
// owns s. The returned watcher runs until ctx is done or it is stopped; the
// caller must call Stop.
func (s *Settings) Watch(ctx context.Context, dispatch Dispatcher, debounce time.Duration) (*watcher.Watcher, error) {
	opts := []watcher.Option{watcher.WithLogger(s.logger)}
	if debounce > 0 {
		opts = append(opts, watcher.WithDebounce(debounce))
	}

	w, err := watcher.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(s.path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		dispatch(func() {
			if err := s.LoadConfig(""); err != nil {
				s.logger.Warn().Err(err).Str("path", ev.Path).Msg("Keeping previous settings after reload failure")
			}
		})
	})

	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}
