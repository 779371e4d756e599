// Package watch reports image files dropped into directories.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"card-rectifier/internal/scan"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long a file must see no writes before it is reported.
const DefaultSettle = 300 * time.Millisecond

// Watcher debounces file events of a set of directories.
type Watcher struct {
	Settle time.Duration
	// Exclude lists directories whose files are never reported, such as
	// the scanner's own output directories.
	Exclude []string
	log     zerolog.Logger
}

func New(log zerolog.Logger) *Watcher {
	return &Watcher{Settle: DefaultSettle, log: log.With().Str("component", "watch").Logger()}
}

// Watch starts watching dirs and returns a channel of image paths created
// or rewritten in them, each sent once it has been quiet for w.Settle. The
// channel is closed when ctx is done.
func (w *Watcher) Watch(ctx context.Context, dirs ...string) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
		w.log.Info().Str("dir", dir).Msg("watching")
	}

	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	out := make(chan string, 64)
	go w.run(ctx, fw, settle, out)
	return out, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, settle time.Duration, out chan<- string) {
	defer close(out)
	defer fw.Close()

	pending := map[string]time.Time{}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !scan.IsImage(ev.Name) || scan.InDirs(ev.Name, w.Exclude) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = time.Now()
		case now := <-ticker.C:
			for path, t := range pending {
				if now.Sub(t) < settle {
					continue
				}
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}
