package watcher

import (
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// dirNotifier turns file system events in a directory into poll wake-ups.
type dirNotifier struct {
	watcher *fsnotify.Watcher
	wake    chan struct{}
	done    chan struct{}
}

func newDirNotifier(dir string, logger zerolog.Logger) (*dirNotifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	n := &dirNotifier{
		watcher: w,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go n.loop(logger)
	return n, nil
}

func (n *dirNotifier) loop(logger zerolog.Logger) {
	defer close(n.done)
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !IsResultCandidate(event.Name) {
				continue
			}
			select {
			case n.wake <- struct{}{}:
			default:
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			logger.Debug().Err(err).Msg("fsnotify error")
		}
	}
}

// Wake returns the channel signalled when a candidate file is created or written.
func (n *dirNotifier) Wake() <-chan struct{} {
	if n == nil {
		return nil
	}
	return n.wake
}

func (n *dirNotifier) Close() {
	if n == nil {
		return
	}
	_ = n.watcher.Close()
	<-n.done
}
