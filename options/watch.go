package options

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/richinsley/gowarp/params"
)

// Watcher reposts a parameter file's values whenever the file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	exited  chan struct{}
}

// Watch starts watching path. The directory is watched rather than the
// file so editors that replace the file on save are still seen.
func Watch(path string, in *params.Inbox) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{watcher: fw, done: make(chan struct{}), exited: make(chan struct{})}
	go w.run(abs, in)
	return w, nil
}

func (w *Watcher) run(path string, in *params.Inbox) {
	defer close(w.exited)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c, err := LoadConfig(path)
			if err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			if err := c.Post(in); err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			log.Printf("Reloaded parameters from %s", path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}

// Close stops the watcher and waits for it to exit.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.watcher.Close()
	<-w.exited
	return err
}
