package lsp

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/fsnotify/fsnotify"
)

const configDebounce = 100 * time.Millisecond

// configWatcher watches the workspace root for project configuration
// changes when the client cannot do it for us
type configWatcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	onChange  func()
	done      chan struct{}
	stopped   chan struct{}
}

func newConfigWatcher(root string, debounce time.Duration, onChange func()) (*configWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", root, err)
	}

	w := &configWatcher{
		fsWatcher: fsw,
		root:      root,
		debounce:  debounce,
		onChange:  onChange,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Stop terminates the watcher and waits for its loop to exit
func (w *configWatcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	<-w.stopped
	return err
}

func (w *configWatcher) loop() {
	defer close(w.stopped)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevant(event) {
				continue
			}
			log.Debug("Project configuration event: %s", event)
			timer.Reset(w.debounce)

		case <-timer.C:
			w.onChange()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn("Configuration watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *configWatcher) isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.root) {
		return false
	}
	return slices.Contains(types.ProjectConfigFiles, filepath.Base(event.Name))
}

// watchConfigLocally starts an fsnotify watcher on the workspace root that
// reloads the project configuration and republishes diagnostics
func (s *Server) watchConfigLocally(root string) error {
	w, err := newConfigWatcher(root, configDebounce, s.reloadProjectConfig)
	if err != nil {
		return err
	}

	s.configMu.Lock()
	previous := s.configWatcher
	s.configWatcher = w
	s.configMu.Unlock()

	if previous != nil {
		_ = previous.Stop()
	}
	log.Info("Watching %s for project configuration changes", root)
	return nil
}

func (s *Server) stopConfigWatcher() {
	s.configMu.Lock()
	w := s.configWatcher
	s.configWatcher = nil
	s.configMu.Unlock()

	if w != nil {
		if err := w.Stop(); err != nil {
			log.Warn("Stopping configuration watcher: %v", err)
		}
	}
}

func (s *Server) reloadProjectConfig() {
	if err := s.LoadProjectConfig(); err != nil {
		log.Warn("Reloading project configuration: %v", err)
		return
	}
	if s.GLSPContext() == nil {
		return
	}
	for _, doc := range s.AllDocuments() {
		if !s.IsMarkupDocument(doc) {
			continue
		}
		if err := s.PublishDiagnostics(nil, doc.URI()); err != nil {
			log.Warn("Republishing diagnostics for %s: %v", doc.URI(), err)
		}
	}
}
