package config

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PollInterval is the fallback re-check period when fsnotify is unavailable.
var PollInterval = 60 * time.Second

// Watch reloads path into store whenever it changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
// If fsnotify cannot be set up, the file is polled by mtime instead.
func Watch(ctx context.Context, path string, store *Store, onReload func(*Config)) {
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err = watcher.Add(filepath.Dir(path)); err != nil {
			watcher.Close()
		}
	}
	if err != nil {
		log.Printf("[config] watcher unavailable (%v), polling %s every %v", err, path, PollInterval)
		go poll(ctx, path, store, onReload)
		return
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					// let the writer finish
					time.Sleep(50 * time.Millisecond)
					reload(path, store, onReload)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watcher error: %v", err)
			}
		}
	}()
}

func poll(ctx context.Context, path string, store *Store, onReload func(*Config)) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	var last time.Time
	if fi, err := os.Stat(path); err == nil {
		last = fi.ModTime()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fi, err := os.Stat(path)
			if err != nil || !fi.ModTime().After(last) {
				continue
			}
			last = fi.ModTime()
			reload(path, store, onReload)
		}
	}
}

func reload(path string, store *Store, onReload func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		// keep serving the previous config
		log.Printf("[config] reload failed: %v", err)
		return
	}
	store.Set(cfg)
	log.Printf("[config] reloaded %s", path)
	if onReload != nil {
		onReload(cfg)
	}
}
