// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch signals on the returned channel whenever the token file is written,
// created, replaced, or removed. The parent directory is watched rather than
// the file itself so atomic-rename writers and a not-yet-existing file both
// work. The channel is closed when ctx is done.
func Watch(ctx context.Context, tokenFile string) (<-chan struct{}, error) {
	if tokenFile == "" {
		return nil, fmt.Errorf("no token file to watch")
	}

	absPath, err := filepath.Abs(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token file: %w", err)
	}
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}
				// Coalesce bursts; the reader re-reads the file anyway
				select {
				case changes <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("TOKEN_WATCH_ERROR | path=%s error=%v", absPath, err)
			}
		}
	}()

	return changes, nil
}
