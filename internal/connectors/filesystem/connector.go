// Package filesystem feeds documents from a local directory into the ingest
// pipeline, either as a one-off scan or by following changes with fsnotify.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// DefaultMaxFileSize bounds the files a connector reads.
const DefaultMaxFileSize int64 = 64 << 20

// ErrClosed is returned when a closed connector is asked to watch.
var ErrClosed = errors.New("connector is closed")

// ChangeType is the kind of change observed on a file.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a file event translated to the pipeline.
// Request carries no content for deletions.
type Change struct {
	Type    ChangeType
	Path    string
	Request driving.IngestRequest
}

// Connector reads documents below a root directory.
// Hidden files and directories are skipped.
type Connector struct {
	rootPath    string
	ticker      string
	accept      func(mimeType string) bool
	maxFileSize int64

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithTicker associates every document with a JSE ticker.
func WithTicker(ticker string) Option {
	return func(c *Connector) {
		c.ticker = ticker
	}
}

// WithFilter keeps only files whose detected MIME type accept returns true for.
func WithFilter(accept func(mimeType string) bool) Option {
	return func(c *Connector) {
		c.accept = accept
	}
}

// WithMaxFileSize skips files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *Connector) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// New creates a connector rooted at rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath:    rootPath,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootPath returns the watched directory.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path error: %s does not exist", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// DocumentID derives a stable document ID from a path: the slash-separated
// path relative to the root. Re-ingesting a file therefore supersedes its
// previous generation.
func (c *Connector) DocumentID(path string) string {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Scan walks the root and emits a request per accepted file, in lexical
// order. Both channels are closed when the walk ends. Callers must read the
// two channels together; the walk blocks while either is full.
func (c *Connector) Scan(ctx context.Context) (<-chan driving.IngestRequest, <-chan error) {
	reqs := make(chan driving.IngestRequest)
	errs := make(chan error, 16)

	go func() {
		defer close(reqs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				c.report(ctx, errs, fmt.Errorf("walk %s: %w", path, err))
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				c.report(ctx, errs, fmt.Errorf("stat %s: %w", path, err))
				return nil
			}
			req, ok, err := c.request(path, info)
			if err != nil {
				c.report(ctx, errs, err)
				return nil
			}
			if !ok {
				return nil
			}

			select {
			case reqs <- req:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.report(ctx, errs, err)
		}
	}()

	return reqs, errs
}

// report sends err to the consumer. It is only dropped once ctx is done.
func (c *Connector) report(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
		logger.Warn("Scan error dropped: %v", err)
	}
}

// request reads a file into an ingest request. ok is false when the file is
// filtered out.
func (c *Connector) request(path string, info fs.FileInfo) (driving.IngestRequest, bool, error) {
	if info.Size() > c.maxFileSize {
		return driving.IngestRequest{}, false,
			fmt.Errorf("%s: %d bytes exceeds the %d byte limit", path, info.Size(), c.maxFileSize)
	}

	mimeType := extractors.DetectMIME(info.Name(), nil)
	if mimeType != "" && c.accept != nil && !c.accept(mimeType) {
		logger.Debug("Skipping %s (%s)", path, mimeType)
		return driving.IngestRequest{}, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return driving.IngestRequest{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	if mimeType == "" {
		mimeType = extractors.DetectMIME(info.Name(), content)
		if c.accept != nil && !c.accept(mimeType) {
			logger.Debug("Skipping %s (%q)", path, mimeType)
			return driving.IngestRequest{}, false, nil
		}
	}

	return driving.IngestRequest{
		ID:       c.DocumentID(path),
		Name:     info.Name(),
		MIMEType: mimeType,
		Ticker:   c.ticker,
		Content:  content,
		Metadata: map[string]any{
			"path":      path,
			"filename":  info.Name(),
			"extension": strings.TrimPrefix(strings.ToLower(filepath.Ext(info.Name())), "."),
			"size":      info.Size(),
			"modified":  info.ModTime().UTC().Format(time.RFC3339),
		},
	}, true, nil
}

// Watch emits a change for every create, write, remove or rename below the
// root. New directories are watched as they appear. The channel is closed
// when ctx is done or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	changes := make(chan Change, 64)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := c.addTree(watcher, event.Name); err != nil {
						logger.Warn("Watch %s: %v", event.Name, err)
					}
				}
			}

			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// addTree watches dir and every visible directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent translates one fsnotify event. Returns nil for events that
// do not change a document.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	path := event.Name
	if c.hiddenBelowRoot(path) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		req, ok, err := c.request(path, info)
		if err != nil {
			logger.Warn("Watch: %v", err)
			return nil
		}
		if !ok {
			return nil
		}

		changeType := ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = ChangeCreated
		}
		return &Change{Type: changeType, Path: path, Request: req}

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		name := filepath.Base(path)
		if mimeType := extractors.DetectMIME(name, nil); mimeType != "" && c.accept != nil && !c.accept(mimeType) {
			return nil
		}
		return &Change{
			Type:    ChangeDeleted,
			Path:    path,
			Request: driving.IngestRequest{ID: c.DocumentID(path), Name: name},
		}
	}

	return nil
}

// hiddenBelowRoot reports whether any element of path under the root is hidden.
func (c *Connector) hiddenBelowRoot(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// Close stops any active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
