// Package download writes documents produced by commands to local disk.
package download

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cvforge/cvchat/internal/client"
	"github.com/cvforge/cvchat/internal/metrics"
)

// Fetcher retrieves document bytes by URL. *client.Client satisfies it.
type Fetcher interface {
	FetchURL(ctx context.Context, rawURL string) ([]byte, error)
}

// Writer saves command result documents into a target directory.
type Writer struct {
	dir       string
	fetcher   Fetcher
	collector *metrics.Collector
}

// NewWriter creates a writer that saves into dir. fetcher is needed for
// results that reference documents by URL; collector may be nil.
func NewWriter(dir string, fetcher Fetcher, collector *metrics.Collector) *Writer {
	return &Writer{dir: dir, fetcher: fetcher, collector: collector}
}

// Trigger saves the document carried by a pdf result and returns the path it
// was written to.
func (w *Writer) Trigger(ctx context.Context, result *client.CommandResult) (string, error) {
	start := time.Now()
	path, err := w.trigger(ctx, result)
	if w.collector != nil {
		w.collector.Record(metrics.OpDownload, time.Since(start), err != nil)
	}
	return path, err
}

func (w *Writer) trigger(ctx context.Context, result *client.CommandResult) (string, error) {
	doc, err := result.Document()
	if err != nil {
		return "", err
	}

	var data []byte
	switch {
	case doc.ContentBase64 != "":
		data, err = base64.StdEncoding.DecodeString(doc.ContentBase64)
		if err != nil {
			return "", fmt.Errorf("decode document: %w", err)
		}
	case doc.URL != "":
		if w.fetcher == nil {
			return "", fmt.Errorf("document references a URL but no fetcher is configured")
		}
		data, err = w.fetcher.FetchURL(ctx, doc.URL)
		if err != nil {
			return "", fmt.Errorf("fetch document: %w", err)
		}
	default:
		return "", fmt.Errorf("document payload has no content")
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	path := w.uniquePath(doc.FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// uniquePath returns a path in the download dir that does not collide with
// an existing file, appending -1, -2, ... before the extension as needed.
func (w *Writer) uniquePath(name string) string {
	if name == "" {
		name = "document.pdf"
	}
	// Strip any directory components the server might have sent.
	name = filepath.Base(name)

	path := filepath.Join(w.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(w.dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
