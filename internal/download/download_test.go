package download

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvforge/cvchat/internal/client"
)

type fakeFetcher struct {
	data map[string][]byte
}

func (f *fakeFetcher) FetchURL(_ context.Context, rawURL string) ([]byte, error) {
	data, ok := f.data[rawURL]
	if !ok {
		return nil, fmt.Errorf("not found: %s", rawURL)
	}
	return data, nil
}

func pdfResult(t *testing.T, doc client.DocumentData) *client.CommandResult {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return &client.CommandResult{Success: true, Type: client.TypePDF, Data: data}
}

func TestTriggerWritesInlineDocument(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil, nil)

	result := pdfResult(t, client.DocumentData{
		FileName:      "cv.pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("%PDF-1.7")),
	})

	path, err := w.Trigger(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cv.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestTriggerAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil, nil)

	result := pdfResult(t, client.DocumentData{
		FileName:      "cv.pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("x")),
	})

	first, err := w.Trigger(context.Background(), result)
	require.NoError(t, err)
	second, err := w.Trigger(context.Background(), result)
	require.NoError(t, err)
	third, err := w.Trigger(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "cv.pdf"), first)
	assert.Equal(t, filepath.Join(dir, "cv-1.pdf"), second)
	assert.Equal(t, filepath.Join(dir, "cv-2.pdf"), third)
}

func TestTriggerFetchesURLDocuments(t *testing.T) {
	dir := t.TempDir()
	fetcher := &fakeFetcher{data: map[string][]byte{
		"/api/documents/42": []byte("%PDF-1.7"),
	}}
	w := NewWriter(dir, fetcher, nil)

	result := pdfResult(t, client.DocumentData{
		FileName: "cv.pdf",
		URL:      "/api/documents/42",
	})

	path, err := w.Trigger(context.Background(), result)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestTriggerStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil, nil)

	result := pdfResult(t, client.DocumentData{
		FileName:      "../../etc/cv.pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("x")),
	})

	path, err := w.Trigger(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cv.pdf"), path)
}

func TestTriggerEmptyPayloadFails(t *testing.T) {
	w := NewWriter(t.TempDir(), nil, nil)

	result := pdfResult(t, client.DocumentData{FileName: "cv.pdf"})
	_, err := w.Trigger(context.Background(), result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
