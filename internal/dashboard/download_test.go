package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	registry := NewMemoryRegistry(nil)
	saver := &captureSaver{}
	d := NewDownloader(registry, saver, nil)

	require.NoError(t, d.Download(context.Background(), "a,b\nc,d", "t.csv"))

	require.Len(t, saver.saved, 1)
	res := saver.saved[0]
	assert.Equal(t, "t.csv", res.Filename)
	assert.Equal(t, []byte("a,b\nc,d"), res.Content)
	assert.Equal(t, "text/csv", res.MediaType)
	assert.True(t, strings.HasPrefix(res.Handle, "blob:"))
}

func TestDownloadDefaultFilename(t *testing.T) {
	saver := &captureSaver{}
	d := NewDownloader(NewMemoryRegistry(nil), saver, nil)

	require.NoError(t, d.Download(context.Background(), "x", ""))
	assert.Equal(t, "export.csv", saver.saved[0].Filename)
}

func TestDownloadReleasesHandle(t *testing.T) {
	registry := NewMemoryRegistry(nil)

	var during int
	var handle string
	saver := SaverFunc(func(_ context.Context, res *Resource) error {
		during = registry.Active()
		handle = res.Handle
		_, ok := registry.Lookup(res.Handle)
		assert.True(t, ok)
		return nil
	})

	require.NoError(t, NewDownloader(registry, saver, nil).Download(context.Background(), "x", ""))
	assert.Equal(t, 1, during)
	assert.Equal(t, 0, registry.Active())
	_, ok := registry.Lookup(handle)
	assert.False(t, ok)
}

func TestDownloadReleasesHandleOnFailure(t *testing.T) {
	registry := NewMemoryRegistry(nil)
	boom := errors.New("disk full")
	d := NewDownloader(registry, &captureSaver{err: boom}, nil)

	err := d.Download(context.Background(), "x", "f.csv")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, registry.Active())
}

func TestDownloadReleasesHandleOnPanic(t *testing.T) {
	registry := NewMemoryRegistry(nil)
	saver := SaverFunc(func(context.Context, *Resource) error { panic("saver crashed") })
	d := NewDownloader(registry, saver, nil)

	assert.Panics(t, func() { _ = d.Download(context.Background(), "x", "") })
	assert.Equal(t, 0, registry.Active())
}

func TestRegistryCopiesContent(t *testing.T) {
	registry := NewMemoryRegistry(nil)
	content := []byte("abc")

	res, err := registry.Create(content, MediaTypeCSV, "a.csv")
	require.NoError(t, err)
	content[0] = 'z'
	assert.Equal(t, "abc", string(res.Content))

	registry.Release("blob:unknown")
	assert.Equal(t, 1, registry.Active())
	registry.Release(res.Handle)
	assert.Equal(t, 0, registry.Active())
}
