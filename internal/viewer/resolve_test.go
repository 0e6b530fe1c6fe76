package viewer

import (
	"errors"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_RemotePassthrough(t *testing.T) {
	store := NewResourceStore("/r")

	for _, ft := range models.FileTypes {
		file := models.ProductFile{ID: "f", Type: ft, URL: "https://cdn.example.com/asset"}
		src, err := Resolve(file, store)
		require.NoError(t, err, string(ft))
		assert.Equal(t, file.URL, src.URL)
		assert.False(t, src.Transient())
	}
	assert.Equal(t, 0, store.Len())
}

func TestResolve_EmbeddedPDF(t *testing.T) {
	store := NewResourceStore("/r")
	file := models.ProductFile{ID: "f", Type: models.FileTypePDF, URL: EncodeDataURI("application/pdf", samplePDF)}

	src, err := Resolve(file, store)
	require.NoError(t, err)
	require.True(t, src.Transient())
	assert.Equal(t, src.Resource.URL, src.URL)
	assert.Equal(t, "application/pdf", src.MimeType)

	_, data, ok := store.Open(src.Resource.ID)
	require.True(t, ok)
	assert.Equal(t, samplePDF, data)

	assert.True(t, Release(store, src))
	assert.False(t, Release(store, src))
}

func TestResolve_EmbeddedNonPDFBypassesDecode(t *testing.T) {
	store := NewResourceStore("/r")
	uri := "data:audio/mpeg;base64,!!!broken!!!"

	src, err := Resolve(models.ProductFile{Type: models.FileTypeAudio, URL: uri}, store)
	require.NoError(t, err)
	assert.Equal(t, uri, src.URL)
	assert.Equal(t, 0, store.Len())
}

func TestResolve_Errors(t *testing.T) {
	store := NewResourceStore("/r")

	_, err := Resolve(models.ProductFile{Type: models.FileTypePDF, URL: "data:;base64,aGk="}, store)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Resolve(models.ProductFile{Type: "spreadsheet", URL: "https://x"}, store)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Equal(t, 0, store.Len())
}

func TestWithSource_ReleasesOnAllPaths(t *testing.T) {
	store := NewResourceStore("/r")
	file := models.ProductFile{Type: models.FileTypePDF, URL: EncodeDataURI("application/pdf", samplePDF)}

	err := WithSource(store, file, func(src Source) error {
		assert.Equal(t, 1, store.Len())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	boom := errors.New("boom")
	err = WithSource(store, file, func(Source) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())

	assert.Panics(t, func() {
		_ = WithSource(store, file, func(Source) error { panic("view crashed") })
	})
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, uint64(3), store.Stats().Revoked)
}
