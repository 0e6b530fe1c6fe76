package viewer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func embeddedPDF(id string) models.ProductFile {
	return models.ProductFile{ID: id, Name: id + ".pdf", Type: models.FileTypePDF, URL: EncodeDataURI("application/pdf", samplePDF)}
}

func remotePDF(id string) models.ProductFile {
	return models.ProductFile{ID: id, Name: id + ".pdf", Type: models.FileTypePDF, URL: "https://cdn.example.com/" + id + ".pdf"}
}

func TestViewer_StartsIdle(t *testing.T) {
	v := New(NewResourceStore("/r"), discardLogger())

	snap := v.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.File)
	assert.Nil(t, snap.Source)
}

func TestViewer_SelectEmbeddedThenRemoteReleasesOnce(t *testing.T) {
	store := NewResourceStore("/r")
	v := New(store, discardLogger())

	a, err := v.Select(embeddedPDF("a"))
	require.NoError(t, err)
	require.Equal(t, StateReady, a.State)
	require.True(t, a.Source.Transient())
	resourceA := a.Source.Resource.ID
	assert.Equal(t, 1, store.Len())

	b, err := v.Select(remotePDF("b"))
	require.NoError(t, err)
	assert.Equal(t, StateReady, b.State)
	assert.Equal(t, "https://cdn.example.com/b.pdf", b.Source.URL)

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, uint64(1), store.Stats().Revoked)
	assert.False(t, store.Revoke(resourceA), "A must not be released again")

	v.Clear()
	v.Close()
	assert.Equal(t, uint64(1), store.Stats().Revoked)
}

func TestViewer_NeverHoldsTwoResources(t *testing.T) {
	store := NewResourceStore("/r")
	v := New(store, discardLogger())

	for i := 0; i < 20; i++ {
		_, err := v.Select(embeddedPDF("f"))
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
	}

	v.Clear()
	st := store.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, uint64(20), st.Created)
	assert.Equal(t, uint64(20), st.Revoked)
}

func TestViewer_ErrorState(t *testing.T) {
	store := NewResourceStore("/r")
	v := New(store, discardLogger())

	_, err := v.Select(embeddedPDF("a"))
	require.NoError(t, err)

	bad := models.ProductFile{ID: "bad", Name: "bad.pdf", Type: models.FileTypePDF, URL: "data:application/pdf;base64,@@@"}
	snap, err := v.Select(bad)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, StateError, snap.State)
	assert.NotEmpty(t, snap.Reason)
	require.NotNil(t, snap.File)
	assert.Equal(t, "bad", snap.File.ID)
	assert.Nil(t, snap.Source)
	assert.Equal(t, 0, store.Len(), "previous resource released before resolving")

	snap = v.Clear()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Reason)
	assert.Nil(t, snap.File)
}

func TestViewer_Close(t *testing.T) {
	store := NewResourceStore("/r")
	v := New(store, discardLogger())

	_, err := v.Select(embeddedPDF("a"))
	require.NoError(t, err)

	v.Close()
	assert.Equal(t, 0, store.Len())

	snap, err := v.Select(embeddedPDF("b"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 0, store.Len())

	v.Close()
	assert.Equal(t, uint64(1), store.Stats().Revoked)
}

func TestViewer_NonPDFSnapshot(t *testing.T) {
	v := New(NewResourceStore("/r"), discardLogger())

	snap, err := v.Select(models.ProductFile{ID: "yt", Name: "Intro", Type: models.FileTypeYouTube, URL: "https://youtu.be/x"})
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.File.InlineView)
	assert.Equal(t, "https://youtu.be/x", snap.Source.URL)
}
