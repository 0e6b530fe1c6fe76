package viewer

import (
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// ErrUnsupportedType is returned for file types outside the closed set.
var ErrUnsupportedType = errors.New("unsupported file type")

// Source is what a client should load to show or download a file. Resource
// is set only when the source is a transient resource that must be released.
type Source struct {
	URL      string    `json:"url"`
	MimeType string    `json:"mimeType,omitempty"`
	Resource *Resource `json:"resource,omitempty"`
}

// Transient reports whether the source holds a resource.
func (s Source) Transient() bool {
	return s.Resource != nil
}

// Resolve turns a file into a viewable source. Only embedded PDFs are decoded
// into a transient resource; remote PDFs and every other type pass through
// with their URL unchanged.
func Resolve(file models.ProductFile, store *ResourceStore) (Source, error) {
	switch file.Type {
	case models.FileTypePDF:
		if !IsEmbedded(file.URL) {
			return Source{URL: file.URL}, nil
		}

		mimeType, data, err := DecodeDataURI(file.URL)
		if err != nil {
			return Source{}, err
		}

		res, err := store.Create(mimeType, data)
		if err != nil {
			return Source{}, err
		}
		return Source{URL: res.URL, MimeType: mimeType, Resource: &res}, nil

	case models.FileTypeVideo, models.FileTypeYouTube, models.FileTypeAudio, models.FileTypeLink, models.FileTypeOther:
		return Source{URL: file.URL}, nil

	default:
		return Source{}, fmt.Errorf("%w: %q", ErrUnsupportedType, string(file.Type))
	}
}

// Release revokes the resource held by src, if any.
func Release(store *ResourceStore, src Source) bool {
	if src.Resource == nil {
		return false
	}
	return store.Revoke(src.Resource.ID)
}

// WithSource resolves file, runs fn with the source and releases any
// transient resource when fn returns or panics.
func WithSource(store *ResourceStore, file models.ProductFile, fn func(Source) error) error {
	src, err := Resolve(file, store)
	if err != nil {
		return err
	}
	defer Release(store, src)

	return fn(src)
}
