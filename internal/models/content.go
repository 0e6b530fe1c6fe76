package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FileType is the closed set of asset kinds a product can ship.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeVideo   FileType = "video"
	FileTypeYouTube FileType = "youtube"
	FileTypeAudio   FileType = "audio"
	FileTypeLink    FileType = "link"
	FileTypeOther   FileType = "other"
)

// FileTypes lists every FileType in display order.
var FileTypes = []FileType{
	FileTypePDF,
	FileTypeVideo,
	FileTypeYouTube,
	FileTypeAudio,
	FileTypeLink,
	FileTypeOther,
}

// ParseFileType converts a catalog string into a FileType.
func ParseFileType(s string) (FileType, error) {
	ft := FileType(strings.ToLower(strings.TrimSpace(s)))
	if !ft.Valid() {
		return "", fmt.Errorf("unknown file type %q", s)
	}
	return ft, nil
}

// Valid reports whether ft is one of the known file types.
func (ft FileType) Valid() bool {
	switch ft {
	case FileTypePDF, FileTypeVideo, FileTypeYouTube, FileTypeAudio, FileTypeLink, FileTypeOther:
		return true
	}
	return false
}

// SupportsInlineView reports whether the file can be read in place.
// Only PDFs get the "read now" viewer; everything else is a plain link.
func (ft FileType) SupportsInlineView() bool {
	switch ft {
	case FileTypePDF:
		return true
	case FileTypeVideo, FileTypeYouTube, FileTypeAudio, FileTypeLink, FileTypeOther:
		return false
	default:
		panic(fmt.Sprintf("models: unhandled file type %q", string(ft)))
	}
}

// Label returns the human readable name of the file type.
func (ft FileType) Label() string {
	switch ft {
	case FileTypePDF:
		return "PDF"
	case FileTypeVideo:
		return "Video"
	case FileTypeYouTube:
		return "YouTube"
	case FileTypeAudio:
		return "Audio"
	case FileTypeLink:
		return "Link"
	case FileTypeOther:
		return "File"
	default:
		panic(fmt.Sprintf("models: unhandled file type %q", string(ft)))
	}
}

// UnmarshalJSON rejects file types outside the closed set.
func (ft *FileType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("file type must be a string: %w", err)
	}
	parsed, err := ParseFileType(s)
	if err != nil {
		return err
	}
	*ft = parsed
	return nil
}

// ProductFile is a single downloadable or viewable asset. URL is either a
// remote reference or an embedded data URI.
type ProductFile struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type FileType `json:"type"`
	URL  string   `json:"url"`
}

// ContentModule is a node in a product's course/content tree.
type ContentModule struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Files   []ProductFile   `json:"files,omitempty"`
	Modules []ContentModule `json:"modules,omitempty"`
}
