// Package viewer resolves product files into viewable sources and manages the
// transient resources that embedded PDFs are decoded into.
package viewer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"unicode"
)

const dataScheme = "data:"

// ErrDecode is matched by every embedded payload decoding failure.
var ErrDecode = errors.New("cannot decode embedded file")

// DecodeError reports a malformed data URI.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode data uri: %s: %v", e.Reason, e.Err)
	}
	return "decode data uri: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// IsEmbedded reports whether url carries its payload inline as a data URI.
// Anything else is treated as a remote reference.
func IsEmbedded(url string) bool {
	return strings.HasPrefix(url, dataScheme)
}

// DecodeDataURI splits a data URI of the form data:<mime>[;params][;base64],<payload>
// into its media type and decoded bytes. A MIME type is required. Base64
// payloads may contain whitespace and omit padding; other payloads are
// percent-decoded.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !IsEmbedded(uri) {
		return "", nil, &DecodeError{Reason: "not a data URI"}
	}

	header, payload, ok := strings.Cut(uri[len(dataScheme):], ",")
	if !ok {
		return "", nil, &DecodeError{Reason: "missing payload separator"}
	}

	params := strings.Split(header, ";")
	rawType := strings.TrimSpace(params[0])
	if rawType == "" {
		return "", nil, &DecodeError{Reason: "missing MIME type"}
	}

	mediaType, _, err := mime.ParseMediaType(rawType)
	if err != nil || !strings.Contains(mediaType, "/") {
		return "", nil, &DecodeError{Reason: fmt.Sprintf("malformed MIME type %q", rawType), Err: err}
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, &DecodeError{Reason: "malformed percent encoding", Err: err}
		}
		return mediaType, []byte(text), nil
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return "", nil, &DecodeError{Reason: "malformed base64 payload", Err: err}
	}
	return mediaType, data, nil
}

func decodeBase64(payload string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
}

// EncodeDataURI builds a base64 data URI. Used for seeding catalogs and tests.
func EncodeDataURI(mimeType string, data []byte) string {
	return dataScheme + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
