package gltf

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidDataURI is returned for malformed data: URIs.
var ErrInvalidDataURI = errors.New("invalid data URI")

// IsDataURI reports whether uri embeds its payload.
func IsDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// DecodeDataURI decodes a base64 data URI and returns its payload and MIME
// type.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, mime, nil
}

// ResolvePath converts a relative buffer or image URI into a file path
// segment, undoing percent-encoding.
func ResolvePath(uri string) (string, error) {
	if strings.Contains(uri, "://") {
		return "", fmt.Errorf("remote URI %q is not supported", uri)
	}
	p, err := url.PathUnescape(uri)
	if err != nil {
		return "", fmt.Errorf("unescaping URI %q: %w", uri, err)
	}
	return p, nil
}
