package storage

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const base64Marker = ";base64,"

// DecodeDataURL decodes a "data:<mime>;base64,<payload>" value into an asset
// whose extension is the MIME subtype. The "data:" scheme prefix is optional
// and MIME parameters such as name= are ignored.
func DecodeDataURL(raw string) (Asset, error) {
	header, payload, found := strings.Cut(strings.TrimSpace(raw), base64Marker)
	if !found {
		return Asset{}, fmt.Errorf("%w: missing %q separator", ErrMalformedDataURL, base64Marker)
	}

	mime := strings.ToLower(strings.TrimPrefix(header, "data:"))
	mime, _, _ = strings.Cut(mime, ";")
	kind, subtype, ok := strings.Cut(mime, "/")
	if !ok || kind != "image" || !isPlainExtension(subtype) {
		return Asset{}, fmt.Errorf("%w: %q", ErrUnsupportedType, mime)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("%w: empty payload", ErrMalformedDataURL)
	}

	return Asset{
		Name:        NewAssetName(subtype),
		ContentType: mime,
		Data:        data,
	}, nil
}

func isPlainExtension(ext string) bool {
	if ext == "" || len(ext) > 8 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
