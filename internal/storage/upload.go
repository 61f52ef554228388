package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ReadUpload reads a multipart photo, sniffs its real type and rejects
// anything that is not an image or is larger than maxBytes.
func ReadUpload(fh *multipart.FileHeader, maxBytes int64) (Asset, error) {
	src, err := fh.Open()
	if err != nil {
		return Asset{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return Asset{}, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	return Asset{
		Name:        NewAssetName(extensionFor(mt.String(), mt.Extension())),
		ContentType: mt.String(),
		Data:        data,
	}, nil
}

// extensionFor prefers the detected extension and falls back to the MIME
// subtype for image types mimetype knows no extension for.
func extensionFor(mime, ext string) string {
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		return ext
	}
	mime, _, _ = strings.Cut(mime, ";")
	_, subtype, _ := strings.Cut(mime, "/")
	subtype = strings.ToLower(strings.TrimSpace(subtype))
	if isPlainExtension(subtype) {
		return subtype
	}
	return "bin"
}
