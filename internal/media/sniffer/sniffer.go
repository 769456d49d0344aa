package sniffer

import (
	"bytes"
	"errors"
	"net/textproto"
	"strings"
)

// The relay accepts raster imagery only. SVG and anything unrecognized are
// rejected outright.
type ImageType string

const (
	TypeJPEG ImageType = "jpeg"
	TypePNG  ImageType = "png"
	TypeGIF  ImageType = "gif"
	TypeWEBP ImageType = "webp"
)

type Result struct {
	Type ImageType
	MIME string
}

var ErrUnsupportedType = errors.New("unsupported image type")

// DetectHead inspects magic bytes from the start of the payload.
func DetectHead(head []byte) (Result, error) {
	switch {
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case bytes.HasPrefix(head, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a")):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}
	return Result{}, ErrUnsupportedType
}

// MimeTypeFromHeader extracts the declared content type without parameters.
func MimeTypeFromHeader(header textproto.MIMEHeader) string {
	declared := header.Get("Content-Type")
	if declared == "" {
		return ""
	}
	if idx := strings.Index(declared, ";"); idx >= 0 {
		declared = declared[:idx]
	}
	return strings.TrimSpace(strings.ToLower(declared))
}
