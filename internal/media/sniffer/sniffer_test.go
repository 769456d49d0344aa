package sniffer_test

import (
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/api/internal/media/sniffer"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		wantType sniffer.ImageType
		wantMIME string
		wantErr  bool
	}{
		{name: "jpeg", head: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, wantType: sniffer.TypeJPEG, wantMIME: "image/jpeg"},
		{name: "png", head: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, wantType: sniffer.TypePNG, wantMIME: "image/png"},
		{name: "gif87a", head: []byte("GIF87a......"), wantType: sniffer.TypeGIF, wantMIME: "image/gif"},
		{name: "gif89a", head: []byte("GIF89a......"), wantType: sniffer.TypeGIF, wantMIME: "image/gif"},
		{name: "webp", head: []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), wantType: sniffer.TypeWEBP, wantMIME: "image/webp"},
		{name: "svg rejected", head: []byte("<svg xmlns=\"http://www.w3.org/2000/svg\">"), wantErr: true},
		{name: "empty", head: nil, wantErr: true},
		{name: "truncated webp", head: []byte("RIFF\x00\x00"), wantErr: true},
		{name: "plain text", head: []byte("hello world"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := sniffer.DetectHead(tt.head)
			if tt.wantErr {
				assert.ErrorIs(t, err, sniffer.ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, result.Type)
			assert.Equal(t, tt.wantMIME, result.MIME)
		})
	}
}

func TestMimeTypeFromHeader(t *testing.T) {
	header := textproto.MIMEHeader{}
	assert.Equal(t, "", sniffer.MimeTypeFromHeader(header))

	header.Set("Content-Type", "IMAGE/PNG")
	assert.Equal(t, "image/png", sniffer.MimeTypeFromHeader(header))

	header.Set("Content-Type", "image/jpeg; charset=binary")
	assert.Equal(t, "image/jpeg", sniffer.MimeTypeFromHeader(header))
}
