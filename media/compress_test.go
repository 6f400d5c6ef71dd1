package media

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &buf
}

func TestCompressScalesLongEdge(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 2400, 1200, 1200, 600},
		{"portrait", 900, 3600, 300, 1200},
		{"small", 640, 480, 640, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compress(pngOf(t, tt.w, tt.h), DefaultMaxEdge, DefaultQuality)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output is not jpeg: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Fatalf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCompressRejectsNonImages(t *testing.T) {
	_, err := Compress(strings.NewReader("not an image"), DefaultMaxEdge, DefaultQuality)
	if err != ErrUnsupportedImage {
		t.Fatalf("err = %v, want ErrUnsupportedImage", err)
	}
}

// withDimensions rewrites the IHDR of a PNG so it claims w x h pixels.
func withDimensions(t *testing.T, src *bytes.Buffer, w, h uint32) *bytes.Buffer {
	t.Helper()
	b := bytes.Clone(src.Bytes())
	if string(b[12:16]) != "IHDR" {
		t.Fatalf("first chunk is %q", b[12:16])
	}
	binary.BigEndian.PutUint32(b[16:20], w)
	binary.BigEndian.PutUint32(b[20:24], h)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return bytes.NewBuffer(b)
}

func TestCompressRejectsOversizedDimensions(t *testing.T) {
	huge := withDimensions(t, pngOf(t, 1, 1), 12000, 12000)
	if cfg, err := png.DecodeConfig(bytes.NewReader(huge.Bytes())); err != nil || cfg.Width != 12000 {
		t.Fatalf("forged header unreadable: %+v %v", cfg, err)
	}

	_, err := Compress(huge, DefaultMaxEdge, DefaultQuality)
	if err != ErrImageTooLarge {
		t.Fatalf("err = %v, want ErrImageTooLarge", err)
	}
}
