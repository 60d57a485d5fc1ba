package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	maxCoverSize = 10 * 1024 * 1024
	// BlurHash needs only a thumbnail; 64px keeps encoding in the millisecond range.
	blurHashSize = 64
)

// ErrNoCover is returned for books without a cover URL.
var ErrNoCover = errors.New("no cover url")

// CoverPlaceholder downloads the cover at url and returns its BlurHash (4x3 components).
func CoverPlaceholder(ctx context.Context, client *http.Client, url string) (string, error) {
	if url == "" {
		return "", ErrNoCover
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	return BlurHash(io.LimitReader(resp.Body, maxCoverSize))
}

// BlurHash decodes a JPEG, PNG, GIF or WebP image from r and encodes its BlurHash.
func BlurHash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail nearest-neighbor scales img to fit blurHashSize, keeping the aspect ratio.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= blurHashSize && srcH <= blurHashSize {
		return img
	}

	var dstW, dstH int
	if srcW > srcH {
		dstW = blurHashSize
		dstH = max(srcH*blurHashSize/srcW, 1)
	} else {
		dstH = blurHashSize
		dstW = max(srcW*blurHashSize/srcH, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xRatio := float64(srcW) / float64(dstW)
	yRatio := float64(srcH) / float64(dstH)
	for y := range dstH {
		for x := range dstW {
			dst.Set(x, y, img.At(bounds.Min.X+int(float64(x)*xRatio), bounds.Min.Y+int(float64(y)*yRatio)))
		}
	}
	return dst
}
