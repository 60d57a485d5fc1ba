package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("Ada Lovelace"))
	assert.Equal(t, "AK", Initials("augusta ada king"))
	assert.Equal(t, "É", Initials("émile"))
	assert.Equal(t, "?", Initials("   "))
}

func TestColorForUser_Stable(t *testing.T) {
	a := ColorForUser("user-1")
	assert.Equal(t, a, ColorForUser("user-1"))
	assert.Regexp(t, `^#[0-9A-F]{6}$`, a)
	assert.NotEqual(t, a, ColorForUser("user-2"))
}

func TestAvatarPlaceholder(t *testing.T) {
	url := "https://img.example/a.png"
	withURL := domain.UserProfile{BackendID: "user-1", DisplayName: "Ada", AvatarURL: &url}
	assert.Equal(t, Avatar{URL: url}, AvatarPlaceholder(&withURL))

	placeholder := AvatarPlaceholder(&domain.UserProfile{BackendID: "user-1", DisplayName: "Ada Lovelace"})
	assert.Equal(t, "AL", placeholder.Initials)
	assert.Equal(t, ColorForUser("user-1"), placeholder.Color)
	assert.Empty(t, placeholder.URL)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCoverPlaceholder(t *testing.T) {
	data := pngBytes(t, 200, 300)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	ctx := context.Background()
	hash, err := CoverPlaceholder(ctx, srv.Client(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	again, err := BlurHash(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	_, err = CoverPlaceholder(ctx, srv.Client(), srv.URL+"/missing.png")
	assert.Error(t, err)

	_, err = CoverPlaceholder(ctx, srv.Client(), "")
	assert.ErrorIs(t, err, ErrNoCover)
}

func TestBlurHash_RejectsGarbage(t *testing.T) {
	_, err := BlurHash(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Equal(t, image.Image(small), thumbnail(small))

	wide := thumbnail(image.NewRGBA(image.Rect(0, 0, 640, 10)))
	assert.Equal(t, 64, wide.Bounds().Dx())
	assert.Equal(t, 1, wide.Bounds().Dy())
}
