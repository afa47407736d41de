package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifapp/internal/model"
)

// testGIF builds a small two-frame animation.
func testGIF(t *testing.T) []byte {
	t.Helper()
	pal := color.Palette{color.Black, color.White}
	frame := func(c uint8) *image.Paletted {
		img := image.NewPaletted(image.Rect(0, 0, 40, 20), pal)
		for i := range img.Pix {
			img.Pix[i] = c
		}
		return img
	}
	anim := &gif.GIF{
		Image: []*image.Paletted{frame(0), frame(1)},
		Delay: []int{10, 15},
	}
	buf := new(bytes.Buffer)
	require.NoError(t, gif.EncodeAll(buf, anim))
	return buf.Bytes()
}

func TestLocalPathAndIDFromPath(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	p := c.LocalPath("123")
	assert.Equal(t, filepath.Join(c.Dir, "123.gif"), p)

	id, ok := IDFromPath(p)
	assert.True(t, ok)
	assert.Equal(t, "123", id)

	_, ok = IDFromPath("/x/notes.txt")
	assert.False(t, ok)

	assert.Equal(t, filepath.Join(c.Dir, "a%2Fb.gif"), c.LocalPath("a/b"))
	assert.NotEqual(t, c.LocalPath("a/b"), c.LocalPath("a_b"))

	for _, id := range []string{"a/b", `c:\d`, "50%", ".hidden", `q?*"<>|`, "x.y"} {
		got, ok := IDFromPath(c.LocalPath(id))
		assert.True(t, ok, id)
		assert.Equal(t, id, got)
		assert.Equal(t, c.Dir, filepath.Dir(c.LocalPath(id)), id)
	}

	_, ok = IDFromPath("/x/bad%zz.gif")
	assert.False(t, ok)
}

func TestDownload(t *testing.T) {
	data := testGIF(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/gif")
		w.Write(data)
	}))
	defer srv.Close()

	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	g, err := c.Download(context.Background(), model.Gif{ID: "42", GifURL: srv.URL + "/42.gif"})
	require.NoError(t, err)
	assert.Equal(t, c.LocalPath("42"), g.LocalPath)
	assert.True(t, c.Exists("42"))

	onDisk, err := os.ReadFile(g.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	// Cached files are not fetched again.
	_, err = c.Download(context.Background(), model.Gif{ID: "42", GifURL: srv.URL + "/42.gif"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	entries, err := os.ReadDir(c.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should be left behind")
}

func TestDownloadFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty.gif" {
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = c.Download(context.Background(), model.Gif{ID: "1"})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = c.Download(context.Background(), model.Gif{ID: "2", GifURL: srv.URL + "/missing.gif"})
	assert.Error(t, err)

	_, err = c.Download(context.Background(), model.Gif{ID: "3", GifURL: srv.URL + "/empty.gif"})
	assert.Error(t, err)

	assert.False(t, c.Exists("2"))
	assert.False(t, c.Exists("3"))
	entries, err := os.ReadDir(c.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.LocalPath("9"), []byte("x"), 0600))

	require.NoError(t, c.Remove("9"))
	assert.False(t, c.Exists("9"))
	assert.NoError(t, c.Remove("9"), "removing a missing file is not an error")
	assert.NoError(t, RemoveFile(""))
}

func TestInfoAnimatedGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, os.WriteFile(path, testGIF(t), 0600))

	info, first, err := Info(path)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 20, info.Height)
	assert.Equal(t, 2, info.Frames)
	assert.Equal(t, 250*time.Millisecond, info.Duration)
	assert.Positive(t, info.Size)
}

func TestInfoStillPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	path := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))

	info, _, err := Info(path)
	require.NoError(t, err)
	assert.Equal(t, 8, info.Width)
	assert.Equal(t, 6, info.Height)
	assert.Equal(t, 1, info.Frames)
	assert.Zero(t, info.Duration)
	assert.Empty(t, info.EXIFData)
}

func TestInfoErrors(t *testing.T) {
	_, _, err := Info(filepath.Join(t.TempDir(), "missing.gif"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "junk.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a not really"), 0600))
	_, _, err = Info(path)
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, os.WriteFile(path, testGIF(t), 0600))

	data, err := Thumbnail(path, 10, 10)
	require.NoError(t, err)

	thumb, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 10)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 10)
}

func TestDecodeAnimation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, os.WriteFile(path, testGIF(t), 0600))

	anim, err := DecodeAnimation(path)
	require.NoError(t, err)
	require.Len(t, anim.Frames, 2)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond}, anim.Delays)
	assert.Equal(t, image.Rect(0, 0, 40, 20), anim.Frames[1].Bounds())

	r, g, b, _ := anim.Frames[1].At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "second frame is white")

	_, err = DecodeAnimation(filepath.Join(t.TempDir(), "missing.gif"))
	assert.Error(t, err)
}
