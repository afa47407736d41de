// Package media manages the local copies of catalog gifs: downloading them
// into a cache directory, reading their metadata and building thumbnails.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"

	"gifapp/internal/model"
)

const (
	// Extension is used for every cached file.
	Extension = ".gif"

	defaultTimeout = 60 * time.Second
	maxFileSize    = 64 << 20
)

// ErrNoSource is returned when a gif has no URL to download from.
var ErrNoSource = errors.New("gif has no source url")

// ImageInfo holds metadata about a cached file.
type ImageInfo struct {
	Width    int
	Height   int
	Frames   int           // 1 for still images
	Duration time.Duration // Total animation time, 0 for stills
	Size     int64
	ModTime  time.Time
	EXIFData map[string]string
}

// Cache downloads gifs into Dir, one file per gif id.
type Cache struct {
	Dir        string
	HTTPClient *http.Client
}

// NewCache creates a cache rooted at dir, creating the directory if needed.
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Cache{Dir: dir, HTTPClient: &http.Client{Timeout: defaultTimeout}}, nil
}

// LocalPath returns where the file for id lives, whether or not it exists.
func (c *Cache) LocalPath(id string) string {
	return filepath.Join(c.Dir, encodeID(id)+Extension)
}

// Exists reports whether a non-empty file for id is cached.
func (c *Cache) Exists(id string) bool {
	return FileExists(c.LocalPath(id))
}

// FileExists reports whether path is a non-empty regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// IDFromPath recovers the gif id from a cached file name.
func IDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), Extension) {
		return "", false
	}
	id, err := url.PathUnescape(strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		return "", false
	}
	return id, id != ""
}

// encodeID turns id into a file name that IDFromPath can reverse.
// Characters that are not portable in file names, '%' itself and a leading
// dot are written as %XX.
func encodeID(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case strings.IndexByte(`/\:*?"<>|%`, ch) >= 0, ch < 0x20, ch == '.' && i == 0:
			fmt.Fprintf(&b, "%%%02X", ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Download fetches g.GifURL into the cache unless it is already there and
// returns g with LocalPath set. The file is written to a temporary name and
// renamed into place so readers never see a partial file.
func (c *Cache) Download(ctx context.Context, g model.Gif) (model.Gif, error) {
	dest := c.LocalPath(g.ID)
	if FileExists(dest) {
		g.LocalPath = dest
		return g, nil
	}
	if g.GifURL == "" {
		return g, ErrNoSource
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.GifURL, nil)
	if err != nil {
		return g, fmt.Errorf("building download request for %s: %w", g.ID, err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return g, fmt.Errorf("downloading %s: %w", g.GifURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return g, fmt.Errorf("downloading %s: HTTP %d", g.GifURL, resp.StatusCode)
	}

	tmp := filepath.Join(c.Dir, "."+uuid.NewString()+".part")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return g, fmt.Errorf("creating temporary file: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxFileSize+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		err = fmt.Errorf("writing %s: %w", g.ID, copyErr)
	case closeErr != nil:
		err = fmt.Errorf("closing %s: %w", g.ID, closeErr)
	case n == 0:
		err = fmt.Errorf("downloading %s: empty body", g.GifURL)
	case n > maxFileSize:
		err = fmt.Errorf("downloading %s: file larger than %d bytes", g.GifURL, maxFileSize)
	}
	if err != nil {
		os.Remove(tmp)
		return g, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return g, fmt.Errorf("moving download into place: %w", err)
	}
	g.LocalPath = dest
	return g, nil
}

// Remove deletes the cached file for id. A missing file is not an error.
func (c *Cache) Remove(id string) error {
	return RemoveFile(c.LocalPath(id))
}

// RemoveFile deletes path. A missing file is not an error.
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// GetEXIF extracts a few common EXIF fields from an image file.
func GetEXIF(r io.Reader) map[string]string {
	x, err := exif.Decode(r)
	if err != nil {
		return nil // Gifs and most pngs carry no EXIF
	}
	result := make(map[string]string)
	for _, field := range []string{"DateTime", "Model", "Make", "Software"} {
		tag, err := x.Get(exif.FieldName(field))
		if err == nil && tag != nil {
			result[field] = tag.String()
		}
	}
	return result
}

// Info decodes the file at path and returns its metadata and first frame.
func Info(path string) (*ImageInfo, image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image for info: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	info := &ImageInfo{Size: fi.Size(), ModTime: fi.ModTime(), Frames: 1}

	var sniff [6]byte
	if _, err := io.ReadFull(f, sniff[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("failed to seek in image file: %w", err)
	}

	if bytes.HasPrefix(sniff[:], []byte("GIF8")) {
		anim, err := gif.DecodeAll(f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode gif: %w", err)
		}
		if len(anim.Image) == 0 {
			return nil, nil, fmt.Errorf("gif %s has no frames", path)
		}
		info.Frames = len(anim.Image)
		for _, d := range anim.Delay {
			info.Duration += time.Duration(d) * 10 * time.Millisecond
		}
		info.Width, info.Height = anim.Config.Width, anim.Config.Height
		if info.Width == 0 || info.Height == 0 {
			b := anim.Image[0].Bounds()
			info.Width, info.Height = b.Dx(), b.Dy()
		}
		return info, anim.Image[0], nil
	}

	info.EXIFData = GetEXIF(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("failed to seek in image file: %w", err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image for info: %w", err)
	}
	b := img.Bounds()
	info.Width, info.Height = b.Dx(), b.Dy()
	return info, img, nil
}

// Thumbnail returns PNG bytes of the first frame of path scaled to fit
// within maxWidth x maxHeight.
func Thumbnail(path string, maxWidth, maxHeight uint) ([]byte, error) {
	_, img, err := Info(path)
	if err != nil {
		return nil, err
	}
	thumb := resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, thumb); err != nil {
		return nil, fmt.Errorf("encoding thumbnail for %s: %w", filepath.Base(path), err)
	}
	return buf.Bytes(), nil
}

// minFrameDelay matches what browsers use for gifs with a zero delay.
const minFrameDelay = 100 * time.Millisecond

// Animation is a gif decoded into full frames ready to draw.
type Animation struct {
	Frames []image.Image
	Delays []time.Duration
}

// DecodeAnimation reads the gif at path and composes each frame onto the
// logical screen, honoring the disposal method of the frame before it.
func DecodeAnimation(path string) (*Animation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gif: %w", err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif %s: %w", filepath.Base(path), err)
	}
	if len(anim.Image) == 0 {
		return nil, fmt.Errorf("gif %s has no frames", path)
	}

	bounds := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)
	if bounds.Empty() {
		bounds = anim.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	out := &Animation{}
	for i, frame := range anim.Image {
		var restore *image.RGBA
		disposal := byte(0)
		if i < len(anim.Disposal) {
			disposal = anim.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			restore = image.NewRGBA(bounds)
			draw.Draw(restore, bounds, canvas, bounds.Min, draw.Src)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snapshot := image.NewRGBA(bounds)
		draw.Draw(snapshot, bounds, canvas, bounds.Min, draw.Src)
		out.Frames = append(out.Frames, snapshot)

		delay := minFrameDelay
		if i < len(anim.Delay) && anim.Delay[i] > 1 {
			delay = time.Duration(anim.Delay[i]) * 10 * time.Millisecond
		}
		out.Delays = append(out.Delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = restore
		}
	}
	return out, nil
}
