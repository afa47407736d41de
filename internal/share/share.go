// Package share hands the current gif to another application.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"

	"gifapp/internal/media"
	"gifapp/internal/model"
)

// Request is an outgoing share: a caption plus a local file.
type Request struct {
	Text     string
	FilePath string
	MimeType string
}

// Sender delivers a share request to the host OS.
type Sender interface {
	Send(Request) error
}

// Compose builds the share request for g. It reports false when g has no
// local file to attach, in which case nothing should be sent.
func Compose(g model.Gif) (Request, bool) {
	if !media.FileExists(g.LocalPath) {
		return Request{}, false
	}
	text := strings.TrimSpace(g.Description)
	if g.GifURL != "" {
		if text != "" {
			text += "\n"
		}
		text += g.GifURL
	}
	return Request{Text: text, FilePath: g.LocalPath, MimeType: model.GifMimeType}, true
}

// URLOpener opens a URL with the OS default handler. fyne.App implements it.
type URLOpener interface {
	OpenURL(*url.URL) error
}

// DesktopSender puts the caption on the clipboard and opens the file with
// the OS. Desktop platforms have no share sheet, so this is the closest
// equivalent.
type DesktopSender struct {
	Clipboard fyne.Clipboard
	Opener    URLOpener
}

// Send implements Sender.
func (d DesktopSender) Send(req Request) error {
	if req.FilePath == "" {
		return errors.New("share request has no file")
	}
	if d.Clipboard != nil && req.Text != "" {
		d.Clipboard.SetContent(req.Text)
	}
	if d.Opener == nil {
		return nil
	}
	u, err := url.Parse(storage.NewFileURI(req.FilePath).String())
	if err != nil {
		return fmt.Errorf("building file url for %s: %w", req.FilePath, err)
	}
	if err := d.Opener.OpenURL(u); err != nil {
		return fmt.Errorf("opening %s: %w", req.FilePath, err)
	}
	return nil
}
