// Package model holds the data types shared by the catalog client, the
// favorites store and the screen controllers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// GifMimeType is the mime type attached to shared files.
const GifMimeType = "image/gif"

// Gif is a single animated image from the remote catalog.
type Gif struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	GifURL      string    `json:"gifURL"`
	PreviewURL  string    `json:"previewURL,omitempty"`
	Author      string    `json:"author,omitempty"`
	Votes       int       `json:"votes,omitempty"`
	LocalPath   string    `json:"localPath,omitempty"` // Set once the file has been downloaded
	AddedAt     time.Time `json:"addedAt,omitempty"`   // Set when stored as a favorite
}

// UnmarshalJSON accepts the catalog's numeric ids as well as string ids.
func (g *Gif) UnmarshalJSON(data []byte) error {
	type plain Gif
	aux := struct {
		ID json.RawMessage `json:"id"`
		*plain
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decoding gif id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decoding gif id %s: %w", string(raw), err)
	}
	return n.String(), nil
}

// Title returns a short label for lists and window titles.
func (g Gif) Title() string {
	if g.Description != "" {
		return g.Description
	}
	return "#" + g.ID
}

// GifResponse is the paging envelope returned by the latest/top endpoints.
type GifResponse struct {
	Result     []Gif `json:"result"`
	TotalCount int   `json:"totalCount"`
}

// IDs returns the ids of gifs in order.
func IDs(gifs []Gif) []string {
	ids := make([]string, 0, len(gifs))
	for _, g := range gifs {
		ids = append(ids, g.ID)
	}
	return ids
}
