package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

const (
	ShareMimeType = "image/jpeg"
	ShareTitle    = "Share Photo"
	ShareMessage  = "Check out this photo from Magnify!"
)

// ErrShareCancelled is returned by a Sharer when the user dismissed the share sheet.
var ErrShareCancelled = errors.New("share cancelled by user")

// SharePayload is what the platform share mechanism receives.
type SharePayload struct {
	Title    string
	Message  string
	MimeType string
	URL      string // data: URL carrying the encoded photo
}

// Sharer hands a payload to the platform.
type Sharer interface {
	Share(payload SharePayload) error
}

// EncodeShare reads the photo at fileRef and wraps it in a data URL payload.
func EncodeShare(fileRef string) (SharePayload, error) {
	data, err := os.ReadFile(fileRef)
	if err != nil {
		return SharePayload{}, fmt.Errorf("failed to read photo for sharing: %w", err)
	}
	return SharePayload{
		Title:    ShareTitle,
		Message:  ShareMessage,
		MimeType: ShareMimeType,
		URL:      "data:" + ShareMimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Share encodes fileRef and passes it to s. A cancelled share is not an error.
func Share(s Sharer, fileRef string) error {
	payload, err := EncodeShare(fileRef)
	if err != nil {
		return err
	}
	if err := s.Share(payload); err != nil {
		if errors.Is(err, ErrShareCancelled) {
			return nil
		}
		return fmt.Errorf("failed to share photo: %w", err)
	}
	return nil
}
