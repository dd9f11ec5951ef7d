package photo

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown photos and photos of other users' trips.
	ErrNotFound = errors.New("photo not found")
	// ErrUnsupportedType is returned for uploads that are not images.
	ErrUnsupportedType = errors.New("only image uploads are supported")
)

// Photo is an uploaded trip picture. The bytes live in a storage.BlobStore
// under ObjectKey.
type Photo struct {
	ID           string    `json:"id"`
	TripID       int64     `json:"tripId"`
	OriginalName string    `json:"originalName"`
	ObjectKey    string    `json:"-"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
