package documents

import "time"

// Document represents an uploaded career document owned by a user.
// Pasted freeform text is stored the same way, as a plain-text object.
type Document struct {
	ID              string
	UserID          string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	CreatedAt       time.Time
}
