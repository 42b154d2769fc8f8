package documents

import "time"

// DocumentResponse is the API shape for a stored document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toDocumentResponse(d Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: d.ID,
		FileName:   d.FileName,
		MimeType:   d.MimeType,
		SizeBytes:  d.SizeBytes,
		CreatedAt:  d.CreatedAt,
	}
}

type createFromTextRequest struct {
	Text string `json:"text" binding:"required"`
}
