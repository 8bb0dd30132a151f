package uploads

import "time"

// Media is an uploaded photo or video tied to an assessment.
// PublicURL is derived from the object key when the bucket fronts a
// CDN; it is not persisted.
type Media struct {
	ID           string    `json:"id"`
	OrgID        int64     `json:"org_id"`
	AssessmentID int64     `json:"assessment_id"`
	Key          string    `json:"key"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	PublicURL    string    `json:"public_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
