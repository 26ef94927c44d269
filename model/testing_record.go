package model

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// TestResult is a single measurement of a coal-quality parameter.
type TestResult struct {
	// ItemCode identifies the measured parameter, e.g. "CV" or "ASH".
	ItemCode string `json:"itemCode" binding:"required,itemcode"`
	Value    Numeric `json:"value"`

	// Weight is the contribution factor of this entry. Empty means 1.
	Weight Numeric `json:"weight,omitempty"`
}

// Attachment is the metadata of a file uploaded for a testing record.
type Attachment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// AttachmentKey is the object storage key of an attachment.
func AttachmentKey(recordID uint64, attachmentID string) string {
	return fmt.Sprintf("records/%d/%s", recordID, attachmentID)
}

// TestingRecord is a submitted coal-sample quality report.
type TestingRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	CustomerName string `json:"customerName"`
	Company      string `gorm:"index" json:"company"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`

	CoalType   string         `gorm:"index" json:"coalType"`
	Origin     string         `json:"origin"`
	SampleDate string         `json:"sampleDate"`
	Standards  pq.StringArray `gorm:"type:text" json:"standards"`
	Note       string         `json:"note"`

	Results []TestResult `gorm:"serializer:json;type:text" json:"results"`

	// WeightedResults maps item code to the weighted average of its results.
	// It is nil until computed and always covers every code in Results.
	WeightedResults map[string]float64 `gorm:"serializer:json;type:text" json:"weightedResults"`

	Attachments []Attachment `gorm:"serializer:json;type:text" json:"attachments"`

	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// Clone returns a deep copy of the record.
func (r *TestingRecord) Clone() *TestingRecord {
	c := *r
	// Empty slices stay empty rather than becoming nil.
	if r.Standards != nil {
		c.Standards = make(pq.StringArray, len(r.Standards))
		copy(c.Standards, r.Standards)
	}
	if r.Results != nil {
		c.Results = make([]TestResult, len(r.Results))
		copy(c.Results, r.Results)
	}
	if r.WeightedResults != nil {
		c.WeightedResults = make(map[string]float64, len(r.WeightedResults))
		for k, v := range r.WeightedResults {
			c.WeightedResults[k] = v
		}
	}
	if r.Attachments != nil {
		c.Attachments = make([]Attachment, len(r.Attachments))
		copy(c.Attachments, r.Attachments)
	}
	return &c
}

// Attachment returns the attachment with the given id.
func (r *TestingRecord) Attachment(id string) (Attachment, bool) {
	for _, a := range r.Attachments {
		if a.ID == id {
			return a, true
		}
	}
	return Attachment{}, false
}
