package entity

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Link is a classified web page kept in the link history
type Link struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	URL          string    `json:"url" gorm:"type:text;not null"`
	Domain       string    `json:"domain" gorm:"type:varchar(255);index"`
	Label        string    `json:"label" gorm:"type:varchar(100);not null;index"`
	ModelName    string    `json:"model_name" gorm:"type:varchar(100);not null"`
	ModelVersion int       `json:"model_version" gorm:"not null"`
	TextLength   int       `json:"text_length" gorm:"default:0"`
	LatencyMs    int64     `json:"latency_ms" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (Link) TableName() string {
	return "links"
}

// NewLink creates a new Link for a classified page
func NewLink(rawURL, label, modelName string, modelVersion int) *Link {
	return &Link{
		ID:           uuid.New(),
		URL:          rawURL,
		Domain:       domainOf(rawURL),
		Label:        label,
		ModelName:    modelName,
		ModelVersion: modelVersion,
	}
}

// SetMetrics records the size of the classified text and the pipeline latency
func (l *Link) SetMetrics(textLength int, latency time.Duration) {
	l.TextLength = textLength
	l.LatencyMs = latency.Milliseconds()
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
