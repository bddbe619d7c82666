// Package news provides the HTTP handler for the aggregated news endpoint.
package news

import (
	"time"

	"news-aggregator/internal/domain/entity"
)

// ItemDTO is one news item in the response body.
type ItemDTO struct {
	Title     string     `json:"title" example:"Nuevas medidas económicas"`
	ImagePath string     `json:"imagePath" example:"https://cdn.example.com/img/1.jpg"`
	Source    string     `json:"source" example:"El País"`
	Link      string     `json:"link" example:"https://elpais.com/economia/2026-10-16/medidas.html"`
	Date      *time.Time `json:"date,omitempty" example:"2026-10-16T08:30:00Z"`
	Country   string     `json:"country" example:"es"`
	Language  string     `json:"language" example:"es"`
}

// Response is the body of GET /news.
type Response struct {
	Country      string    `json:"country" example:"es"`
	Language     *string   `json:"language" example:"es"`
	Page         int       `json:"page" example:"1"`
	PageSize     int       `json:"page_size" example:"20"`
	TotalResults int       `json:"total_results" example:"134"`
	Period       *string   `json:"period" example:"week"`
	DateFrom     *string   `json:"date_from" example:"2026-10-01"`
	DateTo       *string   `json:"date_to" example:"2026-10-16"`
	Items        []ItemDTO `json:"items"`
	Warnings     []string  `json:"warnings"`
}

func toItemDTO(it entity.NormalizedItem) ItemDTO {
	dto := ItemDTO{
		Title:     it.Title,
		ImagePath: it.ImagePath,
		Source:    it.Source,
		Link:      it.Link,
		Country:   it.Country,
		Language:  it.Language,
	}
	if it.HasDate() {
		d := it.PublishedAt.UTC()
		dto.Date = &d
	}
	return dto
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
