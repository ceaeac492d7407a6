package models

import "time"

type Media struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"originalFilename"`
	Path             string    `json:"path"`
	URL              string    `json:"url"`
	ThumbnailURL     string    `json:"thumbnailUrl,omitempty"`
	Type             string    `json:"type"`
	Size             int64     `json:"size"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Alt              string    `json:"alt"`
	Title            string    `json:"title"`
	UploadedBy       int64     `json:"uploadedBy"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

type UpdateMediaRequest struct {
	Alt   *string `json:"alt,omitempty"`
	Title *string `json:"title,omitempty"`
}
