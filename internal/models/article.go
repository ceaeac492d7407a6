package models

import "time"

const DefaultCoverImage = "default-cover.jpg"

type Category string

const (
	CategorySightseeing   Category = "景点游览"
	CategoryFood          Category = "美食探索"
	CategoryCulture       Category = "文化体验"
	CategoryAccommodation Category = "住宿推荐"
	CategoryOther         Category = "其他"
)

// CategoryInfo — элемент справочника категорий для фронта.
type CategoryInfo struct {
	Value  Category `json:"value"`
	Name   string   `json:"name"`
	NameEn string   `json:"nameEn"`
}

var Categories = []CategoryInfo{
	{Value: CategorySightseeing, Name: "景点游览", NameEn: "Sightseeing"},
	{Value: CategoryFood, Name: "美食探索", NameEn: "Food"},
	{Value: CategoryCulture, Name: "文化体验", NameEn: "Culture"},
	{Value: CategoryAccommodation, Name: "住宿推荐", NameEn: "Accommodation"},
	{Value: CategoryOther, Name: "其他", NameEn: "Other"},
}

func CategoryValues() []string {
	out := make([]string, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, string(c.Value))
	}
	return out
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if known.Value == c {
			return true
		}
	}
	return false
}

type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates,omitempty"` // [lng, lat]
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	Province    string    `json:"province,omitempty"`
}

// AuthorRef — краткие данные автора, которые отдаются вместе со статьёй.
type AuthorRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Article struct {
	ID         int64      `db:"id"          json:"id"`
	Title      string     `db:"title"       json:"title"`
	TitleEn    *string    `db:"title_en"    json:"titleEn,omitempty"`
	Slug       string     `db:"slug"        json:"slug"`
	Content    string     `db:"content"     json:"content"`
	ContentEn  *string    `db:"content_en"  json:"contentEn,omitempty"`
	Excerpt    string     `db:"excerpt"     json:"excerpt"`
	ExcerptEn  *string    `db:"excerpt_en"  json:"excerptEn,omitempty"`
	Category   Category   `db:"category"    json:"category"`
	CoverImage string     `db:"cover_image" json:"coverImage"`
	AuthorID   int64      `db:"author_id"   json:"-"`
	Author     *AuthorRef `db:"-"           json:"author,omitempty"`
	Published  bool       `db:"published"   json:"published"`
	Featured   bool       `db:"featured"    json:"featured"`
	Tags       []string   `db:"-"           json:"tags"`
	Location   *Location  `db:"-"           json:"location,omitempty"`
	ViewCount  int64      `db:"view_count"  json:"viewCount"`
	CreatedAt  time.Time  `db:"created_at"  json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at"  json:"updatedAt"`
}

// Localize подменяет китайские поля английскими, если перевод заполнен.
func (a *Article) Localize(lang string) {
	if lang != "en" {
		return
	}
	if a.TitleEn != nil && *a.TitleEn != "" {
		a.Title = *a.TitleEn
	}
	if a.ExcerptEn != nil && *a.ExcerptEn != "" {
		a.Excerpt = *a.ExcerptEn
	}
	if a.ContentEn != nil && *a.ContentEn != "" {
		a.Content = *a.ContentEn
	}
}

// swagger:model CreateArticleRequest
type CreateArticleRequest struct {
	Title      string    `json:"title"      example:"乌镇一日游"`
	TitleEn    string    `json:"titleEn"    example:"A day in Wuzhen"`
	Content    string    `json:"content"    example:"<p>水乡古镇……</p>"`
	ContentEn  string    `json:"contentEn"`
	Excerpt    string    `json:"excerpt"    example:"江南水乡的清晨"`
	ExcerptEn  string    `json:"excerptEn"`
	Category   Category  `json:"category"   example:"景点游览"`
	CoverImage string    `json:"coverImage"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	Tags       []string  `json:"tags"       example:"乌镇,古镇"`
	Location   *Location `json:"location"`
}

// UpdateArticleRequest — частичное обновление, nil означает «не менять».
type UpdateArticleRequest struct {
	Title      *string   `json:"title,omitempty"`
	TitleEn    *string   `json:"titleEn,omitempty"`
	Content    *string   `json:"content,omitempty"`
	ContentEn  *string   `json:"contentEn,omitempty"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	ExcerptEn  *string   `json:"excerptEn,omitempty"`
	Category   *Category `json:"category,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty"`
	Published  *bool     `json:"published,omitempty"`
	Featured   *bool     `json:"featured,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Location   *Location `json:"location,omitempty"`
}
