package models

type SourceType string

const (
	SourceYoutube SourceType = "youtube"
	SourcePDF     SourceType = "pdf"
	SourceArticle SourceType = "article"
	SourceNews    SourceType = "news"
	SourceTweet   SourceType = "tweet"
	SourceVideo   SourceType = "video"
	SourceBlog    SourceType = "blog"
)

// Valid reports whether t is one of the known source tags.
func (t SourceType) Valid() bool {
	switch t {
	case SourceYoutube, SourcePDF, SourceArticle, SourceNews, SourceTweet, SourceVideo, SourceBlog:
		return true
	}
	return false
}

// IsVideo reports whether sources of this type go through the video pipeline.
func (t SourceType) IsVideo() bool {
	return t == SourceYoutube || t == SourceVideo
}

type Source struct {
	ID          int64      `json:"id"`
	Type        SourceType `json:"type"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Author      string     `json:"author,omitempty"`
	Date        string     `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
}
