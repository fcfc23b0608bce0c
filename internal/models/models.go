package models

import (
	"time"
)

// Bucket is a server-side media archive reachable through the API.
type Bucket struct {
	ID                int64
	Name              string
	PasswordProtected bool
	Encrypted         bool
}

// Auth is an authenticated session against a single bucket.
type Auth struct {
	BucketID       int64
	Token          string
	ShareToken     string
	PrivateSession bool
	Base           string // bucket-scoped base URL, e.g. https://host/api/buckets/3
	Lifetime       int64  // seconds
	CreatedAt      time.Time
}

// IsExpired reports whether the session token has outlived its lifetime.
func (a Auth) IsExpired() bool {
	return time.Now().After(a.CreatedAt.Add(time.Duration(a.Lifetime) * time.Second))
}

// BucketDetails holds aggregate statistics for an authenticated bucket.
type BucketDetails struct {
	TotalFileSize   int64
	FileCount       int64
	SessionsCreated int64
}

// PageParams addresses one page of a paginated listing.
type PageParams struct {
	PageSize int
	Offset   int
}

// Page describes the window a paginated response covers.
type Page struct {
	Params    PageParams
	TotalRows int
}

// NextPage returns the parameters for the page following this one.
func (p Page) NextPage() PageParams {
	return PageParams{PageSize: p.Params.PageSize, Offset: p.Params.Offset + p.Params.PageSize}
}

// TagGroup is a named grouping of tags with a display color.
type TagGroup struct {
	ID       int64
	Name     string
	HexColor string
}

// Tag labels posts for search and filtering.
type Tag struct {
	ID          int64
	Name        string
	Group       *TagGroup
	LinkedPosts int64
	CreatedAt   time.Time
}

// TagDetail is a tag with its linked-post statistics resolved.
type TagDetail struct {
	Tag
}

// MediaType discriminates the metadata variants of a Media record.
type MediaType string

const (
	MediaUnknown  MediaType = "unknown"
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// Dimensions is a width/height pair in pixels (or points for documents).
type Dimensions struct {
	Width  int
	Height int
}

// DocumentData holds document-specific media metadata.
type DocumentData struct {
	PageSize Dimensions
	Pages    int
	Author   string
	Title    string
}

// Media is a stored file with its extracted metadata.
type Media struct {
	ID            int64
	VideoEncoding string
	Dimensions    *Dimensions
	Duration      float64
	FileSize      int64
	SHA1          string
	SHA256        string
	MD5           string
	Mime          string
	Document      *DocumentData
	Type          MediaType
	URL           string
	SharedURL     string
}

// Post is a collection of media items with shared metadata.
type Post struct {
	ID          int64
	Source      string
	Title       string
	Description string
	CreatedAt   time.Time
}

// PostDetail is a post with its tags and item count resolved.
type PostDetail struct {
	Post
	ItemCount int
	Tags      []Tag
}

// SearchPost is a post projection returned by the search endpoint.
type SearchPost struct {
	Post
	ItemCount            int
	ContainsDocument     bool
	ContainsImage        bool
	ContainsVideo        bool
	ContainsMovingImage  bool
	Duration             float64
	Thumbnail            *Media
	FileName             string
}

// SearchPostItem is one item of a post addressed by absolute position.
type SearchPostItem struct {
	PostID              int64
	Position            int
	ContainsImage       bool
	ContainsMovingImage bool
	ContainsVideo       bool
	ContainsDocument    bool
	Duration            float64
	Thumbnail           *Media
}

// PostItemDetail is a fully resolved post item including its content media.
type PostItemDetail struct {
	PostID   int64
	Position int
	Content  *Media
}
