package api

import (
	"fmt"
	"time"

	"github.com/mediabucket/mbx/internal/models"
)

// Wire types mirror the server's JSON contract. Mapping into internal/models
// happens here so the rest of the client never sees snake_case payloads.

type errorWire struct {
	Message    string `json:"message"`
	InnerError string `json:"inner_error"`
	Status     int    `json:"status"`
	StatusText string `json:"status_text"`
}

type bucketWire struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PasswordProtected bool   `json:"password_protected"`
	Encrypted         bool   `json:"encrypted"`
}

func (w bucketWire) toModel() models.Bucket {
	return models.Bucket{
		ID:                w.ID,
		Name:              w.Name,
		PasswordProtected: w.PasswordProtected,
		Encrypted:         w.Encrypted,
	}
}

type loginRequestWire struct {
	Password string `json:"password"`
}

type loginResponseWire struct {
	Token      string `json:"token"`
	ShareToken string `json:"share_token"`
	Lifetime   int64  `json:"lifetime"`
	Now        string `json:"now"`
}

// parseServerTime reads the server clock sent with login responses. The
// session expiry is measured against this clock rather than the local one.
func parseServerTime(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse server time: %w", err)
	}
	return t, nil
}

type bucketDetailsWire struct {
	TotalFileSize   int64 `json:"total_file_size"`
	FileCount       int64 `json:"file_count"`
	SessionsCreated int64 `json:"sessions_created"`
}

func (w bucketDetailsWire) toModel() models.BucketDetails {
	return models.BucketDetails{
		TotalFileSize:   w.TotalFileSize,
		FileCount:       w.FileCount,
		SessionsCreated: w.SessionsCreated,
	}
}

type tagGroupWire struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	HexColor string `json:"hex_color"`
}

type tagWire struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Group       *tagGroupWire `json:"group"`
	LinkedPosts int64         `json:"linked_posts"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (w tagWire) toModel() models.Tag {
	tag := models.Tag{
		ID:          w.ID,
		Name:        w.Name,
		LinkedPosts: w.LinkedPosts,
		CreatedAt:   w.CreatedAt,
	}
	if w.Group != nil {
		tag.Group = &models.TagGroup{ID: w.Group.ID, Name: w.Group.Name, HexColor: w.Group.HexColor}
	}
	return tag
}

type createTagWire struct {
	Name string `json:"name"`
}

type imageMetadataWire struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type videoMetadataWire struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
	Encoding string  `json:"encoding"`
}

type documentMetadataWire struct {
	PageWidth  int    `json:"page_width"`
	PageHeight int    `json:"page_height"`
	Pages      int    `json:"pages"`
	Author     string `json:"author"`
	Title      string `json:"title"`
}

type mediaMetadataWire struct {
	Image    *imageMetadataWire    `json:"image"`
	Video    *videoMetadataWire    `json:"video"`
	Document *documentMetadataWire `json:"document"`
}

type mediaWire struct {
	ID       int64             `json:"id"`
	FileSize int64             `json:"file_size"`
	SHA1     string            `json:"sha1"`
	SHA256   string            `json:"sha256"`
	MD5      string            `json:"md5"`
	Mime     string            `json:"mime"`
	Metadata mediaMetadataWire `json:"metadata"`
}

// toModel resolves the metadata variant and builds the download URLs from the
// session, since the server returns ids rather than links.
func (w *mediaWire) toModel(auth models.Auth) *models.Media {
	if w == nil {
		return nil
	}

	media := &models.Media{
		ID:       w.ID,
		FileSize: w.FileSize,
		SHA1:     w.SHA1,
		SHA256:   w.SHA256,
		MD5:      w.MD5,
		Mime:     w.Mime,
		Type:     models.MediaUnknown,
		URL:      fmt.Sprintf("%s/media/%d/file?token=%s", auth.Base, w.ID, auth.Token),
	}
	if auth.ShareToken != "" {
		media.SharedURL = fmt.Sprintf("%s/media/%d/file?token=%s", auth.Base, w.ID, auth.ShareToken)
	}

	switch {
	case w.Metadata.Image != nil:
		media.Type = models.MediaImage
		media.Dimensions = &models.Dimensions{Width: w.Metadata.Image.Width, Height: w.Metadata.Image.Height}
	case w.Metadata.Video != nil:
		media.Type = models.MediaVideo
		media.Dimensions = &models.Dimensions{Width: w.Metadata.Video.Width, Height: w.Metadata.Video.Height}
		media.Duration = w.Metadata.Video.Duration
		media.VideoEncoding = w.Metadata.Video.Encoding
	case w.Metadata.Document != nil:
		media.Type = models.MediaDocument
		media.Document = &models.DocumentData{
			PageSize: models.Dimensions{Width: w.Metadata.Document.PageWidth, Height: w.Metadata.Document.PageHeight},
			Pages:    w.Metadata.Document.Pages,
			Author:   w.Metadata.Document.Author,
			Title:    w.Metadata.Document.Title,
		}
	}

	return media
}

type postWire struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ItemCount   int       `json:"item_count"`
	Tags        []tagWire `json:"tags"`
}

func (w postWire) toModel() models.PostDetail {
	detail := models.PostDetail{
		Post: models.Post{
			ID:          w.ID,
			Source:      w.Source,
			Title:       w.Title,
			Description: w.Description,
			CreatedAt:   w.CreatedAt,
		},
		ItemCount: w.ItemCount,
	}
	for _, tag := range w.Tags {
		detail.Tags = append(detail.Tags, tag.toModel())
	}
	return detail
}

type updatePostWire struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	TagIDs      []int64 `json:"tag_ids"`
}

type searchPostWire struct {
	ID                  int64      `json:"id"`
	Source              string     `json:"source"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	CreatedAt           time.Time  `json:"created_at"`
	ItemCount           int        `json:"item_count"`
	ContainsDocument    bool       `json:"contains_document"`
	ContainsImage       bool       `json:"contains_image"`
	ContainsVideo       bool       `json:"contains_video"`
	ContainsMovingImage bool       `json:"contains_moving_image"`
	Duration            float64    `json:"duration"`
	Thumbnail           *mediaWire `json:"thumbnail"`
	FileName            string     `json:"file_name"`
}

func (w searchPostWire) toModel(auth models.Auth) models.SearchPost {
	return models.SearchPost{
		Post: models.Post{
			ID:          w.ID,
			Source:      w.Source,
			Title:       w.Title,
			Description: w.Description,
			CreatedAt:   w.CreatedAt,
		},
		ItemCount:           w.ItemCount,
		ContainsDocument:    w.ContainsDocument,
		ContainsImage:       w.ContainsImage,
		ContainsVideo:       w.ContainsVideo,
		ContainsMovingImage: w.ContainsMovingImage,
		Duration:            w.Duration,
		Thumbnail:           w.Thumbnail.toModel(auth),
		FileName:            w.FileName,
	}
}

type searchItemWire struct {
	PostID              int64      `json:"post_id"`
	Position            int        `json:"position"`
	ContainsImage       bool       `json:"contains_image"`
	ContainsMovingImage bool       `json:"contains_moving_image"`
	ContainsVideo       bool       `json:"contains_video"`
	ContainsDocument    bool       `json:"contains_document"`
	Duration            float64    `json:"duration"`
	Thumbnail           *mediaWire `json:"thumbnail"`
}

func (w searchItemWire) toModel(auth models.Auth) models.SearchPostItem {
	return models.SearchPostItem{
		PostID:              w.PostID,
		Position:            w.Position,
		ContainsImage:       w.ContainsImage,
		ContainsMovingImage: w.ContainsMovingImage,
		ContainsVideo:       w.ContainsVideo,
		ContainsDocument:    w.ContainsDocument,
		Duration:            w.Duration,
		Thumbnail:           w.Thumbnail.toModel(auth),
	}
}

type itemDetailWire struct {
	PostID   int64      `json:"post_id"`
	Position int        `json:"position"`
	Content  *mediaWire `json:"content"`
}

func (w itemDetailWire) toModel(auth models.Auth) models.PostItemDetail {
	return models.PostItemDetail{
		PostID:   w.PostID,
		Position: w.Position,
		Content:  w.Content.toModel(auth),
	}
}

// pageWire is the pagination envelope shared by every search endpoint.
type pageWire[T any] struct {
	Data          []T `json:"data"`
	PageSize      int `json:"page_size"`
	PageNumber    int `json:"page_number"`
	TotalRowCount int `json:"total_row_count"`
}

func (w pageWire[T]) page() models.Page {
	return models.Page{
		Params: models.PageParams{
			PageSize: w.PageSize,
			Offset:   w.PageNumber * w.PageSize,
		},
		TotalRows: w.TotalRowCount,
	}
}

type uploadResponseWire struct {
	Content   *mediaWire `json:"content"`
	Thumbnail *mediaWire `json:"thumbnail"`
}

type createPostItemMetadataWire struct {
	OriginalFilename   string    `json:"original_filename"`
	OriginalDirectory  string    `json:"original_directory"`
	OriginalModifiedAt time.Time `json:"original_modified_at"`
	OriginalAccessedAt time.Time `json:"original_accessed_at"`
}

type createPostItemWire struct {
	ContentID int64                      `json:"content_id"`
	Metadata  createPostItemMetadataWire `json:"metadata"`
}

type createPostWire struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Source      string               `json:"source"`
	Flatten     bool                 `json:"flatten"`
	TagIDs      []int64              `json:"tag_ids"`
	Items       []createPostItemWire `json:"items"`
}

type createPostResponseWire struct {
	Batch struct {
		ID int64 `json:"id"`
	} `json:"batch"`
	Posts []postWire `json:"posts"`
}

type chartDiscriminatorWire struct {
	Type            string `json:"type"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
}

type chartRequestWire struct {
	Select        string                 `json:"select"`
	Filter        map[string]string      `json:"filter"`
	Discriminator chartDiscriminatorWire `json:"discriminator"`
}

type chartPointWire struct {
	Time  *time.Time `json:"time"`
	Label string     `json:"label"`
	Y     float64    `json:"y"`
}

type chartResponseWire struct {
	Points []chartPointWire `json:"points"`
}

func (w chartResponseWire) toSeries(name string) models.ChartSeries {
	series := models.ChartSeries{Name: name}
	for _, point := range w.Points {
		p := models.ChartPoint{Label: point.Label, Y: point.Y}
		if point.Time != nil {
			p.Time = *point.Time
		}
		series.Points = append(series.Points, p)
	}
	return series
}
