// Package api implements the HTTP client for the media bucket server.
//
// All methods translate the server's snake_case wire payloads into the
// domain types in internal/models, and map error bodies into [models.Failure]
// values so callers can fold them into loading state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
)

// Error carries the failure body returned by the server alongside the
// HTTP status it arrived with.
type Error struct {
	Failure *models.Failure
}

func (e *Error) Error() string {
	return e.Failure.Message
}

func (e *Error) Unwrap() error {
	return shared.ErrAPIRequest
}

// FailureFrom converts any client error into a [models.Failure]. Server
// rejections keep their status and inner error; transport errors become a
// plain failure with the error text.
func FailureFrom(err error) *models.Failure {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Failure
	}
	return models.NewFailure(err.Error())
}

// Client talks to one media bucket server. Bucket listing and login use the
// server base URL; everything else runs against the bucket-scoped base of the
// session passed in.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a client for the given server. requestsPerSec throttles
// outgoing requests when positive; zero disables pacing.
func NewClient(baseURL string, httpClient *http.Client, requestsPerSec float64, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if requestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSec), 1)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     shared.WithLogger(logger, "component", "api"),
	}
}

// BaseURL returns the server base the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BucketBase returns the bucket-scoped base URL used by authenticated routes.
func (c *Client) BucketBase(bucketID int64) string {
	return fmt.Sprintf("%s/buckets/%d", c.baseURL, bucketID)
}

// doRequest performs a request and decodes the JSON response into result.
// token may be empty for the unauthenticated bucket routes.
func (c *Client) doRequest(ctx context.Context, method, fullURL, token string, body, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request pacing interrupted: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// decodeError maps a non-2xx response into an [Error]. Bodies that are not
// the server's failure shape fall back to the HTTP status line.
func (c *Client) decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		raw = nil
	}

	var wire errorWire
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wire); err != nil {
			wire = errorWire{}
		}
	}
	if wire.Message == "" {
		wire.Message = resp.Status
	}
	if wire.Status == 0 {
		wire.Status = resp.StatusCode
	}
	if wire.StatusText == "" {
		wire.StatusText = http.StatusText(resp.StatusCode)
	}

	c.logger.Debug("server rejected request", "status", wire.Status, "message", wire.Message)
	return &Error{Failure: models.NewAPIFailure(wire.Message, wire.InnerError, wire.Status, wire.StatusText)}
}

// GetAllBuckets lists the buckets the server exposes.
func (c *Client) GetAllBuckets(ctx context.Context) ([]models.Bucket, error) {
	var wire []bucketWire
	if err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/buckets", "", nil, &wire); err != nil {
		return nil, err
	}

	buckets := make([]models.Bucket, len(wire))
	for i, b := range wire {
		buckets[i] = b.toModel()
	}
	return buckets, nil
}

// GetBucketByID fetches a single bucket description.
func (c *Client) GetBucketByID(ctx context.Context, bucketID int64) (*models.Bucket, error) {
	var wire bucketWire
	endpoint := fmt.Sprintf("%s/buckets/%d", c.baseURL, bucketID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &wire); err != nil {
		return nil, err
	}

	bucket := wire.toModel()
	return &bucket, nil
}

// Login opens a session against a bucket. The password may be empty for
// unprotected buckets. privateSession controls whether the caller persists
// the returned session.
func (c *Client) Login(ctx context.Context, bucketID int64, password string, privateSession bool) (*models.Auth, error) {
	var wire loginResponseWire
	endpoint := fmt.Sprintf("%s/buckets/%d/auth", c.baseURL, bucketID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, "", loginRequestWire{Password: password}, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	now, err := parseServerTime(wire.Now)
	if err != nil {
		return nil, err
	}

	return &models.Auth{
		BucketID:       bucketID,
		Token:          wire.Token,
		ShareToken:     wire.ShareToken,
		PrivateSession: privateSession,
		Base:           c.BucketBase(bucketID),
		Lifetime:       wire.Lifetime,
		CreatedAt:      now,
	}, nil
}

// GetBucketDetails fetches aggregate statistics for the authenticated bucket.
func (c *Client) GetBucketDetails(ctx context.Context, auth models.Auth) (*models.BucketDetails, error) {
	var wire bucketDetailsWire
	if err := c.doRequest(ctx, http.MethodGet, auth.Base+"/details", auth.Token, nil, &wire); err != nil {
		return nil, err
	}

	details := wire.toModel()
	return &details, nil
}

// SearchPosts runs a filtered, paginated post search.
func (c *Client) SearchPosts(ctx context.Context, auth models.Auth, query models.PostSearchQuery, params models.PageParams) ([]models.SearchPost, models.Page, error) {
	values := url.Values{}
	for key, value := range query.QueryParams() {
		values.Set(key, value)
	}
	setPageValues(values, params)

	var wire pageWire[searchPostWire]
	endpoint := auth.Base + "/posts?" + values.Encode()
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, models.Page{}, err
	}

	posts := make([]models.SearchPost, len(wire.Data))
	for i, post := range wire.Data {
		posts[i] = post.toModel(auth)
	}
	return posts, wire.page(), nil
}

// GetPostByID fetches one post with tags resolved.
func (c *Client) GetPostByID(ctx context.Context, auth models.Auth, postID int64) (*models.PostDetail, error) {
	var wire postWire
	endpoint := fmt.Sprintf("%s/posts/%d", auth.Base, postID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, err
	}

	post := wire.toModel()
	return &post, nil
}

// UpdatePost replaces a post's metadata and tag links.
func (c *Client) UpdatePost(ctx context.Context, auth models.Auth, postID int64, title, description, source string, tagIDs []int64) (*models.PostDetail, error) {
	body := updatePostWire{Title: title, Description: description, Source: source, TagIDs: tagIDs}
	if body.TagIDs == nil {
		body.TagIDs = []int64{}
	}

	var wire postWire
	endpoint := fmt.Sprintf("%s/posts/%d", auth.Base, postID)
	if err := c.doRequest(ctx, http.MethodPut, endpoint, auth.Token, body, &wire); err != nil {
		return nil, err
	}

	post := wire.toModel()
	return &post, nil
}

// DeletePost removes a post from the bucket.
func (c *Client) DeletePost(ctx context.Context, auth models.Auth, postID int64) error {
	endpoint := fmt.Sprintf("%s/posts/%d", auth.Base, postID)
	return c.doRequest(ctx, http.MethodDelete, endpoint, auth.Token, nil, nil)
}

// SearchPostItems pages through the items of one post.
func (c *Client) SearchPostItems(ctx context.Context, auth models.Auth, postID int64, params models.PageParams) ([]models.SearchPostItem, models.Page, error) {
	values := url.Values{}
	setPageValues(values, params)

	var wire pageWire[searchItemWire]
	endpoint := fmt.Sprintf("%s/posts/%d/items?%s", auth.Base, postID, values.Encode())
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, models.Page{}, err
	}

	items := make([]models.SearchPostItem, len(wire.Data))
	for i, item := range wire.Data {
		items[i] = item.toModel(auth)
	}
	return items, wire.page(), nil
}

// GetPostItemByID fetches one post item, content media included, addressed by
// its position within the post.
func (c *Client) GetPostItemByID(ctx context.Context, auth models.Auth, postID int64, position int) (*models.PostItemDetail, error) {
	var wire itemDetailWire
	endpoint := fmt.Sprintf("%s/posts/%d/items/%d", auth.Base, postID, position)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, err
	}

	item := wire.toModel(auth)
	return &item, nil
}

// GetMediaByID fetches a media record by id.
func (c *Client) GetMediaByID(ctx context.Context, auth models.Auth, mediaID int64) (*models.Media, error) {
	var wire mediaWire
	endpoint := fmt.Sprintf("%s/media/%d", auth.Base, mediaID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(auth), nil
}

// SearchTags finds tags matching a name prefix.
func (c *Client) SearchTags(ctx context.Context, auth models.Auth, query string) ([]models.Tag, error) {
	values := url.Values{}
	if query != "" {
		values.Set("query", query)
	}

	var wire []tagWire
	endpoint := auth.Base + "/tags?" + values.Encode()
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, err
	}

	tags := make([]models.Tag, len(wire))
	for i, tag := range wire {
		tags[i] = tag.toModel()
	}
	return tags, nil
}

// GetTagByID fetches one tag with its usage statistics.
func (c *Client) GetTagByID(ctx context.Context, auth models.Auth, tagID int64) (*models.TagDetail, error) {
	var wire tagWire
	endpoint := fmt.Sprintf("%s/tags/%d", auth.Base, tagID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, auth.Token, nil, &wire); err != nil {
		return nil, err
	}
	return &models.TagDetail{Tag: wire.toModel()}, nil
}

// CreateTag creates a new tag by name.
func (c *Client) CreateTag(ctx context.Context, auth models.Auth, name string) (*models.Tag, error) {
	var wire tagWire
	if err := c.doRequest(ctx, http.MethodPost, auth.Base+"/tags", auth.Token, createTagWire{Name: name}, &wire); err != nil {
		return nil, err
	}

	tag := wire.toModel()
	return &tag, nil
}

// RemoveTag deletes a tag and its post links.
func (c *Client) RemoveTag(ctx context.Context, auth models.Auth, tagID int64) error {
	endpoint := fmt.Sprintf("%s/tags/%d", auth.Base, tagID)
	return c.doRequest(ctx, http.MethodDelete, endpoint, auth.Token, nil, nil)
}

// CreatePost turns a finished upload job into a post. Items are submitted in
// the job's position order with their original file metadata attached.
func (c *Client) CreatePost(ctx context.Context, auth models.Auth, job models.UploadJob) ([]models.PostDetail, error) {
	data := job.CreatePostData()

	body := createPostWire{
		Title:       data.Title(),
		Description: data.Description(),
		Source:      data.Source(),
		Flatten:     data.Flatten(),
		TagIDs:      []int64{},
		Items:       []createPostItemWire{},
	}
	for _, tag := range data.Tags() {
		body.TagIDs = append(body.TagIDs, tag.ID)
	}
	for _, upload := range job.NonDeletedSortedUploads() {
		content := upload.Content()
		if content == nil {
			return nil, fmt.Errorf("%w: upload %q has no stored content", shared.ErrInvalidInput, upload.File().Name)
		}
		file := upload.File()
		body.Items = append(body.Items, createPostItemWire{
			ContentID: content.ID,
			Metadata: createPostItemMetadataWire{
				OriginalFilename:   file.Name,
				OriginalDirectory:  file.Path,
				OriginalModifiedAt: file.ModifiedAt,
				OriginalAccessedAt: file.ModifiedAt,
			},
		})
	}

	var wire createPostResponseWire
	if err := c.doRequest(ctx, http.MethodPost, auth.Base+"/posts", auth.Token, body, &wire); err != nil {
		return nil, err
	}

	c.logger.Info("created post batch", "batch", wire.Batch.ID, "posts", len(wire.Posts))

	posts := make([]models.PostDetail, len(wire.Posts))
	for i, post := range wire.Posts {
		posts[i] = post.toModel()
	}
	return posts, nil
}

// UploadContent streams one file to the content endpoint as a multipart
// upload. progress, when non-nil, receives the cumulative byte count as the
// body is consumed; it is never invoked after UploadContent returns. Returns
// the stored media and its generated thumbnail.
func (c *Client) UploadContent(ctx context.Context, auth models.Auth, file models.FileRef, body io.Reader, progress func(written int64)) (*models.Media, *models.Media, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("request pacing interrupted: %w", err)
		}
	}

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)

	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		part, err := form.CreateFormFile("file", file.Name)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		source := io.Reader(body)
		if progress != nil {
			source = &countingReader{reader: body, report: progress}
		}
		if _, err := io.Copy(part, source); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(form.Close())
	}()

	// The copy goroutine drives the progress callback. Closing the read side
	// stops it, and waiting for it guarantees progress never fires after this
	// method returns, on any path.
	defer func() {
		pipeReader.Close()
		<-copyDone
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, auth.Base+"/content", pipeReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+auth.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, c.decodeError(resp)
	}

	var wire uploadResponseWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return wire.Content.toModel(auth), wire.Thumbnail.toModel(auth), nil
}

// LoadChart resolves a chart query by fanning out one graph request per
// series and collecting the results.
func (c *Client) LoadChart(ctx context.Context, auth models.Auth, query models.ChartQuery) (*models.Chart, error) {
	chart := &models.Chart{Name: query.Name, Discriminator: query.Discriminator}

	discriminator := chartDiscriminatorWire{Type: query.Discriminator.Discriminator}
	if discriminator.Type == "duration" {
		discriminator.DurationSeconds = query.Discriminator.Duration.Seconds()
	}

	for _, series := range query.Series {
		body := chartRequestWire{
			Select:        string(series.Select),
			Filter:        series.Filter.QueryParams(),
			Discriminator: discriminator,
		}

		var wire chartResponseWire
		if err := c.doRequest(ctx, http.MethodPost, auth.Base+"/posts/graph", auth.Token, body, &wire); err != nil {
			return nil, fmt.Errorf("failed to load series %q: %w", series.Name, err)
		}
		chart.Series = append(chart.Series, wire.toSeries(series.Name))
	}

	return chart, nil
}

// SearchQueryPlaylistURL builds the shareable playlist link for a search
// query. The share token goes in the query string so media players can fetch
// the playlist without headers.
func (c *Client) SearchQueryPlaylistURL(auth models.Auth, query models.PostSearchQuery) string {
	values := url.Values{}
	for key, value := range query.QueryParams() {
		values.Set(key, value)
	}
	values.Set("token", auth.ShareToken)
	return auth.Base + "/posts/index.m3u?" + values.Encode()
}

func setPageValues(values url.Values, params models.PageParams) {
	values.Set("page_size", strconv.Itoa(params.PageSize))
	values.Set("offset", strconv.Itoa(params.Offset))
}

// countingReader reports the cumulative number of bytes read from the
// wrapped reader.
type countingReader struct {
	reader io.Reader
	total  int64
	report func(written int64)
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.total += int64(n)
		r.report(r.total)
	}
	return n, err
}
