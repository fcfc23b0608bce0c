// Package store holds the client's search and upload session state.
//
// Search is an immutable value: every transition returns a new state, so a
// snapshot handed to a renderer or a test never changes underneath it. The
// methods fold API results and upload pipeline events into the state; the
// selector methods derive the next request parameters from it.
package store

import (
	"github.com/mediabucket/mbx/internal/models"
)

// Search is the state of one browsing session against a bucket.
type Search struct {
	query    models.PostSearchQuery
	pageSize int

	posts        []models.SearchPost
	postsLoading models.LoadingState
	totalPosts   int

	viewedPostID int64
	viewedPost   *models.PostDetail
	postLoading  models.LoadingState

	// items is sparse: indexed by item position, nil where the page holding
	// that position has not loaded yet.
	items        []*models.SearchPostItem
	itemsLoading models.LoadingState

	selectedPosition int
	selectedItem     *models.PostItemDetail
	itemLoading      models.LoadingState

	jobs []models.UploadJob

	tagOptions  []models.Tag
	tagsLoading models.LoadingState
}

// NewSearch creates the initial state for a query.
func NewSearch(query models.PostSearchQuery, pageSize int) Search {
	return Search{
		query:            query,
		pageSize:         pageSize,
		postsLoading:     models.InitialLoadingState(),
		postLoading:      models.InitialLoadingState(),
		itemsLoading:     models.InitialLoadingState(),
		itemLoading:      models.InitialLoadingState(),
		tagsLoading:      models.InitialLoadingState(),
		selectedPosition: -1,
	}
}

// Reset returns to the initial state for the current query. Upload jobs are
// dropped; callers cancel the pipeline separately.
func (s Search) Reset() Search {
	return NewSearch(s.query, s.pageSize)
}

func (s Search) Query() models.PostSearchQuery {
	return s.query
}

// SetQuery replaces the search query and clears every loaded result.
func (s Search) SetQuery(query models.PostSearchQuery) Search {
	next := NewSearch(query, s.pageSize)
	next.jobs = s.jobs
	return next
}

// Posts

func (s Search) Posts() []models.SearchPost {
	posts := make([]models.SearchPost, len(s.posts))
	copy(posts, s.posts)
	return posts
}

func (s Search) TotalPosts() int {
	return s.totalPosts
}

func (s Search) PostsLoading() models.LoadingState {
	return s.postsLoading
}

// LoadingPosts marks a page request in flight.
func (s Search) LoadingPosts() Search {
	s.postsLoading = s.postsLoading.Loading()
	return s
}

// PostsLoaded folds one result page into the list. Pages land at their
// offset, so re-fetching an already loaded page replaces it in place.
func (s Search) PostsLoaded(posts []models.SearchPost, page models.Page) Search {
	list := make([]models.SearchPost, len(s.posts))
	copy(list, s.posts)

	offset := page.Params.Offset
	for len(list) < offset+len(posts) {
		list = append(list, models.SearchPost{})
	}
	copy(list[offset:], posts)

	s.posts = list
	s.totalPosts = page.TotalRows
	s.postsLoading = s.postsLoading.Success()
	return s
}

// PostsFailed records a failed page request.
func (s Search) PostsFailed(failure *models.Failure) Search {
	s.postsLoading = s.postsLoading.Fail(failure)
	return s
}

// NextPage addresses the page following the loaded posts.
func (s Search) NextPage() models.PageParams {
	return models.PageParams{PageSize: s.pageSize, Offset: len(s.posts)}
}

// HasMorePosts reports whether the server holds posts beyond the loaded ones.
func (s Search) HasMorePosts() bool {
	return len(s.posts) < s.totalPosts
}

// LoadedPages lists the page windows currently loaded, for re-fetching all of
// them after the underlying data changed.
func (s Search) LoadedPages() []models.PageParams {
	var pages []models.PageParams
	for offset := 0; offset < len(s.posts); offset += s.pageSize {
		pages = append(pages, models.PageParams{PageSize: s.pageSize, Offset: offset})
	}
	return pages
}

// PostDeleted removes a post from the loaded list.
func (s Search) PostDeleted(postID int64) Search {
	posts := make([]models.SearchPost, 0, len(s.posts))
	for _, post := range s.posts {
		if post.ID != postID {
			posts = append(posts, post)
		}
	}
	if len(posts) != len(s.posts) && s.totalPosts > 0 {
		s.totalPosts--
	}
	s.posts = posts

	if s.viewedPostID == postID {
		s.viewedPostID = 0
		s.viewedPost = nil
		s.items = nil
		s.selectedPosition = -1
		s.selectedItem = nil
	}
	return s
}

// Viewed post

// ShowPost switches the viewed post, clearing the previous item list.
func (s Search) ShowPost(postID int64) Search {
	s.viewedPostID = postID
	s.viewedPost = nil
	s.postLoading = s.postLoading.Loading()
	s.items = nil
	s.itemsLoading = models.InitialLoadingState()
	s.selectedPosition = -1
	s.selectedItem = nil
	s.itemLoading = models.InitialLoadingState()
	return s
}

func (s Search) ViewedPostID() int64 {
	return s.viewedPostID
}

func (s Search) ViewedPost() *models.PostDetail {
	return s.viewedPost
}

func (s Search) PostLoading() models.LoadingState {
	return s.postLoading
}

// PostLoaded stores the viewed post. Results for a post the user has already
// navigated away from are discarded.
func (s Search) PostLoaded(post *models.PostDetail) Search {
	if post == nil || post.ID != s.viewedPostID {
		return s
	}
	s.viewedPost = post
	s.postLoading = s.postLoading.Success()
	return s
}

func (s Search) PostFailed(failure *models.Failure) Search {
	s.postLoading = s.postLoading.Fail(failure)
	return s
}

// Items

func (s Search) ItemsLoading() models.LoadingState {
	return s.itemsLoading
}

// LoadingItems marks an item page request in flight.
func (s Search) LoadingItems() Search {
	s.itemsLoading = s.itemsLoading.Loading()
	return s
}

// ItemsLoaded inserts a page of items into the sparse position-indexed list.
// The list is sized to the post's total so out-of-order pages slot in.
func (s Search) ItemsLoaded(items []models.SearchPostItem, page models.Page) Search {
	list := make([]*models.SearchPostItem, len(s.items))
	copy(list, s.items)
	for len(list) < page.TotalRows {
		list = append(list, nil)
	}

	for i := range items {
		item := items[i]
		if item.Position >= 0 && item.Position < len(list) {
			list[item.Position] = &item
		}
	}

	s.items = list
	s.itemsLoading = s.itemsLoading.Success()
	return s
}

func (s Search) ItemsFailed(failure *models.Failure) Search {
	s.itemsLoading = s.itemsLoading.Fail(failure)
	return s
}

// Item returns the loaded item at a position, nil when that page is missing.
func (s Search) Item(position int) *models.SearchPostItem {
	if position < 0 || position >= len(s.items) {
		return nil
	}
	return s.items[position]
}

// TotalItems is the item count of the viewed post once a page has loaded.
func (s Search) TotalItems() int {
	return len(s.items)
}

// LoadedItemCount counts the items actually present in the sparse list.
func (s Search) LoadedItemCount() int {
	count := 0
	for _, item := range s.items {
		if item != nil {
			count++
		}
	}
	return count
}

// NextItemPage addresses the page after the loaded items.
func (s Search) NextItemPage() models.PageParams {
	return models.PageParams{PageSize: s.pageSize, Offset: s.LoadedItemCount()}
}

// Selected item

// SelectItem navigates to an item position within the viewed post.
func (s Search) SelectItem(position int) Search {
	s.selectedPosition = position
	s.selectedItem = nil
	s.itemLoading = s.itemLoading.Loading()
	return s
}

func (s Search) SelectedPosition() int {
	return s.selectedPosition
}

func (s Search) SelectedItem() *models.PostItemDetail {
	return s.selectedItem
}

func (s Search) ItemLoading() models.LoadingState {
	return s.itemLoading
}

// ItemLoaded stores the resolved selected item, discarding stale results.
func (s Search) ItemLoaded(item *models.PostItemDetail) Search {
	if item == nil || item.Position != s.selectedPosition {
		return s
	}
	s.selectedItem = item
	s.itemLoading = s.itemLoading.Success()
	return s
}

func (s Search) ItemFailed(failure *models.Failure) Search {
	s.itemLoading = s.itemLoading.Fail(failure)
	return s
}

// Neighbours returns the loaded items directly before and after the selected
// position, for preloading previews. Either may be nil.
func (s Search) Neighbours() (previous, next *models.SearchPostItem) {
	if s.selectedPosition < 0 {
		return nil, nil
	}
	return s.Item(s.selectedPosition - 1), s.Item(s.selectedPosition + 1)
}

// Tag editing

func (s Search) TagOptions() []models.Tag {
	tags := make([]models.Tag, len(s.tagOptions))
	copy(tags, s.tagOptions)
	return tags
}

func (s Search) TagsLoading() models.LoadingState {
	return s.tagsLoading
}

// LoadingTags marks a tag search in flight.
func (s Search) LoadingTags() Search {
	s.tagsLoading = s.tagsLoading.Loading()
	return s
}

// TagsLoaded stores the tag options for the current tag search.
func (s Search) TagsLoaded(tags []models.Tag) Search {
	s.tagOptions = tags
	s.tagsLoading = s.tagsLoading.Success()
	return s
}

func (s Search) TagsFailed(failure *models.Failure) Search {
	s.tagsLoading = s.tagsLoading.Fail(failure)
	return s
}
