package models

import (
	"sort"
	"time"

	"github.com/mediabucket/mbx/internal/shared"
)

// FileRef identifies a local file staged for upload.
type FileRef struct {
	Name       string
	Path       string
	Size       int64
	ModifiedAt time.Time
}

// UploadState is the lifecycle state of a single file upload.
type UploadState string

const (
	UploadWaiting   UploadState = "waiting"
	UploadUploading UploadState = "uploading"
	UploadDone      UploadState = "done"
	UploadError     UploadState = "error"
	UploadDeleted   UploadState = "deleted"
)

// Upload is an immutable per-file upload record. Transitions return new
// values; a deleted upload is a tombstone that keeps its position and
// diagnostic fields so sibling position arithmetic stays stable.
type Upload struct {
	file          FileRef
	state         UploadState
	uploadedBytes int64
	failure       *Failure
	position      int
	content       *Media
	thumbnail     *Media
}

// UploadFromFile stages a file at the given position in its job.
func UploadFromFile(file FileRef, position int) Upload {
	return Upload{file: file, state: UploadWaiting, position: position}
}

func (u Upload) File() FileRef {
	return u.file
}

func (u Upload) State() UploadState {
	return u.state
}

func (u Upload) UploadedBytes() int64 {
	return u.uploadedBytes
}

func (u Upload) Failure() *Failure {
	return u.failure
}

func (u Upload) Position() int {
	return u.position
}

// Content is the stored media, non-nil only once the upload is done.
func (u Upload) Content() *Media {
	return u.content
}

// Thumbnail is the stored preview media, non-nil only once the upload is done.
func (u Upload) Thumbnail() *Media {
	return u.thumbnail
}

// SetPosition moves the upload to a new position within its job.
func (u Upload) SetPosition(position int) Upload {
	u.position = position
	return u
}

// SetProgress records transferred bytes and forces the uploading state.
func (u Upload) SetProgress(uploadedBytes int64) Upload {
	u.state = UploadUploading
	u.uploadedBytes = uploadedBytes
	return u
}

// Error marks the upload failed with the given failure.
func (u Upload) Error(failure *Failure) Upload {
	u.state = UploadError
	u.failure = failure
	return u
}

// Done marks the upload complete and attaches the resulting media.
func (u Upload) Done(content, thumbnail *Media) Upload {
	u.state = UploadDone
	u.content = content
	u.thumbnail = thumbnail
	return u
}

// Delete tombstones the upload without clearing its other fields.
func (u Upload) Delete() Upload {
	u.state = UploadDeleted
	return u
}

// Progress is the transfer completion percentage.
func (u Upload) Progress() float64 {
	if u.file.Size == 0 {
		return 0
	}
	return float64(u.uploadedBytes) / float64(u.file.Size) * 100
}

// CreatePostData is the post metadata staged alongside an upload job.
type CreatePostData struct {
	title       string
	source      string
	description string
	flatten     bool
	tags        []Tag
}

func NewCreatePostData(title, source, description string, flatten bool, tags []Tag) CreatePostData {
	return CreatePostData{title: title, source: source, description: description, flatten: flatten, tags: tags}
}

func (d CreatePostData) Title() string       { return d.title }
func (d CreatePostData) Source() string      { return d.source }
func (d CreatePostData) Description() string { return d.description }
func (d CreatePostData) Flatten() bool       { return d.flatten }

func (d CreatePostData) Tags() []Tag {
	tags := make([]Tag, len(d.tags))
	copy(tags, d.tags)
	return tags
}

func (d CreatePostData) SetTitle(title string) CreatePostData {
	d.title = title
	return d
}

func (d CreatePostData) SetSource(source string) CreatePostData {
	d.source = source
	return d
}

func (d CreatePostData) SetDescription(description string) CreatePostData {
	d.description = description
	return d
}

func (d CreatePostData) SetFlatten(flatten bool) CreatePostData {
	d.flatten = flatten
	return d
}

func (d CreatePostData) SetTags(tags []Tag) CreatePostData {
	d.tags = tags
	return d
}

// UploadJobType discriminates what an upload job produces when it finishes.
type UploadJobType string

const JobCreatePost UploadJobType = "createPost"

// UploadJob is an immutable aggregate of uploads plus the metadata for the
// post created once every upload succeeds. Positions of non-deleted uploads
// always form a dense 0..N-1 ordering.
type UploadJob struct {
	id             string
	uploads        []Upload
	jobType        UploadJobType
	failure        *Failure
	createPostData CreatePostData
	postCreated    bool
}

// NewPostUploadJob creates a job that will produce a post from its uploads.
func NewPostUploadJob(uploads []Upload, data CreatePostData) UploadJob {
	return UploadJob{id: shared.GenerateID(), uploads: uploads, jobType: JobCreatePost, createPostData: data}
}

func (j UploadJob) ID() string {
	return j.id
}

func (j UploadJob) Type() UploadJobType {
	return j.jobType
}

func (j UploadJob) Failure() *Failure {
	return j.failure
}

func (j UploadJob) CreatePostData() CreatePostData {
	return j.createPostData
}

func (j UploadJob) Uploads() []Upload {
	uploads := make([]Upload, len(j.uploads))
	copy(uploads, j.uploads)
	return uploads
}

// UpdateUpload replaces the upload at the given raw-list index.
func (j UploadJob) UpdateUpload(index int, upload Upload) UploadJob {
	uploads := j.Uploads()
	uploads[index] = upload
	j.uploads = uploads
	return j
}

// MapUpload applies a transition to the upload at the given raw-list index.
func (j UploadJob) MapUpload(index int, fn func(Upload) Upload) UploadJob {
	if index < 0 || index >= len(j.uploads) {
		return j
	}
	return j.UpdateUpload(index, fn(j.uploads[index]))
}

// SetPostData replaces the staged post metadata.
func (j UploadJob) SetPostData(data CreatePostData) UploadJob {
	if j.jobType != JobCreatePost {
		return j
	}
	j.createPostData = data
	return j
}

// AddFiles stages additional files at the end of the job.
func (j UploadJob) AddFiles(files []FileRef) UploadJob {
	uploads := j.Uploads()
	for i, file := range files {
		uploads = append(uploads, UploadFromFile(file, len(j.uploads)+i))
	}
	j.uploads = uploads
	return j
}

// MoveUploadToIndex moves one upload to the position held by another,
// shifting everything in between by one so positions of non-deleted uploads
// remain a dense permutation of 0..N-1. Both arguments are raw-list indexes.
func (j UploadJob) MoveUploadToIndex(uploadIndex, targetIndex int) UploadJob {
	if uploadIndex == targetIndex {
		return j
	}
	if uploadIndex < 0 || uploadIndex >= len(j.uploads) || targetIndex < 0 || targetIndex >= len(j.uploads) {
		return j
	}

	uploadPosition := j.uploads[uploadIndex].Position()
	targetPosition := j.uploads[targetIndex].Position()
	movingDown := targetPosition > uploadPosition

	uploads := make([]Upload, len(j.uploads))
	for i, upload := range j.uploads {
		position := upload.Position()

		switch {
		case position == uploadPosition:
			uploads[i] = upload.SetPosition(targetPosition)
		case movingDown && position > uploadPosition && position <= targetPosition:
			uploads[i] = upload.SetPosition(position - 1)
		case !movingDown && position >= targetPosition && position < uploadPosition:
			uploads[i] = upload.SetPosition(position + 1)
		default:
			uploads[i] = upload
		}
	}

	j.uploads = uploads
	return j
}

// DeleteUploads tombstones the uploads at the given raw-list indexes.
func (j UploadJob) DeleteUploads(indexes []int) UploadJob {
	marked := make(map[int]bool, len(indexes))
	for _, index := range indexes {
		marked[index] = true
	}

	uploads := make([]Upload, len(j.uploads))
	for i, upload := range j.uploads {
		if marked[i] {
			uploads[i] = upload.Delete()
		} else {
			uploads[i] = upload
		}
	}

	j.uploads = uploads
	return j
}

// Normalize drops tombstoned uploads entirely and compacts the remaining
// positions to 0..N-1, preserving their relative order. Used once the job is
// being finalized and position arithmetic over tombstones is no longer needed.
func (j UploadJob) Normalize() UploadJob {
	live := j.NonDeletedUploads()

	positions := make([]int, len(live))
	for i, upload := range live {
		positions[i] = upload.Position()
	}
	sort.Ints(positions)

	rank := make(map[int]int, len(positions))
	for i, position := range positions {
		rank[position] = i
	}

	for i, upload := range live {
		live[i] = upload.SetPosition(rank[upload.Position()])
	}

	j.uploads = live
	return j
}

// NonDeletedUploads returns the live uploads in raw-list order.
func (j UploadJob) NonDeletedUploads() []Upload {
	uploads := make([]Upload, 0, len(j.uploads))
	for _, upload := range j.uploads {
		if upload.State() != UploadDeleted {
			uploads = append(uploads, upload)
		}
	}
	return uploads
}

// NonDeletedSortedUploads returns the live uploads ordered by position.
func (j UploadJob) NonDeletedSortedUploads() []Upload {
	uploads := j.NonDeletedUploads()
	sort.Slice(uploads, func(a, b int) bool {
		return uploads[a].Position() < uploads[b].Position()
	})
	return uploads
}

// IsEmpty reports whether the job has no live uploads left.
func (j UploadJob) IsEmpty() bool {
	return len(j.NonDeletedUploads()) == 0
}

// Error marks the whole job failed, distinct from any per-upload failure.
func (j UploadJob) Error(failure *Failure) UploadJob {
	j.failure = failure
	return j
}

// PostCreated records that the server accepted the finished job.
func (j UploadJob) PostCreated() UploadJob {
	j.postCreated = true
	return j
}

// IsPostCreated reports whether the finished job already produced its post.
func (j UploadJob) IsPostCreated() bool {
	return j.postCreated
}

// SuccessfullyUploaded holds once every live upload is done.
func (j UploadJob) SuccessfullyUploaded() bool {
	for _, upload := range j.NonDeletedUploads() {
		if upload.State() != UploadDone {
			return false
		}
	}
	return true
}

// Done holds when every live upload succeeded and no job-level failure is set.
func (j UploadJob) Done() bool {
	return j.SuccessfullyUploaded() && j.failure == nil
}

// TotalBytes sums the file sizes of all live uploads.
func (j UploadJob) TotalBytes() int64 {
	var total int64
	for _, upload := range j.NonDeletedUploads() {
		total += upload.File().Size
	}
	return total
}

// UploadedBytes sums the transferred bytes of all live uploads.
func (j UploadJob) UploadedBytes() int64 {
	var total int64
	for _, upload := range j.NonDeletedUploads() {
		total += upload.UploadedBytes()
	}
	return total
}

// Progress is the job-wide transfer completion percentage.
func (j UploadJob) Progress() float64 {
	total := j.TotalBytes()
	if total == 0 {
		return 0
	}
	return float64(j.UploadedBytes()) / float64(total) * 100
}
