package store

import (
	"testing"

	"github.com/mediabucket/mbx/internal/models"
)

func twoFileJob() models.UploadJob {
	return models.NewPostUploadJob(nil, models.NewCreatePostData("trip", "", "", false, nil)).
		AddFiles([]models.FileRef{
			{Name: "a.jpg", Size: 100},
			{Name: "b.jpg", Size: 200},
		})
}

func media(id int64) *models.Media {
	return &models.Media{ID: id}
}

func TestJobEventFolding(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).AddUploadJob(job)

	state = state.JobUploadProgress(job.ID(), 0, 50)
	folded, ok := state.Job(job.ID())
	if !ok {
		t.Fatal("job not found")
	}
	if got := folded.Uploads()[0]; got.State() != models.UploadUploading || got.UploadedBytes() != 50 {
		t.Errorf("upload after progress = %+v", got)
	}
	if got := folded.UploadedBytes(); got != 50 {
		t.Errorf("job bytes = %d, want 50", got)
	}

	state = state.JobUploadFailed(job.ID(), 1, models.NewFailure("boom"))
	folded, _ = state.Job(job.ID())
	if folded.Uploads()[1].State() != models.UploadError {
		t.Error("upload failure not folded")
	}
	if folded.Done() {
		t.Error("job with failed upload reported done")
	}
}

func TestJobReorderAndDelete(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).
		AddUploadJob(job).
		JobMoveUpload(job.ID(), 0, 1)

	folded, _ := state.Job(job.ID())
	sorted := folded.NonDeletedSortedUploads()
	if sorted[0].File().Name != "b.jpg" {
		t.Errorf("first upload = %q, want b.jpg", sorted[0].File().Name)
	}

	state = state.JobDeleteUploads(job.ID(), []int{0})
	folded, _ = state.Job(job.ID())
	if got := len(folded.NonDeletedUploads()); got != 1 {
		t.Errorf("live uploads = %d, want 1", got)
	}
}

// Two files are uploaded; the job becomes ready for post creation exactly
// once, after the last upload lands, and never again once the post exists.
func TestFanInBarrierFiresOnce(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).AddUploadJob(job)

	state = state.
		JobUploadProgress(job.ID(), 0, 60).
		JobUploadProgress(job.ID(), 1, 120).
		JobUploadDone(job.ID(), 0, media(31), media(32))

	if ready := state.JobsReadyForPost(); len(ready) != 0 {
		t.Fatalf("barrier fired with one of two uploads done: %v", ready)
	}

	state = state.JobUploadDone(job.ID(), 1, media(41), media(42))

	ready := state.JobsReadyForPost()
	if len(ready) != 1 {
		t.Fatalf("ready jobs = %d, want 1", len(ready))
	}

	uploads := ready[0].NonDeletedSortedUploads()
	if len(uploads) != 2 {
		t.Fatalf("uploads for post = %d, want 2", len(uploads))
	}
	if uploads[0].Content().ID != 31 || uploads[1].Content().ID != 41 {
		t.Errorf("upload contents = %d, %d", uploads[0].Content().ID, uploads[1].Content().ID)
	}

	state = state.JobPostCreated(job.ID())
	if ready := state.JobsReadyForPost(); len(ready) != 0 {
		t.Error("barrier fired again after post creation")
	}

	if active := state.ActiveUploadJobs(); len(active) != 0 {
		t.Errorf("finished job still active: %v", active)
	}
	if current := state.CurrentJobs(false); len(current) != 0 {
		t.Error("finished job listed without showFinished")
	}
	if current := state.CurrentJobs(true); len(current) != 1 {
		t.Error("finished job hidden with showFinished")
	}
}

func TestDeletedUploadDoesNotBlockBarrier(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).
		AddUploadJob(job).
		JobUploadDone(job.ID(), 0, media(31), media(32)).
		JobDeleteUploads(job.ID(), []int{1})

	ready := state.JobsReadyForPost()
	if len(ready) != 1 {
		t.Fatalf("ready jobs = %d, want 1", len(ready))
	}
	if got := len(ready[0].NonDeletedSortedUploads()); got != 1 {
		t.Errorf("uploads for post = %d, want 1", got)
	}
}

func TestFailedJobNeverReady(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).
		AddUploadJob(job).
		JobUploadDone(job.ID(), 0, media(31), media(32)).
		JobUploadDone(job.ID(), 1, media(41), media(42)).
		JobFailed(job.ID(), models.NewFailure("create post rejected"))

	if ready := state.JobsReadyForPost(); len(ready) != 0 {
		t.Error("failed job reported ready")
	}
	// The failed job stays visible so the failure can be shown.
	if active := state.ActiveUploadJobs(); len(active) != 1 {
		t.Errorf("failed job not active: %v", active)
	}
}

func TestEmptyJobNeverReady(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).
		AddUploadJob(job).
		JobDeleteUploads(job.ID(), []int{0, 1})

	if ready := state.JobsReadyForPost(); len(ready) != 0 {
		t.Error("job with only tombstones reported ready")
	}
}

func TestUnknownJobEventsIgnored(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).AddUploadJob(job)

	next := state.JobUploadProgress("no-such-job", 0, 10)
	folded, _ := next.Job(job.ID())
	if folded.UploadedBytes() != 0 {
		t.Error("event for unknown job touched another job")
	}
}

func TestRemoveUploadJob(t *testing.T) {
	job := twoFileJob()
	state := NewSearch(models.EmptySearchQuery(), 2).
		AddUploadJob(job).
		RemoveUploadJob(job.ID())

	if _, ok := state.Job(job.ID()); ok {
		t.Error("job not removed")
	}
}

func TestJobStateImmutable(t *testing.T) {
	job := twoFileJob()
	base := NewSearch(models.EmptySearchQuery(), 2).AddUploadJob(job)

	_ = base.JobUploadProgress(job.ID(), 0, 99)
	_ = base.RemoveUploadJob(job.ID())

	folded, ok := base.Job(job.ID())
	if !ok || folded.UploadedBytes() != 0 {
		t.Error("job transitions mutated the base state")
	}
}
