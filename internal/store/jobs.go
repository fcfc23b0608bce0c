package store

import (
	"github.com/mediabucket/mbx/internal/models"
)

// Upload job state. Jobs live alongside the search results so progress keeps
// folding in while the user browses. Every transition is keyed by job id and
// ignores unknown jobs, since pipeline events can race a Reset.

// AddUploadJob registers a new job.
func (s Search) AddUploadJob(job models.UploadJob) Search {
	jobs := s.copyJobs()
	jobs = append(jobs, job)
	s.jobs = jobs
	return s
}

// RemoveUploadJob drops a job from the state.
func (s Search) RemoveUploadJob(jobID string) Search {
	jobs := make([]models.UploadJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.ID() != jobID {
			jobs = append(jobs, job)
		}
	}
	s.jobs = jobs
	return s
}

// Job finds a registered job by id.
func (s Search) Job(jobID string) (models.UploadJob, bool) {
	for _, job := range s.jobs {
		if job.ID() == jobID {
			return job, true
		}
	}
	return models.UploadJob{}, false
}

// UploadJobs returns every registered job in insertion order.
func (s Search) UploadJobs() []models.UploadJob {
	return s.copyJobs()
}

// ActiveUploadJobs returns the jobs still uploading or awaiting their post.
func (s Search) ActiveUploadJobs() []models.UploadJob {
	var active []models.UploadJob
	for _, job := range s.jobs {
		if !jobFinished(job) {
			active = append(active, job)
		}
	}
	return active
}

// CurrentJobs returns the jobs a job listing should show. Finished jobs are
// kept visible only on request.
func (s Search) CurrentJobs(showFinished bool) []models.UploadJob {
	if showFinished {
		return s.copyJobs()
	}
	return s.ActiveUploadJobs()
}

// JobsReadyForPost returns the jobs whose uploads all succeeded but whose
// post has not been created yet. This is the fan-in point: a job appears here
// exactly once per upload round, until PostCreated folds in.
func (s Search) JobsReadyForPost() []models.UploadJob {
	var ready []models.UploadJob
	for _, job := range s.jobs {
		if job.IsEmpty() || job.IsPostCreated() || job.Failure() != nil {
			continue
		}
		if job.SuccessfullyUploaded() {
			ready = append(ready, job)
		}
	}
	return ready
}

// JobAddFiles stages more files on a job.
func (s Search) JobAddFiles(jobID string, files []models.FileRef) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.AddFiles(files)
	})
}

// JobSetPostData replaces the staged post metadata of a job.
func (s Search) JobSetPostData(jobID string, data models.CreatePostData) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.SetPostData(data)
	})
}

// JobUploadProgress folds transferred bytes into one upload of a job.
func (s Search) JobUploadProgress(jobID string, index int, uploadedBytes int64) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.MapUpload(index, func(u models.Upload) models.Upload {
			return u.SetProgress(uploadedBytes)
		})
	})
}

// JobUploadDone folds a finished upload with its stored media into a job.
func (s Search) JobUploadDone(jobID string, index int, content, thumbnail *models.Media) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.MapUpload(index, func(u models.Upload) models.Upload {
			return u.Done(content, thumbnail)
		})
	})
}

// JobUploadFailed folds an upload failure into a job.
func (s Search) JobUploadFailed(jobID string, index int, failure *models.Failure) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.MapUpload(index, func(u models.Upload) models.Upload {
			return u.Error(failure)
		})
	})
}

// JobMoveUpload reorders one upload within a job.
func (s Search) JobMoveUpload(jobID string, uploadIndex, targetIndex int) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.MoveUploadToIndex(uploadIndex, targetIndex)
	})
}

// JobDeleteUploads tombstones uploads within a job.
func (s Search) JobDeleteUploads(jobID string, indexes []int) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.DeleteUploads(indexes)
	})
}

// JobFailed records a job-level failure, post creation included.
func (s Search) JobFailed(jobID string, failure *models.Failure) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.Error(failure)
	})
}

// JobPostCreated marks a job's post as created so the fan-in never fires
// twice for the same job.
func (s Search) JobPostCreated(jobID string) Search {
	return s.mapJob(jobID, func(job models.UploadJob) models.UploadJob {
		return job.PostCreated()
	})
}

func (s Search) mapJob(jobID string, fn func(models.UploadJob) models.UploadJob) Search {
	jobs := s.copyJobs()
	for i, job := range jobs {
		if job.ID() == jobID {
			jobs[i] = fn(job)
			break
		}
	}
	s.jobs = jobs
	return s
}

func (s Search) copyJobs() []models.UploadJob {
	jobs := make([]models.UploadJob, len(s.jobs))
	copy(jobs, s.jobs)
	return jobs
}

func jobFinished(job models.UploadJob) bool {
	return job.IsPostCreated() && job.Done()
}
