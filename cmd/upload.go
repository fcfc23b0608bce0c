package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
	"github.com/mediabucket/mbx/internal/store"
	"github.com/mediabucket/mbx/internal/uploader"
)

// UploadRun uploads the given files through the pipeline and creates a post
// from them once every upload succeeds.
func (r *Runner) UploadRun(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file", shared.ErrMissingArgument)
	}

	var tags []models.Tag
	for _, tagID := range cmd.Int64Slice("tag") {
		tag, err := r.client.GetTagByID(ctx, *auth, tagID)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %d: %w", tagID, err)
		}
		tags = append(tags, tag.Tag)
	}

	files := make([]models.FileRef, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		files = append(files, models.FileRef{
			Name:       filepath.Base(path),
			Path:       path,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	data := models.NewCreatePostData(cmd.String("title"), cmd.String("source"), cmd.String("description"), cmd.Bool("flatten"), tags)
	job := models.NewPostUploadJob(nil, data).AddFiles(files)
	state := store.NewSearch(models.EmptySearchQuery(), r.config.Search.PageSize).AddUploadJob(job)

	r.logger.Info("starting upload", "job", job.ID(), "files", len(files), "bytes", job.TotalBytes())
	r.writePlainHeader(fmt.Sprintf("Uploading %d files (%.1f MiB)", len(files), float64(job.TotalBytes())/(1024*1024)))

	// Command cancellation reaches in-flight uploads through the per-file
	// cancel channel.
	stop := make(chan struct{})
	context.AfterFunc(ctx, func() { close(stop) })

	// Fan the per-file event streams into one channel so the state folds on
	// a single goroutine.
	type streamEvent struct {
		index int
		event uploader.Event
	}
	events := make(chan streamEvent)

	var wg sync.WaitGroup
	for i, upload := range job.Uploads() {
		stream := r.pipeline.Enqueue(upload.File(), *auth, stop)
		wg.Add(1)
		go func(index int, stream <-chan uploader.Event) {
			defer wg.Done()
			for event := range stream {
				events <- streamEvent{index: index, event: event}
			}
		}(i, stream)
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	for incoming := range events {
		switch event := incoming.event.(type) {
		case uploader.Progress:
			state = state.JobUploadProgress(job.ID(), incoming.index, event.UploadedBytes)
			folded, _ := state.Job(job.ID())
			r.writePlain("\r%s  %s   ", r.styles.ProgressBar(folded.Progress(), 30), formatRate(event.BytesPerSec))
		case uploader.Complete:
			state = state.JobUploadDone(job.ID(), incoming.index, event.Content, event.Thumbnail)
			r.writePlain("\r%s %s\n", r.styles.OK("✓"), files[incoming.index].Name)
		case uploader.Failed:
			state = state.JobUploadFailed(job.ID(), incoming.index, event.Failure)
			r.writePlain("\r%s %s: %s\n", r.styles.Err("✗"), files[incoming.index].Name, event.Failure.Message)
		}
	}

	// All streams have closed: every upload reached a terminal state. Jobs
	// whose uploads all succeeded produce their post exactly once.
	ready := state.JobsReadyForPost()
	for _, readyJob := range ready {
		posts, err := r.client.CreatePost(ctx, *auth, readyJob)
		if err != nil {
			state = state.JobFailed(readyJob.ID(), api.FailureFrom(err))
			return fmt.Errorf("uploads finished but post creation failed: %w", err)
		}
		state = state.JobPostCreated(readyJob.ID())

		r.writePlain("\n")
		for _, post := range posts {
			r.writePlain("%s Created post %d (%s)\n", r.styles.OK("✓"), post.ID, post.Title)
		}
	}

	if len(ready) == 0 {
		folded, _ := state.Job(job.ID())
		failed := 0
		for _, upload := range folded.NonDeletedUploads() {
			if upload.State() == models.UploadError {
				failed++
			}
		}
		return fmt.Errorf("%w: %d of %d uploads failed", shared.ErrAPIRequest, failed, len(files))
	}

	return nil
}

// formatRate renders a transfer rate in binary units.
func formatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= 1024*1024:
		return fmt.Sprintf("%.1f MiB/s", bytesPerSec/(1024*1024))
	case bytesPerSec >= 1024:
		return fmt.Sprintf("%.1f KiB/s", bytesPerSec/1024)
	}
	return fmt.Sprintf("%.0f B/s", bytesPerSec)
}
