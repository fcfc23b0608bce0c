package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// BucketList lists the buckets the server exposes.
func (r *Runner) BucketList(ctx context.Context, cmd *cli.Command) error {
	buckets, err := r.client.GetAllBuckets(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(buckets, true)
	}

	r.writePlainHeader("Buckets")
	for _, bucket := range buckets {
		marker := " "
		if bucket.PasswordProtected {
			marker = r.styles.Warn("🔒")
		}
		r.writePlain("%3d  %s %s\n", bucket.ID, bucket.Name, marker)
	}
	return nil
}

// BucketStats shows the aggregate statistics of an authenticated bucket.
func (r *Runner) BucketStats(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	details, err := r.client.GetBucketDetails(ctx, *auth)
	if err != nil {
		return err
	}

	r.writePlainHeader("Bucket statistics")
	r.writePlain("Files:            %d\n", details.FileCount)
	r.writePlain("Total size:       %.1f MiB\n", float64(details.TotalFileSize)/(1024*1024))
	r.writePlain("Sessions created: %d\n", details.SessionsCreated)
	return nil
}
