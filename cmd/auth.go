package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/shared"
)

// AuthLogin opens a session against a bucket and stores it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	bucketID := cmd.Int64("bucket")
	password := cmd.String("password")
	private := cmd.Bool("private")

	bucket, err := r.client.GetBucketByID(ctx, bucketID)
	if err != nil {
		return fmt.Errorf("%w: bucket %d", shared.ErrBucketNotFound, bucketID)
	}
	if bucket.PasswordProtected && password == "" {
		return fmt.Errorf("%w: bucket %q requires a password", shared.ErrMissingArgument, bucket.Name)
	}

	r.logger.Info("logging in", "bucket", bucket.Name, "private", private)

	auth, err := r.client.Login(ctx, bucketID, password, private)
	if err != nil {
		return err
	}

	if err := r.sessions.Save(*auth); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	expires := auth.CreatedAt.Add(time.Duration(auth.Lifetime) * time.Second)
	r.writePlain("%s Logged into %s\n", r.styles.OK("✓"), bucket.Name)
	r.writePlain("Session valid until %s\n", expires.Format(time.RFC1123))
	if private {
		r.writePlain("%s\n", r.styles.Help("private session, kept in memory only"))
	}
	return nil
}

// AuthLogout drops the stored session for a bucket.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	bucketID := cmd.Int64("bucket")

	if err := r.sessions.Remove(bucketID); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return r.writePlain("%s Session for bucket %d removed\n", r.styles.OK("✓"), bucketID)
}

// AuthSessions lists every live session.
func (r *Runner) AuthSessions(ctx context.Context, cmd *cli.Command) error {
	auths, err := r.sessions.All()
	if err != nil {
		return err
	}

	if len(auths) == 0 {
		return r.writePlain("No live sessions\n")
	}

	r.writePlainHeader("Live sessions")
	for _, auth := range auths {
		expires := auth.CreatedAt.Add(time.Duration(auth.Lifetime) * time.Second)
		kind := "persistent"
		if auth.PrivateSession {
			kind = "private"
		}
		r.writePlain("bucket %d  %s  expires %s\n", auth.BucketID, kind, expires.Format(time.RFC1123))
	}
	return nil
}
