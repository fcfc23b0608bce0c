package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
	"github.com/mediabucket/mbx/internal/store"
)

// TagSearch finds tags by name.
func (r *Runner) TagSearch(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	state := store.NewSearch(models.EmptySearchQuery(), r.config.Search.PageSize).LoadingTags()

	tags, err := r.client.SearchTags(ctx, *auth, cmd.StringArg("query"))
	if err != nil {
		state = state.TagsFailed(api.FailureFrom(err))
		return err
	}
	state = state.TagsLoaded(tags)

	if len(state.TagOptions()) == 0 {
		return r.writePlain("No matching tags\n")
	}

	r.writePlainHeader("Tags")
	for _, tag := range state.TagOptions() {
		group := ""
		if tag.Group != nil {
			group = tag.Group.Name + "/"
		}
		r.writePlain("%4d  %s%s  %s\n", tag.ID, group, tag.Name, r.styles.Help(fmt.Sprintf("%d posts", tag.LinkedPosts)))
	}
	return nil
}

// TagCreate creates a new tag.
func (r *Runner) TagCreate(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}

	tag, err := r.client.CreateTag(ctx, *auth, name)
	if err != nil {
		return err
	}

	return r.writePlain("%s Created tag %d (%s)\n", r.styles.OK("✓"), tag.ID, tag.Name)
}

// TagRemove deletes a tag.
func (r *Runner) TagRemove(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}
	tagID, err := parsePostID(cmd)
	if err != nil {
		return err
	}

	if err := r.client.RemoveTag(ctx, *auth, tagID); err != nil {
		return err
	}

	return r.writePlain("%s Removed tag %d\n", r.styles.OK("✓"), tagID)
}

// PlaylistURL prints the shareable m3u link for a search query.
func (r *Runner) PlaylistURL(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	query, err := r.buildQuery(ctx, auth, cmd)
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", r.client.SearchQueryPlaylistURL(*auth, query))
}
