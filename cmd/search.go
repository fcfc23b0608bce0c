package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
	"github.com/mediabucket/mbx/internal/store"
)

// parsePostID reads a numeric id argument.
func parsePostID(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not a number", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// SearchPosts runs a filtered search, loading as many pages as requested.
func (r *Runner) SearchPosts(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	query, err := r.buildQuery(ctx, auth, cmd)
	if err != nil {
		return err
	}

	state := store.NewSearch(query, r.config.Search.PageSize)
	pages := cmd.Int("pages")
	if pages < 1 {
		pages = 1
	}

	for page := 0; page < pages; page++ {
		state = state.LoadingPosts()

		posts, window, err := r.client.SearchPosts(ctx, *auth, state.Query(), state.NextPage())
		if err != nil {
			state = state.PostsFailed(api.FailureFrom(err))
			return err
		}
		state = state.PostsLoaded(posts, window)

		if !state.HasMorePosts() {
			break
		}
	}

	if cmd.Bool("refresh") {
		if state, err = r.refreshLoaded(ctx, *auth, state); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(state.Posts(), true)
	}

	r.writePlainHeader(fmt.Sprintf("%d of %d posts", len(state.Posts()), state.TotalPosts()))
	for _, post := range state.Posts() {
		title := post.Title
		if title == "" {
			title = post.FileName
		}
		r.writePlain("%6d  %s  %s\n", post.ID, post.CreatedAt.Format("2006-01-02"), title)
	}
	if state.HasMorePosts() {
		r.writePlain("%s\n", r.styles.Help(fmt.Sprintf("more available, next offset %d", state.NextPage().Offset)))
	}
	return nil
}

// PostShow prints one post, its items, and optionally one resolved item with
// its neighbours.
func (r *Runner) PostShow(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}
	postID, err := parsePostID(cmd)
	if err != nil {
		return err
	}

	state := store.NewSearch(models.EmptySearchQuery(), r.config.Search.PageSize).ShowPost(postID)

	post, err := r.client.GetPostByID(ctx, *auth, postID)
	if err != nil {
		return err
	}
	state = state.PostLoaded(post)

	items, window, err := r.client.SearchPostItems(ctx, *auth, postID, state.NextItemPage())
	if err != nil {
		return err
	}
	state = state.ItemsLoaded(items, window)

	r.writePlainHeader(post.Title)
	if post.Description != "" {
		r.writePlain("%s\n", post.Description)
	}
	if post.Source != "" {
		r.writePlain("Source: %s\n", post.Source)
	}
	if len(post.Tags) > 0 {
		r.writePlain("Tags:")
		for _, tag := range post.Tags {
			r.writePlain(" %s", tag.Name)
		}
		r.writePlain("\n")
	}
	r.writePlain("Items: %d\n\n", state.TotalItems())

	for position := 0; position < state.TotalItems(); position++ {
		item := state.Item(position)
		if item == nil {
			r.writePlain("%4d  %s\n", position, r.styles.Help("(not loaded)"))
			continue
		}
		r.writePlain("%4d  %s\n", position, describeItem(item))
	}

	if selected := cmd.Int("item"); selected >= 0 {
		state = state.SelectItem(selected)

		detail, err := r.client.GetPostItemByID(ctx, *auth, postID, selected)
		if err != nil {
			return err
		}
		state = state.ItemLoaded(detail)

		r.writePlain("\n")
		r.writePlainHeader(fmt.Sprintf("Item %d", selected))
		if content := detail.Content; content != nil {
			r.writePlain("Type: %s (%s)\n", content.Type, content.Mime)
			r.writePlain("URL:  %s\n", content.URL)
		}
		if previous, next := state.Neighbours(); previous != nil || next != nil {
			if previous != nil {
				r.writePlain("Previous: item %d\n", previous.Position)
			}
			if next != nil {
				r.writePlain("Next:     item %d\n", next.Position)
			}
		}
	}

	return nil
}

// PostUpdate replaces a post's metadata.
func (r *Runner) PostUpdate(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}
	postID, err := parsePostID(cmd)
	if err != nil {
		return err
	}

	current, err := r.client.GetPostByID(ctx, *auth, postID)
	if err != nil {
		return err
	}

	title := current.Title
	if cmd.IsSet("title") {
		title = cmd.String("title")
	}
	description := current.Description
	if cmd.IsSet("description") {
		description = cmd.String("description")
	}
	source := current.Source
	if cmd.IsSet("source") {
		source = cmd.String("source")
	}

	tagIDs := make([]int64, 0, len(current.Tags))
	for _, tag := range current.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	if cmd.IsSet("tag") {
		tagIDs = cmd.Int64Slice("tag")
	}

	updated, err := r.client.UpdatePost(ctx, *auth, postID, title, description, source, tagIDs)
	if err != nil {
		return err
	}

	return r.writePlain("%s Updated post %d (%s)\n", r.styles.OK("✓"), updated.ID, updated.Title)
}

// PostDelete removes a post.
func (r *Runner) PostDelete(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}
	postID, err := parsePostID(cmd)
	if err != nil {
		return err
	}

	if err := r.client.DeletePost(ctx, *auth, postID); err != nil {
		return err
	}

	r.logger.Info("deleted post", "post", postID)
	return r.writePlain("%s Deleted post %d\n", r.styles.OK("✓"), postID)
}

// refreshLoaded re-fetches every loaded page of a search so the state
// reflects server-side changes, page by page.
func (r *Runner) refreshLoaded(ctx context.Context, auth models.Auth, state store.Search) (store.Search, error) {
	for _, page := range state.LoadedPages() {
		posts, window, err := r.client.SearchPosts(ctx, auth, state.Query(), page)
		if err != nil {
			return state, err
		}
		state = state.PostsLoaded(posts, window)
	}
	return state, nil
}

func describeItem(item *models.SearchPostItem) string {
	switch {
	case item.ContainsVideo:
		return fmt.Sprintf("video (%.0fs)", item.Duration)
	case item.ContainsMovingImage:
		return "animation"
	case item.ContainsImage:
		return "image"
	case item.ContainsDocument:
		return "document"
	}
	return "file"
}
