package main

import (
	"net/http"

	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/utils/functional"
)

func (app *application) listRecentPostsHandler(w http.ResponseWriter, r *http.Request) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := app.core.RecentPosts(r.Context(), app.currentUser(r).ID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, postsOf(page.Items)))
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Caption  string `json:"caption"`
		ImageURL string `json:"image_url"`
	}

	if !app.decodeBody(w, r, &input) {
		return
	}

	view, err := app.core.CreatePost(r.Context(), app.currentUser(r).ID, core.PostInput{
		Caption:  input.Caption,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusCreated, envelope{"post": postOf(view)})
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := app.readIDParam(w, r, "id")
	if !ok {
		return
	}

	view, err := app.core.GetPost(r.Context(), app.currentUser(r).ID, postID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"post": postOf(view)})
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := app.readIDParam(w, r, "id")
	if !ok {
		return
	}

	var input struct {
		Caption  *string `json:"caption"`
		ImageURL *string `json:"image_url"`
	}

	if !app.decodeBody(w, r, &input) {
		return
	}

	view, err := app.core.UpdatePost(r.Context(), app.currentUser(r).ID, postID, core.PostPatch{
		Caption:  input.Caption,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"post": postOf(view)})
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := app.readIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := app.core.DeletePost(r.Context(), app.currentUser(r).ID, postID); err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"message": "Post deleted successfully"})
}

func (app *application) likePostHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	postID, ok := app.readIDParam(w, r, "id")
	if !ok {
		return
	}

	like, created, err := app.core.Like(r.Context(), user.ID, postID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	view, err := app.core.GetPost(r.Context(), user.ID, postID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	status, message := http.StatusCreated, "Post liked"
	if !created {
		status, message = http.StatusOK, "Already liked"
	}

	app.respond(w, r, status, envelope{
		"message":     message,
		"like":        likeOf(like, user),
		"total_likes": view.Post.TotalLikes,
	})
}

func (app *application) unlikePostHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	postID, ok := app.readIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := app.core.Unlike(r.Context(), user.ID, postID); err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	view, err := app.core.GetPost(r.Context(), user.ID, postID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{
		"message":     "Post unliked",
		"total_likes": view.Post.TotalLikes,
	})
}

func (app *application) postLikesHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := app.readIDParam(w, r, "id")
	if !ok {
		return
	}
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := app.core.PostLikes(r.Context(), postID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	results := functional.Map(page.Items, func(item *core.LikeView) *likeView {
		return likeOf(item.Like, item.User)
	})
	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, results))
}
