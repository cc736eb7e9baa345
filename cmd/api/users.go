package main

import (
	"net/http"

	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/utils/functional"
)

func (app *application) showCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	card, err := app.core.GetUser(r.Context(), user.ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"user": detailOf(card, true)})
}

func (app *application) updateCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	var input struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Profile   *struct {
			Bio       *string `json:"bio"`
			AvatarURL *string `json:"avatar_url"`
		} `json:"profile"`
	}

	if !app.decodeBody(w, r, &input) {
		return
	}

	update := core.ProfileInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if input.Profile != nil {
		update.Bio = input.Profile.Bio
		update.AvatarURL = input.Profile.AvatarURL
	}

	card, err := app.core.UpdateProfile(r.Context(), user.ID, update)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"user": detailOf(card, true)})
}

func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := app.core.ListUsers(r.Context(), filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, detailsOf(page.Items)))
}

func (app *application) showUserHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}

	card, err := app.core.GetUser(r.Context(), target.ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"user": detailOf(card, target.ID == app.currentUser(r).ID)})
}

func (app *application) userPostsHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}
	app.writeUserPosts(w, r, target.ID)
}

func (app *application) myPostsHandler(w http.ResponseWriter, r *http.Request) {
	app.writeUserPosts(w, r, app.currentUser(r).ID)
}

func (app *application) writeUserPosts(w http.ResponseWriter, r *http.Request, ownerID int64) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := app.core.UserPosts(r.Context(), app.currentUser(r).ID, ownerID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, postsOf(page.Items)))
}

func (app *application) userLikesHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}
	app.writeUserLikes(w, r, target.ID)
}

func (app *application) myLikesHandler(w http.ResponseWriter, r *http.Request) {
	app.writeUserLikes(w, r, app.currentUser(r).ID)
}

func (app *application) writeUserLikes(w http.ResponseWriter, r *http.Request, userID int64) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := app.core.UserLikes(r.Context(), app.currentUser(r).ID, userID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, functional.Map(page.Items, likedPostOf)))
}
