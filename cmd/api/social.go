package main

import (
	"context"
	"net/http"

	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/functional"
)

// followLister is either Core.Followers or Core.Following.
type followLister func(ctx context.Context, userID int64, f filter.Filter) (*core.FollowPage, error)

func (app *application) followUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}

	follow, created, err := app.core.Follow(r.Context(), user.ID, target.ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	view := followOf(&core.FollowView{Follow: follow, Follower: user, Following: target})
	if !created {
		app.respond(w, r, http.StatusOK, envelope{
			"message": "Already following " + target.Username,
			"follow":  view,
		})
		return
	}

	app.respond(w, r, http.StatusCreated, envelope{
		"message": "Now following " + target.Username,
		"follow":  view,
	})
}

func (app *application) unfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}

	if err := app.core.Unfollow(r.Context(), user.ID, target.ID); err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"message": "Unfollowed " + target.Username})
}

func (app *application) userFollowersHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}
	app.writeFollowPage(w, r, target.ID, app.core.Followers)
}

func (app *application) userFollowingHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}
	app.writeFollowPage(w, r, target.ID, app.core.Following)
}

func (app *application) myFollowersHandler(w http.ResponseWriter, r *http.Request) {
	app.writeFollowPage(w, r, app.currentUser(r).ID, app.core.Followers)
}

func (app *application) myFollowingHandler(w http.ResponseWriter, r *http.Request) {
	app.writeFollowPage(w, r, app.currentUser(r).ID, app.core.Following)
}

func (app *application) writeFollowPage(w http.ResponseWriter, r *http.Request, userID int64, list followLister) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := list(r.Context(), userID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, functional.Map(page.Items, followOf)))
}

func (app *application) mutualFollowsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	target, ok := app.readUserParam(w, r)
	if !ok {
		return
	}

	mutual, err := app.core.MutualFollows(r.Context(), user.ID, target.ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{
		"count":   len(mutual),
		"results": functional.Map(mutual, summaryOf),
	})
}

func (app *application) suggestedUsersHandler(w http.ResponseWriter, r *http.Request) {
	suggested, err := app.core.SuggestedUsers(r.Context(), app.currentUser(r).ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{
		"count":   len(suggested),
		"results": detailsOf(suggested),
	})
}
