package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// statsTarget reads the optional :user parameter of the stats routes. A nil
// id means the requester.
func (app *application) statsTarget(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	if httprouter.ParamsFromContext(r.Context()).ByName("user") == "" {
		return nil, true
	}
	target, ok := app.readUserParam(w, r)
	if !ok {
		return nil, false
	}
	return &target.ID, true
}

func (app *application) followStatsHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.statsTarget(w, r)
	if !ok {
		return
	}

	stats, err := app.core.FollowStats(r.Context(), app.currentUser(r).ID, target)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"follow_stats": followStatsOf(stats)})
}

func (app *application) likeStatsHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := app.statsTarget(w, r)
	if !ok {
		return
	}

	stats, err := app.core.LikeStats(r.Context(), app.currentUser(r).ID, target)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"like_stats": likeStatsOf(stats)})
}

func (app *application) postStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.core.PostStats(r.Context(), app.currentUser(r).ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"post_stats": postStatsOf(stats)})
}

func (app *application) feedStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.core.FeedStats(r.Context(), app.currentUser(r).ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{"feed_stats": feedStatsOf(stats)})
}
