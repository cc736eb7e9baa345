package main

import (
	"context"
	"net/http"

	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/functional"
)

// feedReader is one of the feed queries of Core.
type feedReader func(ctx context.Context, requesterID int64, f filter.Filter) (*core.FeedPage, error)

func (app *application) feedHandler(w http.ResponseWriter, r *http.Request) {
	app.writeFeed(w, r, app.core.GetFeed)
}

func (app *application) timelineHandler(w http.ResponseWriter, r *http.Request) {
	app.writeFeed(w, r, app.core.GetTimeline)
}

func (app *application) discoverHandler(w http.ResponseWriter, r *http.Request) {
	app.writeFeed(w, r, app.core.GetDiscover)
}

func (app *application) writeFeed(w http.ResponseWriter, r *http.Request, read feedReader) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := read(r.Context(), app.currentUser(r).ID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	response := listEnvelope(page.Count, page.Filter, postsOf(page.Items))
	response["feed_meta"] = feedMetaOf(page.Meta)
	app.respond(w, r, http.StatusOK, response)
}

func (app *application) popularHandler(w http.ResponseWriter, r *http.Request) {
	filters, ok := app.readFilter(w, r)
	if !ok {
		return
	}

	page, err := app.core.GetPopular(r.Context(), app.currentUser(r).ID, filters)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, listEnvelope(page.Count, page.Filter, postsOf(page.Items)))
}

func (app *application) trendingHandler(w http.ResponseWriter, r *http.Request) {
	trending, err := app.core.GetTrending(r.Context(), app.currentUser(r).ID)
	if err != nil {
		app.handleCoreError(w, r, err)
		return
	}

	app.respond(w, r, http.StatusOK, envelope{
		"count":   len(trending),
		"results": functional.Map(trending, trendingOf),
		"trending_meta": envelope{
			"window_days": int(app.core.TrendingWindow().Hours() / 24),
		},
	})
}
