package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	// Not require authentication for these routes
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/login", app.loginHandler)

	// Require authentication for these routes
	authed := func(method, path string, handler http.HandlerFunc) {
		router.HandlerFunc(method, path, app.requireAuthenticatedUser(handler))
	}

	authed(http.MethodGet, "/api/user", app.showCurrentUserHandler)
	authed(http.MethodPut, "/api/user", app.updateCurrentUserHandler)

	authed(http.MethodGet, "/api/users", app.listUsersHandler)
	authed(http.MethodGet, "/api/users/:user", app.showUserHandler)
	authed(http.MethodGet, "/api/users/:user/posts", app.userPostsHandler)
	authed(http.MethodGet, "/api/users/:user/followers", app.userFollowersHandler)
	authed(http.MethodGet, "/api/users/:user/following", app.userFollowingHandler)
	authed(http.MethodGet, "/api/users/:user/likes", app.userLikesHandler)
	authed(http.MethodGet, "/api/users/:user/mutual", app.mutualFollowsHandler)
	authed(http.MethodPost, "/api/users/:user/follow", app.followUserHandler)
	authed(http.MethodDelete, "/api/users/:user/follow", app.unfollowUserHandler)

	authed(http.MethodGet, "/api/me/posts", app.myPostsHandler)
	authed(http.MethodGet, "/api/me/followers", app.myFollowersHandler)
	authed(http.MethodGet, "/api/me/following", app.myFollowingHandler)
	authed(http.MethodGet, "/api/me/likes", app.myLikesHandler)

	authed(http.MethodGet, "/api/posts", app.listRecentPostsHandler)
	authed(http.MethodPost, "/api/posts", app.createPostHandler)
	authed(http.MethodGet, "/api/posts/:id", app.showPostHandler)
	authed(http.MethodPut, "/api/posts/:id", app.updatePostHandler)
	authed(http.MethodDelete, "/api/posts/:id", app.deletePostHandler)
	authed(http.MethodPost, "/api/posts/:id/like", app.likePostHandler)
	authed(http.MethodDelete, "/api/posts/:id/like", app.unlikePostHandler)
	authed(http.MethodGet, "/api/posts/:id/likes", app.postLikesHandler)

	authed(http.MethodGet, "/api/feed", app.feedHandler)
	authed(http.MethodGet, "/api/timeline", app.timelineHandler)
	authed(http.MethodGet, "/api/discover", app.discoverHandler)
	authed(http.MethodGet, "/api/popular", app.popularHandler)
	authed(http.MethodGet, "/api/trending", app.trendingHandler)
	authed(http.MethodGet, "/api/suggested", app.suggestedUsersHandler)

	authed(http.MethodGet, "/api/stats/follows", app.followStatsHandler)
	authed(http.MethodGet, "/api/stats/follows/:user", app.followStatsHandler)
	authed(http.MethodGet, "/api/stats/likes", app.likeStatsHandler)
	authed(http.MethodGet, "/api/stats/likes/:user", app.likeStatsHandler)
	authed(http.MethodGet, "/api/stats/posts", app.postStatsHandler)
	authed(http.MethodGet, "/api/stats/feed", app.feedStatsHandler)

	return app.recoverPanic(app.logRequest(app.enableCORS(app.authenticate(router))))
}

func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	app.respond(w, r, http.StatusOK, envelope{
		"status": "available",
		"system_info": envelope{
			"store": app.config.StoreDriver,
		},
	})
}
