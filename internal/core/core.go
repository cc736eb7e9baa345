package core

import (
	"log/slog"
	"time"

	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/validator"
)

const (
	defaultTrendingWindow = 7 * 24 * time.Hour
	defaultTrendingLimit  = 20
	defaultSuggestedLimit = 10
)

type Options struct {
	TrendingWindow time.Duration
	TrendingLimit  int
	SuggestedLimit int
	ImageAccept    validator.ImagePredicate
	// Now stamps new edges and posts and anchors the trending window.
	Now func() time.Time
}

type Core struct {
	log   *slog.Logger
	store data.Store
	opts  Options
}

func NewCore(store data.Store, log *slog.Logger, opts Options) *Core {
	if opts.TrendingWindow <= 0 {
		opts.TrendingWindow = defaultTrendingWindow
	}
	if opts.TrendingLimit <= 0 {
		opts.TrendingLimit = defaultTrendingLimit
	}
	if opts.SuggestedLimit <= 0 {
		opts.SuggestedLimit = defaultSuggestedLimit
	}
	if opts.ImageAccept == nil {
		opts.ImageAccept = validator.DefaultImagePredicate()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Core{
		log:   log,
		store: store,
		opts:  opts,
	}
}

func (c *Core) now() time.Time {
	return c.opts.Now().UTC()
}
