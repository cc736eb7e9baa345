// Command seed fills a PostgreSQL database with demo accounts, follows, posts
// and likes. Every insert is idempotent, so it can be run repeatedly.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/auth"
	"github.com/siahsang/snapfeed/internal/config"
	"github.com/siahsang/snapfeed/internal/database"
)

const (
	demoPassword = "demopass123"
	testPassword = "testpass123"
)

type demoUser struct {
	username  string
	firstName string
	lastName  string
}

var demoUsers = []demoUser{
	{"alice_photos", "Alice", "Photographer"},
	{"bob_foodie", "Bob", "Foodie"},
	{"carol_travel", "Carol", "Traveler"},
}

// follower -> following
var demoFollows = [][2]string{
	{"bob_foodie", "alice_photos"},
	{"carol_travel", "alice_photos"},
	{"carol_travel", "bob_foodie"},
}

var demoPosts = []struct {
	username string
	caption  string
	imageURL string
}{
	{"alice_photos", "Beautiful sunset", "https://picsum.photos/500/500?random=1"},
	{"alice_photos", "Street art discovery", "https://picsum.photos/400/600?random=2"},
	{"bob_foodie", "Delicious pasta", "https://picsum.photos/600/400?random=3"},
	{"bob_foodie", "Coffee art", "https://picsum.photos/400/400?random=4"},
	{"carol_travel", "Mountain view", "https://picsum.photos/600/500?random=5"},
	{"carol_travel", "City lights", "https://picsum.photos/500/400?random=6"},
}

var sampleCaptions = []string{
	"Beautiful sunny day",
	"Coffee, coding and good vibes",
	"Weekend fun",
	"Nature is beautiful",
	"Feeling enthusiastic today",
	"Adventure beckons",
	"Delicious takeout",
	"Perfect day",
	"New amazing discovery",
	"Simply beautiful",
}

const (
	insertUserSQL = `
		INSERT INTO users (username, email, first_name, last_name, password)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING`

	insertProfileSQL = `
		INSERT INTO profiles (user_id, bio)
		SELECT id, $2::text FROM users WHERE username = $1
		ON CONFLICT (user_id) DO NOTHING`

	insertFollowSQL = `
		INSERT INTO follows (follower_id, following_id)
		SELECT f.id, t.id FROM users f, users t
		WHERE f.username = $1 AND t.username = $2 AND f.id <> t.id
		ON CONFLICT (follower_id, following_id) DO NOTHING`

	// Posts have no natural key, so a caption already used by the same owner
	// is skipped.
	insertPostSQL = `
		INSERT INTO posts (user_id, caption, image_url, created_at, updated_at)
		SELECT u.id, $2::text, $3::text, $4::timestamptz, $4::timestamptz FROM users u
		WHERE u.username = $1
		  AND NOT EXISTS (SELECT 1 FROM posts p WHERE p.user_id = u.id AND p.caption = $2)`

	likeAllPostsOfSQL = `
		INSERT INTO likes (user_id, post_id)
		SELECT u.id, p.id FROM users u, posts p JOIN users o ON o.id = p.user_id
		WHERE u.username = $1 AND o.username = $2 AND u.id <> o.id
		ON CONFLICT (user_id, post_id) DO NOTHING`

	likeRandomPostSQL = `
		INSERT INTO likes (user_id, post_id, created_at)
		SELECT u.id, p.id, GREATEST($2::timestamptz, p.created_at) FROM users u
		JOIN LATERAL (
			SELECT id, created_at FROM posts WHERE user_id <> u.id ORDER BY random() LIMIT 1
		) p ON true
		WHERE u.username = $1
		ON CONFLICT (user_id, post_id) DO NOTHING`
)

type options struct {
	migrate    bool
	testUsers  int
	testPosts  int
	testFollow int
	testLikes  int
}

func main() {
	var opts options
	flag.BoolVar(&opts.migrate, "migrate", true, "apply migrations before seeding")
	flag.IntVar(&opts.testUsers, "test-users", 0, "number of extra testuserN accounts")
	flag.IntVar(&opts.testPosts, "test-posts", 0, "number of random posts by test users")
	flag.IntVar(&opts.testFollow, "test-follows", 0, "number of random follows between test users")
	flag.IntVar(&opts.testLikes, "test-likes", 0, "number of random likes by test users")
	flag.Parse()

	logger := slog.New(devslog.NewHandler(os.Stdout, &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{Level: slog.LevelInfo},
	}))

	cfg := config.Load()
	ctx := context.Background()
	start := time.Now()

	if opts.migrate {
		if err := migrate(cfg, logger); err != nil {
			logger.Error("Migration failed", "error", xerrors.Sprint(err))
			os.Exit(1)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Errors opening database connection", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, pool, logger, opts); err != nil {
		logger.Error("Seeding failed", "error", xerrors.Sprint(err))
		os.Exit(1)
	}

	logger.Info("Demo data created successfully", "duration", time.Since(start).Truncate(time.Millisecond))
	logger.Info("Demo accounts", "usernames", []string{"alice_photos", "bob_foodie", "carol_travel"}, "password", demoPassword)
	if opts.testUsers > 0 {
		logger.Info("Test accounts", "pattern", "testuserN", "password", testPassword)
	}
}

func migrate(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)
	return database.Migrate(db, logger)
}

// seed runs every stage in one transaction.
func seed(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, opts options) error {
	demoHash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return xerrors.New(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, u := range demoUsers {
		batch.Queue(insertUserSQL, u.username, u.username+"@demo.com", u.firstName, u.lastName, demoHash)
		batch.Queue(insertProfileSQL, u.username, "Demo user "+u.firstName)
	}
	for _, f := range demoFollows {
		batch.Queue(insertFollowSQL, f[0], f[1])
	}
	now := time.Now().UTC()
	for i, p := range demoPosts {
		batch.Queue(insertPostSQL, p.username, p.caption, p.imageURL, now.Add(time.Duration(i-len(demoPosts))*time.Hour))
	}
	batch.Queue(likeAllPostsOfSQL, "bob_foodie", "alice_photos")
	batch.Queue(likeAllPostsOfSQL, "carol_travel", "alice_photos")

	rows, err := sendBatch(ctx, tx, batch)
	if err != nil {
		return xerrors.Newf("demo data: %w", err)
	}
	logger.Info("Seeded demo accounts", "rows", rows)

	if opts.testUsers > 0 {
		rows, err := seedTestData(ctx, tx, opts)
		if err != nil {
			return xerrors.Newf("test data: %w", err)
		}
		logger.Info("Seeded test accounts", "users", opts.testUsers, "rows", rows)
	}

	if err := tx.Commit(ctx); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func seedTestData(ctx context.Context, tx pgx.Tx, opts options) (int64, error) {
	testHash, err := auth.HashPassword(testPassword)
	if err != nil {
		return 0, err
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	username := func(i int) string { return fmt.Sprintf("testuser%d", i) }
	randomUser := func() string { return username(1 + r.Intn(opts.testUsers)) }
	now := time.Now().UTC()
	monthAgo := now.Add(-30 * 24 * time.Hour)
	randomTime := func() time.Time {
		return monthAgo.Add(time.Duration(r.Int63n(int64(now.Sub(monthAgo)))))
	}

	batch := &pgx.Batch{}
	for i := 1; i <= opts.testUsers; i++ {
		batch.Queue(insertUserSQL, username(i), fmt.Sprintf("test%d@example.com", i), "Test", fmt.Sprintf("User%d", i), testHash)
		batch.Queue(insertProfileSQL, username(i), fmt.Sprintf("This is test user %d", i))
	}
	for i := 0; i < opts.testFollow; i++ {
		batch.Queue(insertFollowSQL, randomUser(), randomUser())
	}
	for i := 0; i < opts.testPosts; i++ {
		caption := fmt.Sprintf("%s #%d", sampleCaptions[r.Intn(len(sampleCaptions))], i+1)
		imageURL := fmt.Sprintf("https://picsum.photos/400/400?random=%d", 100+i)
		batch.Queue(insertPostSQL, randomUser(), caption, imageURL, randomTime())
	}
	for i := 0; i < opts.testLikes; i++ {
		batch.Queue(likeRandomPostSQL, randomUser(), randomTime())
	}

	return sendBatch(ctx, tx, batch)
}

// sendBatch executes every queued statement and returns the rows they
// affected.
func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) (int64, error) {
	br := tx.SendBatch(ctx, batch)
	var affected int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return affected, xerrors.Newf("batch exec %d: %w", i, err)
		}
		affected += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return affected, xerrors.Newf("batch close: %w", err)
	}
	return affected, nil
}
