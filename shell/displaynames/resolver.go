package displaynames

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	defaultCacheSize = 1024
	defaultTTL       = 5 * time.Minute
)

var (
	// ErrInvalidCacheSize is returned when the cache size is not positive.
	ErrInvalidCacheSize = errors.New("cache size must be positive")

	// ErrInvalidTTL is returned when the cache ttl is not positive.
	ErrInvalidTTL = errors.New("cache ttl must be positive")

	// ErrNilCatalog is returned when the resolver is created without a catalog.
	ErrNilCatalog = errors.New("catalog must not be nil")
)

// Catalog is the part of the store the Resolver reads from.
type Catalog interface {
	FindUser(ctx context.Context, userID core.UserID) (core.User, error)
	FindBook(ctx context.Context, bookID core.BookID) (core.Book, error)
}

// Resolver looks up display names with a read-through cache.
// It is safe for concurrent use.
type Resolver struct {
	catalog   Catalog
	titles    *expirable.LRU[core.BookID, string]
	nicknames *expirable.LRU[core.UserID, string]
}

type config struct {
	size int
	ttl  time.Duration
}

// Option configures a Resolver.
type Option func(*config) error

// WithCacheSize sets how many titles and how many nicknames are kept.
func WithCacheSize(size int) Option {
	return func(c *config) error {
		if size <= 0 {
			return ErrInvalidCacheSize
		}

		c.size = size

		return nil
	}
}

// WithTTL sets how long a resolved name stays cached.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) error {
		if ttl <= 0 {
			return ErrInvalidTTL
		}

		c.ttl = ttl

		return nil
	}
}

// NewResolver creates a Resolver reading from the catalog.
func NewResolver(catalog Catalog, opts ...Option) (*Resolver, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	cfg := config{size: defaultCacheSize, ttl: defaultTTL}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Resolver{
		catalog:   catalog,
		titles:    expirable.NewLRU[core.BookID, string](cfg.size, nil, cfg.ttl),
		nicknames: expirable.NewLRU[core.UserID, string](cfg.size, nil, cfg.ttl),
	}, nil
}

// BookTitle returns the title of the book and whether the book is known.
// Storage faults other than a missing book are returned as error.
func (r *Resolver) BookTitle(ctx context.Context, bookID core.BookID) (string, bool, error) {
	if title, ok := r.titles.Get(bookID); ok {
		return title, true, nil
	}

	book, err := r.catalog.FindBook(ctx, bookID)
	switch {
	case err == nil:
		r.titles.Add(bookID, book.Title)
		return book.Title, true, nil
	case errors.Is(err, store.ErrNotFound):
		return "", false, nil
	default:
		return "", false, err
	}
}

// UserNickname returns the nickname of the user and whether the user is known.
// Storage faults other than a missing user are returned as error.
func (r *Resolver) UserNickname(ctx context.Context, userID core.UserID) (string, bool, error) {
	if nickname, ok := r.nicknames.Get(userID); ok {
		return nickname, true, nil
	}

	user, err := r.catalog.FindUser(ctx, userID)
	switch {
	case err == nil:
		r.nicknames.Add(userID, user.Nickname)
		return user.Nickname, true, nil
	case errors.Is(err, store.ErrNotFound):
		return "", false, nil
	default:
		return "", false, err
	}
}

// Purge drops all cached names.
func (r *Resolver) Purge() {
	r.titles.Purge()
	r.nicknames.Purge()
}
