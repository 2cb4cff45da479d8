package main

import (
	"context"
	"log/slog"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

type seedBook struct {
	title    string
	quantity int
}

var (
	seedBooks = []seedBook{
		{title: "The Go Programming Language", quantity: 2},
		{title: "Domain-Driven Design", quantity: 1},
		{title: "Designing Data-Intensive Applications", quantity: 0},
	}

	seedNicknames = []string{"alice", "bob", "carol"}
)

type catalogSeeder interface {
	RegisterBook(ctx context.Context, title string, quantity int) (core.Book, error)
	RegisterUser(ctx context.Context, nickname string) (core.User, error)
}

// seedCatalog registers a handful of books and users so a fresh dev server can be used right away.
func seedCatalog(ctx context.Context, seeder catalogSeeder, logger *slog.Logger) error {
	for _, b := range seedBooks {
		book, err := seeder.RegisterBook(ctx, b.title, b.quantity)
		if err != nil {
			return err
		}

		logger.Info("seeded book", "book_id", book.ID.String(), "title", book.Title, "quantity", book.Quantity)
	}

	for _, nickname := range seedNicknames {
		user, err := seeder.RegisterUser(ctx, nickname)
		if err != nil {
			return err
		}

		logger.Info("seeded user", "user_id", user.ID.String(), "nickname", user.Nickname)
	}

	return nil
}
