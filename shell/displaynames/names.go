package displaynames

import (
	"context"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// Names holds the display names resolved for one report.
type Names struct {
	titles    map[core.BookID]string
	nicknames map[core.UserID]string
}

// NewNames creates Names from already known titles and nicknames.
func NewNames(titles map[core.BookID]string, nicknames map[core.UserID]string) Names {
	return Names{titles: titles, nicknames: nicknames}
}

// Title returns the book's title if it was resolved.
func (n Names) Title(bookID core.BookID) (string, bool) {
	title, ok := n.titles[bookID]
	return title, ok
}

// Nickname returns the user's nickname if it was resolved.
func (n Names) Nickname(userID core.UserID) (string, bool) {
	nickname, ok := n.nicknames[userID]
	return nickname, ok
}

// Resolve looks up the names of all books and users the reservations refer to, each id once.
// Ids that are unknown to the catalog are left out.
func (r *Resolver) Resolve(ctx context.Context, reservations []core.Reservation) (Names, error) {
	names := Names{
		titles:    make(map[core.BookID]string),
		nicknames: make(map[core.UserID]string),
	}

	seenBooks := make(map[core.BookID]struct{})
	seenUsers := make(map[core.UserID]struct{})

	for _, reservation := range reservations {
		if _, seen := seenBooks[reservation.BookID]; !seen {
			seenBooks[reservation.BookID] = struct{}{}

			title, found, err := r.BookTitle(ctx, reservation.BookID)
			if err != nil {
				return Names{}, err
			}

			if found {
				names.titles[reservation.BookID] = title
			}
		}

		if _, seen := seenUsers[reservation.UserID]; !seen {
			seenUsers[reservation.UserID] = struct{}{}

			nickname, found, err := r.UserNickname(ctx, reservation.UserID)
			if err != nil {
				return Names{}, err
			}

			if found {
				names.nicknames[reservation.UserID] = nickname
			}
		}
	}

	return names, nil
}
