package account

import "context"

// Store persists the account record between sessions. A missing or
// unreadable record is not an error: Load returns Defaults so a corrupt
// file never blocks the game from starting.
type Store interface {
	Load(ctx context.Context) (Account, error)
	Save(ctx context.Context, a Account) error
	Close() error
}
