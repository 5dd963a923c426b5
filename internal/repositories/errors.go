package repositories

import (
	"database/sql"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
)

var (
	ErrNotFound  = errors.NewSentinel("not found")
	ErrDuplicate = errors.NewSentinel("duplicate")
)

// translate maps driver errors to the repository sentinels so that callers don't depend on the driver.
func translate(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}
