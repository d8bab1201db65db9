package pq

import (
	"context"
	"fmt"

	"github.com/dhamidi/pqls/pq/parser"
)

// cancelled reports a done context as a parser.ErrCancelled error, so
// callers can test for cancellation the same way at every layer.
func cancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", parser.ErrCancelled, err)
	}
	return nil
}
