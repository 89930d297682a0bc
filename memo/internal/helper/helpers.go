package helper

import (
	"context"
	"fmt"

	"github.com/on-the-ground/increment_al_go/memo/internal/model"
)

// GetHandler checks whether a value for the given key is registered in the context.
// Returns an error if not found.
func GetHandler(ctx context.Context, key model.ContextKey) (any, error) {
	raw := ctx.Value(key)
	if raw == nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoEffectHandler, key)
	}
	return raw, nil
}
