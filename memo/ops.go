package memo

import (
	"context"

	"github.com/on-the-ground/increment_al_go/memo/log"
	"github.com/on-the-ground/increment_al_go/shared/helper"
)

// Get resolves target in the active store without invoking any computation.
func Get(ctx context.Context, target Target) (any, error) {
	store, err := ActiveStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.Get(target)
}

// GetAs is Get with the cached value asserted to T.
func GetAs[T any](ctx context.Context, target Target) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return Get(ctx, target)
	})
}

// Contains reports whether target resolves in the active store.
func Contains(ctx context.Context, target Target) (bool, error) {
	store, err := ActiveStore(ctx)
	if err != nil {
		return false, err
	}
	return store.Contains(target), nil
}

// Cache stores value for target in the active store. See Store.Cache.
func Cache(ctx context.Context, target Target, value any, dependencies ...Target) error {
	store, err := ActiveStore(ctx)
	if err != nil {
		return err
	}
	return store.Cache(target, value, dependencies)
}

// Tweak overrides target in the active store and pins it. Everything that
// read target is forgotten and rebuilds on its next call.
func Tweak(ctx context.Context, target Target, value any) error {
	store, err := ActiveStore(ctx)
	if err != nil {
		return err
	}
	if err := store.Tweak(target, value); err != nil {
		return err
	}
	log.Effect(ctx, log.LogDebug, "tweaked target", map[string]interface{}{
		"target":  target.String(),
		"storeId": store.id,
	})
	return nil
}

// Invalidate forgets target and its transitive dependants in the active store.
func Invalidate(ctx context.Context, target Target) ([]Target, error) {
	store, err := ActiveStore(ctx)
	if err != nil {
		return nil, err
	}
	affected, err := store.Invalidate(target)
	if err != nil {
		return nil, err
	}
	log.Effect(ctx, log.LogDebug, "invalidated target", map[string]interface{}{
		"target":   target.String(),
		"storeId":  store.id,
		"affected": len(affected),
	})
	return affected, nil
}

// Dependencies returns the recorded dependencies of target in the active store.
func Dependencies(ctx context.Context, target Target) ([]Target, bool, error) {
	store, err := ActiveStore(ctx)
	if err != nil {
		return nil, false, err
	}
	deps, ok := store.Dependencies(target)
	return deps, ok, nil
}

// Dependants returns the recorded dependants of target in the active store.
func Dependants(ctx context.Context, target Target) ([]Target, bool, error) {
	store, err := ActiveStore(ctx)
	if err != nil {
		return nil, false, err
	}
	deps, ok := store.Dependants(target)
	return deps, ok, nil
}
