package plasma

import (
	"context"
	"errors"

	"github.com/spf13/cast"

	"plasma/internal/infra/storage"
)

// Storage is the record and variable store of the running project.
type Storage = storage.Store

// ErrNoStorage is returned when a component runs without a store in its context.
var ErrNoStorage = errors.New("plasma: no storage available")

// StorageFrom returns the store of the invocation running under ctx.
func StorageFrom(ctx context.Context) (*Storage, error) {
	store, ok := storage.FromContext(ctx)
	if !ok {
		return nil, ErrNoStorage
	}
	return store, nil
}

// Variable is a named value in storage with a default used until it is set.
type Variable struct {
	key      string
	fallback any
}

// DeclareVariable declares a variable. Declare variables at package level
// next to the component that uses them.
func DeclareVariable(key string, fallback any) Variable {
	return Variable{key: key, fallback: fallback}
}

func (v Variable) Key() string {
	return v.key
}

func (v Variable) Default() any {
	return v.fallback
}

// Get returns the stored value or the default when the variable was never set.
func (v Variable) Get(ctx context.Context) (any, error) {
	store, err := StorageFrom(ctx)
	if err != nil {
		return nil, err
	}
	value, ok, err := store.GetVar(v.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v.fallback, nil
	}
	return value, nil
}

func (v Variable) Set(ctx context.Context, value any) error {
	store, err := StorageFrom(ctx)
	if err != nil {
		return err
	}
	return store.SetVar(v.key, value)
}

// Int64 reads the variable as an integer.
func (v Variable) Int64(ctx context.Context) (int64, error) {
	value, err := v.Get(ctx)
	if err != nil {
		return 0, err
	}
	return cast.ToInt64E(value)
}

// Add increments a numeric variable by delta atomically and returns the new value.
func (v Variable) Add(ctx context.Context, delta int64) (int64, error) {
	store, err := StorageFrom(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	_, err = store.UpdateVar(v.key, func(current any, found bool) (any, error) {
		if !found {
			current = v.fallback
		}
		base, err := cast.ToInt64E(current)
		if err != nil {
			return nil, err
		}
		total = base + delta
		return total, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
