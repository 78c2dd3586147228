// Package catalog manages films retrievable by their numeric code.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ozodbekdev/kinokod/internal/store"
)

var (
	// ErrInvalidCode means the code did not parse as an integer. It is
	// reported before any duplicate check runs.
	ErrInvalidCode   = errors.New("catalog: code is not a number")
	ErrDuplicateURL  = errors.New("catalog: film url already added")
	ErrDuplicateCode = errors.New("catalog: film code already taken")
	ErrNotFound      = errors.New("catalog: film not found")
)

type Catalog struct {
	films store.Films
}

func New(films store.Films) *Catalog {
	return &Catalog{films: films}
}

// Add validates rawCode, rejects duplicate url or code, then inserts.
func (c *Catalog) Add(ctx context.Context, url, rawCode, name string) (store.Film, error) {
	code, err := strconv.ParseInt(strings.TrimSpace(rawCode), 10, 64)
	if err != nil {
		return store.Film{}, ErrInvalidCode
	}

	if _, err := c.films.FindByURL(ctx, url); err == nil {
		return store.Film{}, ErrDuplicateURL
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Film{}, err
	}

	if _, err := c.films.FindByCode(ctx, code); err == nil {
		return store.Film{}, ErrDuplicateCode
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Film{}, err
	}

	film := store.Film{Code: code, URL: url, Name: name}
	if err := c.films.Insert(ctx, film); err != nil {
		return store.Film{}, fmt.Errorf("insert film: %w", err)
	}
	return film, nil
}

func (c *Catalog) FindByCode(ctx context.Context, code int64) (store.Film, error) {
	film, err := c.films.FindByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return store.Film{}, ErrNotFound
	}
	if err != nil {
		return store.Film{}, err
	}
	return film, nil
}

// Remove deletes by code. Unlike the channel directory, a miss is
// reported as ErrNotFound.
func (c *Catalog) Remove(ctx context.Context, code int64) error {
	err := c.films.Delete(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
