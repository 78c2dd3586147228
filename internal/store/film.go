package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Film is a catalog entry retrievable by its numeric code.
type Film struct {
	Code int64  `bson:"code"`
	URL  string `bson:"url"`
	Name string `bson:"name"`
}

type Films interface {
	Insert(ctx context.Context, f Film) error
	FindByCode(ctx context.Context, code int64) (Film, error)
	FindByURL(ctx context.Context, url string) (Film, error)
	// Delete removes the film with the given code, ErrNotFound if absent.
	Delete(ctx context.Context, code int64) error
	Count(ctx context.Context) (int64, error)
}

type mongoFilms struct {
	coll *mongo.Collection
}

func (f *mongoFilms) Insert(ctx context.Context, film Film) error {
	_, err := f.coll.InsertOne(ctx, film)
	return mapWriteErr(err)
}

func (f *mongoFilms) FindByCode(ctx context.Context, code int64) (Film, error) {
	return f.findOne(ctx, bson.M{"code": code})
}

func (f *mongoFilms) FindByURL(ctx context.Context, url string) (Film, error) {
	return f.findOne(ctx, bson.M{"url": url})
}

func (f *mongoFilms) findOne(ctx context.Context, filter bson.M) (Film, error) {
	var film Film
	err := f.coll.FindOne(ctx, filter).Decode(&film)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Film{}, ErrNotFound
	}
	if err != nil {
		return Film{}, fmt.Errorf("find film: %w", err)
	}
	return film, nil
}

func (f *mongoFilms) Delete(ctx context.Context, code int64) error {
	res, err := f.coll.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (f *mongoFilms) Count(ctx context.Context) (int64, error) {
	return f.coll.EstimatedDocumentCount(ctx)
}
