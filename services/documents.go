package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListPage is one page of decoded documents.
type ListPage[T any] struct {
	Data       []T                 `json:"data"`
	Pagination docstore.Pagination `json:"pagination"`
}

// findDocument looks a record up by its _id hex or, failing that, by its
// domain id field (patientId, billId, ...).
func findDocument(ctx context.Context, store docstore.Store, collection, idField, id string) (docstore.Document, error) {
	if primitive.IsValidObjectID(id) {
		doc, err := store.FindByID(ctx, collection, id)
		if !errors.Is(err, docstore.ErrNotFound) {
			return doc, err
		}
	}
	return store.FindOne(ctx, collection, docstore.Filter{idField: id})
}

func notFound(err error, msg string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return utils.NotFound(msg)
	}
	return err
}

func decodeOne[T any](doc docstore.Document) (*T, error) {
	var out T
	if err := docstore.Decode(doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := docstore.Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodePage[T any](page *docstore.Page) (*ListPage[T], error) {
	items, err := decodeAll[T](page.Data)
	if err != nil {
		return nil, err
	}
	return &ListPage[T]{Data: items, Pagination: page.Pagination}, nil
}

// createDocument inserts v and decodes the stored record, which now carries
// _id and timestamps.
func createDocument[T any](ctx context.Context, store docstore.Store, collection string, v T) (*T, error) {
	doc, err := docstore.ToDocument(v)
	if err != nil {
		return nil, err
	}
	created, err := store.Create(ctx, collection, doc)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](created)
}

// updateDocument resolves id, applies patch, and returns the fresh record.
func updateDocument[T any](ctx context.Context, store docstore.Store, collection, idField, id string, patch docstore.Document, missing string) (*T, error) {
	doc, err := findDocument(ctx, store, collection, idField, id)
	if err != nil {
		return nil, notFound(err, missing)
	}
	hex := docstore.HexID(doc)
	if len(patch) > 0 {
		if err := store.UpdateByID(ctx, collection, hex, patch); err != nil {
			return nil, notFound(err, missing)
		}
	}
	fresh, err := store.FindByID(ctx, collection, hex)
	if err != nil {
		return nil, notFound(err, missing)
	}
	return decodeOne[T](fresh)
}
