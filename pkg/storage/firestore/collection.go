package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type ToFirestoreFunc[T any] func(*T) map[string]interface{}
type FromFirestoreFunc[T any] func(map[string]interface{}) *T

type Collection[T any] struct {
	Ref           *firestore.CollectionRef
	ToFirestore   ToFirestoreFunc[T]
	FromFirestore FromFirestoreFunc[T]
}

func (c *Collection[T]) Doc(id string) *DocumentRef[T] {
	return &DocumentRef[T]{
		Ref:           c.Ref.Doc(id),
		ToFirestore:   c.ToFirestore,
		FromFirestore: c.FromFirestore,
	}
}

// Where returns a typed query over the collection. Conditions compose the way
// the underlying Firestore query does.
func (c *Collection[T]) Where(path, op string, value interface{}) *Query[T] {
	return &Query[T]{
		q:             c.Ref.Where(path, op, value),
		fromFirestore: c.FromFirestore,
	}
}

type Query[T any] struct {
	q             firestore.Query
	fromFirestore FromFirestoreFunc[T]
}

func (q *Query[T]) Where(path, op string, value interface{}) *Query[T] {
	return &Query[T]{
		q:             q.q.Where(path, op, value),
		fromFirestore: q.fromFirestore,
	}
}

// GetAll runs the query and returns every matching document keyed by id.
func (q *Query[T]) GetAll(ctx context.Context) (map[string]*T, error) {
	iter := q.q.Documents(ctx)
	defer iter.Stop()

	out := make(map[string]*T)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out[snap.Ref.ID] = q.fromFirestore(snap.Data())
	}
	return out, nil
}

type DocumentRef[T any] struct {
	Ref           *firestore.DocumentRef
	ToFirestore   ToFirestoreFunc[T]
	FromFirestore FromFirestoreFunc[T]
}

func (d *DocumentRef[T]) ID() string {
	return d.Ref.ID
}

func (d *DocumentRef[T]) Get(ctx context.Context) (*T, error) {
	snap, err := d.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return d.FromFirestore(snap.Data()), nil
}

func (d *DocumentRef[T]) Set(ctx context.Context, data *T) error {
	m := d.ToFirestore(data)
	_, err := d.Ref.Set(ctx, m, firestore.MergeAll)
	return err
}
