// internal/store/firestore.go
package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tradeforge/aatm/internal/core"
)

// Firestore implements DocumentStore backed by Google Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore constructs a Firestore client bound to the given project,
// authenticated with a service account credentials file. Construction alone
// does not verify reachability; callers should probe before trusting the
// handle.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	doc := f.client.Collection(collection).Doc(id)
	if merge {
		_, err := doc.Set(ctx, fields, firestore.MergeAll)
		return err
	}
	_, err := doc.Set(ctx, fields)
	return err
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, core.WrapError(core.ErrDocumentNotFound, err)
		}
		return nil, err
	}
	return snap.Data(), nil
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	_, err := f.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

func (f *Firestore) Documents(ctx context.Context, collection string, limit int) ([]Document, error) {
	query := f.client.Collection(collection).Query
	if limit > 0 {
		query = query.Limit(limit)
	}

	var docs []Document
	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
