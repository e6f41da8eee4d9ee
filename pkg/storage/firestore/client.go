package firestore

import (
	"cloud.google.com/go/firestore"

	shared "github.com/fitsync/server/pkg"
)

type Client struct {
	fs *firestore.Client
}

func NewClient(client *firestore.Client) *Client {
	return &Client{fs: client}
}

func (c *Client) Close() error {
	return c.fs.Close()
}

// FitnessData is the per-day metrics collection: fitnessData/{YYYY-MM-DD}
func (c *Client) FitnessData() *Collection[shared.DailyRecord] {
	return &Collection[shared.DailyRecord]{
		Ref:           c.fs.Collection(shared.CollectionFitnessData),
		ToFirestore:   DailyRecordToFirestore,
		FromFirestore: FirestoreToDailyRecord,
	}
}
