package mongo

import (
	"context"

	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongoTransactor runs a unit of work in a multi-document transaction.
// Transactions need a replica set; on a standalone server construct it with
// enabled=false and callers fall back to compensation.
type mongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

func NewMongoTransactor(client *mongo.Client, enabled bool) repository.Transactor {
	return &mongoTransactor{client: client, enabled: enabled}
}

func (t *mongoTransactor) Atomic() bool { return t.enabled }

// WithinTransaction passes a session context to fn. Every repository call
// made with that context joins the transaction. The driver retries fn on
// transient transaction errors, so fn must not have side effects outside
// the database.
func (t *mongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
