package mongo_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"weeklygrind/plan-tracker/internal/repository"
	repomongo "weeklygrind/plan-tracker/internal/repository/mongo"
	"weeklygrind/plan-tracker/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// startReplicaSet runs a single-node replica set so transactions work. The
// test is skipped when Docker is not reachable.
func startReplicaSet(t *testing.T) *mongo.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %s", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
		Cmd:        []string{"--replSet", "rs0", "--bind_ip_all"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("purge mongo container: %s", err)
		}
	})

	uri := fmt.Sprintf("mongodb://localhost:%s/?directConnection=true", resource.GetPort("27017/tcp"))
	var client *mongo.Client
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		// the member advertises itself as localhost:27017 inside the container
		initiate := bson.D{{Key: "replSetInitiate", Value: bson.M{
			"_id":     "rs0",
			"members": bson.A{bson.M{"_id": 0, "host": "localhost:27017"}},
		}}}
		err = c.Database("admin").RunCommand(ctx, initiate).Err()
		if err != nil && !strings.Contains(err.Error(), "already initialized") {
			_ = c.Disconnect(ctx)
			return err
		}
		var status struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		if err := c.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&status); err != nil || !status.IsWritablePrimary {
			_ = c.Disconnect(ctx)
			return fmt.Errorf("waiting for primary: %v", err)
		}
		client = c
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := repomongo.DisconnectDB(client); err != nil {
			t.Logf("disconnect: %s", err)
		}
	})
	return client
}

func TestMongoContract(t *testing.T) {
	client := startReplicaSet(t)

	for _, transactions := range []bool{true, false} {
		t.Run(fmt.Sprintf("transactions=%t", transactions), func(t *testing.T) {
			suite.Run(t, &repotest.ContractSuite{
				NewRepositories: func(t *testing.T) *repository.Repositories {
					db := client.Database("grind_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
					require.NoError(t, repomongo.EnsureIndexes(context.Background(), db))
					t.Cleanup(func() { _ = db.Drop(context.Background()) })
					return repomongo.NewRepositories(client, db, transactions)
				},
			})
		})
	}
}

func TestMongoCompletionUniqueOpenIndex(t *testing.T) {
	client := startReplicaSet(t)
	db := client.Database("grind_index_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	ctx := context.Background()
	require.NoError(t, repomongo.EnsureIndexes(ctx, db))
	// running it twice must be harmless
	require.NoError(t, repomongo.EnsureIndexes(ctx, db))
	t.Cleanup(func() { _ = db.Drop(ctx) })

	coll := db.Collection("completions")
	userPlanID := uuid.NewString()
	_, err := coll.InsertOne(ctx, bson.M{"userPlanId": userPlanID, "dayNumber": 2, "open": true})
	require.NoError(t, err)
	_, err = coll.InsertOne(ctx, bson.M{"userPlanId": userPlanID, "dayNumber": 2, "open": true})
	require.True(t, mongo.IsDuplicateKeyError(err), "second open completion for a day is rejected")

	// finalized completions may pile up
	for i := 0; i < 2; i++ {
		_, err = coll.InsertOne(ctx, bson.M{"userPlanId": userPlanID, "dayNumber": 2, "completedAt": time.Now()})
		require.NoError(t, err)
	}
}
