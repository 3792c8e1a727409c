//go:build integration

package docstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yeremiapane/hospital-app/docstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupMongo starts a throwaway MongoDB and returns a store on a fresh database.
func setupMongo(t *testing.T) docstore.Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start mongo container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return docstore.NewMongoStore(client.Database("hospital_test"))
}

func TestMongoStoreBehavesLikeMemoryStore(t *testing.T) {
	s := setupMongo(t)
	ctx := context.Background()

	for _, name := range []string{"Ram Kumar", "Sita Devi", "Bikram", "(odd) name"} {
		_, err := s.Create(ctx, "patients", docstore.Document{"name": name, "isActive": true})
		require.NoError(t, err)
	}

	found, err := s.Search(ctx, "patients", "RAM", []string{"name"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.Search(ctx, "patients", "(odd", []string{"name"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	page, err := s.Paginate(ctx, "patients", docstore.Filter{"isActive": true}, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(4), page.Pagination.TotalCount)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)

	id := docstore.HexID(found[0])
	require.NoError(t, s.UpdateByID(ctx, "patients", id, docstore.Document{"isActive": false}))
	count, err := s.Count(ctx, "patients", docstore.Filter{"isActive": true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, s.DeleteByID(ctx, "patients", id))
	_, err = s.FindByID(ctx, "patients", id)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = s.FindByID(ctx, "patients", "nope")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestMongoStoreSum(t *testing.T) {
	s := setupMongo(t)
	ctx := context.Background()

	for _, amount := range []float64{500, 1250.5, 99} {
		_, err := s.Create(ctx, "bills", docstore.Document{"totalAmount": amount, "paymentStatus": "paid"})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "bills", docstore.Document{"totalAmount": 10000.0, "paymentStatus": "pending"})
	require.NoError(t, err)

	total, matched, err := s.Sum(ctx, "bills", docstore.Filter{"paymentStatus": "paid"}, "totalAmount")
	require.NoError(t, err)
	assert.Equal(t, 1849.5, total)
	assert.Equal(t, int64(3), matched)

	total, matched, err = s.Sum(ctx, "bills", docstore.Filter{"paymentStatus": "refunded"}, "totalAmount")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, matched)
}
