package database

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo owns the document store connection. It connects at most once; an
// empty URI selects the in-memory store.
type Mongo struct {
	URI      string
	Database string
	Timeout  time.Duration

	once   sync.Once
	client *mongo.Client
	store  docstore.Store
	err    error
}

func NewMongo(uri, database string, timeout time.Duration) *Mongo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mongo{URI: uri, Database: database, Timeout: timeout}
}

// Connect establishes the connection on first use and returns the same
// result to every later caller.
func (m *Mongo) Connect(ctx context.Context) (docstore.Store, error) {
	m.once.Do(func() {
		if m.URI == "" {
			utils.InfoLogger.Warn("MONGODB_URI not set, using in-memory document store")
			m.store = docstore.NewMemoryStore()
			return
		}

		ctx, cancel := context.WithTimeout(ctx, m.Timeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.URI))
		if err != nil {
			m.err = err
			return
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			m.err = err
			return
		}

		m.client = client
		m.store = docstore.NewMongoStore(client.Database(m.Database))
		utils.InfoLogger.WithField("database", m.Database).Info("Connected to MongoDB")
	})
	return m.store, m.err
}

// Store returns the connected store, or nil before a successful Connect.
func (m *Mongo) Store() docstore.Store {
	return m.store
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
