package docstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateSetsTimestampsAndID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc, err := s.Create(ctx, "patients", Document{"name": "Ram Sharma"})
	require.NoError(t, err)

	id := HexID(doc)
	assert.NotEmpty(t, id)
	assert.IsType(t, time.Time{}, doc[FieldCreatedAt])
	assert.Equal(t, doc[FieldCreatedAt], doc[FieldUpdatedAt])

	found, err := s.FindByID(ctx, "patients", id)
	require.NoError(t, err)
	assert.Equal(t, "Ram Sharma", found["name"])
}

func TestMissingIDsReportNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	missing := primitive.NewObjectID().Hex()

	_, err := s.FindByID(ctx, "patients", missing)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdateByID(ctx, "patients", missing, Document{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteByID(ctx, "patients", missing)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByID(ctx, "patients", "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByIDBumpsUpdatedAt(t *testing.T) {
	backend := &memoryBackend{collections: make(map[string][]Document)}
	s := newStore(backend)
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	doc, err := s.Create(ctx, "bills", Document{"totalAmount": 100.0})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	require.NoError(t, s.UpdateByID(ctx, "bills", HexID(doc), Document{"totalAmount": 150.0, FieldCreatedAt: clock}))

	updated, err := s.FindByID(ctx, "bills", HexID(doc))
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated["totalAmount"])
	assert.Equal(t, clock, updated[FieldUpdatedAt])
	assert.Equal(t, clock.Add(-time.Hour), updated[FieldCreatedAt])
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Create(ctx, "patients", Document{"name": "Ram Sharma"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "patients", Document{"name": "Shyam"})
	require.NoError(t, err)

	got, err := s.Search(ctx, "patients", "ram", []string{"name"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ram Sharma", got[0]["name"])
}

func TestSearchTreatsTermLiterally(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Create(ctx, "patients", Document{"name": "A.B"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "patients", Document{"name": "AxB"})
	require.NoError(t, err)

	got, err := s.Search(ctx, "patients", "a.b", []string{"name", "email"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A.B", got[0]["name"])
}

func TestPaginateProperties(t *testing.T) {
	ctx := context.Background()
	for _, total := range []int{0, 1, 9, 10, 11, 25} {
		s := NewMemoryStore()
		for i := 0; i < total; i++ {
			_, err := s.Create(ctx, "appointments", Document{"n": i, "kind": "visit"})
			require.NoError(t, err)
		}
		_, err := s.Create(ctx, "appointments", Document{"kind": "other"})
		require.NoError(t, err)

		for _, limit := range []int{1, 3, 10} {
			wantPages := int(math.Ceil(float64(total) / float64(limit)))
			for page := 1; page <= wantPages+1; page++ {
				t.Run(fmt.Sprintf("total=%d/limit=%d/page=%d", total, limit, page), func(t *testing.T) {
					got, err := s.Paginate(ctx, "appointments", Filter{"kind": "visit"}, page, limit)
					require.NoError(t, err)

					p := got.Pagination
					assert.Equal(t, int64(total), p.TotalCount)
					assert.Equal(t, wantPages, p.TotalPages)
					assert.Equal(t, page < p.TotalPages, p.HasNextPage)
					assert.Equal(t, page > 1, p.HasPrevPage)

					wantLen := total - (page-1)*limit
					if wantLen > limit {
						wantLen = limit
					}
					if wantLen < 0 {
						wantLen = 0
					}
					assert.Len(t, got.Data, wantLen)
				})
			}
		}
	}
}

func TestPaginateClampsArguments(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.Paginate(context.Background(), "patients", nil, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Pagination.CurrentPage)
	assert.Equal(t, MaxLimit, got.Pagination.Limit)
	assert.Empty(t, got.Data)
}

func TestPaginatePastAnyData(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, "patients", Document{"n": i})
		require.NoError(t, err)
	}

	for _, page := range []int{math.MaxInt, math.MaxInt/10 + 2, 1 << 40} {
		got, err := s.Paginate(ctx, "patients", nil, page, 10)
		require.NoError(t, err)
		assert.Empty(t, got.Data, "page %d", page)
		assert.Equal(t, page, got.Pagination.CurrentPage)
		assert.Equal(t, 1, got.Pagination.TotalPages)
		assert.Equal(t, int64(3), got.Pagination.TotalCount)
		assert.False(t, got.Pagination.HasNextPage)
		assert.True(t, got.Pagination.HasPrevPage)
	}
}

func TestPageOffset(t *testing.T) {
	skip, ok := pageOffset(3, 10)
	assert.True(t, ok)
	assert.Equal(t, int64(20), skip)

	skip, ok = pageOffset(1, MaxLimit)
	assert.True(t, ok)
	assert.Zero(t, skip)

	_, ok = pageOffset(math.MaxInt, MaxLimit)
	assert.False(t, ok)
}

func TestFilterOperators(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{"paid", "paid", "pending"} {
		_, err := s.Create(ctx, "bills", Document{
			"paymentStatus": status,
			"totalAmount":   float64(100 * (i + 1)),
			"paidAt":        primitive.NewDateTimeFromTime(day.Add(time.Duration(i) * 30 * time.Hour)),
		})
		require.NoError(t, err)
	}

	inDay := Filter{
		"paymentStatus": "paid",
		"paidAt":        Filter{"$gte": day, "$lt": day.AddDate(0, 0, 1)},
	}
	total, matched, err := s.Sum(ctx, "bills", inDay, "totalAmount")
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)
	assert.Equal(t, 100.0, total)

	n, err := s.Count(ctx, "bills", Filter{"paymentStatus": Filter{"$in": []string{"paid", "refunded"}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Count(ctx, "bills", Filter{"$or": []Filter{{"totalAmount": 300}, {"paymentStatus": Filter{"$ne": "paid"}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSumWithNoMatchesIsZero(t *testing.T) {
	s := NewMemoryStore()
	total, matched, err := s.Sum(context.Background(), "bills", Filter{"paymentStatus": "paid"}, "totalAmount")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, matched)
}

func TestDecodeRoundTrip(t *testing.T) {
	type patient struct {
		ID   primitive.ObjectID `bson:"_id,omitempty"`
		Name string             `bson:"name"`
	}
	s := NewMemoryStore()
	doc, err := ToDocument(patient{Name: "Asha"})
	require.NoError(t, err)
	_, hasID := doc[FieldID]
	assert.False(t, hasID)

	created, err := s.Create(context.Background(), "patients", doc)
	require.NoError(t, err)

	var out patient
	require.NoError(t, Decode(created, &out))
	assert.Equal(t, "Asha", out.Name)
	assert.Equal(t, HexID(created), out.ID.Hex())
}

type brokenBackend struct{ err error }

func (b brokenBackend) insertOne(context.Context, string, Document) error { return b.err }
func (b brokenBackend) find(context.Context, string, Filter, FindOptions) ([]Document, error) {
	return nil, b.err
}
func (b brokenBackend) findOne(context.Context, string, Filter) (Document, error) { return nil, b.err }
func (b brokenBackend) updateOne(context.Context, string, Filter, Document) (int64, error) {
	return 0, b.err
}
func (b brokenBackend) deleteOne(context.Context, string, Filter) (int64, error) { return 0, b.err }
func (b brokenBackend) count(context.Context, string, Filter) (int64, error)     { return 0, b.err }
func (b brokenBackend) sum(context.Context, string, Filter, string) (float64, int64, error) {
	return 0, 0, b.err
}

func TestBackendFailuresAreLogged(t *testing.T) {
	hook := test.NewLocal(utils.ErrorLogger)
	defer hook.Reset()

	down := errors.New("connection refused")
	s := newStore(brokenBackend{err: down})
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	_, err := s.Create(ctx, "bills", Document{"totalAmount": 10.0})
	assert.ErrorIs(t, err, down)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "create", entry.Data["op"])
	assert.Equal(t, "bills", entry.Data["collection"])
	assert.Equal(t, down, entry.Data["error"])

	hook.Reset()
	assert.ErrorIs(t, s.UpdateByID(ctx, "bills", id, Document{"x": 1}), down)
	assert.ErrorIs(t, s.DeleteByID(ctx, "bills", id), down)
	_, err = s.FindByID(ctx, "bills", id)
	assert.ErrorIs(t, err, down)
	_, _, err = s.Sum(ctx, "bills", nil, "totalAmount")
	assert.ErrorIs(t, err, down)
	assert.Len(t, hook.AllEntries(), 4)

	// a missing document is an answer, not a failure
	hook.Reset()
	_, err = NewMemoryStore().FindByID(ctx, "bills", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, hook.AllEntries())
}
