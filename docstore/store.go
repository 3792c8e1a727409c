// Package docstore is the generic document data access layer shared by the
// patient, appointment, medical record and billing services. Every operation
// reports failure through its error return; nothing panics on a missing id.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type (
	Document = bson.M
	Filter   = bson.M
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = fmt.Errorf("%w: invalid id", ErrNotFound)
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

type FindOptions struct {
	SortField string
	SortDesc  bool
	Skip      int64
	Limit     int64
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type Page struct {
	Data       []Document `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Store is the uniform CRUD surface over a document database.
type Store interface {
	Create(ctx context.Context, collection string, data Document) (Document, error)
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	FindByID(ctx context.Context, collection, id string) (Document, error)
	UpdateByID(ctx context.Context, collection, id string, patch Document) error
	DeleteByID(ctx context.Context, collection, id string) error
	Search(ctx context.Context, collection, term string, fields []string) ([]Document, error)
	Paginate(ctx context.Context, collection string, filter Filter, page, limit int) (*Page, error)
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Sum(ctx context.Context, collection string, filter Filter, field string) (total float64, matched int64, err error)
}

// backend is what a concrete database has to provide; store layers the
// timestamps, id handling, search and pagination on top.
type backend interface {
	insertOne(ctx context.Context, collection string, doc Document) error
	find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error)
	findOne(ctx context.Context, collection string, filter Filter) (Document, error)
	updateOne(ctx context.Context, collection string, filter Filter, set Document) (matched int64, err error)
	deleteOne(ctx context.Context, collection string, filter Filter) (deleted int64, err error)
	count(ctx context.Context, collection string, filter Filter) (int64, error)
	sum(ctx context.Context, collection string, filter Filter, field string) (float64, int64, error)
}

type store struct {
	b   backend
	now func() time.Time
}

func newStore(b backend) *store {
	return &store{b: b, now: func() time.Time {
		return time.Now().UTC().Truncate(time.Millisecond)
	}}
}

func (s *store) Create(ctx context.Context, collection string, data Document) (Document, error) {
	doc := make(Document, len(data)+3)
	for k, v := range data {
		doc[k] = v
	}
	if _, ok := doc[FieldID]; !ok {
		doc[FieldID] = primitive.NewObjectID()
	}
	now := s.now()
	doc[FieldCreatedAt] = now
	doc[FieldUpdatedAt] = now

	if err := s.b.insertOne(ctx, collection, doc); err != nil {
		return nil, fail("create", collection, err)
	}
	return doc, nil
}

func (s *store) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	docs, err := s.b.find(ctx, collection, nonNil(filter), opts)
	if err != nil {
		return nil, fail("find", collection, err)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

func (s *store) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	doc, err := s.b.findOne(ctx, collection, nonNil(filter))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fail("find one", collection, err)
	}
	return doc, nil
}

func (s *store) FindByID(ctx context.Context, collection, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.FindOne(ctx, collection, Filter{FieldID: oid})
}

func (s *store) UpdateByID(ctx context.Context, collection, id string, patch Document) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	set := make(Document, len(patch)+1)
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		set[k] = v
	}
	set[FieldUpdatedAt] = s.now()

	matched, err := s.b.updateOne(ctx, collection, Filter{FieldID: oid}, set)
	if err != nil {
		return fail("update", collection, err)
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store) DeleteByID(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	deleted, err := s.b.deleteOne(ctx, collection, Filter{FieldID: oid})
	if err != nil {
		return fail("delete", collection, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store) Search(ctx context.Context, collection, term string, fields []string) ([]Document, error) {
	return s.Find(ctx, collection, SearchFilter(term, fields), FindOptions{})
}

// SearchFilter matches documents where any of fields contains term, ignoring case.
// The term is a literal substring, not a pattern.
func SearchFilter(term string, fields []string) Filter {
	if term == "" || len(fields) == 0 {
		return Filter{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, Filter{f: re})
	}
	return Filter{"$or": or}
}

func (s *store) Paginate(ctx context.Context, collection string, filter Filter, page, limit int) (*Page, error) {
	page, limit = ClampPage(page, limit)
	skip, reachable := pageOffset(page, limit)

	var (
		docs  []Document
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !reachable {
			docs = []Document{}
			return nil
		}
		var err error
		docs, err = s.Find(gctx, collection, filter, FindOptions{
			SortField: FieldCreatedAt,
			SortDesc:  true,
			Skip:      skip,
			Limit:     int64(limit),
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Count(gctx, collection, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Page{Data: docs, Pagination: NewPagination(page, limit, total)}, nil
}

// pageOffset returns how many documents precede page. It reports false when
// that count does not fit in an int64, so the page is past any real data.
func pageOffset(page, limit int) (int64, bool) {
	before := int64(page - 1)
	if before > math.MaxInt64/int64(limit) {
		return 0, false
	}
	return before * int64(limit), true
}

// ClampPage applies the default page and the limit bounds.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func (s *store) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	n, err := s.b.count(ctx, collection, nonNil(filter))
	if err != nil {
		return 0, fail("count", collection, err)
	}
	return n, nil
}

func (s *store) Sum(ctx context.Context, collection string, filter Filter, field string) (float64, int64, error) {
	total, matched, err := s.b.sum(ctx, collection, nonNil(filter), field)
	if err != nil {
		return 0, 0, fail("sum "+field, collection, err)
	}
	return total, matched, nil
}

// fail logs a backend failure once and wraps it with the operation.
func fail(op, collection string, err error) error {
	utils.ErrorLogger.WithFields(map[string]interface{}{
		"op":         op,
		"collection": collection,
	}).WithError(err).Error("Document store operation failed")
	return fmt.Errorf("%s in %s: %w", op, collection, err)
}

func nonNil(f Filter) Filter {
	if f == nil {
		return Filter{}
	}
	return f
}
