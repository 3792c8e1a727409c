package services

import (
	"context"
	"strings"
	"time"

	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const billNotFound = "Bill not found"

type BillingService struct {
	store docstore.Store
}

func NewBillingService(store docstore.Store) *BillingService {
	return &BillingService{store: store}
}

type DailyRevenue struct {
	Date         string  `json:"date"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalBills   int64   `json:"totalBills"`
}

// Create issues a pending bill under a fresh BILL id. When no total is
// given it is the sum of the line items.
func (s *BillingService) Create(ctx context.Context, b models.Bill) (*models.Bill, error) {
	b.PatientID = strings.TrimSpace(b.PatientID)
	if b.PatientID == "" {
		return nil, utils.Validation("patientId is required")
	}
	if b.TotalAmount < 0 {
		return nil, utils.Validation("totalAmount cannot be negative")
	}
	for _, it := range b.Items {
		if it.UnitPrice < 0 || it.Quantity < 0 {
			return nil, utils.Validation("bill items cannot be negative")
		}
	}
	if b.TotalAmount == 0 {
		b.TotalAmount = b.ItemsTotal()
	}
	if b.Items == nil {
		b.Items = []models.BillItem{}
	}

	b.ID = primitive.NilObjectID
	b.BillID = docstore.GenerateUniqueID("BILL")
	b.PaymentStatus = models.PaymentPending
	b.PaidAt = nil
	return createDocument(ctx, s.store, models.BillsCollection, b)
}

func (s *BillingService) Get(ctx context.Context, id string) (*models.Bill, error) {
	doc, err := findDocument(ctx, s.store, models.BillsCollection, "billId", id)
	if err != nil {
		return nil, notFound(err, billNotFound)
	}
	return decodeOne[models.Bill](doc)
}

// MarkPaid settles a pending bill.
func (s *BillingService) MarkPaid(ctx context.Context, id, method string) (*models.Bill, error) {
	bill, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.PaymentStatus == models.PaymentPaid {
		return nil, utils.Conflict("Bill is already paid")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = "cash"
	}
	return updateDocument[models.Bill](ctx, s.store, models.BillsCollection, "billId", bill.ID.Hex(), docstore.Document{
		"paymentStatus": models.PaymentPaid,
		"paymentMethod": method,
		"paidAt":        utcNow(),
	}, billNotFound)
}

func (s *BillingService) ForPatient(ctx context.Context, patientID string) ([]models.Bill, error) {
	docs, err := s.store.Find(ctx, models.BillsCollection, docstore.Filter{"patientId": patientID},
		docstore.FindOptions{SortField: docstore.FieldCreatedAt, SortDesc: true})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Bill](docs)
}

// GetDailyRevenue totals paid bills whose payment falls within day.
func (s *BillingService) GetDailyRevenue(ctx context.Context, day time.Time) (*DailyRevenue, error) {
	filter := dayFilter("paidAt", day)
	filter["paymentStatus"] = models.PaymentPaid

	total, count, err := s.store.Sum(ctx, models.BillsCollection, filter, "totalAmount")
	if err != nil {
		return nil, err
	}
	return &DailyRevenue{Date: day.Format(DateLayout), TotalRevenue: total, TotalBills: count}, nil
}

func (s *BillingService) List(ctx context.Context, page, limit int) (*ListPage[models.Bill], error) {
	p, err := s.store.Paginate(ctx, models.BillsCollection, nil, page, limit)
	if err != nil {
		return nil, err
	}
	return decodePage[models.Bill](p)
}
