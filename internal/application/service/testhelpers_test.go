package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
	"github.com/rs/zerolog"
)

// In-memory repository fakes. They mirror the gorm implementations'
// contract: lookups return (nil, nil) when nothing matches.

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*entity.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*entity.Invoice)}
}

func (r *memInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	for i := range invoice.Lines {
		if invoice.Lines[i].ID == uuid.Nil {
			invoice.Lines[i].ID = uuid.New()
		}
		invoice.Lines[i].InvoiceID = invoice.ID
	}
	stored := *invoice
	r.invoices[invoice.ID] = &stored
	return nil
}

func (r *memInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.GetWithRelations(ctx, id)
}

func (r *memInvoiceRepo) GetWithRelations(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *invoice
	copied.Lines = append([]entity.InvoiceLine(nil), invoice.Lines...)
	copied.Payments = append([]entity.Payment(nil), invoice.Payments...)
	return &copied, nil
}

func (r *memInvoiceRepo) GetByNumber(ctx context.Context, seriesCode, number string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invoice := range r.invoices {
		if invoice.SeriesCode == seriesCode && invoice.Number != nil && *invoice.Number == number {
			copied := *invoice
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) Save(ctx context.Context, invoice *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *invoice
	stored.Lines = append([]entity.InvoiceLine(nil), invoice.Lines...)
	stored.Payments = append([]entity.Payment(nil), invoice.Payments...)
	r.invoices[invoice.ID] = &stored
	return nil
}

func (r *memInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invoice
	for _, invoice := range r.invoices {
		if params.Status != nil && invoice.Status != *params.Status {
			continue
		}
		if params.SeriesCode != "" && invoice.SeriesCode != params.SeriesCode {
			continue
		}
		out = append(out, *invoice)
	}
	return out, int64(len(out)), nil
}

func (r *memInvoiceRepo) ListWithBalance(ctx context.Context, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invoice
	for _, invoice := range r.invoices {
		payable := invoice.Status == enum.InvoiceStatusIssued || invoice.Status == enum.InvoiceStatusPartiallyPaid
		if payable && invoice.Balance.IsPositive() {
			out = append(out, *invoice)
		}
	}
	return out, int64(len(out)), nil
}

type memSeriesRepo struct {
	mu     sync.Mutex
	series map[string]*entity.InvoiceSeries
}

func newMemSeriesRepo() *memSeriesRepo {
	return &memSeriesRepo{series: make(map[string]*entity.InvoiceSeries)}
}

func (r *memSeriesRepo) GetByCode(ctx context.Context, code string) (*entity.InvoiceSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[code]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memSeriesRepo) Create(ctx context.Context, series *entity.InvoiceSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if series.ID == uuid.Nil {
		series.ID = uuid.New()
	}
	stored := *series
	r.series[series.Code] = &stored
	return nil
}

func (r *memSeriesRepo) List(ctx context.Context) ([]entity.InvoiceSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.InvoiceSeries
	for _, s := range r.series {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memSeriesRepo) NextNumber(ctx context.Context, code string) (int64, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[code]
	if !ok {
		s = &entity.InvoiceSeries{ID: uuid.New(), Code: code, Prefix: code}
		r.series[code] = s
	}
	s.LastValue++
	return s.LastValue, s.FormatNumber(s.LastValue), nil
}

type memCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*entity.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
}

func (r *memCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	stored := *customer
	r.customers[customer.ID] = &stored
	return nil
}

func (r *memCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *memCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	return r.Create(ctx, customer)
}

func (r *memCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r *memCustomerRepo) List(ctx context.Context, params *repository.CustomerFilterParams) ([]entity.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*entity.Product)}
}

func (r *memProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.Create(ctx, product)
}

func (r *memProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*entity.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*entity.Payment)}
}

func (r *memPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	stored := *payment
	r.payments[payment.ID] = &stored
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memPaymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memCashBoxRepo struct {
	mu    sync.Mutex
	boxes map[uuid.UUID]*entity.CashBox
}

func newMemCashBoxRepo() *memCashBoxRepo {
	return &memCashBoxRepo{boxes: make(map[uuid.UUID]*entity.CashBox)}
}

func (r *memCashBoxRepo) Create(ctx context.Context, box *entity.CashBox) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if box.ID == uuid.Nil {
		box.ID = uuid.New()
	}
	stored := *box
	r.boxes[box.ID] = &stored
	return nil
}

func (r *memCashBoxRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashBox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boxes[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *memCashBoxRepo) GetByCode(ctx context.Context, code string) (*entity.CashBox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.boxes {
		if b.Code == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memCashBoxRepo) Update(ctx context.Context, box *entity.CashBox) error {
	return r.Create(ctx, box)
}

func (r *memCashBoxRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.CashBox, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CashBox
	for _, b := range r.boxes {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *memCashBoxRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to enum.CashBoxStatus, sessionID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boxes[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.CurrentSessionID = sessionID
	return true, nil
}

type memSessionRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*entity.CashBoxSession
	movements *memMovementRepo
}

func newMemSessionRepo(movements *memMovementRepo) *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*entity.CashBoxSession), movements: movements}
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.CashBoxSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memSessionRepo) GetWithMovements(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error) {
	session, err := r.GetByID(ctx, id)
	if err != nil || session == nil {
		return session, err
	}
	movements, err := r.movements.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Movements = movements
	return session, nil
}

func (r *memSessionRepo) Save(ctx context.Context, session *entity.CashBoxSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memSessionRepo) ListByCashBox(ctx context.Context, cashBoxID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashBoxSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CashBoxSession
	for _, s := range r.sessions {
		if s.CashBoxID == cashBoxID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

type memMovementRepo struct {
	mu        sync.Mutex
	movements []entity.CashBoxMovement
	onCreate  func(*entity.CashBoxMovement)
}

func newMemMovementRepo() *memMovementRepo {
	return &memMovementRepo{}
}

func (r *memMovementRepo) Create(ctx context.Context, movement *entity.CashBoxMovement) error {
	// onCreate runs before the movement is stored so a test can schedule
	// a competing operation at the critical point.
	if r.onCreate != nil {
		r.onCreate(movement)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *memMovementRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.CashBoxMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CashBoxMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

// nopTransactor runs the callback directly; the fakes have no
// transactional semantics to coordinate.
type nopTransactor struct{}

func (nopTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
