package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/mesafacil/backoffice-api/pkg/keyedmutex"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	service      *InvoiceService
	invoiceRepo  *memInvoiceRepo
	seriesRepo   *memSeriesRepo
	customerRepo *memCustomerRepo
	productRepo  *memProductRepo
	customer     *entity.Customer
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	invoiceRepo := newMemInvoiceRepo()
	seriesRepo := newMemSeriesRepo()
	customerRepo := newMemCustomerRepo()
	productRepo := newMemProductRepo()

	customer := &entity.Customer{Name: "Cafe del Centro", DocumentType: "NIT", DocumentNumber: "900123456"}
	require.NoError(t, customerRepo.Create(context.Background(), customer))

	svc := NewInvoiceService(
		invoiceRepo, seriesRepo, customerRepo, productRepo,
		nopTransactor{}, keyedmutex.New(),
		entity.ReceiptHeader{StoreName: "Mesa Facil"}, testLogger())

	return &invoiceFixture{
		service:      svc,
		invoiceRepo:  invoiceRepo,
		seriesRepo:   seriesRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		customer:     customer,
	}
}

func (f *invoiceFixture) draftInput() *CreateInvoiceInput {
	ten := decimal.NewFromInt(10)
	nineteen := decimal.NewFromInt(19)
	price := decimal.RequireFromString("18.50")
	return &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		SeriesCode:  "A",
		PaymentType: enum.PaymentTypeCash,
		Lines: []LineInput{{
			Description:     "Menu del dia",
			Qty:             decimal.NewFromInt(2),
			UnitPrice:       &price,
			DiscountPercent: &ten,
			TaxRate:         &nineteen,
		}},
	}
}

func TestCreateInvoice(t *testing.T) {
	t.Run("computes totals and captures a customer snapshot", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)

		assert.Equal(t, enum.InvoiceStatusDraft, invoice.Status)
		assert.Nil(t, invoice.Number)
		assert.Equal(t, "33.30", invoice.Subtotal.StringFixed(2))
		assert.Equal(t, "6.33", invoice.TaxTotal.StringFixed(2))
		assert.Equal(t, "39.63", invoice.Total.StringFixed(2))
		assert.Equal(t, "39.63", invoice.Balance.StringFixed(2))
		assert.Equal(t, "Cafe del Centro", invoice.Customer.Name)
		assert.Equal(t, "900123456", invoice.Customer.DocumentNumber)
	})

	t.Run("snapshot survives later customer edits", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)

		f.customer.Name = "Renamed Co"
		require.NoError(t, f.customerRepo.Update(context.Background(), f.customer))

		reloaded, err := f.service.GetInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cafe del Centro", reloaded.Customer.Name)
	})

	t.Run("rejects an empty line set", func(t *testing.T) {
		f := newInvoiceFixture(t)

		input := f.draftInput()
		input.Lines = nil
		_, err := f.service.CreateInvoice(context.Background(), input)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("rejects an unknown customer", func(t *testing.T) {
		f := newInvoiceFixture(t)

		input := f.draftInput()
		input.CustomerID = uuid.New()
		_, err := f.service.CreateInvoice(context.Background(), input)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("pre-fills line fields from the catalog", func(t *testing.T) {
		f := newInvoiceFixture(t)

		product := &entity.Product{
			Name:    "Limonada",
			Unit:    "vaso",
			Price:   decimal.RequireFromString("7.99"),
			TaxRate: decimal.NewFromInt(19),
		}
		require.NoError(t, f.productRepo.Create(context.Background(), product))

		input := f.draftInput()
		input.Lines = []LineInput{{ProductID: &product.ID, Qty: decimal.NewFromInt(1)}}

		invoice, err := f.service.CreateInvoice(context.Background(), input)
		require.NoError(t, err)

		line := invoice.Lines[0]
		assert.Equal(t, "Limonada", line.Description)
		assert.Equal(t, "vaso", line.Unit)
		assert.Equal(t, "7.99", line.UnitPrice.StringFixed(2))
		assert.Equal(t, "19.00", line.TaxRate.StringFixed(2))
	})

	t.Run("caller overrides win over catalog values", func(t *testing.T) {
		f := newInvoiceFixture(t)

		product := &entity.Product{
			Name:    "Limonada",
			Price:   decimal.RequireFromString("7.99"),
			TaxRate: decimal.NewFromInt(19),
		}
		require.NoError(t, f.productRepo.Create(context.Background(), product))

		override := decimal.RequireFromString("5.00")
		input := f.draftInput()
		input.Lines = []LineInput{{
			ProductID:   &product.ID,
			Description: "Limonada happy hour",
			Qty:         decimal.NewFromInt(1),
			UnitPrice:   &override,
		}}

		invoice, err := f.service.CreateInvoice(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "Limonada happy hour", invoice.Lines[0].Description)
		assert.Equal(t, "5.00", invoice.Lines[0].UnitPrice.StringFixed(2))
	})
}

func TestUpdateInvoice(t *testing.T) {
	t.Run("replaces lines and recomputes totals", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)

		price := decimal.RequireFromString("10.00")
		updated, err := f.service.UpdateInvoice(context.Background(), invoice.ID, &UpdateInvoiceInput{
			Lines: []LineInput{{Description: "Almuerzo", Qty: decimal.NewFromInt(3), UnitPrice: &price}},
		})
		require.NoError(t, err)

		assert.Len(t, updated.Lines, 1)
		assert.Equal(t, "30.00", updated.Subtotal.StringFixed(2))
		assert.Equal(t, "30.00", updated.Total.StringFixed(2))
	})

	t.Run("rejects edits on issued invoices", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)
		_, err = f.service.IssueInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)

		notes := "too late"
		_, err = f.service.UpdateInvoice(context.Background(), invoice.ID, &UpdateInvoiceInput{Notes: &notes})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestIssueInvoice(t *testing.T) {
	t.Run("assigns gapless sequential numbers per series", func(t *testing.T) {
		f := newInvoiceFixture(t)

		first, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)
		second, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)

		issued1, err := f.service.IssueInvoice(context.Background(), first.ID)
		require.NoError(t, err)
		issued2, err := f.service.IssueInvoice(context.Background(), second.ID)
		require.NoError(t, err)

		require.NotNil(t, issued1.Number)
		require.NotNil(t, issued2.Number)
		assert.Equal(t, "A-000001", *issued1.Number)
		assert.Equal(t, "A-000002", *issued2.Number)
		assert.Equal(t, enum.InvoiceStatusIssued, issued1.Status)
		assert.NotNil(t, issued1.IssuedAt)
	})

	t.Run("discards internal notes", func(t *testing.T) {
		f := newInvoiceFixture(t)

		input := f.draftInput()
		input.InternalNotes = "ask kitchen about the order"
		invoice, err := f.service.CreateInvoice(context.Background(), input)
		require.NoError(t, err)

		issued, err := f.service.IssueInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)
		assert.Empty(t, issued.InternalNotes)
	})

	t.Run("rejects a zero unit price", func(t *testing.T) {
		f := newInvoiceFixture(t)

		zero := decimal.Zero
		input := f.draftInput()
		input.Lines[0].UnitPrice = &zero

		invoice, err := f.service.CreateInvoice(context.Background(), input)
		require.NoError(t, err)

		_, err = f.service.IssueInvoice(context.Background(), invoice.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("rejects a due date before the invoice date", func(t *testing.T) {
		f := newInvoiceFixture(t)

		yesterday := time.Now().AddDate(0, 0, -1)
		input := f.draftInput()
		input.DueDate = &yesterday

		invoice, err := f.service.CreateInvoice(context.Background(), input)
		require.NoError(t, err)

		_, err = f.service.IssueInvoice(context.Background(), invoice.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("rejects double issuance", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)
		_, err = f.service.IssueInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)

		_, err = f.service.IssueInvoice(context.Background(), invoice.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestCancelInvoice(t *testing.T) {
	t.Run("cancellation is terminal and numbers are not reused", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)
		issued, err := f.service.IssueInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)
		require.Equal(t, "A-000001", *issued.Number)

		cancelled, posted, err := f.service.CancelInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusCancelled, cancelled.Status)
		assert.Zero(t, posted)

		// A cancelled invoice keeps its number; the next draw skips it.
		assert.Equal(t, "A-000001", *cancelled.Number)
		next, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)
		nextIssued, err := f.service.IssueInvoice(context.Background(), next.ID)
		require.NoError(t, err)
		assert.Equal(t, "A-000002", *nextIssued.Number)

		_, _, err = f.service.CancelInvoice(context.Background(), invoice.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("reports payments already posted to cash sessions", func(t *testing.T) {
		f := newInvoiceFixture(t)

		invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
		require.NoError(t, err)
		issued, err := f.service.IssueInvoice(context.Background(), invoice.ID)
		require.NoError(t, err)

		boxID := uuid.New()
		movementID := uuid.New()
		issued.Payments = append(issued.Payments,
			entity.Payment{
				InvoiceID:      issued.ID,
				Amount:         decimal.NewFromInt(10),
				Method:         enum.PaymentMethodCash,
				CashBoxID:      &boxID,
				CashMovementID: &movementID,
			},
			// A cash payment that found no open session posted nothing
			// and must not be counted.
			entity.Payment{
				InvoiceID: issued.ID,
				Amount:    decimal.NewFromInt(5),
				Method:    enum.PaymentMethodCash,
				CashBoxID: &boxID,
			})
		issued.Status = enum.InvoiceStatusPartiallyPaid
		require.NoError(t, f.invoiceRepo.Save(context.Background(), issued))

		_, posted, err := f.service.CancelInvoice(context.Background(), issued.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, posted)
	})
}

func TestGetReceipt(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice, err := f.service.CreateInvoice(context.Background(), f.draftInput())
	require.NoError(t, err)
	_, err = f.service.IssueInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)

	receipt, err := f.service.GetReceipt(context.Background(), invoice.ID)
	require.NoError(t, err)

	assert.Equal(t, "Mesa Facil", receipt.Header.StoreName)
	assert.Equal(t, "A-000001", receipt.Number)
	assert.Len(t, receipt.Items, 1)
	assert.Equal(t, "39.63", receipt.Total.StringFixed(2))
	assert.Equal(t, "39.63", receipt.Balance.StringFixed(2))
}
