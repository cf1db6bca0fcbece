package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/mesafacil/backoffice-api/pkg/keyedmutex"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cashBoxFixture struct {
	service      *CashBoxService
	cashBoxRepo  *memCashBoxRepo
	sessionRepo  *memSessionRepo
	movementRepo *memMovementRepo
	userID       uuid.UUID
}

func newCashBoxFixture(t *testing.T) *cashBoxFixture {
	t.Helper()

	cashBoxRepo := newMemCashBoxRepo()
	movementRepo := newMemMovementRepo()
	sessionRepo := newMemSessionRepo(movementRepo)

	svc := NewCashBoxService(
		cashBoxRepo, sessionRepo, movementRepo,
		nopTransactor{}, keyedmutex.New(), testLogger())

	return &cashBoxFixture{
		service:      svc,
		cashBoxRepo:  cashBoxRepo,
		sessionRepo:  sessionRepo,
		movementRepo: movementRepo,
		userID:       uuid.New(),
	}
}

func (f *cashBoxFixture) openBox(t *testing.T, initial string) (uuid.UUID, uuid.UUID) {
	t.Helper()

	box, err := f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "MAIN", Name: "Main"})
	require.NoError(t, err)
	session, err := f.service.OpenSession(context.Background(), box.ID, decimal.RequireFromString(initial), f.userID, "")
	require.NoError(t, err)
	return box.ID, session.ID
}

func TestCreateCashBox(t *testing.T) {
	f := newCashBoxFixture(t)

	box, err := f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "MAIN", Name: "Main register"})
	require.NoError(t, err)
	assert.Equal(t, enum.CashBoxStatusClosed, box.Status)

	_, err = f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "MAIN", Name: "Duplicate"})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "", Name: ""})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestOpenSession(t *testing.T) {
	t.Run("opens with an opening audit movement", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, sessionID := f.openBox(t, "100000")

		box, err := f.service.GetCashBox(context.Background(), boxID)
		require.NoError(t, err)
		assert.Equal(t, enum.CashBoxStatusOpen, box.Status)
		require.NotNil(t, box.CurrentSessionID)
		assert.Equal(t, sessionID, *box.CurrentSessionID)

		movements, err := f.movementRepo.ListBySession(context.Background(), sessionID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, enum.MovementTypeOpening, movements[0].Type)
		assert.Equal(t, "100000.00", movements[0].Amount.StringFixed(2))
	})

	t.Run("a zero float opens without an audit movement", func(t *testing.T) {
		f := newCashBoxFixture(t)
		_, sessionID := f.openBox(t, "0")

		movements, err := f.movementRepo.ListBySession(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Empty(t, movements)
	})

	t.Run("rejects a second open on the same box", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, _ := f.openBox(t, "100000")

		_, err := f.service.OpenSession(context.Background(), boxID, decimal.Zero, f.userID, "")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("exactly one concurrent open wins", func(t *testing.T) {
		f := newCashBoxFixture(t)
		box, err := f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "MAIN", Name: "Main"})
		require.NoError(t, err)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.OpenSession(context.Background(), box.ID, decimal.Zero, f.userID, "")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var opened, rejected int
		for err := range errs {
			if err == nil {
				opened++
			} else {
				assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
				rejected++
			}
		}
		assert.Equal(t, 1, opened)
		assert.Equal(t, 1, rejected)

		reloaded, err := f.service.GetCashBox(context.Background(), box.ID)
		require.NoError(t, err)
		assert.Equal(t, enum.CashBoxStatusOpen, reloaded.Status)
		assert.NotNil(t, reloaded.CurrentSessionID)
	})

	t.Run("rejects a negative initial amount", func(t *testing.T) {
		f := newCashBoxFixture(t)
		box, err := f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "MAIN", Name: "Main"})
		require.NoError(t, err)

		_, err = f.service.OpenSession(context.Background(), box.ID, decimal.NewFromInt(-1), f.userID, "")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestAddMovement(t *testing.T) {
	t.Run("appends manual movements to the open session", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, sessionID := f.openBox(t, "100000")

		_, err := f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeIncome, decimal.RequireFromString("50000"), "", "change from office", f.userID)
		require.NoError(t, err)
		_, err = f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeExpense, decimal.RequireFromString("12000"), "", "courier", f.userID)
		require.NoError(t, err)

		movements, err := f.movementRepo.ListBySession(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Len(t, movements, 3) // opening + income + expense
	})

	t.Run("rejects reserved and unknown types", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, _ := f.openBox(t, "100000")

		_, err := f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeOpening, decimal.NewFromInt(10), "", "", f.userID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))

		_, err = f.service.AddMovement(context.Background(), boxID,
			"TRANSFER", decimal.NewFromInt(10), "", "", f.userID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, _ := f.openBox(t, "100000")

		_, err := f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeIncome, decimal.Zero, "", "", f.userID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("rejects movements on a closed box", func(t *testing.T) {
		f := newCashBoxFixture(t)
		box, err := f.service.CreateCashBox(context.Background(), &CreateCashBoxInput{Code: "MAIN", Name: "Main"})
		require.NoError(t, err)

		_, err = f.service.AddMovement(context.Background(), box.ID,
			enum.MovementTypeIncome, decimal.NewFromInt(10), "", "", f.userID)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestCloseSession(t *testing.T) {
	t.Run("reconciles expected against the counted amount", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, _ := f.openBox(t, "100000")

		_, err := f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeIncome, decimal.RequireFromString("50000"), "", "", f.userID)
		require.NoError(t, err)
		_, err = f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeExpense, decimal.RequireFromString("12000"), "", "", f.userID)
		require.NoError(t, err)

		session, err := f.service.CloseSession(context.Background(), boxID,
			decimal.RequireFromString("138000"), f.userID, "")
		require.NoError(t, err)

		require.NotNil(t, session.ExpectedAmount)
		assert.Equal(t, "138000.00", session.ExpectedAmount.StringFixed(2))
		assert.Equal(t, "0.00", session.Difference.StringFixed(2))
		assert.True(t, session.IsClosed())

		box, err := f.service.GetCashBox(context.Background(), boxID)
		require.NoError(t, err)
		assert.Equal(t, enum.CashBoxStatusClosed, box.Status)
		assert.Nil(t, box.CurrentSessionID)
	})

	t.Run("records shortages as a negative difference", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, _ := f.openBox(t, "100000")

		session, err := f.service.CloseSession(context.Background(), boxID,
			decimal.RequireFromString("95000"), f.userID, "missing bills")
		require.NoError(t, err)

		assert.Equal(t, "100000.00", session.ExpectedAmount.StringFixed(2))
		assert.Equal(t, "-5000.00", session.Difference.StringFixed(2))
	})

	t.Run("closing is terminal for the session and the box", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, _ := f.openBox(t, "100000")

		_, err := f.service.CloseSession(context.Background(), boxID, decimal.RequireFromString("100000"), f.userID, "")
		require.NoError(t, err)

		_, err = f.service.CloseSession(context.Background(), boxID, decimal.RequireFromString("100000"), f.userID, "")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))

		_, err = f.service.AddMovement(context.Background(), boxID,
			enum.MovementTypeIncome, decimal.NewFromInt(10), "", "", f.userID)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("the closing audit movement does not skew reconciliation", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, sessionID := f.openBox(t, "100000")

		session, err := f.service.CloseSession(context.Background(), boxID,
			decimal.RequireFromString("100000"), f.userID, "")
		require.NoError(t, err)
		assert.Equal(t, "0.00", session.Difference.StringFixed(2))

		movements, err := f.movementRepo.ListBySession(context.Background(), sessionID)
		require.NoError(t, err)
		require.Len(t, movements, 2) // opening + closing
		assert.Equal(t, enum.MovementTypeClosing, movements[1].Type)
	})

	t.Run("a box can be reopened after closing", func(t *testing.T) {
		f := newCashBoxFixture(t)
		boxID, firstSession := f.openBox(t, "100000")

		_, err := f.service.CloseSession(context.Background(), boxID, decimal.RequireFromString("100000"), f.userID, "")
		require.NoError(t, err)

		second, err := f.service.OpenSession(context.Background(), boxID, decimal.NewFromInt(20000), f.userID, "")
		require.NoError(t, err)
		assert.NotEqual(t, firstSession, second.ID)
	})
}

func TestListSessions(t *testing.T) {
	f := newCashBoxFixture(t)
	boxID, _ := f.openBox(t, "100000")

	_, err := f.service.CloseSession(context.Background(), boxID, decimal.RequireFromString("100000"), f.userID, "")
	require.NoError(t, err)
	_, err = f.service.OpenSession(context.Background(), boxID, decimal.Zero, f.userID, "")
	require.NoError(t, err)

	result, err := f.service.ListSessions(context.Background(), boxID, pagination.DefaultPagination())
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}
