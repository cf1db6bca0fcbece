package repository

import (
	"context"
	"errors"

	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	domainRepo "github.com/mesafacil/backoffice-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a new invoice series repository
func NewSeriesRepository(db *gorm.DB) domainRepo.SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) GetByCode(ctx context.Context, code string) (*entity.InvoiceSeries, error) {
	var series entity.InvoiceSeries
	err := dbFrom(ctx, r.db).First(&series, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

func (r *seriesRepository) Create(ctx context.Context, series *entity.InvoiceSeries) error {
	return dbFrom(ctx, r.db).Create(series).Error
}

func (r *seriesRepository) List(ctx context.Context) ([]entity.InvoiceSeries, error) {
	var series []entity.InvoiceSeries
	err := dbFrom(ctx, r.db).Order("code ASC").Find(&series).Error
	return series, err
}

// NextNumber draws the next value from the sequence with a single
// increment-and-return statement, so two concurrent issuances can never
// observe the same value. The series row is created on first use.
func (r *seriesRepository) NextNumber(ctx context.Context, code string) (int64, string, error) {
	db := dbFrom(ctx, r.db)

	for attempt := 0; attempt < 2; attempt++ {
		var series entity.InvoiceSeries
		res := db.Model(&series).
			Clauses(clause.Returning{}).
			Where("code = ?", code).
			UpdateColumn("last_value", gorm.Expr("last_value + 1"))
		if res.Error != nil {
			return 0, "", res.Error
		}
		if res.RowsAffected > 0 {
			return series.LastValue, series.FormatNumber(series.LastValue), nil
		}

		// First draw for this series: seed the row and retry the
		// increment if another writer got there first.
		seed := &entity.InvoiceSeries{Code: code, LastValue: 1}
		seedRes := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed)
		if seedRes.Error != nil {
			return 0, "", seedRes.Error
		}
		if seedRes.RowsAffected > 0 {
			return 1, seed.FormatNumber(1), nil
		}
	}

	return 0, "", errors.New("could not draw next invoice number for series " + code)
}
