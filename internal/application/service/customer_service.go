package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
)

// CustomerService handles the customer directory. Invoices only read it
// at creation time; edits here never touch existing snapshots.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name           string
	DocumentType   string
	DocumentNumber string
	Address        *string
	Phone          *string
	Email          *string
}

// UpdateCustomerInput represents a customer patch
type UpdateCustomerInput struct {
	Name           *string
	DocumentType   *string
	DocumentNumber *string
	Address        *string
	Phone          *string
	Email          *string
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	if input.Name == "" {
		return nil, apperror.NewFieldError("name", "must not be empty")
	}
	customer := &entity.Customer{
		Name:           input.Name,
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		Address:        input.Address,
		Phone:          input.Phone,
		Email:          input.Email,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// UpdateCustomer applies a patch to a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewFieldError("name", "must not be empty")
		}
		customer.Name = *input.Name
	}
	if input.DocumentType != nil {
		customer.DocumentType = *input.DocumentType
	}
	if input.DocumentNumber != nil {
		customer.DocumentNumber = *input.DocumentNumber
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Email != nil {
		customer.Email = input.Email
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer from the directory. Invoices keep
// their snapshots regardless.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// ListCustomers lists customers with filtering
func (s *CustomerService) ListCustomers(ctx context.Context, params *repository.CustomerFilterParams) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}
