package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// AddressLookup resolves a postal code to an address
type AddressLookup interface {
	CEP(ctx context.Context, cep string) (valueobject.Address, error)
}

// OpenBookingChecker reports whether a customer has bookings that are not finished
type OpenBookingChecker interface {
	HasOpenForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	bookings     OpenBookingChecker
	lookup       AddressLookup
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService. lookup may be nil
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	bookings OpenBookingChecker,
	lookup AddressLookup,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		bookings:     bookings,
		lookup:       lookup,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	req.Address = s.fillAddress(ctx, req.Address)
	customer, err := partner.NewCustomer(tenantID, req.profile())
	if err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByDocument(ctx, tenantID, customer.Document, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this document already exists")
	}

	customer.SetCreatedBy(actorID)
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	shared.StampActor(customer.GetDomainEvents(), actorID)
	s.publish(ctx, customer)

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("type", string(customer.Type)),
	)
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers ordered by name
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, f CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = strings.TrimSpace(f.Search)
	if f.Type != "" {
		kind := partner.CustomerType(strings.ToUpper(f.Type))
		if kind != partner.CustomerTypeIndividual && kind != partner.CustomerTypeCompany {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown customer type %q", f.Type)
		}
		filter = filter.With("type", string(kind))
	}
	if f.Active != nil {
		filter = filter.With("active", *f.Active)
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update updates an existing customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID, actorID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	req.Address = s.fillAddress(ctx, req.Address)
	if err := customer.Update(req.profile()); err != nil {
		return nil, err
	}
	exists, err := s.customerRepo.ExistsByDocument(ctx, tenantID, customer.Document, &customer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this document already exists")
	}
	if req.Active != nil {
		if *req.Active {
			customer.Activate()
		} else {
			customer.Deactivate()
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	shared.StampActor(customer.GetDomainEvents(), actorID)
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer without open bookings
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}
	open, err := s.bookings.HasOpenForCustomer(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if open {
		return shared.NewDomainError("CUSTOMER_IN_USE", "Customer has open bookings and cannot be deleted")
	}
	if err := s.customerRepo.DeleteForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}
	s.logger.Info("Customer deleted", zap.String("customer_id", customerID.String()))
	return nil
}

// fillAddress completes an address that only carries a zip code. Lookup
// failures keep the address as typed
func (s *CustomerService) fillAddress(ctx context.Context, addr valueobject.Address) valueobject.Address {
	addr.ZipCode = valueobject.OnlyDigits(addr.ZipCode)
	if s.lookup == nil || !addr.NeedsLookup() || !valueobject.IsValidCEP(addr.ZipCode) {
		return addr
	}
	found, err := s.lookup.CEP(ctx, addr.ZipCode)
	if err != nil {
		s.logger.Warn("CEP lookup failed", zap.String("cep", addr.ZipCode), zap.Error(err))
		return addr
	}
	return addr.Merge(found)
}

func (s *CustomerService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}
