package pricing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/catalog"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// ServiceConfig holds the pricing policy knobs the service layer needs
type ServiceConfig struct {
	// SignificantChangeThresholdPercent is the percentage-point threshold
	// above which a price movement is flagged as significant.
	SignificantChangeThresholdPercent decimal.Decimal
	// GenerationWorkers bounds the concurrency of batch generation.
	GenerationWorkers int
}

// EffectiveRuleResolver resolves the pricing rule for a segment on a date
type EffectiveRuleResolver interface {
	ResolveEffectiveRule(ctx context.Context, segment partner.CustomerSegment, asOf time.Time) (*pricing.PricingRule, error)
}

// PriceListService handles price list generation and lifecycle operations
type PriceListService struct {
	customerRepo partner.CustomerRepository
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	listRepo     pricing.CustomerPriceListRepository
	ruleResolver EffectiveRuleResolver
	generator    *pricing.PriceListGenerator
	logger       *zap.Logger
	cfg          ServiceConfig
}

// NewPriceListService creates a new PriceListService
func NewPriceListService(
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	listRepo pricing.CustomerPriceListRepository,
	ruleResolver EffectiveRuleResolver,
	generator *pricing.PriceListGenerator,
	logger *zap.Logger,
	cfg ServiceConfig,
) *PriceListService {
	if cfg.GenerationWorkers <= 0 {
		cfg.GenerationWorkers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceListService{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		listRepo:     listRepo,
		ruleResolver: ruleResolver,
		generator:    generator,
		logger:       logger,
		cfg:          cfg,
	}
}

// Generate builds and persists one customer's price list for a cycle. When a
// list for the same cycle already exists, the request fails unless Regenerate
// is set, in which case the old list is replaced.
func (s *PriceListService) Generate(ctx context.Context, req GeneratePriceListRequest) (*PriceListResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, shared.NewDomainError("INACTIVE_CUSTOMER", "Cannot generate a price list for an inactive customer")
	}

	existing, err := s.listRepo.FindByCustomerAndCycle(ctx, customer.ID, req.EffectiveAt)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if !req.Regenerate {
			return nil, shared.NewDomainError("ALREADY_GENERATED", "A price list for this customer and cycle already exists")
		}
		if err := s.listRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	rule, err := s.ruleResolver.ResolveEffectiveRule(ctx, customer.Segment, req.EffectiveAt)
	if err != nil {
		return nil, err
	}

	entries, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, customer, rule, entries, req.EffectiveAt, req.GeneratedBy)
	if err != nil {
		return nil, err
	}

	for i := range result.Skipped {
		skip := &result.Skipped[i]
		fields := []zap.Field{
			zap.String("customer_id", customer.ID.String()),
			zap.String("product_id", skip.ProductID.String()),
			zap.String("product_name", skip.ProductName),
			zap.String("reason", string(skip.Reason)),
		}
		if skip.Err != nil {
			fields = append(fields, zap.Error(skip.Err))
		}
		s.logger.Warn("product skipped during price list generation", fields...)
	}

	if err := s.listRepo.Save(ctx, result.List); err != nil {
		return nil, err
	}

	response := ToPriceListResponse(result.List, result.Skipped, s.cfg.SignificantChangeThresholdPercent)
	return &response, nil
}

// BatchGenerate builds price lists for every active customer. Customers are
// processed concurrently with a bounded worker count, and each customer is
// isolated: one failure never blocks the rest of the run.
func (s *PriceListService) BatchGenerate(ctx context.Context, req BatchGenerateRequest) (*BatchGenerateResponse, error) {
	customers, err := s.customerRepo.FindActive(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	response := &BatchGenerateResponse{
		Generated: make([]PriceListSummaryResponse, 0, len(customers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, s.cfg.GenerationWorkers)

	for i := range customers {
		if ctx.Err() != nil {
			break
		}
		customer := customers[i]

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			listResponse, genErr := s.Generate(ctx, GeneratePriceListRequest{
				CustomerID:  customer.ID,
				EffectiveAt: req.EffectiveAt,
				Regenerate:  req.Regenerate,
				GeneratedBy: req.GeneratedBy,
			})

			mu.Lock()
			defer mu.Unlock()
			if genErr != nil {
				response.Failures = append(response.Failures, BatchFailure{
					CustomerID:   customer.ID,
					CustomerName: customer.Name,
					Error:        genErr.Error(),
				})
				return
			}
			response.Generated = append(response.Generated, PriceListSummaryResponse{
				ID:                      listResponse.ID,
				CustomerID:              listResponse.CustomerID,
				Name:                    listResponse.Name,
				EffectiveFrom:           listResponse.EffectiveFrom,
				EffectiveUntil:          listResponse.EffectiveUntil,
				Status:                  listResponse.Status,
				TotalProducts:           listResponse.TotalProducts,
				AverageMarkupPercentage: listResponse.AverageMarkupPercentage,
				TotalListValue:          listResponse.TotalListValue,
				GeneratedAt:             listResponse.GeneratedAt,
			})
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return response, nil
}

// GetByID retrieves a price list with its items
func (s *PriceListService) GetByID(ctx context.Context, listID uuid.UUID) (*PriceListResponse, error) {
	list, err := s.listRepo.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	response := ToPriceListResponse(list, nil, s.cfg.SignificantChangeThresholdPercent)
	return &response, nil
}

// ListByCustomer retrieves a customer's price lists, newest cycle first
func (s *PriceListService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter PriceListListFilter) ([]PriceListSummaryResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "effective_from",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	lists, err := s.listRepo.FindByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return nil, err
	}

	return ToPriceListSummaryResponses(lists), nil
}

// Activate marks a draft list as the customer's current prices
func (s *PriceListService) Activate(ctx context.Context, listID uuid.UUID) (*PriceListResponse, error) {
	return s.transition(ctx, listID, (*pricing.CustomerPriceList).Activate)
}

// MarkSent records that the list was delivered to the customer
func (s *PriceListService) MarkSent(ctx context.Context, listID uuid.UUID) (*PriceListResponse, error) {
	return s.transition(ctx, listID, (*pricing.CustomerPriceList).MarkSent)
}

// Acknowledge records the customer's confirmation of the list
func (s *PriceListService) Acknowledge(ctx context.Context, listID uuid.UUID) (*PriceListResponse, error) {
	return s.transition(ctx, listID, (*pricing.CustomerPriceList).Acknowledge)
}

// Delete removes a price list. Only drafts can be deleted; anything past
// draft has been or may have been seen by the customer.
func (s *PriceListService) Delete(ctx context.Context, listID uuid.UUID) error {
	list, err := s.listRepo.FindByID(ctx, listID)
	if err != nil {
		return err
	}
	if list.Status != pricing.PriceListStatusDraft {
		return shared.NewDomainError("CANNOT_DELETE", "Only draft price lists can be deleted")
	}

	return s.listRepo.Delete(ctx, listID)
}

func (s *PriceListService) transition(ctx context.Context, listID uuid.UUID, apply func(*pricing.CustomerPriceList) error) (*PriceListResponse, error) {
	list, err := s.listRepo.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if err := apply(list); err != nil {
		return nil, err
	}

	if err := s.listRepo.Save(ctx, list); err != nil {
		return nil, err
	}

	response := ToPriceListResponse(list, nil, s.cfg.SignificantChangeThresholdPercent)
	return &response, nil
}

// loadCatalog returns every active product paired with its category
func (s *PriceListService) loadCatalog(ctx context.Context) ([]pricing.CatalogEntry, error) {
	products, err := s.productRepo.FindActive(ctx, shared.Filter{OrderBy: "sort_order", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}

	categoryIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for i := range products {
		if products[i].CategoryID != nil && !seen[*products[i].CategoryID] {
			seen[*products[i].CategoryID] = true
			categoryIDs = append(categoryIDs, *products[i].CategoryID)
		}
	}

	categories := make(map[uuid.UUID]*catalog.Category)
	if len(categoryIDs) > 0 {
		found, err := s.categoryRepo.FindByIDs(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			categories[found[i].ID] = &found[i]
		}
	}

	entries := make([]pricing.CatalogEntry, 0, len(products))
	for i := range products {
		entry := pricing.CatalogEntry{Product: &products[i]}
		if products[i].CategoryID != nil {
			entry.Category = categories[*products[i].CategoryID]
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
