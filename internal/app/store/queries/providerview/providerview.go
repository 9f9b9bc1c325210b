// Package providerview assembles the presentation form of provider
// records: the stored service and review references resolved into full
// documents. It is a read model over three collections and never
// writes.
package providerview

import (
	"context"
	"sync"

	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceLookup resolves service IDs to service records. Implemented by
// servicestore.Store; tests substitute fakes.
type ServiceLookup interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error)
}

// ReviewLookup resolves review IDs to review records.
type ReviewLookup interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error)
}

// Provider is a provider record with its relations expanded for
// presentation. Services and Reviews are always non-nil so the JSON
// form carries arrays, matching what API clients expect.
type Provider struct {
	models.Provider
	Services []models.Service `json:"services"`
	Reviews  []models.Review  `json:"reviews"`
}

// Expander expands provider records. Both lookups are injected at
// construction so the directory handlers and tests share one code path.
type Expander struct {
	services ServiceLookup
	reviews  ReviewLookup
}

func NewExpander(services ServiceLookup, reviews ReviewLookup) *Expander {
	return &Expander{services: services, reviews: reviews}
}

// Expand resolves the service and review references of every provider
// in one batched query per collection. The two queries are independent
// and run concurrently.
//
// A reference that resolves to nothing is dropped from the expanded
// record; provider documents hold weak references and dangling IDs are
// normal. Only a failed lookup query is an error.
func (e *Expander) Expand(ctx context.Context, providers []models.Provider) ([]Provider, error) {
	var serviceIDs, reviewIDs []primitive.ObjectID
	for _, p := range providers {
		serviceIDs = append(serviceIDs, p.ServiceIDs...)
		reviewIDs = append(reviewIDs, p.ReviewIDs...)
	}

	var (
		wg       sync.WaitGroup
		services []models.Service
		reviews  []models.Review
		svcErr   error
		revErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		services, svcErr = e.services.GetByIDs(ctx, serviceIDs)
	}()
	go func() {
		defer wg.Done()
		reviews, revErr = e.reviews.GetByIDs(ctx, reviewIDs)
	}()
	wg.Wait()

	if svcErr != nil {
		return nil, svcErr
	}
	if revErr != nil {
		return nil, revErr
	}

	svcByID := make(map[primitive.ObjectID]models.Service, len(services))
	for _, s := range services {
		svcByID[s.ID] = s
	}
	revByID := make(map[primitive.ObjectID]models.Review, len(reviews))
	for _, r := range reviews {
		revByID[r.ID] = r
	}

	expanded := make([]Provider, 0, len(providers))
	for _, p := range providers {
		ep := Provider{
			Provider: p,
			Services: []models.Service{},
			Reviews:  []models.Review{},
		}
		for _, id := range p.ServiceIDs {
			if s, ok := svcByID[id]; ok {
				ep.Services = append(ep.Services, s)
			}
		}
		for _, id := range p.ReviewIDs {
			if r, ok := revByID[id]; ok {
				ep.Reviews = append(ep.Reviews, r)
			}
		}
		expanded = append(expanded, ep)
	}
	return expanded, nil
}

// ExpandOne is Expand for a single record.
func (e *Expander) ExpandOne(ctx context.Context, p *models.Provider) (*Provider, error) {
	expanded, err := e.Expand(ctx, []models.Provider{*p})
	if err != nil {
		return nil, err
	}
	return &expanded[0], nil
}
