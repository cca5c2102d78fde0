package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	domainavailability "staydesk/internal/domain/availability"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

// PropertyRepository keeps property snapshots in memory. Stored values are
// copies; callers never share state with the store.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.PropertyID]domainproperties.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperties.PropertyID]domainproperties.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperties.ErrPropertyNotFound
	}
	return &p, nil
}

func (r *PropertyRepository) Save(ctx context.Context, property *domainproperties.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[property.ID]; ok && stored.Version != property.Version {
		return domainproperties.ErrConcurrentUpdate
	}
	property.Version++
	snapshot := *property
	snapshot.EventRecorder = domainproperties.Property{}.EventRecorder
	r.items[property.ID] = snapshot
	return nil
}

// SeasonalRateRepository indexes rates by property.
type SeasonalRateRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.PropertyID]map[domainpricing.SeasonalRateID]domainpricing.SeasonalRate
}

func NewSeasonalRateRepository() *SeasonalRateRepository {
	return &SeasonalRateRepository{items: make(map[domainproperties.PropertyID]map[domainpricing.SeasonalRateID]domainpricing.SeasonalRate)}
}

// ForProperty returns the rates whose window touches window, ordered by id.
func (r *SeasonalRateRepository) ForProperty(ctx context.Context, id domainproperties.PropertyID, window daterange.DateRange) ([]domainpricing.SeasonalRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainpricing.SeasonalRate
	for _, rate := range r.items[id] {
		if rate.Intersects(window) {
			rate.ApplicableDays = slices.Clone(rate.ApplicableDays)
			out = append(out, rate)
		}
	}
	slices.SortFunc(out, func(a, b domainpricing.SeasonalRate) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *SeasonalRateRepository) Save(ctx context.Context, rate domainpricing.SeasonalRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.items[rate.PropertyID]
	if !ok {
		byID = make(map[domainpricing.SeasonalRateID]domainpricing.SeasonalRate)
		r.items[rate.PropertyID] = byID
	}
	// a rate moved to another property must not linger under the old one
	for pid, rates := range r.items {
		if pid != rate.PropertyID {
			delete(rates, rate.ID)
		}
	}
	rate.ApplicableDays = slices.Clone(rate.ApplicableDays)
	byID[rate.ID] = rate
	return nil
}

// BookingRepository stores booking intervals keyed by booking id.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainavailability.BookingID]domainavailability.BookingInterval
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainavailability.BookingID]domainavailability.BookingInterval)}
}

func (r *BookingRepository) ForProperty(ctx context.Context, id domainproperties.PropertyID, window daterange.DateRange) ([]domainavailability.BookingInterval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainavailability.BookingInterval
	for _, b := range r.items {
		if b.PropertyID == id && b.Range.Overlaps(window) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domainavailability.BookingInterval) int {
		if c := a.Range.CheckIn.Compare(b.Range.CheckIn); c != 0 {
			return c
		}
		return cmp.Compare(a.BookingID, b.BookingID)
	})
	return out, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainavailability.BookingID) (*domainavailability.BookingInterval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainavailability.ErrIntervalNotFound
	}
	return &b, nil
}

func (r *BookingRepository) Save(ctx context.Context, interval *domainavailability.BookingInterval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := *interval
	snapshot.EventRecorder = domainavailability.BookingInterval{}.EventRecorder
	r.items[interval.BookingID] = snapshot
	return nil
}

var (
	_ domainproperties.Repository          = (*PropertyRepository)(nil)
	_ domainpricing.SeasonalRateRepository = (*SeasonalRateRepository)(nil)
	_ domainavailability.BookingRepository = (*BookingRepository)(nil)
)
