package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"visitscheduler/internal/domain"
)

// CapacityPool is the resolved capacity unit for a set of templates sharing a
// capacity group, or for a single unpooled template. Pools are built once per
// query and reused for every occurrence.
type CapacityPool struct {
	// Key is the capacity group name, or the template reference when unpooled.
	Key      string
	Capacity domain.SessionCapacity
	// MemberRefs are the references of every template whose bookings count
	// against this pool.
	MemberRefs []string
}

// PoolResolver builds capacity pools, fetching the full member set of each
// capacity group so pooled capacity includes members the current query did not
// otherwise touch.
type PoolResolver struct {
	templates domain.TemplateStore
}

func NewPoolResolver(templates domain.TemplateStore) *PoolResolver {
	return &PoolResolver{templates: templates}
}

// Resolve returns a pool per template reference. Templates sharing a capacity
// group map to the same *CapacityPool.
func (r *PoolResolver) Resolve(ctx context.Context, prisonCode string, templates []*domain.SessionTemplate) (map[string]*CapacityPool, error) {
	pools := make(map[string]*CapacityPool)
	byGroup := make(map[string]*CapacityPool)

	for _, tmpl := range templates {
		if tmpl.CapacityGroup == "" {
			pools[tmpl.Reference] = &CapacityPool{
				Key: tmpl.Reference,
				Capacity: domain.SessionCapacity{
					Open:   tmpl.OpenCapacity,
					Closed: tmpl.ClosedCapacity,
				},
				MemberRefs: []string{tmpl.Reference},
			}
			continue
		}
		pool, ok := byGroup[tmpl.CapacityGroup]
		if !ok {
			members, err := r.templates.ListByCapacityGroup(ctx, prisonCode, tmpl.CapacityGroup)
			if err != nil {
				return nil, fmt.Errorf("resolve capacity group %q at %s: %w", tmpl.CapacityGroup, prisonCode, err)
			}
			pool = &CapacityPool{Key: tmpl.CapacityGroup}
			for _, m := range members {
				pool.Capacity.Open += m.OpenCapacity
				pool.Capacity.Closed += m.ClosedCapacity
				pool.MemberRefs = append(pool.MemberRefs, m.Reference)
			}
			sort.Strings(pool.MemberRefs)
			byGroup[tmpl.CapacityGroup] = pool
		}
		pools[tmpl.Reference] = pool
	}
	return pools, nil
}

// slotKey identifies one concrete slot of one template.
type slotKey struct {
	TemplateRef string
	Date        string
	Start       domain.TimeOfDay
	End         domain.TimeOfDay
}

func newSlotKey(templateRef string, date time.Time, start, end domain.TimeOfDay) slotKey {
	return slotKey{
		TemplateRef: templateRef,
		Date:        date.Format(domain.DateFormat),
		Start:       start,
		End:         end,
	}
}

// BookingCounts indexes capacity-holding bookings by exact slot. Build it once
// per query from a single store read so every occurrence in a response is
// judged against the same snapshot.
type BookingCounts struct {
	counts map[slotKey]domain.SessionCapacity
}

// CountBookings tallies the records that hold capacity. Records with an
// UNKNOWN restriction never count against either channel.
func CountBookings(records []*domain.BookingRecord) *BookingCounts {
	counts := make(map[slotKey]domain.SessionCapacity)
	for _, rec := range records {
		if !rec.HoldsCapacity() {
			continue
		}
		key := newSlotKey(rec.TemplateReference, rec.Date, rec.StartTime, rec.EndTime)
		c := counts[key]
		switch rec.Restriction {
		case domain.RestrictionOpen:
			c.Open++
		case domain.RestrictionClosed:
			c.Closed++
		default:
			continue
		}
		counts[key] = c
	}
	return &BookingCounts{counts: counts}
}

// CountedFor aggregates the seats in use for the occurrence across its pool's
// member templates at the occurrence's slot.
func (b *BookingCounts) CountedFor(pool *CapacityPool, occ *domain.SessionOccurrence) domain.SessionCapacity {
	var total domain.SessionCapacity
	for _, ref := range pool.MemberRefs {
		c := b.counts[newSlotKey(ref, occ.Date, occ.Template.StartTime, occ.Template.EndTime)]
		total.Open += c.Open
		total.Closed += c.Closed
	}
	return total
}
