package scheduler

import (
	"sort"
	"time"

	"github.com/dubplan/backend/internal/models"
)

// SlotPool is the open studio capacity of one scheduling run. Slots are kept
// ordered by start time and shrink from the front as they are consumed.
type SlotPool struct {
	slots []models.Interval
}

func NewSlotPool(slots []models.Interval) *SlotPool {
	p := &SlotPool{slots: append([]models.Interval(nil), slots...)}
	p.Sort()
	return p
}

func (p *SlotPool) Len() int {
	return len(p.slots)
}

func (p *SlotPool) At(i int) models.Interval {
	return p.slots[i]
}

// Slots returns a copy of the remaining capacity.
func (p *SlotPool) Slots() []models.Interval {
	return append([]models.Interval(nil), p.slots...)
}

// Consume takes d from the head of slot i, removing the slot once nothing is left.
// It returns the consumed interval.
func (p *SlotPool) Consume(i int, d time.Duration) models.Interval {
	slot := p.slots[i]
	used := models.Interval{Start: slot.Start, End: slot.Start.Add(d)}
	if used.End.Before(slot.End) {
		p.slots[i].Start = used.End
	} else {
		p.slots = append(p.slots[:i], p.slots[i+1:]...)
	}
	return used
}

func (p *SlotPool) Sort() {
	sort.SliceStable(p.slots, func(i, j int) bool {
		return p.slots[i].Start.Before(p.slots[j].Start)
	})
}
