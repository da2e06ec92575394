package models

import (
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
)

// A sale day is partitioned into SlotsPerDay fixed, contiguous windows of
// equal length. Slots are numbered 1..SlotsPerDay and computed in UTC.
const (
	SlotsPerDay = 8
	SlotLength  = 24 * time.Hour / SlotsPerDay
)

// WindowForSlot returns the half-open [start, end) window of the given slot
// on the UTC day containing date. Slot must be within 1..SlotsPerDay.
func WindowForSlot(date time.Time, slot int) (time.Time, time.Time, error) {
	if slot < 1 || slot > SlotsPerDay {
		return time.Time{}, time.Time{}, utils.ErrInvalidSlotAlignment
	}
	d := date.UTC()
	dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	start := dayStart.Add(time.Duration(slot-1) * SlotLength)
	return start, start.Add(SlotLength), nil
}

// SlotForInstant returns the slot index whose window starts exactly at the
// given instant. Instants that are not a slot boundary return an error, so a
// caller supplying a (start, end) pair instead of (date, slot) is validated
// against the computed calendar.
func SlotForInstant(start time.Time) (int, error) {
	s := start.UTC()
	dayStart := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	offset := s.Sub(dayStart)
	if offset%SlotLength != 0 {
		return 0, utils.ErrInvalidSlotAlignment
	}
	return int(offset/SlotLength) + 1, nil
}

// ValidateWindow checks that (start, end) is exactly one calendar window and
// returns its slot index.
func ValidateWindow(start, end time.Time) (int, error) {
	slot, err := SlotForInstant(start)
	if err != nil {
		return 0, err
	}
	if !end.UTC().Equal(start.UTC().Add(SlotLength)) {
		return 0, utils.ErrInvalidSlotAlignment
	}
	return slot, nil
}
