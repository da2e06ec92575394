package models_test

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/models"
	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
)

func TestWindowForSlotCoversTheDayWithoutGaps(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	var prevEnd time.Time
	for slot := 1; slot <= models.SlotsPerDay; slot++ {
		start, end, err := models.WindowForSlot(date, slot)
		if err != nil {
			t.Fatalf("WindowForSlot(slot=%d): %v", slot, err)
		}
		if end.Sub(start) != models.SlotLength {
			t.Fatalf("slot %d: window length %s, want %s", slot, end.Sub(start), models.SlotLength)
		}
		if slot == 1 && !start.Equal(date) {
			t.Fatalf("slot 1 should start at midnight UTC; got %s", start)
		}
		if slot > 1 && !start.Equal(prevEnd) {
			t.Fatalf("slot %d: start %s does not abut previous end %s", slot, start, prevEnd)
		}
		prevEnd = end
	}
	if !prevEnd.Equal(date.Add(24 * time.Hour)) {
		t.Fatalf("last slot should end at next midnight; got %s", prevEnd)
	}
}

func TestWindowForSlotRejectsOutOfRangeSlots(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	for _, slot := range []int{0, -1, models.SlotsPerDay + 1, 99} {
		_, _, err := models.WindowForSlot(date, slot)
		if !errors.Is(err, utils.ErrInvalidSlotAlignment) {
			t.Fatalf("WindowForSlot(slot=%d): expected alignment error, got %v", slot, err)
		}
	}
}

func TestWindowForSlotNormalizesToUTCDay(t *testing.T) {
	// A timestamp with a non-UTC zone must resolve against its UTC day, not
	// the local calendar day.
	yangon := time.FixedZone("MMT", int((6*time.Hour + 30*time.Minute).Seconds()))
	local := time.Date(2026, 9, 15, 1, 0, 0, 0, yangon) // 2026-09-14 18:30 UTC

	start, _, err := models.WindowForSlot(local, 1)
	if err != nil {
		t.Fatalf("WindowForSlot: %v", err)
	}
	want := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected slot 1 start %s; got %s", want, start)
	}
}

func TestSlotForInstantRoundTrips(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	for slot := 1; slot <= models.SlotsPerDay; slot++ {
		start, _, err := models.WindowForSlot(date, slot)
		if err != nil {
			t.Fatalf("WindowForSlot(slot=%d): %v", slot, err)
		}
		got, err := models.SlotForInstant(start)
		if err != nil {
			t.Fatalf("SlotForInstant(%s): %v", start, err)
		}
		if got != slot {
			t.Fatalf("SlotForInstant(%s) = %d, want %d", start, got, slot)
		}
	}
}

func TestSlotForInstantRejectsMisalignedInstants(t *testing.T) {
	base := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{
		time.Minute,
		models.SlotLength - time.Second,
		models.SlotLength + time.Nanosecond,
	} {
		_, err := models.SlotForInstant(base.Add(offset))
		if !errors.Is(err, utils.ErrInvalidSlotAlignment) {
			t.Fatalf("SlotForInstant(+%s): expected alignment error, got %v", offset, err)
		}
	}
}

func TestValidateWindowRequiresExactlyOneSlot(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end, err := models.WindowForSlot(date, 3)
	if err != nil {
		t.Fatalf("WindowForSlot: %v", err)
	}

	slot, err := models.ValidateWindow(start, end)
	if err != nil || slot != 3 {
		t.Fatalf("ValidateWindow(exact) = (%d, %v), want (3, nil)", slot, err)
	}

	// Two slots wide.
	if _, err := models.ValidateWindow(start, end.Add(models.SlotLength)); !errors.Is(err, utils.ErrInvalidSlotAlignment) {
		t.Fatalf("ValidateWindow(double width): expected alignment error, got %v", err)
	}
	// Truncated window.
	if _, err := models.ValidateWindow(start, end.Add(-time.Minute)); !errors.Is(err, utils.ErrInvalidSlotAlignment) {
		t.Fatalf("ValidateWindow(short): expected alignment error, got %v", err)
	}
	// Misaligned start.
	if _, err := models.ValidateWindow(start.Add(time.Minute), end.Add(time.Minute)); !errors.Is(err, utils.ErrInvalidSlotAlignment) {
		t.Fatalf("ValidateWindow(shifted): expected alignment error, got %v", err)
	}
}
