package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotIntervalRoundTrip(t *testing.T) {
	timeSlots := DefaultTimeSlots()
	require.Len(t, timeSlots, SlotsPerDay)

	for slot := 1; slot <= SlotsPerDay; slot++ {
		interval, ok := SlotInterval(timeSlots, slot)
		require.True(t, ok)
		require.NotEmpty(t, interval)

		back, ok := SlotNumber(timeSlots, interval)
		require.True(t, ok)
		require.Equal(t, slot, back)
	}

	first, _ := SlotInterval(nil, 1)
	require.Equal(t, "9:00 - 9:55", first)
	last, _ := SlotInterval(nil, 7)
	require.Equal(t, "3:30 - 4:25", last)
}

func TestSlotLookupUnknown(t *testing.T) {
	_, ok := SlotNumber(nil, "8:00 - 8:55")
	require.False(t, ok)

	_, ok = SlotInterval(nil, 8)
	require.False(t, ok)
}

func TestIsLabStartSlot(t *testing.T) {
	for slot := 1; slot <= SlotsPerDay; slot++ {
		expected := slot == 1 || slot == 3 || slot == 5
		require.Equal(t, expected, IsLabStartSlot(slot), "时间段 %d", slot)
	}
}
