package roomy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotPolicySpan(t *testing.T) {
	// duration=1 is a one-hour booking under the exact policy, two hours under the inclusive one
	require.Equal(t, 1, SlotPolicyExact.Span(1))
	require.Equal(t, 2, SlotPolicyInclusive.Span(1))
	require.Equal(t, 3, SlotPolicyExact.Span(3))
	require.Equal(t, 4, SlotPolicyInclusive.Span(3))
}

func TestParseSlotPolicy(t *testing.T) {
	p, err := ParseSlotPolicy("")
	require.NoError(t, err)
	require.Equal(t, SlotPolicyExact, p)

	p, err = ParseSlotPolicy("inclusive")
	require.NoError(t, err)
	require.Equal(t, SlotPolicyInclusive, p)

	_, err = ParseSlotPolicy("sometimes")
	require.Error(t, err)

	var decoded SlotPolicy
	require.NoError(t, decoded.Decode("exact"))
	require.Equal(t, SlotPolicyExact, decoded)
}

func TestNewSlotRange(t *testing.T) {
	r, err := NewSlotRange(2, 10, 1, SlotPolicyExact)
	require.NoError(t, err)
	require.Equal(t, []int{10}, r.Hours())
	require.Equal(t, 1, r.DayIndex())
	require.Equal(t, 1, r.HourIndex())

	r, err = NewSlotRange(2, 10, 1, SlotPolicyInclusive)
	require.NoError(t, err)
	require.Equal(t, []int{10, 11}, r.Hours())

	// last slot of the day
	r, err = NewSlotRange(7, 17, 1, SlotPolicyExact)
	require.NoError(t, err)
	require.Equal(t, 17, r.LastHour())
	_, err = NewSlotRange(7, 17, 1, SlotPolicyInclusive)
	require.True(t, ErrorHasStatus(err, ErrorStatusInvalidInput))

	// whole day
	r, err = NewSlotRange(1, 9, HoursPerDay, SlotPolicyExact)
	require.NoError(t, err)
	require.Len(t, r.Hours(), HoursPerDay)
	_, err = NewSlotRange(1, 9, HoursPerDay+1, SlotPolicyExact)
	require.True(t, ErrorHasStatus(err, ErrorStatusInvalidInput))

	for _, tc := range []struct{ day, hour, duration int }{
		{0, 10, 1},
		{8, 10, 1},
		{1, 8, 1},
		{1, 18, 1},
		{1, 10, 0},
		{1, 10, -2},
	} {
		_, err := NewSlotRange(tc.day, tc.hour, tc.duration, SlotPolicyExact)
		require.True(t, ErrorHasStatus(err, ErrorStatusInvalidInput), "%+v", tc)
	}
}
