package roomyotel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/castaneai/roomy"
)

type roomStore struct {
	roomy.RoomStore
	slotReservedCount   metric.Int64Counter
	slotReservedLatency metric.Float64Histogram
	slotReleasedCount   metric.Int64Counter
}

// NewRoomStore records slot reservations and releases made through inner,
// and observes the number of rooms and occupied slots.
func NewRoomStore(inner roomy.RoomStore, opts ...Option) (roomy.RoomStore, error) {
	meter := newOptions(opts).meterProvider.Meter(scopeName)
	slotReservedCount, err := meter.Int64Counter("roomy.slot_reserved.count_total")
	if err != nil {
		return nil, err
	}
	slotReservedLatency, err := meter.Float64Histogram("roomy.slot_reserved_latency_seconds",
		metric.WithUnit("s"), metric.WithExplicitBucketBoundaries(latencyHistogramBuckets...))
	if err != nil {
		return nil, err
	}
	slotReleasedCount, err := meter.Int64Counter("roomy.slot_released.count_total")
	if err != nil {
		return nil, err
	}
	rooms, err := meter.Int64ObservableGauge("roomy.rooms")
	if err != nil {
		return nil, err
	}
	occupied, err := meter.Int64ObservableGauge("roomy.occupied_slots")
	if err != nil {
		return nil, err
	}
	if _, err := meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		names, err := inner.ListRooms(ctx)
		if err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		o.ObserveInt64(rooms, int64(len(names)))
		for _, name := range names {
			resp, err := inner.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: name})
			if roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound) {
				// removed since ListRooms
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to query availability of %s: %w", name, err)
			}
			taken := roomy.DaysPerWeek * roomy.HoursPerDay
			for _, day := range resp.Days {
				taken -= len(day.FreeHours)
			}
			o.ObserveInt64(occupied, int64(taken), metric.WithAttributes(roomKey.String(name)))
		}
		return nil
	}, rooms, occupied); err != nil {
		return nil, err
	}
	return &roomStore{
		RoomStore:           inner,
		slotReservedCount:   slotReservedCount,
		slotReservedLatency: slotReservedLatency,
		slotReleasedCount:   slotReleasedCount,
	}, nil
}

func (s *roomStore) ReserveSlot(ctx context.Context, req roomy.ReserveSlotRequest) (resp *roomy.ReserveSlotResponse, err error) {
	start := time.Now()
	defer func() {
		attrs := metric.WithAttributes(statusAttr(err))
		s.slotReservedCount.Add(ctx, 1, attrs)
		s.slotReservedLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	}()
	return s.RoomStore.ReserveSlot(ctx, req)
}

func (s *roomStore) ReleaseSlot(ctx context.Context, req roomy.ReleaseSlotRequest) (*roomy.ReleaseSlotResponse, error) {
	resp, err := s.RoomStore.ReleaseSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	s.slotReleasedCount.Add(ctx, int64(resp.Released))
	return resp, nil
}
