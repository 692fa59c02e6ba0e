package roomymem

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/castaneai/roomy"
)

type grid struct {
	mu      sync.RWMutex
	slots   [roomy.DaysPerWeek][roomy.HoursPerDay]string
	removed bool
}

type roomStore struct {
	policy roomy.SlotPolicy
	rooms  map[string]*grid
	mu     sync.RWMutex
}

type RoomStoreOption func(*roomStore)

func WithSlotPolicy(policy roomy.SlotPolicy) RoomStoreOption {
	return func(s *roomStore) {
		s.policy = policy
	}
}

// NewRoomStore returns a RoomStore that keeps every grid in memory.
// Slot operations lock only the room they touch.
func NewRoomStore(opts ...RoomStoreOption) roomy.RoomStore {
	s := &roomStore{policy: roomy.SlotPolicyExact, rooms: make(map[string]*grid)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *roomStore) AddRoom(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[name]; ok {
		return roomy.Errorf(roomy.ErrorStatusAlreadyExists, "room %s already exists", name)
	}
	s.rooms[name] = &grid{}
	return nil
}

func (s *roomStore) RemoveRoom(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	s.mu.Lock()
	g, ok := s.rooms[name]
	if !ok {
		s.mu.Unlock()
		return roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", name)
	}
	delete(s.rooms, name)
	s.mu.Unlock()

	// a reservation that looked the grid up before the delete must not succeed afterwards
	g.mu.Lock()
	g.removed = true
	g.mu.Unlock()
	return nil
}

func (s *roomStore) ReserveSlot(ctx context.Context, req roomy.ReserveSlotRequest) (*roomy.ReserveSlotResponse, error) {
	if req.Name == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	r, err := roomy.NewSlotRange(req.Day, req.Hour, req.Duration, s.policy)
	if err != nil {
		return nil, err
	}
	holdID := req.HoldID
	if holdID == "" {
		holdID = uuid.NewString()
	}

	g, err := s.lookup(req.Name)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.removed {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", req.Name)
	}
	row := &g.slots[r.DayIndex()]
	first := r.HourIndex()
	for i := first; i < first+r.Span; i++ {
		if row[i] != "" && row[i] != holdID {
			return nil, roomy.Errorf(roomy.ErrorStatusSlotConflict, "room %s is not available on day %d at %d:00", req.Name, req.Day, i+roomy.FirstHour)
		}
	}
	for i := first; i < first+r.Span; i++ {
		row[i] = holdID
	}
	return &roomy.ReserveSlotResponse{Name: req.Name, Day: r.Day, Hour: r.Hour, Hours: r.Span, HoldID: holdID}, nil
}

func (s *roomStore) ReleaseSlot(ctx context.Context, req roomy.ReleaseSlotRequest) (*roomy.ReleaseSlotResponse, error) {
	if req.Name == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	if req.HoldID == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing hold id"))
	}
	g, err := s.lookup(req.Name)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.removed {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", req.Name)
	}
	released := 0
	for d := range g.slots {
		for h := range g.slots[d] {
			if g.slots[d][h] == req.HoldID {
				g.slots[d][h] = ""
				released++
			}
		}
	}
	return &roomy.ReleaseSlotResponse{Released: released}, nil
}

func (s *roomStore) QueryAvailability(ctx context.Context, req roomy.QueryAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	if req.Name == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	days, err := daysOf(req.Day)
	if err != nil {
		return nil, err
	}
	g, err := s.lookup(req.Name)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.removed {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", req.Name)
	}
	resp := &roomy.QueryAvailabilityResponse{Name: req.Name}
	for _, day := range days {
		free := []int{}
		for i, holder := range g.slots[day-1] {
			if holder == "" {
				free = append(free, i+roomy.FirstHour)
			}
		}
		resp.Days = append(resp.Days, roomy.DayAvailability{Day: day, FreeHours: free})
	}
	return resp, nil
}

func (s *roomStore) ListRooms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *roomStore) lookup(name string) (*grid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.rooms[name]
	if !ok {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", name)
	}
	return g, nil
}

func daysOf(day int) ([]int, error) {
	if day == 0 {
		days := make([]int, 0, roomy.DaysPerWeek)
		for d := 1; d <= roomy.DaysPerWeek; d++ {
			days = append(days, d)
		}
		return days, nil
	}
	if err := roomy.ValidateDay(day); err != nil {
		return nil, err
	}
	return []int{day}, nil
}
