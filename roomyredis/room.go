package roomyredis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/castaneai/roomy"
)

var (
	addRoomScript = rueidis.NewLuaScript(`
local rooms_key = KEYS[1]
local grid_key = KEYS[2]
local name = ARGV[1]
if redis.call('SADD', rooms_key, name) == 0 then
	return 0
end
redis.call('DEL', grid_key)
return 1
`)
	removeRoomScript = rueidis.NewLuaScript(`
local rooms_key = KEYS[1]
local grid_key = KEYS[2]
local name = ARGV[1]
if redis.call('SREM', rooms_key, name) == 0 then
	return 0
end
redis.call('DEL', grid_key)
return 1
`)
	// every slot is checked before any is written, so a conflict leaves the grid untouched
	reserveSlotScript = rueidis.NewLuaScript(`
local rooms_key = KEYS[1]
local grid_key = KEYS[2]
local name = ARGV[1]
local hold_id = ARGV[2]
if redis.call('SISMEMBER', rooms_key, name) == 0 then
	return 'not_found'
end
for i = 3, #ARGV do
	local holder = redis.call('HGET', grid_key, ARGV[i])
	if holder and holder ~= hold_id then
		return 'conflict:' .. ARGV[i]
	end
end
for i = 3, #ARGV do
	redis.call('HSET', grid_key, ARGV[i], hold_id)
end
return 'ok'
`)
	releaseSlotScript = rueidis.NewLuaScript(`
local rooms_key = KEYS[1]
local grid_key = KEYS[2]
local name = ARGV[1]
local hold_id = ARGV[2]
if redis.call('SISMEMBER', rooms_key, name) == 0 then
	return -1
end
local released = 0
local fields = redis.call('HGETALL', grid_key)
for i = 1, #fields, 2 do
	if fields[i + 1] == hold_id then
		redis.call('HDEL', grid_key, fields[i])
		released = released + 1
	end
end
return released
`)
	queryAvailabilityScript = rueidis.NewLuaScript(`
local rooms_key = KEYS[1]
local grid_key = KEYS[2]
local name = ARGV[1]
if redis.call('SISMEMBER', rooms_key, name) == 0 then
	return {'not_found'}
end
local result = {'ok'}
for _, field in ipairs(redis.call('HKEYS', grid_key)) do
	result[#result + 1] = field
end
return result
`)
)

const (
	scriptReplyOK       = "ok"
	scriptReplyNotFound = "not_found"
	scriptReplyConflict = "conflict:"
)

type redisRoomStore struct {
	keyPrefix string
	client    rueidis.Client
	policy    roomy.SlotPolicy
}

type RoomStoreOption func(*redisRoomStore)

func WithSlotPolicy(policy roomy.SlotPolicy) RoomStoreOption {
	return func(s *redisRoomStore) {
		s.policy = policy
	}
}

func NewRoomStore(keyPrefix string, client rueidis.Client, opts ...RoomStoreOption) roomy.RoomStore {
	s := &redisRoomStore{keyPrefix: keyPrefix, client: client, policy: roomy.SlotPolicyExact}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *redisRoomStore) keys(name string) []string {
	return []string{redisKeyRooms(s.keyPrefix), redisKeyRoomGrid(s.keyPrefix, name)}
}

func (s *redisRoomStore) AddRoom(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	added, err := addRoomScript.Exec(ctx, s.client, s.keys(name), []string{name}).AsInt64()
	if err != nil {
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to exec add room script: %w", err))
	}
	if added == 0 {
		return roomy.Errorf(roomy.ErrorStatusAlreadyExists, "room %s already exists", name)
	}
	return nil
}

func (s *redisRoomStore) RemoveRoom(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	removed, err := removeRoomScript.Exec(ctx, s.client, s.keys(name), []string{name}).AsInt64()
	if err != nil {
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to exec remove room script: %w", err))
	}
	if removed == 0 {
		return roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", name)
	}
	return nil
}

func (s *redisRoomStore) ReserveSlot(ctx context.Context, req roomy.ReserveSlotRequest) (*roomy.ReserveSlotResponse, error) {
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

	args := append([]string{req.Name, holdID}, encodeSlotFields(r)...)
	reply, err := reserveSlotScript.Exec(ctx, s.client, s.keys(req.Name), args).ToString()
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to exec reserve slot script: %w", err))
	}
	switch {
	case reply == scriptReplyOK:
		return &roomy.ReserveSlotResponse{Name: req.Name, Day: r.Day, Hour: r.Hour, Hours: r.Span, HoldID: holdID}, nil
	case reply == scriptReplyNotFound:
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", req.Name)
	case strings.HasPrefix(reply, scriptReplyConflict):
		day, hour, err := decodeSlotField(strings.TrimPrefix(reply, scriptReplyConflict))
		if err != nil {
			return nil, roomy.NewError(roomy.ErrorStatusSlotConflict, fmt.Errorf("room %s is not available: %w", req.Name, err))
		}
		return nil, roomy.Errorf(roomy.ErrorStatusSlotConflict, "room %s is not available on day %d at %d:00", req.Name, day, hour)
	}
	return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("unexpected reserve slot script reply: '%s'", reply))
}

func (s *redisRoomStore) ReleaseSlot(ctx context.Context, req roomy.ReleaseSlotRequest) (*roomy.ReleaseSlotResponse, error) {
	if req.Name == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	if req.HoldID == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing hold id"))
	}
	released, err := releaseSlotScript.Exec(ctx, s.client, s.keys(req.Name), []string{req.Name, req.HoldID}).AsInt64()
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to exec release slot script: %w", err))
	}
	if released < 0 {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", req.Name)
	}
	return &roomy.ReleaseSlotResponse{Released: int(released)}, nil
}

func (s *redisRoomStore) QueryAvailability(ctx context.Context, req roomy.QueryAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	if req.Name == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room name"))
	}
	if req.Day != 0 {
		if err := roomy.ValidateDay(req.Day); err != nil {
			return nil, err
		}
	}
	reply, err := queryAvailabilityScript.Exec(ctx, s.client, s.keys(req.Name), []string{req.Name}).AsStrSlice()
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to exec query availability script: %w", err))
	}
	if len(reply) == 0 {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, errors.New("empty query availability script reply"))
	}
	if reply[0] == scriptReplyNotFound {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "room %s does not exist", req.Name)
	}

	var occupied [roomy.DaysPerWeek][roomy.HoursPerDay]bool
	for _, field := range reply[1:] {
		day, hour, err := decodeSlotField(field)
		if err != nil {
			return nil, roomy.NewError(roomy.ErrorStatusUnknown, err)
		}
		occupied[day-1][hour-roomy.FirstHour] = true
	}
	resp := &roomy.QueryAvailabilityResponse{Name: req.Name}
	for day := 1; day <= roomy.DaysPerWeek; day++ {
		if req.Day != 0 && req.Day != day {
			continue
		}
		free := []int{}
		for i, taken := range occupied[day-1] {
			if !taken {
				free = append(free, i+roomy.FirstHour)
			}
		}
		resp.Days = append(resp.Days, roomy.DayAvailability{Day: day, FreeHours: free})
	}
	return resp, nil
}

func (s *redisRoomStore) ListRooms(ctx context.Context) ([]string, error) {
	cmd := s.client.B().Smembers().Key(redisKeyRooms(s.keyPrefix)).Build()
	names, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to SMEMBERS rooms: %w", err))
	}
	sort.Strings(names)
	return names, nil
}
