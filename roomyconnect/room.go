package roomyconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/castaneai/roomy"
)

type roomService struct {
	store roomy.RoomStore
}

// NewRoomServiceHandler returns the path to mount the room service on and its handler.
func NewRoomServiceHandler(store roomy.RoomStore, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &roomService{store: store}
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(RoomServiceAddRoomProcedure, unary(RoomServiceAddRoomProcedure, s.addRoom, opts))
	mux.Handle(RoomServiceRemoveRoomProcedure, unary(RoomServiceRemoveRoomProcedure, s.removeRoom, opts))
	mux.Handle(RoomServiceReserveSlotProcedure, unary(RoomServiceReserveSlotProcedure, s.store.ReserveSlot, opts))
	mux.Handle(RoomServiceReleaseSlotProcedure, unary(RoomServiceReleaseSlotProcedure, s.store.ReleaseSlot, opts))
	mux.Handle(RoomServiceQueryAvailabilityProcedure, unary(RoomServiceQueryAvailabilityProcedure, s.store.QueryAvailability, opts))
	mux.Handle(RoomServiceListRoomsProcedure, unary(RoomServiceListRoomsProcedure, s.listRooms, opts))
	return "/" + RoomServiceName + "/", mux
}

func (s *roomService) addRoom(ctx context.Context, req NameRequest) (*Empty, error) {
	if err := s.store.AddRoom(ctx, req.Name); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *roomService) removeRoom(ctx context.Context, req NameRequest) (*Empty, error) {
	if err := s.store.RemoveRoom(ctx, req.Name); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *roomService) listRooms(ctx context.Context, _ Empty) (*NameList, error) {
	names, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	return &NameList{Names: names}, nil
}

// RoomClient implements roomy.RoomStore on top of a remote room service.
type RoomClient struct {
	addRoom           *connect.Client[NameRequest, Empty]
	removeRoom        *connect.Client[NameRequest, Empty]
	reserveSlot       *connect.Client[roomy.ReserveSlotRequest, roomy.ReserveSlotResponse]
	releaseSlot       *connect.Client[roomy.ReleaseSlotRequest, roomy.ReleaseSlotResponse]
	queryAvailability *connect.Client[roomy.QueryAvailabilityRequest, roomy.QueryAvailabilityResponse]
	listRooms         *connect.Client[Empty, NameList]
}

var _ roomy.RoomStore = (*RoomClient)(nil)

func NewRoomClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *RoomClient {
	return &RoomClient{
		addRoom:           newClient[NameRequest, Empty](httpClient, baseURL, RoomServiceAddRoomProcedure, opts),
		removeRoom:        newClient[NameRequest, Empty](httpClient, baseURL, RoomServiceRemoveRoomProcedure, opts),
		reserveSlot:       newClient[roomy.ReserveSlotRequest, roomy.ReserveSlotResponse](httpClient, baseURL, RoomServiceReserveSlotProcedure, opts),
		releaseSlot:       newClient[roomy.ReleaseSlotRequest, roomy.ReleaseSlotResponse](httpClient, baseURL, RoomServiceReleaseSlotProcedure, opts),
		queryAvailability: newClient[roomy.QueryAvailabilityRequest, roomy.QueryAvailabilityResponse](httpClient, baseURL, RoomServiceQueryAvailabilityProcedure, opts),
		listRooms:         newClient[Empty, NameList](httpClient, baseURL, RoomServiceListRoomsProcedure, opts),
	}
}

func (c *RoomClient) AddRoom(ctx context.Context, name string) error {
	_, err := call(ctx, c.addRoom, &NameRequest{Name: name})
	return err
}

func (c *RoomClient) RemoveRoom(ctx context.Context, name string) error {
	_, err := call(ctx, c.removeRoom, &NameRequest{Name: name})
	return err
}

func (c *RoomClient) ReserveSlot(ctx context.Context, req roomy.ReserveSlotRequest) (*roomy.ReserveSlotResponse, error) {
	return call(ctx, c.reserveSlot, &req)
}

func (c *RoomClient) ReleaseSlot(ctx context.Context, req roomy.ReleaseSlotRequest) (*roomy.ReleaseSlotResponse, error) {
	return call(ctx, c.releaseSlot, &req)
}

func (c *RoomClient) QueryAvailability(ctx context.Context, req roomy.QueryAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	return call(ctx, c.queryAvailability, &req)
}

func (c *RoomClient) ListRooms(ctx context.Context) ([]string, error) {
	resp, err := call(ctx, c.listRooms, &Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}
