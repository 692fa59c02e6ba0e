package roomyconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/castaneai/roomy"
)

type reservationService struct {
	coordinator roomy.Coordinator
}

func NewReservationServiceHandler(coordinator roomy.Coordinator, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &reservationService{coordinator: coordinator}
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ReservationServiceReserveProcedure, unary(ReservationServiceReserveProcedure, s.coordinator.Reserve, opts))
	mux.Handle(ReservationServiceListAvailabilityProcedure, unary(ReservationServiceListAvailabilityProcedure, s.coordinator.ListAvailability, opts))
	mux.Handle(ReservationServiceDisplayProcedure, unary(ReservationServiceDisplayProcedure, s.display, opts))
	return "/" + ReservationServiceName + "/", mux
}

func (s *reservationService) display(ctx context.Context, req DisplayRequest) (*roomy.Reservation, error) {
	return s.coordinator.Display(ctx, req.ID)
}

// ReservationClient implements roomy.Coordinator on top of a remote reservation service.
type ReservationClient struct {
	reserve          *connect.Client[roomy.ReserveRequest, roomy.ReserveResponse]
	listAvailability *connect.Client[roomy.ListAvailabilityRequest, roomy.QueryAvailabilityResponse]
	display          *connect.Client[DisplayRequest, roomy.Reservation]
}

var _ roomy.Coordinator = (*ReservationClient)(nil)

func NewReservationClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReservationClient {
	return &ReservationClient{
		reserve:          newClient[roomy.ReserveRequest, roomy.ReserveResponse](httpClient, baseURL, ReservationServiceReserveProcedure, opts),
		listAvailability: newClient[roomy.ListAvailabilityRequest, roomy.QueryAvailabilityResponse](httpClient, baseURL, ReservationServiceListAvailabilityProcedure, opts),
		display:          newClient[DisplayRequest, roomy.Reservation](httpClient, baseURL, ReservationServiceDisplayProcedure, opts),
	}
}

func (c *ReservationClient) Reserve(ctx context.Context, req roomy.ReserveRequest) (*roomy.ReserveResponse, error) {
	return call(ctx, c.reserve, &req)
}

func (c *ReservationClient) ListAvailability(ctx context.Context, req roomy.ListAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	return call(ctx, c.listAvailability, &req)
}

func (c *ReservationClient) Display(ctx context.Context, id int64) (*roomy.Reservation, error) {
	return call(ctx, c.display, &DisplayRequest{ID: id})
}
