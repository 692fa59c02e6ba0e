package roomyconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/castaneai/roomy"
)

type activityService struct {
	registry roomy.ActivityRegistry
}

func NewActivityServiceHandler(registry roomy.ActivityRegistry, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &activityService{registry: registry}
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ActivityServiceAddActivityProcedure, unary(ActivityServiceAddActivityProcedure, s.addActivity, opts))
	mux.Handle(ActivityServiceRemoveActivityProcedure, unary(ActivityServiceRemoveActivityProcedure, s.removeActivity, opts))
	mux.Handle(ActivityServiceExistsProcedure, unary(ActivityServiceExistsProcedure, s.exists, opts))
	mux.Handle(ActivityServiceListActivitiesProcedure, unary(ActivityServiceListActivitiesProcedure, s.listActivities, opts))
	return "/" + ActivityServiceName + "/", mux
}

func (s *activityService) addActivity(ctx context.Context, req NameRequest) (*Empty, error) {
	if err := s.registry.AddActivity(ctx, req.Name); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *activityService) removeActivity(ctx context.Context, req NameRequest) (*Empty, error) {
	if err := s.registry.RemoveActivity(ctx, req.Name); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *activityService) exists(ctx context.Context, req NameRequest) (*ExistsResponse, error) {
	exists, err := s.registry.Exists(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return &ExistsResponse{Exists: exists}, nil
}

func (s *activityService) listActivities(ctx context.Context, _ Empty) (*NameList, error) {
	names, err := s.registry.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	return &NameList{Names: names}, nil
}

// ActivityClient implements roomy.ActivityRegistry on top of a remote activity service.
type ActivityClient struct {
	addActivity    *connect.Client[NameRequest, Empty]
	removeActivity *connect.Client[NameRequest, Empty]
	exists         *connect.Client[NameRequest, ExistsResponse]
	listActivities *connect.Client[Empty, NameList]
}

var _ roomy.ActivityRegistry = (*ActivityClient)(nil)

func NewActivityClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ActivityClient {
	return &ActivityClient{
		addActivity:    newClient[NameRequest, Empty](httpClient, baseURL, ActivityServiceAddActivityProcedure, opts),
		removeActivity: newClient[NameRequest, Empty](httpClient, baseURL, ActivityServiceRemoveActivityProcedure, opts),
		exists:         newClient[NameRequest, ExistsResponse](httpClient, baseURL, ActivityServiceExistsProcedure, opts),
		listActivities: newClient[Empty, NameList](httpClient, baseURL, ActivityServiceListActivitiesProcedure, opts),
	}
}

func (c *ActivityClient) AddActivity(ctx context.Context, name string) error {
	_, err := call(ctx, c.addActivity, &NameRequest{Name: name})
	return err
}

func (c *ActivityClient) RemoveActivity(ctx context.Context, name string) error {
	_, err := call(ctx, c.removeActivity, &NameRequest{Name: name})
	return err
}

func (c *ActivityClient) Exists(ctx context.Context, name string) (bool, error) {
	resp, err := call(ctx, c.exists, &NameRequest{Name: name})
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *ActivityClient) ListActivities(ctx context.Context) ([]string, error) {
	resp, err := call(ctx, c.listActivities, &Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}
