package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// orbitAPI is the generated-style client surface used by GRPCClient.
type orbitAPI interface {
	Ping(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	SignUp(ctx context.Context, in *rpc.SignUpRequest, opts ...grpc.CallOption) (*rpc.Session, error)
	SignIn(ctx context.Context, in *rpc.SignInRequest, opts ...grpc.CallOption) (*rpc.Session, error)
	RefreshToken(ctx context.Context, in *rpc.RefreshTokenRequest, opts ...grpc.CallOption) (*rpc.Session, error)
	GetUser(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.User, error)
	UpdateUser(ctx context.Context, in *rpc.UpdateUserRequest, opts ...grpc.CallOption) (*rpc.User, error)
	SignOut(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.Empty, error)
	ListProjects(ctx context.Context, in *rpc.ListProjectsRequest, opts ...grpc.CallOption) (*rpc.ProjectList, error)
	GetProject(ctx context.Context, in *rpc.ProjectID, opts ...grpc.CallOption) (*rpc.Project, error)
	CreateProject(ctx context.Context, in *rpc.Project, opts ...grpc.CallOption) (*rpc.Project, error)
	UpdateProject(ctx context.Context, in *rpc.ProjectPatch, opts ...grpc.CallOption) (*rpc.Project, error)
	DeleteProject(ctx context.Context, in *rpc.ProjectID, opts ...grpc.CallOption) (*rpc.Empty, error)
	ListTasks(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.TaskList, error)
	CreateTask(ctx context.Context, in *rpc.Task, opts ...grpc.CallOption) (*rpc.Task, error)
	UpdateTask(ctx context.Context, in *rpc.TaskPatch, opts ...grpc.CallOption) (*rpc.Task, error)
	DeleteTask(ctx context.Context, in *rpc.TaskID, opts ...grpc.CallOption) (*rpc.Empty, error)
	ListMembers(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.MemberList, error)
	UpdatePushToken(ctx context.Context, in *rpc.PushTokenRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	Subscribe(ctx context.Context, in *rpc.SubscribeRequest, opts ...grpc.CallOption) (rpc.ChangeReceiver, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      orbitAPI

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	onRefresh    TokenListener
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

func (s *GRPCClient) OnTokensRefreshed(fn TokenListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) notifyRefresh(sess *models.Session) {
	s.mu.RLock()
	fn := s.onRefresh
	s.mu.RUnlock()
	if fn != nil {
		fn(sess)
	}
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if rpc.IsPublicMethod(method) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	accessToken, refreshToken := s.tokens()
	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refreshToken == "" {
		return err
	}

	refreshed, rerr := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if rerr != nil {
		if status.Code(rerr) == codes.Unauthenticated {
			s.SetTokens("", "")
			s.notifyRefresh(nil)
		}
		return rerr
	}

	s.SetTokens(refreshed.AccessToken, refreshed.RefreshToken)
	s.notifyRefresh(sessionFromRPC(refreshed))

	return invoker(withAccessToken(ctx, refreshed.AccessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	accessToken, _ := s.tokens()
	return streamer(withAccessToken(ctx, accessToken), desc, cc, method, opts...)
}

func NewOrbitClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	opts := append(rpc.DialOptions(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewOrbitClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string, data map[string]any) (*models.Session, error) {
	resp, err := s.client.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: password, Data: data})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return sessionFromRPC(resp), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.client.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return sessionFromRPC(resp), nil
}

// Refresh exchanges refreshToken for a new session and adopts its tokens.
func (s *GRPCClient) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return sessionFromRPC(resp), nil
}

func (s *GRPCClient) GetUser(ctx context.Context) (*models.User, error) {
	resp, err := s.client.GetUser(ctx, &rpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return userFromRPC(resp), nil
}

func (s *GRPCClient) UpdateUser(ctx context.Context, patch map[string]any) (*models.User, error) {
	resp, err := s.client.UpdateUser(ctx, &rpc.UpdateUserRequest{Data: patch})
	if err != nil {
		return nil, s.mapError(err)
	}
	return userFromRPC(resp), nil
}

// SignOut revokes the refresh tokens on the server and forgets the local
// ones. Local tokens are dropped even if the server call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, err := s.client.SignOut(ctx, &rpc.Empty{})
	s.SetTokens("", "")
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListProjects(ctx context.Context, status string) ([]*models.Project, error) {
	resp, err := s.client.ListProjects(ctx, &rpc.ListProjectsRequest{Status: status})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]*models.Project, 0, len(resp.Projects))
	for i := range resp.Projects {
		out = append(out, projectFromRPC(&resp.Projects[i]))
	}
	return out, nil
}

func (s *GRPCClient) GetProject(ctx context.Context, id string) (*models.Project, error) {
	resp, err := s.client.GetProject(ctx, &rpc.ProjectID{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return projectFromRPC(resp), nil
}

func (s *GRPCClient) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	resp, err := s.client.CreateProject(ctx, projectToRPC(p))
	if err != nil {
		return nil, s.mapError(err)
	}
	return projectFromRPC(resp), nil
}

func (s *GRPCClient) UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) (*models.Project, error) {
	resp, err := s.client.UpdateProject(ctx, projectPatchToRPC(id, u))
	if err != nil {
		return nil, s.mapError(err)
	}
	return projectFromRPC(resp), nil
}

func (s *GRPCClient) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.client.DeleteProject(ctx, &rpc.ProjectID{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListTasks(ctx context.Context) ([]*models.Task, error) {
	resp, err := s.client.ListTasks(ctx, &rpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]*models.Task, 0, len(resp.Tasks))
	for i := range resp.Tasks {
		out = append(out, taskFromRPC(&resp.Tasks[i]))
	}
	return out, nil
}

func (s *GRPCClient) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	resp, err := s.client.CreateTask(ctx, taskToRPC(t))
	if err != nil {
		return nil, s.mapError(err)
	}
	return taskFromRPC(resp), nil
}

func (s *GRPCClient) UpdateTask(ctx context.Context, id string, u models.TaskUpdate) (*models.Task, error) {
	resp, err := s.client.UpdateTask(ctx, taskPatchToRPC(id, u))
	if err != nil {
		return nil, s.mapError(err)
	}
	return taskFromRPC(resp), nil
}

func (s *GRPCClient) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.client.DeleteTask(ctx, &rpc.TaskID{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListMembers(ctx context.Context) ([]*models.Member, error) {
	resp, err := s.client.ListMembers(ctx, &rpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]*models.Member, 0, len(resp.Members))
	for i := range resp.Members {
		out = append(out, memberFromRPC(&resp.Members[i]))
	}
	return out, nil
}

func (s *GRPCClient) UpdatePushToken(ctx context.Context, token string) error {
	if _, err := s.client.UpdatePushToken(ctx, &rpc.PushTokenRequest{Token: token}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Subscribe(ctx context.Context, table, recordID string) (<-chan models.ChangeEvent, error) {
	recv, err := s.client.Subscribe(ctx, &rpc.SubscribeRequest{Table: table, RecordID: recordID})
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make(chan models.ChangeEvent)
	go func() {
		defer close(out)
		for {
			ev, err := recv.Recv()
			if err != nil {
				return
			}
			select {
			case out <- changeFromRPC(ev):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	}

	if mapped := rpc.FromStatus(err); mapped != err {
		return mapped
	}
	return fmt.Errorf("rpc error: %w", err)
}
