// Package grpc exposes the server services over the orbit.v1.Orbit gRPC
// service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/rpc"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
	"github.com/dmitrijs2005/orbit/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	SignUp(ctx context.Context, email, password string, data map[string]any) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, patch map[string]any) (*models.User, error)
	SignOut(ctx context.Context, userID string) error
}

type projectSvc interface {
	List(ctx context.Context, userID, status string) ([]*models.Project, error)
	Get(ctx context.Context, userID, id string) (*models.Project, error)
	Create(ctx context.Context, userID string, p *models.Project) (*models.Project, error)
	Update(ctx context.Context, userID, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, userID, id string) error
}

type taskSvc interface {
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Create(ctx context.Context, userID string, t *models.Task) (*models.Task, error)
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type profileSvc interface {
	ListMembers(ctx context.Context, userID string) ([]*models.Profile, error)
	SetPushToken(ctx context.Context, userID, token string) error
}

// Services groups the business services served over gRPC.
type Services struct {
	Users    userSvc
	Projects projectSvc
	Tasks    taskSvc
	Profiles profileSvc
}

type GRPCServer struct {
	rpc.UnimplementedOrbitServer
	address   string
	users     userSvc
	projects  projectSvc
	tasks     taskSvc
	profiles  profileSvc
	broker    realtime.Broker
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc Services, broker realtime.Broker, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		projects:  svc.Projects,
		tasks:     svc.Tasks,
		profiles:  svc.Profiles,
		broker:    broker,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	opts := append(rpc.ServerOptions(),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	srv := grpc.NewServer(opts...)
	rpc.RegisterOrbitServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
