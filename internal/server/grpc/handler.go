package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/rpc"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fail logs unexpected errors and converts err into a gRPC status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	st := rpc.ToStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	}
	return st
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.Session, error) {
	s.logger.Info(ctx, "Registration request")

	res, err := s.users.SignUp(ctx, req.Email, req.Password, req.Data)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodSignUp, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", res.User.ID)
	return toSession(res), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.Session, error) {
	res, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "Invalid login credentials")
		}
		return nil, s.fail(ctx, rpc.MethodSignIn, err)
	}
	return toSession(res), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.Session, error) {
	res, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodRefreshToken, err)
	}
	return toSession(res), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *rpc.Empty) (*rpc.User, error) {
	u, err := s.users.GetUser(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodGetUser, err)
	}
	out := toUser(u)
	return &out, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *rpc.UpdateUserRequest) (*rpc.User, error) {
	u, err := s.users.UpdateUser(ctx, userIDFromContext(ctx), req.Data)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodUpdateUser, err)
	}
	out := toUser(u)
	return &out, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.Empty) (*rpc.Empty, error) {
	if err := s.users.SignOut(ctx, userIDFromContext(ctx)); err != nil {
		return nil, s.fail(ctx, rpc.MethodSignOut, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListProjects(ctx context.Context, req *rpc.ListProjectsRequest) (*rpc.ProjectList, error) {
	items, err := s.projects.List(ctx, userIDFromContext(ctx), req.Status)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodListProjects, err)
	}
	out := &rpc.ProjectList{Projects: make([]rpc.Project, 0, len(items))}
	for _, p := range items {
		out.Projects = append(out.Projects, toProject(p))
	}
	return out, nil
}

func (s *GRPCServer) GetProject(ctx context.Context, req *rpc.ProjectID) (*rpc.Project, error) {
	p, err := s.projects.Get(ctx, userIDFromContext(ctx), req.ID)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodGetProject, err)
	}
	out := toProject(p)
	return &out, nil
}

func (s *GRPCServer) CreateProject(ctx context.Context, req *rpc.Project) (*rpc.Project, error) {
	p, err := s.projects.Create(ctx, userIDFromContext(ctx), fromProject(req))
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodCreateProject, err)
	}
	out := toProject(p)
	return &out, nil
}

func (s *GRPCServer) UpdateProject(ctx context.Context, req *rpc.ProjectPatch) (*rpc.Project, error) {
	patch := models.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Status:      req.Status,
	}
	p, err := s.projects.Update(ctx, userIDFromContext(ctx), req.ID, patch)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodUpdateProject, err)
	}
	out := toProject(p)
	return &out, nil
}

func (s *GRPCServer) DeleteProject(ctx context.Context, req *rpc.ProjectID) (*rpc.Empty, error) {
	if err := s.projects.Delete(ctx, userIDFromContext(ctx), req.ID); err != nil {
		return nil, s.fail(ctx, rpc.MethodDeleteProject, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *rpc.Empty) (*rpc.TaskList, error) {
	items, err := s.tasks.List(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodListTasks, err)
	}
	out := &rpc.TaskList{Tasks: make([]rpc.Task, 0, len(items))}
	for _, t := range items {
		out.Tasks = append(out.Tasks, toTask(t))
	}
	return out, nil
}

func (s *GRPCServer) CreateTask(ctx context.Context, req *rpc.Task) (*rpc.Task, error) {
	t, err := s.tasks.Create(ctx, userIDFromContext(ctx), fromTask(req))
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodCreateTask, err)
	}
	out := toTask(t)
	return &out, nil
}

func (s *GRPCServer) UpdateTask(ctx context.Context, req *rpc.TaskPatch) (*rpc.Task, error) {
	patch := models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}
	t, err := s.tasks.Update(ctx, userIDFromContext(ctx), req.ID, patch)
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodUpdateTask, err)
	}
	out := toTask(t)
	return &out, nil
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *rpc.TaskID) (*rpc.Empty, error) {
	if err := s.tasks.Delete(ctx, userIDFromContext(ctx), req.ID); err != nil {
		return nil, s.fail(ctx, rpc.MethodDeleteTask, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListMembers(ctx context.Context, req *rpc.Empty) (*rpc.MemberList, error) {
	items, err := s.profiles.ListMembers(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, rpc.MethodListMembers, err)
	}
	out := &rpc.MemberList{Members: make([]rpc.Member, 0, len(items))}
	for _, p := range items {
		out.Members = append(out.Members, toMember(p))
	}
	return out, nil
}

func (s *GRPCServer) UpdatePushToken(ctx context.Context, req *rpc.PushTokenRequest) (*rpc.Empty, error) {
	if err := s.profiles.SetPushToken(ctx, userIDFromContext(ctx), req.Token); err != nil {
		return nil, s.fail(ctx, rpc.MethodUpdatePushToken, err)
	}
	return &rpc.Empty{}, nil
}

// Subscribe streams changes of one table that the caller may see, until the
// client goes away. Profile changes are scoped to the caller's
// organization as of subscription time.
func (s *GRPCServer) Subscribe(req *rpc.SubscribeRequest, stream rpc.ChangeStream) error {
	ctx := stream.Context()
	userID := userIDFromContext(ctx)

	var organization string
	switch req.Table {
	case common.TableProjects, common.TableTasks:
	case common.TableProfiles:
		u, err := s.users.GetUser(ctx, userID)
		if err != nil {
			return s.fail(ctx, rpc.MethodSubscribe, err)
		}
		organization = u.MetaString(models.MetaOrganization)
	default:
		return status.Errorf(codes.InvalidArgument, "unknown table %q", req.Table)
	}

	events, cancel := s.broker.Subscribe(ctx, req.Table, func(ev models.ChangeEvent) bool {
		if req.RecordID != "" && ev.RecordID != req.RecordID {
			return false
		}
		return ev.VisibleTo(userID, organization)
	})
	defer cancel()

	s.logger.Debug(ctx, "subscribed", "table", req.Table, "user_id", userID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(&rpc.ChangeEvent{
				Table:    ev.Table,
				Type:     ev.Type,
				RecordID: ev.RecordID,
				At:       ev.At,
			}); err != nil {
				return err
			}
		}
	}
}
