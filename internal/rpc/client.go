package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// OrbitClient is the client API for the Orbit service.
type OrbitClient struct {
	cc grpc.ClientConnInterface
}

func NewOrbitClient(cc grpc.ClientConnInterface) *OrbitClient {
	return &OrbitClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrbitClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *OrbitClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *OrbitClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *OrbitClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *OrbitClient) GetUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodGetUser, in, opts)
}

func (c *OrbitClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodUpdateUser, in, opts)
}

func (c *OrbitClient) SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *OrbitClient) ListProjects(ctx context.Context, in *ListProjectsRequest, opts ...grpc.CallOption) (*ProjectList, error) {
	return invoke[ProjectList](ctx, c.cc, MethodListProjects, in, opts)
}

func (c *OrbitClient) GetProject(ctx context.Context, in *ProjectID, opts ...grpc.CallOption) (*Project, error) {
	return invoke[Project](ctx, c.cc, MethodGetProject, in, opts)
}

func (c *OrbitClient) CreateProject(ctx context.Context, in *Project, opts ...grpc.CallOption) (*Project, error) {
	return invoke[Project](ctx, c.cc, MethodCreateProject, in, opts)
}

func (c *OrbitClient) UpdateProject(ctx context.Context, in *ProjectPatch, opts ...grpc.CallOption) (*Project, error) {
	return invoke[Project](ctx, c.cc, MethodUpdateProject, in, opts)
}

func (c *OrbitClient) DeleteProject(ctx context.Context, in *ProjectID, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteProject, in, opts)
}

func (c *OrbitClient) ListTasks(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*TaskList, error) {
	return invoke[TaskList](ctx, c.cc, MethodListTasks, in, opts)
}

func (c *OrbitClient) CreateTask(ctx context.Context, in *Task, opts ...grpc.CallOption) (*Task, error) {
	return invoke[Task](ctx, c.cc, MethodCreateTask, in, opts)
}

func (c *OrbitClient) UpdateTask(ctx context.Context, in *TaskPatch, opts ...grpc.CallOption) (*Task, error) {
	return invoke[Task](ctx, c.cc, MethodUpdateTask, in, opts)
}

func (c *OrbitClient) DeleteTask(ctx context.Context, in *TaskID, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteTask, in, opts)
}

func (c *OrbitClient) ListMembers(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MemberList, error) {
	return invoke[MemberList](ctx, c.cc, MethodListMembers, in, opts)
}

func (c *OrbitClient) UpdatePushToken(ctx context.Context, in *PushTokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodUpdatePushToken, in, opts)
}

// ChangeReceiver is the client side of a Subscribe call.
type ChangeReceiver interface {
	Recv() (*ChangeEvent, error)
}

func (c *OrbitClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (ChangeReceiver, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod(MethodSubscribe), opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &changeReceiver{stream}, nil
}

type changeReceiver struct {
	grpc.ClientStream
}

func (r *changeReceiver) Recv() (*ChangeEvent, error) {
	ev := new(ChangeEvent)
	if err := r.ClientStream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}
