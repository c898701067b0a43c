package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "orbit.v1.Orbit"

const (
	MethodPing            = "Ping"
	MethodSignUp          = "SignUp"
	MethodSignIn          = "SignIn"
	MethodRefreshToken    = "RefreshToken"
	MethodGetUser         = "GetUser"
	MethodUpdateUser      = "UpdateUser"
	MethodSignOut         = "SignOut"
	MethodListProjects    = "ListProjects"
	MethodGetProject      = "GetProject"
	MethodCreateProject   = "CreateProject"
	MethodUpdateProject   = "UpdateProject"
	MethodDeleteProject   = "DeleteProject"
	MethodListTasks       = "ListTasks"
	MethodCreateTask      = "CreateTask"
	MethodUpdateTask      = "UpdateTask"
	MethodDeleteTask      = "DeleteTask"
	MethodListMembers     = "ListMembers"
	MethodUpdatePushToken = "UpdatePushToken"
	MethodSubscribe       = "Subscribe"
)

// FullMethod returns the gRPC method path for a method name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

var publicMethods = map[string]bool{
	FullMethod(MethodPing):         true,
	FullMethod(MethodSignUp):       true,
	FullMethod(MethodSignIn):       true,
	FullMethod(MethodRefreshToken): true,
}

// IsPublicMethod reports whether a method may be called without an access token.
func IsPublicMethod(fullMethod string) bool {
	return publicMethods[fullMethod]
}

// OrbitServer is the server API for the Orbit service.
type OrbitServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)

	SignUp(context.Context, *SignUpRequest) (*Session, error)
	SignIn(context.Context, *SignInRequest) (*Session, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*Session, error)
	GetUser(context.Context, *Empty) (*User, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*User, error)
	SignOut(context.Context, *Empty) (*Empty, error)

	ListProjects(context.Context, *ListProjectsRequest) (*ProjectList, error)
	GetProject(context.Context, *ProjectID) (*Project, error)
	CreateProject(context.Context, *Project) (*Project, error)
	UpdateProject(context.Context, *ProjectPatch) (*Project, error)
	DeleteProject(context.Context, *ProjectID) (*Empty, error)

	ListTasks(context.Context, *Empty) (*TaskList, error)
	CreateTask(context.Context, *Task) (*Task, error)
	UpdateTask(context.Context, *TaskPatch) (*Task, error)
	DeleteTask(context.Context, *TaskID) (*Empty, error)

	ListMembers(context.Context, *Empty) (*MemberList, error)
	UpdatePushToken(context.Context, *PushTokenRequest) (*Empty, error)

	Subscribe(*SubscribeRequest, ChangeStream) error
}

// ChangeStream is the server side of a Subscribe call.
type ChangeStream interface {
	Send(*ChangeEvent) error
	Context() context.Context
}

func RegisterOrbitServer(s grpc.ServiceRegistrar, srv OrbitServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrbitServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, OrbitServer.Ping),
		unary(MethodSignUp, OrbitServer.SignUp),
		unary(MethodSignIn, OrbitServer.SignIn),
		unary(MethodRefreshToken, OrbitServer.RefreshToken),
		unary(MethodGetUser, OrbitServer.GetUser),
		unary(MethodUpdateUser, OrbitServer.UpdateUser),
		unary(MethodSignOut, OrbitServer.SignOut),
		unary(MethodListProjects, OrbitServer.ListProjects),
		unary(MethodGetProject, OrbitServer.GetProject),
		unary(MethodCreateProject, OrbitServer.CreateProject),
		unary(MethodUpdateProject, OrbitServer.UpdateProject),
		unary(MethodDeleteProject, OrbitServer.DeleteProject),
		unary(MethodListTasks, OrbitServer.ListTasks),
		unary(MethodCreateTask, OrbitServer.CreateTask),
		unary(MethodUpdateTask, OrbitServer.UpdateTask),
		unary(MethodDeleteTask, OrbitServer.DeleteTask),
		unary(MethodListMembers, OrbitServer.ListMembers),
		unary(MethodUpdatePushToken, OrbitServer.UpdatePushToken),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodSubscribe,
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "orbit/v1/orbit",
}

func unary[Req, Resp any](name string, call func(OrbitServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrbitServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(OrbitServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(OrbitServer).Subscribe(in, &changeStream{stream})
}

type changeStream struct {
	grpc.ServerStream
}

func (s *changeStream) Send(ev *ChangeEvent) error {
	return s.ServerStream.SendMsg(ev)
}

// UnimplementedOrbitServer can be embedded to get Unimplemented errors for
// methods that are not overridden.
type UnimplementedOrbitServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedOrbitServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedOrbitServer) SignUp(context.Context, *SignUpRequest) (*Session, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedOrbitServer) SignIn(context.Context, *SignInRequest) (*Session, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedOrbitServer) RefreshToken(context.Context, *RefreshTokenRequest) (*Session, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedOrbitServer) GetUser(context.Context, *Empty) (*User, error) {
	return nil, unimplemented(MethodGetUser)
}
func (UnimplementedOrbitServer) UpdateUser(context.Context, *UpdateUserRequest) (*User, error) {
	return nil, unimplemented(MethodUpdateUser)
}
func (UnimplementedOrbitServer) SignOut(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedOrbitServer) ListProjects(context.Context, *ListProjectsRequest) (*ProjectList, error) {
	return nil, unimplemented(MethodListProjects)
}
func (UnimplementedOrbitServer) GetProject(context.Context, *ProjectID) (*Project, error) {
	return nil, unimplemented(MethodGetProject)
}
func (UnimplementedOrbitServer) CreateProject(context.Context, *Project) (*Project, error) {
	return nil, unimplemented(MethodCreateProject)
}
func (UnimplementedOrbitServer) UpdateProject(context.Context, *ProjectPatch) (*Project, error) {
	return nil, unimplemented(MethodUpdateProject)
}
func (UnimplementedOrbitServer) DeleteProject(context.Context, *ProjectID) (*Empty, error) {
	return nil, unimplemented(MethodDeleteProject)
}
func (UnimplementedOrbitServer) ListTasks(context.Context, *Empty) (*TaskList, error) {
	return nil, unimplemented(MethodListTasks)
}
func (UnimplementedOrbitServer) CreateTask(context.Context, *Task) (*Task, error) {
	return nil, unimplemented(MethodCreateTask)
}
func (UnimplementedOrbitServer) UpdateTask(context.Context, *TaskPatch) (*Task, error) {
	return nil, unimplemented(MethodUpdateTask)
}
func (UnimplementedOrbitServer) DeleteTask(context.Context, *TaskID) (*Empty, error) {
	return nil, unimplemented(MethodDeleteTask)
}
func (UnimplementedOrbitServer) ListMembers(context.Context, *Empty) (*MemberList, error) {
	return nil, unimplemented(MethodListMembers)
}
func (UnimplementedOrbitServer) UpdatePushToken(context.Context, *PushTokenRequest) (*Empty, error) {
	return nil, unimplemented(MethodUpdatePushToken)
}
func (UnimplementedOrbitServer) Subscribe(*SubscribeRequest, ChangeStream) error {
	return unimplemented(MethodSubscribe)
}
