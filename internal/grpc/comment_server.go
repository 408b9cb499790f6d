package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"bugTracker/internal/auth"
	"bugTracker/internal/service"
)

const commentServiceName = "bugtracker.v1.CommentService"

// commentService is the handler type of the comment service descriptor.
// Requests and responses are google.protobuf.Struct using the JSON field names.
type commentService interface {
	Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListByBug(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Delete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func structMethod(name string, call func(commentService, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(commentService), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + commentServiceName + "/" + name}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var commentServiceDesc = grpc.ServiceDesc{
	ServiceName: commentServiceName,
	HandlerType: (*commentService)(nil),
	Methods: []grpc.MethodDesc{
		structMethod("Create", commentService.Create),
		structMethod("Get", commentService.Get),
		structMethod("ListByBug", commentService.ListByBug),
		structMethod("Update", commentService.Update),
		structMethod("Delete", commentService.Delete),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bugtracker/v1/comments.proto",
}

// RegisterCommentServer registers s on srv.
func RegisterCommentServer(srv grpc.ServiceRegistrar, s *CommentServer) {
	srv.RegisterService(&commentServiceDesc, s)
}

// CommentServer implements the comment service on top of service.CommentService.
type CommentServer struct {
	Comments *service.CommentService
	Log      logrus.FieldLogger
}

var _ commentService = (*CommentServer)(nil)

// Create adds a comment. When UserID is omitted the caller's own id is used.
func (s *CommentServer) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := req.AsMap()
	if _, ok := raw["UserID"]; !ok {
		id, err := auth.CallerID(ctx)
		if err != nil {
			return nil, err
		}
		raw["UserID"] = id
	}
	c, err := s.Comments.Create(ctx, raw)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toStruct(c)
}

func (s *CommentServer) Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req, "CommentID")
	if err != nil {
		return nil, err
	}
	c, err := s.Comments.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if c == nil {
		return nil, status.Error(codes.NotFound, "comment not found")
	}
	return toStruct(c)
}

func (s *CommentServer) ListByBug(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req, "BugID")
	if err != nil {
		return nil, err
	}
	list, err := s.Comments.ListByBug(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toStruct(map[string]any{"Comments": list})
}

// Update takes CommentID plus the fields to change.
func (s *CommentServer) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req, "CommentID")
	if err != nil {
		return nil, err
	}
	raw := req.AsMap()
	delete(raw, "CommentID")
	c, err := s.Comments.Update(ctx, id, raw)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if c == nil {
		return nil, status.Error(codes.NotFound, "comment not found")
	}
	return toStruct(c)
}

func (s *CommentServer) Delete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req, "CommentID")
	if err != nil {
		return nil, err
	}
	ok, err := s.Comments.Delete(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if !ok {
		return nil, status.Error(codes.NotFound, "comment not found")
	}
	return structpb.NewStruct(map[string]any{"Deleted": true})
}

// toStatus maps service errors onto gRPC codes; unexpected failures are logged
// and reported without detail.
func (s *CommentServer) toStatus(err error) error {
	var ve *service.ValidationError
	var re *service.ReferenceError
	var ae *service.AuthError
	switch {
	case errors.As(err, &ve), errors.As(err, &re):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &ae):
		return status.Error(codes.Unauthenticated, err.Error())
	}
	s.Log.WithError(err).Error("comment rpc failed")
	return status.Error(codes.Internal, "internal error")
}

func idField(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing %s", key)
	}
	f := v.GetNumberValue()
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s", key)
	}
	return int64(f), nil
}

// toStruct converts v through its JSON form so field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
