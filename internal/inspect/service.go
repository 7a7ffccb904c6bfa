package inspect

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

const (
	ServiceName       = "fogofwar.inspect.v1.ShroudInspector"
	getSnapshotMethod = "/" + ServiceName + "/GetSnapshot"
	getCellMethod     = "/" + ServiceName + "/GetCell"
)

// ShroudInspectorServer is the server API for the shroud inspection service
type ShroudInspectorServer interface {
	// GetSnapshot returns the latest captured shroud of a player
	GetSnapshot(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	// GetCell returns the state of one projected cell as seen by a player
	GetCell(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterShroudInspectorServer registers srv on s
func RegisterShroudInspectorServer(s grpc.ServiceRegistrar, srv ShroudInspectorServer) {
	s.RegisterService(&ShroudInspector_ServiceDesc, srv)
}

func _ShroudInspector_GetSnapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShroudInspectorServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getSnapshotMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShroudInspectorServer).GetSnapshot(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _ShroudInspector_GetCell_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShroudInspectorServer).GetCell(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCellMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShroudInspectorServer).GetCell(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ShroudInspector_ServiceDesc describes the inspection service. The messages
// are protobuf well-known types, so no generated code is needed.
var ShroudInspector_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShroudInspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSnapshot",
			Handler:    _ShroudInspector_GetSnapshot_Handler,
		},
		{
			MethodName: "GetCell",
			Handler:    _ShroudInspector_GetCell_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fogofwar/inspect/v1/inspect.proto",
}

// Client calls the inspection service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetSnapshot(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getSnapshotMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCell(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getCellMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Server answers inspection requests from a snapshot store
type Server struct {
	store  *SnapshotStore
	logger zerolog.Logger
}

// NewServer creates an inspection server reading from store
func NewServer(store *SnapshotStore, logger zerolog.Logger) *Server {
	return &Server{
		store:  store,
		logger: logger.With().Str("component", "ShroudInspector").Logger(),
	}
}

// GetSnapshot returns player, step, hash, width, height, rows and captured_at
func (s *Server) GetSnapshot(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	snap, err := s.snapshot(int(req.GetValue()))
	if err != nil {
		return nil, err
	}

	rows := snap.Rows()
	rowValues := make([]interface{}, len(rows))
	for i, r := range rows {
		rowValues[i] = r
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"player":      snap.PlayerID,
		"step":        snap.Step,
		"hash":        snap.Hash,
		"width":       snap.Bounds.W,
		"height":      snap.Bounds.H,
		"origin_u":    snap.Bounds.X,
		"origin_v":    snap.Bounds.Y,
		"rows":        rowValues,
		"captured_at": snap.CapturedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding snapshot: %v", err)
	}
	return resp, nil
}

// GetCell expects {player, u, v} and returns visibility, explored and visible
func (s *Server) GetCell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	player, err := intField(fields, "player")
	if err != nil {
		return nil, err
	}
	u, err := intField(fields, "u")
	if err != nil {
		return nil, err
	}
	v, err := intField(fields, "v")
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(player)
	if err != nil {
		return nil, err
	}
	p := core.NewPPos(u, v)
	if !p.IsValid(snap.Width, snap.Height) {
		return nil, status.Errorf(codes.InvalidArgument, "cell %s outside %dx%d map", p, snap.Width, snap.Height)
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"player":     player,
		"step":       snap.Step,
		"u":          u,
		"v":          v,
		"visibility": snap.At(p).String(),
		"explored":   snap.Explored(p),
		"visible":    snap.Visible(p),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding cell: %v", err)
	}
	return resp, nil
}

func (s *Server) snapshot(playerID int) (PlayerSnapshot, error) {
	snap, ok := s.store.Get(playerID)
	if !ok {
		s.logger.Debug().Int("player_id", playerID).Msg("Snapshot requested for unknown player")
		return PlayerSnapshot{}, status.Errorf(codes.NotFound, "player %d not found", playerID)
	}
	return snap, nil
}

// intField reads a whole number from a Struct field
func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing field %q", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a whole number, got %v", name, n.NumberValue)
	}
	return int(n.NumberValue), nil
}
