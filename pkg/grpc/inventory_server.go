package grpc

import (
	"context"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	InventoryServiceName = "storefront.v1.Inventory"

	// DiscoveryName is the key the inventory endpoint is registered under in etcd.
	DiscoveryName = "inventory"

	getStockMethod = "/" + InventoryServiceName + "/GetStock"
	setStockMethod = "/" + InventoryServiceName + "/SetStock"
)

// StockService is the part of the catalog the inventory RPCs expose.
type StockService interface {
	GetInventory(ctx context.Context, productID int64) (*models.Inventory, error)
	SetStock(ctx context.Context, productID int64, quantity int) (*models.Inventory, error)
}

// inventoryHandler is the handler type checked by grpc.Server.RegisterService.
type inventoryHandler interface {
	GetStock(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	SetStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*inventoryHandler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStock", Handler: getStockHandler},
		{MethodName: "SetStock", Handler: setStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/inventory.proto",
}

func getStockHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(inventoryHandler).GetStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStockMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(inventoryHandler).GetStock(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func setStockHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(inventoryHandler).SetStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: setStockMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(inventoryHandler).SetStock(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// InventoryServer answers stock queries from back-office tools over gRPC.
type InventoryServer struct {
	stock    StockService
	sessions *auth.SessionManager
	logger   *zap.Logger
	health   *health.Server
	server   *grpc.Server
}

// NewInventoryServer serves GetStock to anyone and SetStock only to callers
// presenting an admin session token as "authorization: Bearer <token>" metadata.
func NewInventoryServer(stock StockService, sessions *auth.SessionManager, logger *zap.Logger) *InventoryServer {
	s := &InventoryServer{
		stock:    stock,
		sessions: sessions,
		logger:   logger.Named("grpc"),
		health:   health.NewServer(),
	}

	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(s.logInterceptor, s.authInterceptor))
	s.server.RegisterService(&inventoryServiceDesc, s)
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	s.health.SetServingStatus(InventoryServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve blocks until the listener fails or Stop is called.
func (s *InventoryServer) Serve(lis net.Listener) error {
	s.logger.Info("Inventory service started", zap.String("address", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

func (s *InventoryServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *InventoryServer) GetStock(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "product id must be positive")
	}
	inv, err := s.stock.GetInventory(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return stockStruct(inv)
}

// SetStock expects {"productId": n, "quantity": n}.
func (s *InventoryServer) SetStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	productID, err := wholeNumber(fields, "productId", maxExactInteger)
	if err != nil {
		return nil, err
	}
	if productID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "productId must be positive")
	}
	quantity, err := wholeNumber(fields, "quantity", math.MaxInt32)
	if err != nil {
		return nil, err
	}

	inv, err := s.stock.SetStock(ctx, productID, int(quantity))
	if err != nil {
		return nil, toStatus(err)
	}
	return stockStruct(inv)
}

// maxExactInteger is the largest integer a float64 holds without rounding.
const maxExactInteger = 1 << 53

// wholeNumber reads fields[name] as an integer within [-limit, limit].
func wholeNumber(fields map[string]*structpb.Value, name string, limit float64) (int64, error) {
	v, ok := fields[name].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	n := v.NumberValue
	if math.IsNaN(n) || n != math.Trunc(n) || math.Abs(n) > limit {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", name)
	}
	return int64(n), nil
}

func stockStruct(inv *models.Inventory) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]interface{}{
		"productId":   inv.ProductID,
		"quantity":    inv.Quantity,
		"lastUpdated": inv.LastUpdated.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	var code codes.Code
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.InsufficientStock, apperr.EmptyCart:
		code = codes.InvalidArgument
	case apperr.NotFound:
		code = codes.NotFound
	case apperr.Unauthenticated:
		code = codes.Unauthenticated
	case apperr.Forbidden:
		code = codes.PermissionDenied
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func (s *InventoryServer) logInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info("gRPC request",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, err
}

func (s *InventoryServer) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if info.FullMethod != setStockMethod {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "Authentication required")
	}
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	if !claims.IsAdmin {
		return nil, status.Error(codes.PermissionDenied, "Admin access required")
	}
	return handler(ctx, req)
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	const prefix = "Bearer "
	for _, header := range md.Get("authorization") {
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	return ""
}
