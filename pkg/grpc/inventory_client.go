package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/discovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// StockLevel is the decoded answer of the inventory RPCs.
type StockLevel struct {
	ProductID   int64
	Quantity    int
	LastUpdated time.Time
}

// InventoryClient talks to an InventoryServer.
type InventoryClient struct {
	conn   *grpc.ClientConn
	logger *zap.Logger
	token  string
}

// DialInventory resolves the inventory endpoint, through etcd when disc is set and
// falling back to target otherwise, and opens a client connection.
func DialInventory(target string, disc *discovery.ServiceDiscovery, logger *zap.Logger) (*InventoryClient, error) {
	if disc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		instances, err := disc.Discover(ctx, DiscoveryName)
		if err == nil && len(instances) > 0 {
			target = instances[0].Addr
			logger.Info("Discovered inventory service", zap.String("address", target))
		} else {
			logger.Info("Using default address for inventory service", zap.String("address", target))
		}
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to inventory service: %w", err)
	}
	return NewInventoryClient(conn, logger), nil
}

func NewInventoryClient(conn *grpc.ClientConn, logger *zap.Logger) *InventoryClient {
	return &InventoryClient{conn: conn, logger: logger}
}

// WithToken returns a client that sends token as a Bearer session on every call.
// SetStock requires an admin session.
func (c *InventoryClient) WithToken(token string) *InventoryClient {
	clone := *c
	clone.token = token
	return &clone
}

func (c *InventoryClient) outgoing(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *InventoryClient) GetStock(ctx context.Context, productID int64) (*StockLevel, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), getStockMethod, wrapperspb.Int64(productID), out); err != nil {
		return nil, err
	}
	return decodeStock(out)
}

func (c *InventoryClient) SetStock(ctx context.Context, productID int64, quantity int) (*StockLevel, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
	})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), setStockMethod, in, out); err != nil {
		return nil, err
	}
	return decodeStock(out)
}

func decodeStock(s *structpb.Struct) (*StockLevel, error) {
	fields := s.GetFields()
	level := &StockLevel{
		ProductID: int64(fields["productId"].GetNumberValue()),
		Quantity:  int(fields["quantity"].GetNumberValue()),
	}
	if raw := fields["lastUpdated"].GetStringValue(); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("bad lastUpdated %q: %w", raw, err)
		}
		level.LastUpdated = t
	}
	return level, nil
}

func (c *InventoryClient) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("inventory connection close error: %w", err)
	}
	return nil
}
