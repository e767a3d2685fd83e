package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServiceKey(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"/storefront/services/", "inventory", "/storefront/services/inventory/"},
		{"/storefront/services", "inventory", "/storefront/services/inventory/"},
		{"", "inventory", "inventory/"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, serviceKey(tt.prefix, tt.name))
		})
	}
}

func TestRegisterDiscover(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "localhost:2379", 200*time.Millisecond)
	if err != nil {
		t.Skip("etcd not available on localhost:2379")
	}
	conn.Close()

	cfg := &config.EtcdConfig{
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: 2 * time.Second,
		Prefix:      "/storefront-test/",
		LeaseTTL:    5,
	}
	sd, err := NewServiceDiscovery(cfg, zap.NewNop())
	require.NoError(t, err)
	defer sd.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	instance := &ServiceInstance{Name: "inventory", Addr: "127.0.0.1:9090"}
	require.NoError(t, sd.Register(ctx, instance))

	found, err := sd.Discover(ctx, "inventory")
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, "127.0.0.1:9090", found[0].Addr)

	require.NoError(t, sd.Deregister(ctx, instance))
	found, err = sd.Discover(ctx, "inventory")
	require.NoError(t, err)
	assert.Empty(t, found)
}
