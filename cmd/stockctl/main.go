// Command stockctl reads and sets stock levels through the storefront's gRPC
// inventory service.
//
//	stockctl [-addr host:port] [-etcd endpoints] get <productId>
//	stockctl [-addr host:port] [-etcd endpoints] -token <session> set <productId> <quantity>
//
// set needs an admin session token, taken from -token or STOREFRONT_TOKEN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	storefrontgrpc "github.com/example/storefront/pkg/grpc"
	"github.com/example/storefront/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "inventory service address")
	etcd := flag.String("etcd", "", "comma separated etcd endpoints used to discover the service")
	prefix := flag.String("prefix", "/services/", "etcd key prefix")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	token := flag.String("token", os.Getenv("STOREFRONT_TOKEN"), "admin session token sent as a Bearer credential")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] get <productId> | set <productId> <quantity>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := logging.New(config.LogConfig{Level: "warn", Encoding: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(flag.Args(), *addr, *etcd, *prefix, *token, *timeout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, addr, etcd, prefix, token string, timeout time.Duration, logger *zap.Logger) error {
	if len(args) < 2 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}

	productID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[1])
	}

	var sd *discovery.ServiceDiscovery
	if etcd != "" {
		sd, err = discovery.NewServiceDiscovery(&config.EtcdConfig{
			Endpoints:   strings.Split(etcd, ","),
			DialTimeout: timeout,
			Prefix:      prefix,
		}, logger)
		if err != nil {
			return err
		}
		defer sd.Close()
	}

	client, err := storefrontgrpc.DialInventory(addr, sd, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	if token != "" {
		client = client.WithToken(token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var level *storefrontgrpc.StockLevel
	switch args[0] {
	case "get":
		level, err = client.GetStock(ctx, productID)
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("set needs a quantity")
		}
		quantity, convErr := strconv.Atoi(args[2])
		if convErr != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		level, err = client.SetStock(ctx, productID, quantity)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("product %d: %d in stock (updated %s)\n", level.ProductID, level.Quantity, level.LastUpdated.Format(time.RFC3339))
	return nil
}
