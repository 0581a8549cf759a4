// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

// Command gateway is the JSON-RPC gateway's entry point: it loads
// configuration, builds the method registry from the eth/net/web3/debug
// service handlers, wires the rate-limit decorator around each operation
// and the cache decorator around the cacheable read methods, and serves
// HTTP and WebSocket.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/r5-labs/r5-rpc-gateway/backend"
	"github.com/r5-labs/r5-rpc-gateway/cache"
	"github.com/r5-labs/r5-rpc-gateway/config"
	"github.com/r5-labs/r5-rpc-gateway/ethapi"
	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/ratelimit"
	"github.com/r5-labs/r5-rpc-gateway/rpc"
	"github.com/urfave/cli/v2"
)

// cacheableGetMethods lists the read-only operations worth memoizing,
// each paired with the positional argument index holding a block tag that
// makes the call non-cacheable when it is "latest"/"pending"/"safe"/
// "finalized" — spec.md §6's cache-skip rule.
var cacheableGetMethods = map[string]int{
	"eth_getBalance":          1,
	"eth_getTransactionCount": 1,
	"eth_getCode":             1,
	"eth_getStorageAt":        2,
	"eth_getBlockByNumber":    0,
	"eth_call":                1,
}

var nonCacheableBlockTags = []string{"latest", "pending", "safe", "finalized"}

func main() {
	app := &cli.App{
		Name:  "gateway",
		Usage: "Ethereum-compatible JSON-RPC gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a TOML configuration file"},
			&cli.StringFlag{Name: "listen-addr", Usage: "HTTP/WebSocket listen address"},
			&cli.StringFlag{Name: "archive-url", Usage: "base URL of the archival mirror service"},
			&cli.StringFlag{Name: "consensus-url", Usage: "submission URL of the consensus client"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("gateway exited", "error", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if v := c.String("listen-addr"); v != "" {
		cfg.ListenAddr = v
	}

	archiveURL := c.String("archive-url")
	if archiveURL == "" {
		archiveURL = "http://127.0.0.1:9090"
	}
	consensusURL := c.String("consensus-url")
	if consensusURL == "" {
		consensusURL = "http://127.0.0.1:9091/submit"
	}

	archive := backend.NewHTTPArchive(archiveURL, 10*time.Second)
	consensus := backend.NewHTTPConsensus(consensusURL, 10*time.Second)

	eth := ethapi.NewEthService(archive, consensus, cfg.ChainID, cfg.MaxFilters, cfg.FilterTTL)
	net := ethapi.NewNetService(cfg.NetworkID)
	web3 := ethapi.NewWeb3Service(cfg.ClientID)

	apis := []rpc.API{
		{Namespace: "eth", Service: eth},
		{Namespace: "net", Service: net},
		{Namespace: "web3", Service: web3},
	}
	if cfg.DebugAPIEnabled {
		apis = append(apis, rpc.API{Namespace: "debug", Service: ethapi.NewDebugService(archive)})
	}

	registry, err := rpc.BuildRegistry(apis)
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}
	log.Info("registry built", "operations", registry.Len())

	limitStore, err := buildRateLimitStore(cfg)
	if err != nil {
		return fmt.Errorf("building rate-limit store: %w", err)
	}

	if !cfg.RateLimitDisabled {
		for _, name := range registry.Names() {
			registry.Decorate(name, func(h func([]any) (any, error)) func([]any) (any, error) {
				return rpc.RateLimited(name, h, limitStore, cfg.DefaultRateLimit)
			})
		}
	}

	cacheStore := cache.NewStore(cache.Options{Size: cfg.CacheMax, TTL: cfg.CacheTTL})
	for name, skipIdx := range cacheableGetMethods {
		registry.Decorate(name, func(h func([]any) (any, error)) func([]any) (any, error) {
			return cache.Wrap(name, h, cache.Options{
				Size: cfg.CacheMax,
				TTL:  cfg.CacheTTL,
				Skip: []cache.ParamSkip{{ArgIndex: skipIdx, Values: nonCacheableBlockTags}},
			}, cacheStore)
		})
	}

	if cfg.SubscriptionsEnabled {
		registerEventSources(archive, cfg)
	}

	dispatcher := rpc.NewDispatcher(registry, cfg.DebugAPIEnabled)
	server := rpc.NewServer(dispatcher, cfg.CORSOrigins)

	mux := http.NewServeMux()
	mux.Handle("/", server.Handler())
	if cfg.SubscriptionsEnabled {
		limiter := rpc.NewConnLimiter(cfg.WSConnectionLimit, cfg.WSConnectionLimitPerIP)
		mux.Handle("/ws", server.WebsocketHandler(cfg.WSOrigins, limiter))
	}

	log.Info("gateway listening", "addr", cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, mux)
}

func buildRateLimitStore(cfg config.Config) (ratelimit.Store, error) {
	if cfg.IPRateLimitStore == "REDIS" && cfg.RedisEnabled {
		return ratelimit.NewRedisStore(cfg.RedisURL, "", 0, cfg.LimitDuration), nil
	}
	return ratelimit.NewLRUStore(100000, cfg.LimitDuration)
}

// registerEventSources wires the subscription runtime's event sources
// against the archival client, per spec.md §4.6.
func registerEventSources(archive backend.Archive, cfg config.Config) {
	if cfg.WSNewHeadsEnabled {
		rpc.RegisterEventSource("newHeads", func(filters map[string]any) (any, error) {
			result, status, err := archive.Get(context.Background(), "/blocks/latest")
			if err != nil {
				return nil, err
			}
			if status < 200 || status >= 300 {
				return nil, fmt.Errorf("archive returned status %d", status)
			}
			return result, nil
		})
	}
	rpc.RegisterEventSource("logs", func(filters map[string]any) (any, error) {
		result, status, err := archive.Get(context.Background(), "/logs/latest")
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("archive returned status %d", status)
		}
		return result, nil
	})
	rpc.RegisterEventSource("newPendingTransactions", func(filters map[string]any) (any, error) {
		result, status, err := archive.Get(context.Background(), "/transactions/pending/latest")
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("archive returned status %d", status)
		}
		return result, nil
	})
}
