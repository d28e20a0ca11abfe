// Command ksahd is the process entry point wiring config, the static
// handler and the server together.
//
// Grounded on the reference framework's examples/middlewares/main.go
// (flat main assembling router + app + Serve) generalized to this
// engine's config/handler/server assembly and its signal-driven shutdown.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/karlpauls/ksah/config"
	"github.com/karlpauls/ksah/conn"
	"github.com/karlpauls/ksah/internal/bufpool"
	"github.com/karlpauls/ksah/internal/logutil"
	"github.com/karlpauls/ksah/request"
	"github.com/karlpauls/ksah/response"
	"github.com/karlpauls/ksah/server"
	"github.com/karlpauls/ksah/statichandler"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ksahd:", err)
		return 1
	}

	log := logutil.New(logutil.ParseLevel(cfg.LogLevel))

	if info, err := os.Stat(cfg.Static.Root); err != nil || !info.IsDir() {
		fallback := config.Default().Static.Root
		log.Warn("configured root %q is not a directory; using %q", cfg.Static.Root, fallback)
		cfg.Static.Root = fallback
	}

	filePool := bufpool.New(cfg.Pools.StaticBufferCacheBytes, cfg.Pools.FileBufferSize)
	static := statichandler.New(statichandler.Config{
		Root:    cfg.Static.Root,
		List:    cfg.Static.List,
		Write:   cfg.Static.Write,
		Charset: cfg.Static.Charset,
	}, filePool)

	handler := conn.Handler(func(req *request.Request, resp *response.Response) {
		static.Handle(req, resp)
	})

	addr := net.JoinHostPort(cfg.Socket.Address, strconv.Itoa(cfg.Socket.Port))

	srv, err := server.New(addr, server.Options{
		Socket: server.SocketOptions{
			KeepAlive:    cfg.Socket.KeepAlive,
			NoDelay:      cfg.Socket.NoDelay,
			ReuseAddress: cfg.Socket.ReuseAddress,
			SendBuffer:   cfg.Socket.SendBuffer,
			RecvBuffer:   cfg.Socket.RecvBuffer,
		},
		Backlog:           cfg.Socket.Backlog,
		BufferCacheBytes:  cfg.Pools.BufferCacheBytes,
		MaxConnections:    cfg.MaxConnections,
		Timeout:           cfg.Timeouts.IO,
		MaxConnectionTime: cfg.Timeouts.MaxConnectionTime,
	}, handler, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ksahd: bind failed:", err)
		return 1
	}

	log.Info("ksahd listening on %s, serving %s", srv.Addr(), cfg.Static.Root)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			fmt.Fprintln(os.Stderr, "ksahd: accept loop failed:", err)
			return 1
		}
	case s := <-sig:
		log.Info("received %s, shutting down", s)

		if err := srv.Close(); err != nil {
			log.Warn("error while closing listener: %v", err)
		}

		if !srv.AwaitClose(cfg.Timeouts.MaxConnectionTime) {
			log.Warn("graceful shutdown timed out, some connections were force-closed")
		}
	}

	log.Info("ksahd stopped")

	return 0
}
