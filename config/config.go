// Package config holds the typed configuration snapshot the launcher builds
// from CLI arguments and environment variables, mirroring the nested-group
// shape and Default() constructor of the reference framework's own
// config.Config.
//
// Grounded on the reference framework's config/config.go.
package config

import "time"

// Socket groups the TCP-level options section 6 exposes.
type Socket struct {
	Address      string
	Port         int
	Backlog      int
	KeepAlive    bool
	NoDelay      bool
	ReuseAddress bool
	RecvBuffer   int
	SendBuffer   int
}

// Pools groups the two direct-buffer pool sizes.
type Pools struct {
	BufferCacheBytes       int
	StaticBufferCacheBytes int
	// FileBufferSize is the size, in bytes, of each buffer the file-side
	// pool hands out for the PUT body-to-file and GET file-to-response copy
	// loops, distinct from the network-side rcvbuf/sndbuf sizing.
	FileBufferSize int
}

// Timeouts groups the connection-lifetime bounds.
type Timeouts struct {
	IO                time.Duration
	MaxConnectionTime time.Duration
}

// Static groups the reference file handler's options.
type Static struct {
	Root    string
	List    bool
	Write   bool
	Charset string
}

// Config is the fully-resolved configuration snapshot passed to the
// launcher.
type Config struct {
	Socket         Socket
	Pools          Pools
	Timeouts       Timeouts
	Static         Static
	MaxConnections int
	LogLevel       string
}

// Default returns the section 6 CLI defaults.
func Default() *Config {
	return &Config{
		Socket: Socket{
			Address:      "0.0.0.0",
			Backlog:      1024,
			KeepAlive:    true,
			NoDelay:      true,
			ReuseAddress: true,
			RecvBuffer:   65536,
			SendBuffer:   65536,
		},
		Pools: Pools{
			BufferCacheBytes:       16 * 1024 * 1024,
			StaticBufferCacheBytes: 16 * 1024 * 1024,
			FileBufferSize:         65536,
		},
		Timeouts: Timeouts{
			IO:                2 * time.Second,
			MaxConnectionTime: 10 * time.Second,
		},
		Static: Static{
			Root:    "./www",
			List:    true,
			Write:   false,
			Charset: "utf-8",
		},
		MaxConnections: 1024,
		LogLevel:       "info",
	}
}
