package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Load implements section 6's CLI surface: an even number of positional
// arguments forming <name> <value> pairs, with any name left unset falling
// back to the KSAH_<UPPERNAME> environment variable, and finally to the
// Default() value. Unknown names are ignored.
func Load(args []string) (*Config, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("config: expected an even number of <name> <value> arguments, got %d", len(args))
	}

	provided := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		provided[strings.ToLower(args[i])] = args[i+1]
	}

	cfg := Default()

	portRaw, portSet := lookup(provided, "port")
	if !portSet || portRaw == "" {
		return nil, fmt.Errorf("config: %q is required", "port")
	}

	port, err := strconv.Atoi(portRaw)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("config: invalid port %q", portRaw)
	}
	cfg.Socket.Port = port

	if v, ok := lookup(provided, "address"); ok {
		cfg.Socket.Address = v
	}

	if v, ok := lookup(provided, "backlog"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Socket.Backlog = n
		}
	}

	if v, ok := lookup(provided, "keepalive"); ok {
		cfg.Socket.KeepAlive = parseBool(v, cfg.Socket.KeepAlive)
	}
	if v, ok := lookup(provided, "nodelay"); ok {
		cfg.Socket.NoDelay = parseBool(v, cfg.Socket.NoDelay)
	}
	if v, ok := lookup(provided, "reuseaddress"); ok {
		cfg.Socket.ReuseAddress = parseBool(v, cfg.Socket.ReuseAddress)
	}

	if v, ok := lookup(provided, "rcvbuf"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Socket.RecvBuffer = n
		}
	}
	if v, ok := lookup(provided, "sndbuf"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Socket.SendBuffer = n
		}
	}

	if v, ok := lookup(provided, "buffercache"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pools.BufferCacheBytes = n
		}
	}
	if v, ok := lookup(provided, "staticbuffercache"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pools.StaticBufferCacheBytes = n
		}
	}
	if v, ok := lookup(provided, "buffersize"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1024 {
			cfg.Pools.FileBufferSize = n
		}
	}

	if v, ok := lookup(provided, "timeout"); ok {
		d, err := ParseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.Timeouts.IO = d
	}

	if v, ok := lookup(provided, "maxconnectiontime"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("config: invalid maxconnectiontime %q", v)
		}
		cfg.Timeouts.MaxConnectionTime = time.Duration(n) * time.Millisecond
	}

	if v, ok := lookup(provided, "maxconnnections"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConnections = n
		}
	}

	if v, ok := lookup(provided, "root"); ok {
		cfg.Static.Root = v
	}
	if v, ok := lookup(provided, "list"); ok {
		cfg.Static.List = parseBool(v, cfg.Static.List)
	}
	if v, ok := lookup(provided, "write"); ok {
		cfg.Static.Write = parseBool(v, cfg.Static.Write)
	}
	if v, ok := lookup(provided, "charset"); ok {
		normalized, err := ParseCharset(v)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.Static.Charset = normalized
	}

	if v, ok := lookup(provided, "loglevel"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// lookup resolves name from the CLI-provided pairs, falling back to its
// KSAH_<UPPERNAME> environment variable. The bool return is false only when
// neither source set the value.
func lookup(provided map[string]string, name string) (string, bool) {
	if v, ok := provided[name]; ok {
		return v, true
	}

	if v, ok := os.LookupEnv("KSAH_" + strings.ToUpper(name)); ok {
		return v, true
	}

	return "", false
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}

	return b
}

