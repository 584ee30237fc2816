// Package config is smoldb's configuration layer: CLI flags via
// pflag, layered over a YAML file and environment variables via
// viper, in the style of the teacher's internal/util/paramtable
// BaseTable but sized to smoldb's much smaller surface — one process
// role, one flat Config struct, no per-component sub-tables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/smoldb/smoldb/internal/log"
	"github.com/smoldb/smoldb/internal/types"
)

const envPrefix = "smoldb"

// Log holds the log sub-config, reusing internal/log's own Config
// shape so Init can hand it straight to log.Init.
type Log = log.Config

// Config is smoldb's full runtime configuration, assembled from
// defaults, an optional YAML file, environment variables (prefixed
// SMOLDB_) and CLI flags, in that increasing order of precedence.
type Config struct {
	// ListenURL is the external HTTP API bind address.
	ListenURL string
	// P2PURL is the internal gRPC bind address peers dial.
	P2PURL string
	// BootstrapURL, if set, is an existing peer's P2PURL this process
	// should contact on first start to join the cluster.
	BootstrapURL string
	// PeerID is this process's cluster identity. If zero, Load picks a
	// random one; it is not persisted, so each start without
	// --peer-id gets a new id.
	PeerID types.PeerID
	// StorageRoot is the directory holding collections/*. Consensus
	// state is kept in memory only and is not written here.
	StorageRoot string
	// WriteConsistencyFactor is the minimum number of replicas
	// (including local) that must accept a write for it to count as
	// committed, per spec.md §4.5.
	WriteConsistencyFactor int
	// ConnectTimeout bounds dialing a peer's gRPC channel.
	ConnectTimeout time.Duration
	// CallTimeout bounds a single internal RPC call.
	CallTimeout time.Duration
	// RaftTickInterval is the consensus driver's logical clock tick,
	// per spec.md §4.8.
	RaftTickInterval time.Duration
	// WorkerThreads sizes any internally-managed worker pools. Zero
	// means "use runtime.GOMAXPROCS".
	WorkerThreads int

	Log Log
}

// Defaults returns the baseline Config before file/env/flag overlays.
func Defaults() Config {
	return Config{
		ListenURL:              "http://0.0.0.0:9900",
		P2PURL:                 "http://0.0.0.0:9920",
		StorageRoot:            "./storage",
		WriteConsistencyFactor: 2,
		ConnectTimeout:         10 * time.Second,
		CallTimeout:            10 * time.Second,
		RaftTickInterval:       100 * time.Millisecond,
		WorkerThreads:          0,
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// BindFlags registers smoldb's CLI flags on fs, in the style of the
// teacher's cmd/ role entrypoints which build a pflag.FlagSet before
// touching viper.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("listen-url", "", "external HTTP API bind address")
	fs.String("p2p-url", "", "internal gRPC bind address")
	fs.String("bootstrap-url", "", "existing peer's p2p-url to join through")
	fs.Uint64("peer-id", 0, "this peer's cluster id (0 = generate)")
	fs.String("storage-root", "", "directory for collection and segment data")
	fs.Int("write-consistency-factor", 0, "minimum replicas required to ack a write")
	fs.Duration("connect-timeout", 0, "peer dial timeout")
	fs.Duration("call-timeout", 0, "internal RPC call timeout")
	fs.Duration("raft-tick-interval", 0, "consensus driver tick interval")
	fs.Int("worker-threads", 0, "size of internal worker pools (0 = GOMAXPROCS)")
	fs.String("log-level", "", "debug, info, warn, or error")
	fs.String("log-format", "", "console or json")
	fs.String("config", "", "path to a YAML config file")
}

// Load assembles a Config from defaults, an optional YAML file named
// by the --config flag, SMOLDB_-prefixed environment variables, and
// any flags explicitly set on fs, in that precedence order.
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile, _ := fs.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
	}

	if err := v.BindPFlags(fs); err != nil {
		return cfg, fmt.Errorf("config: binding flags: %w", err)
	}

	if s := v.GetString("listen-url"); s != "" {
		cfg.ListenURL = s
	}
	if s := v.GetString("p2p-url"); s != "" {
		cfg.P2PURL = s
	}
	if s := v.GetString("bootstrap-url"); s != "" {
		cfg.BootstrapURL = s
	}
	if id := v.GetUint64("peer-id"); id != 0 {
		cfg.PeerID = types.PeerID(id)
	}
	if s := v.GetString("storage-root"); s != "" {
		cfg.StorageRoot = s
	}
	if n := v.GetInt("write-consistency-factor"); n != 0 {
		cfg.WriteConsistencyFactor = n
	}
	if d := v.GetDuration("connect-timeout"); d != 0 {
		cfg.ConnectTimeout = d
	}
	if d := v.GetDuration("call-timeout"); d != 0 {
		cfg.CallTimeout = d
	}
	if d := v.GetDuration("raft-tick-interval"); d != 0 {
		cfg.RaftTickInterval = d
	}
	if n := v.GetInt("worker-threads"); n != 0 {
		cfg.WorkerThreads = n
	}
	if s := v.GetString("log-level"); s != "" {
		cfg.Log.Level = s
	}
	if s := v.GetString("log-format"); s != "" {
		cfg.Log.Format = s
	}

	if cfg.PeerID == 0 {
		cfg.PeerID = types.NewRandomPeerID()
	}

	return cfg, nil
}
