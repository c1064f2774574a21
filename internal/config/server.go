package config

import (
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Server holds cmd/server settings. Environment values become the flag
// defaults, so a flag always wins.
type Server struct {
	Addr         string `env:"GEOCOIN_ADDR"          envDefault:":8080"`
	DataDir      string `env:"GEOCOIN_DATA_DIR"      envDefault:"./data"`
	ConfigDir    string `env:"GEOCOIN_CONFIGS"       envDefault:"./configs"`
	TuningPath   string `env:"GEOCOIN_TUNING"`
	StoreBackend string `env:"GEOCOIN_STORE"         envDefault:"file"`
	SnapshotDir  string `env:"GEOCOIN_SNAPSHOT_DIR"`
	IndexBackend string `env:"GEOCOIN_INDEX_BACKEND" envDefault:"sqlite"`
	DeployEnv    string `env:"DEPLOY_ENV"`

	// Empty means "decide from DEPLOY_ENV".
	AdminHTTP string `env:"GEOCOIN_ENABLE_ADMIN_HTTP"`
	PprofHTTP bool   `env:"GEOCOIN_ENABLE_PPROF_HTTP"`
}

// ParseServer reads the environment, then flags from args.
func ParseServer(fs *flag.FlagSet, args []string) (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "http listen address")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "runtime data directory")
	fs.StringVar(&cfg.ConfigDir, "configs", cfg.ConfigDir, "config directory")
	fs.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "path to tuning.yaml (default: <configs>/tuning.yaml)")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "durable store backend: memory|file|sqlite")
	fs.StringVar(&cfg.SnapshotDir, "snapshot_dir", cfg.SnapshotDir, "snapshot directory (default: <data>/snapshots)")
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) Validate() error {
	switch c.StoreBackend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("unsupported store backend: %q", c.StoreBackend)
	}
	switch c.IndexBackend {
	case "sqlite", "none", "off", "disabled":
	default:
		return fmt.Errorf("unsupported index backend: %q", c.IndexBackend)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir is required")
	}
	return nil
}

func (c Server) TuningFile() string {
	if p := strings.TrimSpace(c.TuningPath); p != "" {
		return p
	}
	return filepath.Join(c.ConfigDir, "tuning.yaml")
}

func (c Server) SnapshotsDir() string {
	if d := strings.TrimSpace(c.SnapshotDir); d != "" {
		return d
	}
	return filepath.Join(c.DataDir, "snapshots")
}

// StorePath is where the durable store lives for file and sqlite backends.
func (c Server) StorePath() string {
	switch c.StoreBackend {
	case "sqlite":
		return filepath.Join(c.DataDir, "store.sqlite")
	case "file":
		return filepath.Join(c.DataDir, "store.json.zst")
	}
	return ""
}

func (c Server) IndexEnabled() bool { return c.IndexBackend == "sqlite" }

func (c Server) IndexPath() string { return filepath.Join(c.DataDir, "index", "session.sqlite") }

// AdminEnabled defaults to off in staging and production.
func (c Server) AdminEnabled() bool {
	if v := strings.TrimSpace(c.AdminHTTP); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.DeployEnv)) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
