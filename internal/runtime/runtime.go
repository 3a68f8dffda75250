package runtime

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/kiprasmel/sapling/internal/auxstore"
	"github.com/kiprasmel/sapling/internal/blobstore"
	cfgpkg "github.com/kiprasmel/sapling/internal/config"
	"github.com/kiprasmel/sapling/internal/graph"
	"github.com/kiprasmel/sapling/internal/logstore"
	"github.com/kiprasmel/sapling/internal/registry"
	"github.com/kiprasmel/sapling/internal/repo"
	pebblestore "github.com/kiprasmel/sapling/internal/storage/pebble"
	"github.com/kiprasmel/sapling/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  log.Logger
}

// Runtime wires storage, config, and repository handles for a single-node
// instance. The blob store and graph index share one database; repositories
// are disambiguated by their registered ids.
type Runtime struct {
	db     *pebblestore.DB
	dir    string
	config cfgpkg.Config
	logger log.Logger
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: filepath.Join(opts.DataDir, "db"), Fsync: opts.Fsync})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runtime{db: db, dir: opts.DataDir, config: opts.Config, logger: logger}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// OpenRepo returns the handle for the named repository, registering the name
// on first use.
func (r *Runtime) OpenRepo(name string) (*repo.Repository, error) {
	meta, err := registry.Ensure(r.db, name)
	if err != nil {
		return nil, err
	}
	blobs := blobstore.NewScoped(r.db, meta.ID)
	gx := graph.NewPebbleIndex(r.db)
	return repo.New(meta.ID, meta.Name, blobs, gx, r.logger), nil
}

// OpenAuxStore opens the named file-metadata store under the data directory.
func (r *Runtime) OpenAuxStore(name string, access logstore.Access) (*auxstore.Store, error) {
	return auxstore.Open(filepath.Join(r.dir, "aux", name), r.config.AuxOptions(), access)
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
