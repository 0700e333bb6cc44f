package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ing-bank/zkflow-sub006/api"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/storage"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	storage *storage.Storage
	catalog *witness.Catalog
	digest  digest.Digest
	api     *api.API
	mu      sync.Mutex
	cancel  context.CancelFunc
	host    string
	port    int
}

// NewAPI creates a new APIService instance.
func NewAPI(storage *storage.Storage, catalog *witness.Catalog, d digest.Digest, host string, port int) *APIService {
	return &APIService{
		storage: storage,
		catalog: catalog,
		digest:  d,
		host:    host,
		port:    port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when
// ctx is done.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:    as.host,
		Port:    as.port,
		Storage: as.storage,
		Catalog: as.catalog,
		Digest:  as.digest,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, as.cancel = context.WithCancel(ctx)
	srv := as.api
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	return nil
}

// Stop halts the API server. The storage is left open.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
	}
}

// HostPort returns the host and port of the API server. Once started, the
// port is the one actually bound.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api != nil && as.cancel != nil {
		if addr, ok := as.api.Addr().(*net.TCPAddr); ok {
			return as.host, addr.Port
		}
	}
	return as.host, as.port
}
