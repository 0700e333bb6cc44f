package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
	stg "github.com/ing-bank/zkflow-sub006/storage"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// APIConfig type represents the configuration for the API HTTP server.
// It includes the host, port, the storage instance, the layouts served and
// the digest used to hash new witnesses.
type APIConfig struct {
	Host    string
	Port    int
	Storage *stg.Storage
	Catalog *witness.Catalog
	Digest  digest.Digest
}

// API type represents the API HTTP server.
type API struct {
	router   *chi.Mux
	storage  *stg.Storage
	catalog  *witness.Catalog
	digest   digest.Digest
	server   *http.Server
	listener net.Listener
}

// New creates a new API instance with the given configuration and starts
// the HTTP server. A zero port lets the system choose one, see Addr.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	if conf.Catalog == nil {
		return nil, fmt.Errorf("missing layouts catalog")
	}
	a := &API{
		storage: conf.Storage,
		catalog: conf.Catalog,
		digest:  conf.Digest,
	}
	if a.digest == nil {
		var err error
		if a.digest, err = digest.ByName(digest.NameBlake2b256); err != nil {
			return nil, err
		}
	}

	// Initialize router
	a.initRouter()

	ln, err := net.Listen("tcp", net.JoinHostPort(conf.Host, fmt.Sprint(conf.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	a.listener = ln
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "addr", ln.Addr().String(), "digest", a.digest.Name())
		if err := a.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorw(err, "API server failed")
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.listener.Addr()
}

// Shutdown gracefully stops the HTTP server.
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", LayoutsEndpoint, "method", "GET")
	a.router.Get(LayoutsEndpoint, a.layouts)
	log.Infow("register handler", "endpoint", LayoutEndpoint, "method", "GET")
	a.router.Get(LayoutEndpoint, a.layout)
	log.Infow("register handler", "endpoint", LayoutCircuitEndpoint, "method", "GET")
	a.router.Get(LayoutCircuitEndpoint, a.layoutCircuit)
	log.Infow("register handler", "endpoint", WitnessesEndpoint, "method", "POST")
	a.router.Post(WitnessesEndpoint, a.newWitness)
	log.Infow("register handler", "endpoint", WitnessesEndpoint, "method", "GET")
	a.router.Get(WitnessesEndpoint, a.witnesses)
	log.Infow("register handler", "endpoint", WitnessEndpoint, "method", "GET")
	a.router.Get(WitnessEndpoint, a.witness)
	log.Infow("register handler", "endpoint", WitnessPublicEndpoint, "method", "GET")
	a.router.Get(WitnessPublicEndpoint, a.publicInput)
	log.Infow("register handler", "endpoint", WitnessVerifyEndpoint, "method", "POST")
	a.router.Post(WitnessVerifyEndpoint, a.verify)
	log.Infow("register handler", "endpoint", OutputsRootEndpoint, "method", "GET")
	a.router.Get(OutputsRootEndpoint, a.outputsRoot)
	log.Infow("register handler", "endpoint", OutputEndpoint, "method", "GET")
	a.router.Get(OutputEndpoint, a.committedOutput)
}

// requestID tags each request with an id, keeping the one sent by the
// client if any, and logs it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		log.Debugw("api request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(requestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
