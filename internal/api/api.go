package api

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"livechat-backend/internal/api/middleware"
	"livechat-backend/internal/database"
	"livechat-backend/internal/queue"
	"livechat-backend/internal/service/chat"
	"livechat-backend/internal/service/staff"
	"livechat-backend/internal/service/widget"
)

const (
	dispatcherWorkers  = 32
	dispatcherCapacity = 256
)

type apiFunc func(w http.ResponseWriter, r *http.Request) error

type APIServer struct {
	listenAddr string
	Prefix     string

	DB     *database.Database
	Chat   *chat.Service
	Widget *widget.Service
	Staff  *staff.Service

	dispatcher *queue.Dispatcher
	mux        *http.ServeMux
}

type RouteRegistrar func(s *APIServer)

func NewAPIServer(listenAddr, prefix string, db *database.Database) *APIServer {
	s := NewAPIServerWithServices(listenAddr, prefix, chat.New(db), widget.New(db), staff.New(db))
	s.DB = db
	return s
}

// NewAPIServerWithServices wires pre-built services, used by tests and by
// setups that share service instances across servers.
func NewAPIServerWithServices(listenAddr, prefix string, chatSvc *chat.Service, widgetSvc *widget.Service, staffSvc *staff.Service) *APIServer {
	dispatcher := queue.NewDispatcher(dispatcherWorkers, dispatcherCapacity)
	dispatcher.DepthChanged = SetQueueDepth

	return &APIServer{
		listenAddr: listenAddr,
		Prefix:     prefix,
		Chat:       chatSvc,
		Widget:     widgetSvc,
		Staff:      staffSvc,
		dispatcher: dispatcher,
		mux:        http.NewServeMux(),
	}
}

func (s *APIServer) Register(registrars ...RouteRegistrar) {
	for _, register := range registrars {
		register(s)
	}
}

// Handle registers an apiFunc behind the dispatcher, the metrics recorder and
// any route middleware.
func (s *APIServer) Handle(pattern string, f apiFunc, middlewares ...middleware.Middleware) {
	h := middleware.Chain(makeHTTPHandleFunc(f), middlewares...)
	h = instrument(pattern, h)
	s.mux.HandleFunc(pattern, s.dispatcher.Middleware(h))
}

// HandleRaw bypasses the dispatcher, needed for handlers that hijack the
// connection.
func (s *APIServer) HandleRaw(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
}

// Handler returns the full middleware-wrapped handler. The dispatcher must
// be started before serving requests through it.
func (s *APIServer) Handler() http.Handler {
	handler := middleware.CORS(middleware.DefaultCORSConfig())(s.mux)
	return middleware.Logging(handler)
}

// StartDispatcher is exposed for serving the handler without Run.
func (s *APIServer) StartDispatcher() {
	s.dispatcher.Start()
}

func (s *APIServer) Run() error {
	s.dispatcher.Start()
	defer s.dispatcher.Stop()

	s.mux.Handle("GET /metrics", promhttp.Handler())

	log.Printf("listening on %s", s.listenAddr)
	return http.ListenAndServe(s.listenAddr, s.Handler())
}

func makeHTTPHandleFunc(f apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		httpErr, ok := err.(HTTPError)
		if !ok {
			httpErr = serviceError(err)
		}
		if httpErr.ErrorLog != nil {
			log.Printf("%s %s failed: %v", r.Method, r.URL.Path, httpErr.ErrorLog)
		}
		_ = WriteJSON(w, httpErr.StatusCode, map[string]string{"message": httpErr.Message})
	}
}
