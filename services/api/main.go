// Package api is a service providing an HTTP REST API to view the track and
// control geotracker.
//
// The endpoints supported are:
//
// http://localhost:8723/map - the rendered map document, for embedding in a dashboard
//
// http://localhost:8723/last - the most recent track point
//
// http://localhost:8723/history?limit=100 - the recorded track, oldest first
//
// http://localhost:8723/update - POST to record the current values now
//
// http://localhost:8723/query/{query}?timeout=5000&responses=1 - query a service, e.g. http://localhost:8723/query/geotracker/status
//
// http://localhost:8723/metrics - prometheus metrics
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/barnybug/geotracker/services"
	"github.com/barnybug/geotracker/services/geotracker"
)

const defaultAddr = ":8723"

// Service api
type Service struct {
}

// ID of the service
func (service *Service) ID() string {
	return "api"
}

func errorResponse(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func jsonResponse(w http.ResponseWriter, obj interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	err := enc.Encode(obj)
	if err != nil {
		errorResponse(w, err)
	}
}

func apiIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	fmt.Fprintf(w, `<html>Geotracker is listening. <a href="/map">map</a></html>`)
}

func apiMap(w http.ResponseWriter, r *http.Request) {
	html, err := services.Stor.Get(geotracker.KeyMap)
	if errors.Is(err, services.ErrKeyMissing) {
		http.Error(w, "no map rendered yet", http.StatusNotFound)
		return
	} else if err != nil {
		errorResponse(w, err)
		return
	}
	w.Header().Add("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func apiLast(w http.ResponseWriter, r *http.Request) {
	last, err := services.Stor.Get(geotracker.KeyLast)
	if errors.Is(err, services.ErrKeyMissing) {
		http.Error(w, "no track points recorded", http.StatusNotFound)
		return
	} else if err != nil {
		errorResponse(w, err)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(last))
}

func apiHistory(w http.ResponseWriter, r *http.Request) {
	if services.Config == nil {
		http.Error(w, "not configured", http.StatusServiceUnavailable)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit: "+s, http.StatusBadRequest)
			return
		}
		limit = n
	}

	c := services.Config.Geotracker.History
	points, err := geotracker.NewHistory(c.Path, c.Retention).Read()
	if err != nil {
		errorResponse(w, err)
		return
	}
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	jsonResponse(w, points)
}

func apiUpdate(w http.ResponseWriter, r *http.Request) {
	services.SendCommand("geotracker", "update")
	jsonResponse(w, true)
}

const (
	defaultQueryTimeout = 100 * time.Millisecond
	maxQueryTimeout     = time.Minute
)

// queryOptions reads the answer window (timeout, in ms) and the number of
// answers to wait for (responses, 0 = all within the window).
func queryOptions(values url.Values) (time.Duration, int, error) {
	timeout := defaultQueryTimeout
	if s := values.Get("timeout"); s != "" {
		ms, err := strconv.Atoi(s)
		if err != nil || ms <= 0 {
			return 0, 0, fmt.Errorf("invalid timeout: %s", s)
		}
		timeout = time.Duration(ms) * time.Millisecond
		if timeout > maxQueryTimeout {
			timeout = maxQueryTimeout
		}
	}
	responses := 0
	if s := values.Get("responses"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid responses: %s", s)
		}
		responses = n
	}
	return timeout, responses, nil
}

func apiQuery(w http.ResponseWriter, r *http.Request) {
	timeout, responses, err := queryOptions(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := mux.Vars(r)["query"]
	if args := r.URL.Query().Get("q"); args != "" {
		q += " " + args
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")

	n := 0
	for ev := range services.QueryChannel(q, timeout) {
		fmt.Fprint(w, ev.String()+"\r\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		n++
		if responses > 0 && n >= responses {
			break
		}
	}
}

func router() *mux.Router {
	router := mux.NewRouter()
	router.Path("/").HandlerFunc(apiIndex)
	router.Path("/map").Methods("GET").HandlerFunc(apiMap)
	router.Path("/last").Methods("GET").HandlerFunc(apiLast)
	router.Path("/history").Methods("GET").HandlerFunc(apiHistory)
	router.Path("/update").Methods("POST").HandlerFunc(apiUpdate)
	router.Path("/query/{query:.+}").HandlerFunc(apiQuery)
	router.Path("/metrics").Handler(promhttp.Handler())
	router.Use(corsMiddleware, loggingMiddleware)
	return router
}

// corsMiddleware lets dashboards on other origins embed the map.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("%s %s", r.Method, r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

// listenAddr takes the port from the configured api endpoint, eg.
// http://localhost:8723.
func listenAddr() string {
	if services.Config == nil || services.Config.Endpoints.Api == "" {
		return defaultAddr
	}
	u, err := url.Parse(services.Config.Endpoints.Api)
	if err != nil || u.Port() == "" {
		return defaultAddr
	}
	return ":" + u.Port()
}

// Run the service
func (service *Service) Run() error {
	addr := listenAddr()
	log.Infoln("Listening on", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
