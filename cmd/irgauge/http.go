package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/pvollmer/irgauge/internal/station"
)

//go:embed status.tmpl
var statusTmpl string

var statuspage = template.Must(template.New("status").Parse(statusTmpl))

func handleStatus(s *station.Station) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buf, err := json.Marshal(s.Snapshot())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data := struct{ InitialJSON string }{InitialJSON: string(buf)}
		if err := statuspage.ExecuteTemplate(w, "status", data); err != nil {
			log.Errorf("Status page: %s", err)
		}
	}
}

func handleJSON(s *station.Station) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Method != http.MethodGet {
			http.Error(w, "GET only", http.StatusMethodNotAllowed)
			return
		}
		buf, err := json.Marshal(s.Snapshot())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(buf)
	}
}

// JSONClient serves the status page and json
func JSONClient(ctx context.Context, wg *sync.WaitGroup, port string, s *station.Station) {
	wg.Add(1)
	defer func() {
		log.Trace("JSON client calling done on main wait group")
		wg.Done()
	}()

	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleStatus(s))
	mux.HandleFunc("/status", handleJSON(s))

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%s", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		log.Trace("Shutting down JSON server")
		srv.Shutdown(context.Background())
	}()

	log.Debugf("JSON server starting on port %s ...", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(err)
	}
}
