// Command gate runs the edge gate in front of the webfolio web app: a
// reverse proxy that applies the cookie-based route rules before forwarding
// to the upstream renderer.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/webfolio/webfolio/internal/buildinfo"
	"github.com/webfolio/webfolio/internal/httpgate"
	"github.com/webfolio/webfolio/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	listenAddr := flag.String("listen", ":3000", "address to listen on")
	upstreamAddr := flag.String("upstream", "http://127.0.0.1:3001", "upstream app server URL")
	flag.Parse()

	upstream, err := url.Parse(*upstreamAddr)
	if err != nil {
		log.Fatalf("invalid upstream URL: %v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	proxy := httputil.NewSingleHostReverseProxy(upstream)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpgate.Middleware(logger))
	r.Handle("/*", proxy)

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("gate listening on %s, upstream %s", *listenAddr, upstream)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("%v", err)
	}
}
