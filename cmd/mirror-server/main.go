package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"albumhub/internal/scraper"
)

// mirror-server serves a snapshot written by export-mirror. Point
// ALBUMS_WIKI_URL at it (http://localhost:9000/wiki/List_of_2021_albums) to
// scrape offline.
func main() {
	var (
		addr = flag.String("addr", ":9000", "listen address")
		dir  = flag.String("dir", "data/mirror", "snapshot directory")
	)
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		b, err := os.ReadFile(scraper.MirrorFile(*dir, r.URL.EscapedPath()))
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, "cannot read snapshot: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	})

	log.Printf("mirror-server serving %s on %s", *dir, *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
