package main

import (
	"context"
	"flag"
	"log"
	"time"

	"albumhub/internal/album"
	"albumhub/internal/albumio"
	"albumhub/pkg/database"
	"albumhub/pkg/models"
	"albumhub/pkg/utils"
)

func main() {
	var (
		out   = flag.String("out", "data/albums.csv", "output path (.csv or .json)")
		genre = flag.String("genre", "", "only albums with this genre")
		from  = flag.String("from", "", "only albums released on or after this date (YYYY-MM-DD)")
	)
	flag.Parse()
	utils.LoadEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.OpenAndMigrate(database.DefaultConfig())
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	f := album.Filter{Genre: *genre}
	if *from != "" {
		d, err := models.ParseDate(*from)
		if err != nil {
			log.Fatalf("bad -from date %q: %v", *from, err)
		}
		f.From = &d
	}

	albums, err := album.NewRepo(db).Query(ctx, f)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	if err := albumio.WriteFile(*out, albums); err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("exported %d albums to %s", len(albums), *out)
}
