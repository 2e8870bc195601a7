package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"p9e.in/bib/client"
	"p9e.in/bib/config"
	"p9e.in/bib/handlers"
	"p9e.in/bib/middleware"
	"p9e.in/bib/routes"
	"p9e.in/bib/session"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	cfg := config.Load()
	api := client.New(cfg.BackendBaseURL, cfg.HTTPTimeout)

	// Sessions built here carry no locator; devices post their own
	// coordinates to the location endpoint.
	registry := handlers.NewRegistry(func() *session.FormSession {
		return session.New(api, nil, cfg.GeoTimeout)
	})

	handler := routes.RegisterRoutes(
		handlers.NewSessionHandler(registry),
		handlers.NewCatalogHandler(api),
	)
	handler = middleware.RequestLogger(handler)
	handler = middleware.EnableCORS(handler)

	log.Println("Server starting at port", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
