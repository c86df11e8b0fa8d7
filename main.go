package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MarcGrol/klarnacheckout/lib/mypublisher"
	"github.com/MarcGrol/klarnacheckout/lib/mypubsub"
	"github.com/MarcGrol/klarnacheckout/lib/myqueue"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytelemetry"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
	"github.com/MarcGrol/klarnacheckout/lib/myuuid"
	"github.com/MarcGrol/klarnacheckout/lib/myvault"
	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
	"github.com/MarcGrol/klarnacheckout/services/checkoutklarna"
	"github.com/MarcGrol/klarnacheckout/services/shop"
	"github.com/MarcGrol/klarnacheckout/services/termsconditions"
	"github.com/MarcGrol/klarnacheckout/services/warmup"
)

func main() {
	c := context.Background()

	telemetryCfg, err := mytelemetry.ConfigFromEnvironment()
	if err != nil {
		log.Fatalf("Error reading telemetry config: %s", err)
	}
	telemetry, err := mytelemetry.Start(c, telemetryCfg)
	if err != nil {
		log.Fatalf("Error starting telemetry: %s", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := telemetry.Shutdown(shutdownCtx)
		if err != nil {
			log.Printf("Error shutting down telemetry: %s", err)
		}
	}()

	router := mux.NewRouter()

	cfg, err := checkoutklarna.ConfigFromEnvironment()
	if err != nil {
		log.Fatalf("Error reading klarna config: %s", err)
	}

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	vault, vaultCleanup, err := myvault.New(c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}
	defer vaultCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating event publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	checkoutStore, checkoutStoreCleanup, err := mystore.New[checkoutapi.CheckoutContext](c)
	if err != nil {
		log.Fatalf("Error creating checkout store: %s", err)
	}
	defer checkoutStoreCleanup()

	credentials := checkoutklarna.NewCredentialsProvider(vault, cfg)
	sessions := checkoutklarna.NewSessionStore(checkoutStore, nower)
	client := checkoutklarna.NewOrderClient(cfg, sessions, sessions, credentials)

	checkoutService := checkoutklarna.NewWebService(cfg, client, nower, uuider, checkoutStore, publisher)
	err = checkoutService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering klarna checkout service: %s", err)
	}

	termsService := termsconditions.NewService(publisher)
	err = termsService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering terms and conditions service: %s", err)
	}

	basketStore, basketStoreCleanup, err := mystore.New[shop.Basket](c)
	if err != nil {
		log.Fatalf("Error creating basket store: %s", err)
	}
	defer basketStoreCleanup()

	shopService := shop.NewWebService(publicURL(cfg), basketStore, nower, uuider, pubsub, publisher)
	err = shopService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering shop service: %s", err)
	}

	warmup.NewService(credentials).RegisterEndpoints(c, router)

	log.Printf("Using klarna endpoint %s", checkoutklarna.APIBaseURL(cfg.StoreCountry, cfg.TestMode))

	startWebServerBlocking(router)
}

// publicURL is where pubsub pushes events to
func publicURL(cfg checkoutklarna.Config) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	return "http://localhost:" + port()
}

func port() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return port
}

func startWebServerBlocking(router *mux.Router) {
	port := port()

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), otelhttp.NewHandler(router, "http.server"))
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
