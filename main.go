// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/profiler"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/clothex/storefront/chat"
	"github.com/clothex/storefront/config"
	"github.com/clothex/storefront/session"
)

const (
	cookieMaxAge = 60 * 60 * 48

	cookiePrefix    = "shop_"
	cookieSessionID = cookiePrefix + "session-id"
	cookieToken     = cookiePrefix + "token"
)

var baseUrl = ""

type ctxKeySessionID struct{}

type frontendServer struct {
	cfg        *config.Config
	log        *logrus.Logger
	sessions   *session.Manager
	httpClient *http.Client

	// newMessenger builds the chat provider for one widget session, so
	// the concrete transport stays swappable.
	newMessenger func() chat.Messenger

	mu    sync.Mutex
	views map[string]*sessionViews
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.Level = level
	} else {
		log.Level = logrus.DebugLevel
	}

	baseUrl = cfg.BaseURL

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))

	if cfg.EnableTracing {
		log.Info("Tracing enabled.")
		initTracing(log)
	} else {
		log.Info("Tracing disabled.")
	}

	if cfg.EnableProfiler {
		log.Info("Profiling enabled.")
		go initProfiling(log, "storefront", "1.0.0")
	} else {
		log.Info("Profiling disabled.")
	}

	svc := &frontendServer{
		cfg:        cfg,
		log:        log,
		sessions:   session.NewManager(),
		httpClient: &http.Client{Timeout: cfg.Backend.Timeout},
		views:      make(map[string]*sessionViews),
	}
	svc.newMessenger = func() chat.Messenger {
		return chat.NewWebsocketMessenger(cfg.Chat.Endpoint)
	}

	r := mux.NewRouter()

	// Storefront.
	r.HandleFunc(baseUrl+"/api/products", svc.listProductsHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/api/products/{id}", svc.productHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/api/categories", svc.categoriesHandler).Methods(http.MethodGet, http.MethodHead)

	// Session.
	r.HandleFunc(baseUrl+"/api/auth/register", svc.registerHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/auth/login", svc.loginHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/auth/logout", svc.logoutHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/users/me", svc.profileHandler).Methods(http.MethodGet)

	// Cart.
	r.HandleFunc(baseUrl+"/api/cart", svc.viewCartHandler).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/cart", svc.emptyCartHandler).Methods(http.MethodDelete)
	r.HandleFunc(baseUrl+"/api/cart/items", svc.addToCartHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/cart/items", svc.updateCartItemHandler).Methods(http.MethodPut)
	r.HandleFunc(baseUrl+"/api/cart/items/{productId}/{variantId}", svc.removeCartItemHandler).Methods(http.MethodDelete)

	// Addresses.
	r.HandleFunc(baseUrl+"/api/addresses", svc.requireAuth(svc.listAddressesHandler)).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/addresses", svc.requireAuth(svc.addAddressHandler)).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/addresses/{id}/default", svc.requireAuth(svc.setDefaultAddressHandler)).Methods(http.MethodPut)
	r.HandleFunc(baseUrl+"/api/addresses/{id}", svc.requireAuth(svc.deleteAddressHandler)).Methods(http.MethodDelete)

	// Checkout and orders.
	r.HandleFunc(baseUrl+"/api/checkout/prepare", svc.requireAuth(svc.prepareCheckoutHandler)).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/checkout", svc.requireAuth(svc.placeOrderHandler)).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/orders", svc.requireAuth(svc.orderHistoryHandler)).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/orders/{id}", svc.requireAuth(svc.orderHandler)).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/orders/{id}/cancel", svc.requireAuth(svc.cancelOrderHandler)).Methods(http.MethodPut)

	// Payment gateway returns; navigated by the browser, not called via XHR.
	r.HandleFunc(baseUrl+"/payment/momo/return", svc.paymentReturnHandler).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/payment/vnpay/return", svc.paymentReturnHandler).Methods(http.MethodGet)

	// Chat widget bridge.
	r.HandleFunc(baseUrl+"/api/chat/ws", svc.chatHandler).Methods(http.MethodGet)

	// Admin console.
	r.HandleFunc(baseUrl+"/api/admin/users", svc.requireAdmin(svc.adminListUsersHandler)).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/admin/users/{id}/role", svc.requireAdmin(svc.adminUpdateUserRoleHandler)).Methods(http.MethodPut)
	r.HandleFunc(baseUrl+"/api/admin/users/{id}", svc.requireAdmin(svc.adminDeleteUserHandler)).Methods(http.MethodDelete)
	r.HandleFunc(baseUrl+"/api/admin/orders", svc.requireAdmin(svc.adminListOrdersHandler)).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/admin/orders/export", svc.requireAdmin(svc.adminExportOrdersHandler)).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/api/admin/orders/{id}/status", svc.requireAdmin(svc.adminUpdateOrderStatusHandler)).Methods(http.MethodPut)
	r.HandleFunc(baseUrl+"/api/admin/products", svc.requireAdmin(svc.adminCreateProductHandler)).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/api/admin/products/{id}", svc.requireAdmin(svc.adminUpdateProductHandler)).Methods(http.MethodPut)
	r.HandleFunc(baseUrl+"/api/admin/products/{id}", svc.requireAdmin(svc.adminDeleteProductHandler)).Methods(http.MethodDelete)

	r.HandleFunc(baseUrl+"/robots.txt", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "User-agent: *\nDisallow: /") })
	r.HandleFunc(baseUrl+"/_healthz", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "ok") })

	var handler http.Handler = r
	handler = svc.hydrateSession(handler)                // resolve persisted tokens
	handler = &logHandler{log: log, next: handler}       // add logging
	handler = ensureSessionID(handler)                   // add session ID
	handler = otelhttp.NewHandler(handler, "storefront") // add OTel tracing

	addr := cfg.ListenAddr
	log.Infof("starting server on %s:%s", addr, cfg.Port)
	log.Fatal(http.ListenAndServe(addr+":"+cfg.Port, handler))
}

func initTracing(log logrus.FieldLogger) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	log.Info("Tracing provider initialized (no exporter configured)")
	return tp
}

func initProfiling(log logrus.FieldLogger, service, version string) {
	for i := 1; i <= 3; i++ {
		log = log.WithField("retry", i)
		if err := profiler.Start(profiler.Config{
			Service:        service,
			ServiceVersion: version,
		}); err != nil {
			log.Warnf("warn: failed to start profiler: %+v", err)
		} else {
			log.Info("started Stackdriver profiler")
			return
		}
		d := time.Second * 10 * time.Duration(i)
		log.Debugf("sleeping %v to retry initializing Stackdriver profiler", d)
		time.Sleep(d)
	}
	log.Warn("warning: could not initialize Stackdriver profiler after retrying, giving up")
}
