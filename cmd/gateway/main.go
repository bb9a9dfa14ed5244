package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/storefront-core/internal/gateway"
	"github.com/joao-fontenele/storefront-core/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	storefrontServiceURL := os.Getenv("STOREFRONT_SERVICE_URL")
	if storefrontServiceURL == "" {
		logger.Error("STOREFRONT_SERVICE_URL is required")
		os.Exit(1)
	}

	ordersServiceURL := os.Getenv("ORDERS_SERVICE_URL")
	if ordersServiceURL == "" {
		logger.Error("ORDERS_SERVICE_URL is required")
		os.Exit(1)
	}

	inventoryServiceURL := os.Getenv("INVENTORY_SERVICE_URL")
	if inventoryServiceURL == "" {
		logger.Error("INVENTORY_SERVICE_URL is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	storefrontProxy := gateway.NewServiceProxy(storefrontServiceURL, httpClient)
	ordersProxy := gateway.NewServiceProxy(ordersServiceURL, httpClient)
	inventoryProxy := gateway.NewServiceProxy(inventoryServiceURL, httpClient)
	handler := gateway.NewHandler(storefrontProxy, ordersProxy, inventoryProxy, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /cart", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("DELETE /cart", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("POST /cart/items", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("PATCH /cart/items/{productId}", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("DELETE /cart/items/{productId}", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("GET /wishlist", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("POST /wishlist/toggle", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("DELETE /wishlist/{productId}", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("POST /wishlist/{productId}/move-to-cart", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("POST /checkout", telemetry.WithHTTPRoute(handler.HandleStorefront))
	mux.HandleFunc("GET /checkout/data", telemetry.WithHTTPRoute(handler.HandleStorefront))

	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(handler.HandleOrders))

	mux.HandleFunc("GET /inventory/stock", telemetry.WithHTTPRoute(handler.HandleInventory))
	mux.HandleFunc("GET /inventory/stock/{productId}", telemetry.WithHTTPRoute(handler.HandleInventory))
	mux.HandleFunc("PUT /inventory/stock/{productId}", telemetry.WithHTTPRoute(handler.HandleInventory))

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "gateway",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting gateway service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
