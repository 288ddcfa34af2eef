package cli

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rl1809/coffee-order/internal/adapter/handler"
	"github.com/rl1809/coffee-order/internal/config"
	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/service"
	"github.com/rl1809/coffee-order/internal/logging"
	"github.com/rl1809/coffee-order/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the schema before serving")

	return cmd
}

// serve blocks until ctx is done or a server fails, then shuts everything
// down.
func serve(ctx context.Context, cfg config.Config, migrate bool) error {
	b, err := openBackends(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer func() {
		b.close()
		log.Println("connections closed")
	}()

	products := service.NewProductService(b.products, b.cache)

	opts := []service.Option{
		service.WithPublishErrorHandler(func(event domain.OrderEvent, err error) {
			logging.Log(logging.Fields{
				Service: "order",
				OrderID: event.Order.ID.String(),
				EventID: event.EventID.String(),
				Step:    "publish",
				Status:  "error",
				Message: err.Error(),
			})
		}),
	}
	if b.publisher != nil {
		opts = append(opts, service.WithEventPublisher(b.publisher))
	}
	orders := service.NewOrderService(products, b.orders, opts...)

	m := metrics.NewServerMetrics("order")
	errCh := make(chan error, 2)

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}

		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(handler.LoggingInterceptor))
		handler.RegisterOrderServiceServer(grpcServer, handler.NewGRPCHandler(orders, b.idempotency, m))

		go func() {
			log.Printf("gRPC server listening on %s", lis.Addr())
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		lis, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			if grpcServer != nil {
				grpcServer.Stop()
			}
			return err
		}

		httpHandler := handler.NewHTTPHandler(orders, products, b.idempotency, m)
		httpServer = &http.Server{Handler: handler.NewRouter(httpHandler, m)}

		go func() {
			log.Printf("HTTP server listening on %s", lis.Addr())
			if err := httpServer.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down...")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
			log.Printf("HTTP shutdown: %v", serr)
		}
		cancel()
		log.Println("HTTP server stopped")
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Println("gRPC server stopped")
	}

	return err
}
