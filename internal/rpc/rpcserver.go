package rpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bundsx-labs/bundsx-node/internal/rpc/handlers"
	"go.uber.org/zap"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Deps collects the services the HTTP surface exposes.
type Deps struct {
	History handlers.TransactionHistoryService
	Markets handlers.MarketDeps
	NFTs    handlers.NFTMetadataService
}

func StartRPCServer(port uint64, ctx context.Context, deps Deps) func() {
	zap.L().Info("Starting RPC server on port", zap.Uint64("port", port))
	mux := http.NewServeMux()

	handlers.SetupHandlers(mux, RouteHandlers(deps))

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:    addr,
		Handler: loggingMiddleware(mux),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				zap.L().Info("RPC server closed")
			} else {
				zap.L().Fatal("starting RPC server failed", zap.Error(err))
			}
		}
	}()
	closeFunc := func() {
		zap.L().Info("Closing RPC server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown failed", zap.Error(err))
		}
	}
	return closeFunc
}

// RouteHandlers maps every endpoint to its handler. Split out so tests
// can mount the full route table on a httptest server.
func RouteHandlers(deps Deps) handlers.MethodHandlers {
	return handlers.MethodHandlers{
		handlers.CreateApiV1Path("status"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.StatusGetHandler(r)
			},
		},
		handlers.CreateApiV1Path("stats"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.StatsGetHandler(r, deps.Markets.Reader)
			},
		},
		handlers.CreateApiV1Path("transactions/history/"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.TransactionsHistoryGetHandler(r, deps.History)
			},
		},
		handlers.CreateApiV1Path("markets/"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.MarketsGetHandler(r, deps.Markets)
			},
		},
		handlers.CreateApiV1Path("nft/tokens/"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.NFTTokensGetHandler(r, deps.NFTs)
			},
		},
		handlers.CreateApiV1Path("opensea/best-offer/"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.BestOfferGetHandler(r, deps.NFTs)
			},
		},
		handlers.CreateApiV1Path("opensea/collection/"): {
			handlers.HTTP_GET: func(r *http.Request) (any, error) {
				return handlers.CollectionGetHandler(r, deps.NFTs)
			},
		},
		handlers.CreateApiV1Path("opensea/best-offers"): {
			handlers.HTTP_POST: func(r *http.Request) (any, error) {
				return handlers.BestOffersPostHandler(r, deps.NFTs)
			},
		},
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)

		zap.L().Info("Request",
			zap.String("ip", r.RemoteAddr),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.statusCode),
		)
	})
}
