package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bundsx-labs/bundsx-node/internal/amm"
	"github.com/bundsx-labs/bundsx-node/internal/config"
	"github.com/bundsx-labs/bundsx-node/internal/curve"
	"github.com/bundsx-labs/bundsx-node/internal/db"
	"github.com/bundsx-labs/bundsx-node/internal/ledger"
	"github.com/bundsx-labs/bundsx-node/internal/ledger/ledgerdb"
	"github.com/bundsx-labs/bundsx-node/internal/nftmeta"
	"github.com/bundsx-labs/bundsx-node/internal/rpc"
	"github.com/bundsx-labs/bundsx-node/internal/rpc/handlers"
	"github.com/bundsx-labs/bundsx-node/internal/scheduler"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var Version = "dev" // Overridden by release build script

func init() {
	logger := zap.Must(zap.NewProduction())
	if config.Get().LogZapMode == "development" {
		logger = zap.Must(zap.NewDevelopment())
	}
	zap.ReplaceGlobals(logger)
}

func main() {
	zap.L().Info("Starting bundsx-node...",
		zap.String("Version", Version))

	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		zap.L().Fatal("Invalid configuration", zap.Error(err))
	}

	// Main context: canceled when we want to stop normal operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqlite, err := db.OpenSqlite(cfg.SqlitePath)
	if err != nil {
		zap.L().Fatal("Failed to open SQLite", zap.Error(err))
	}

	badgerDb, err := db.OpenBadger(cfg.BadgerPath)
	if err != nil {
		zap.L().Fatal("Failed to open BadgerDB", zap.Error(err))
	}

	contractReader, err := amm.NewContractReader(cfg.EthereumNodeUrl,
		common.HexToAddress(cfg.CurveAmmAddress),
		common.HexToAddress(cfg.BondFactoryAddress))
	if err != nil {
		zap.L().Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}

	sim, err := curve.New(curve.Shape(cfg.CurveShape))
	if err != nil {
		zap.L().Fatal("Invalid curve shape", zap.Error(err))
	}

	transactionDb := ledgerdb.NewTransactionDb(sqlite)
	historyService := ledger.NewService(
		ledger.NewOneInchHistoryClient(cfg.OneInchBaseUrl, cfg.OneInchApiKey),
		transactionDb)

	batcher := scheduler.New(cfg.OpenSeaRatePerSecond, cfg.OpenSeaBurst, cfg.OpenSeaConcurrency)
	nftService := nftmeta.NewService(
		nftmeta.NewOneInchNFTClient(cfg.OneInchBaseUrl, cfg.OneInchApiKey),
		nftmeta.NewOpenSeaClient(cfg.OpenSeaBaseUrl, cfg.OpenSeaApiKey),
		nftmeta.NewOfferCache(badgerDb, 0),
		batcher)

	closeRpcServer := rpc.StartRPCServer(cfg.RPCPort, ctx, rpc.Deps{
		History: historyService,
		Markets: handlers.MarketDeps{
			Reader: contractReader,
			Quotes: amm.NewPricingService(contractReader, sim),
			Charts: transactionDb,
		},
		NFTs: nftService,
	})

	// Catch up to two signals: first for graceful, second to force
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	doneCh := make(chan struct{})

	go func() {
		<-sigCh
		zap.L().Info("Received shutdown signal, initiating graceful shutdown...")

		// 1. Stop new requests on RPC
		closeRpcServer()

		// 2. Cancel main context, telling background tasks to stop
		cancel()

		// 3. Close the contract reader's client connection
		contractReader.Close()

		// 4. Close DBs
		if err := badgerDb.Close(); err != nil {
			zap.L().Warn("Error closing BadgerDB", zap.Error(err))
		}
		if err := sqlite.Close(); err != nil {
			zap.L().Warn("Error closing DB", zap.Error(err))
		}

		// 5. Signal that cleanup is done
		close(doneCh)

		// If a second signal arrives, force an immediate exit
		<-sigCh
		zap.L().Error("Received second signal, forcing shutdown")
		os.Exit(1)
	}()

	// Wait for either normal context cancellation or graceful shutdown completion
	select {
	case <-ctx.Done():
	case <-doneCh:
	}

	zap.L().Info("Shutdown complete")
	_ = zap.L().Sync()
}
