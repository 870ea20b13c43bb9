package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pelagos-finance/defi-indexer/analytics"
	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/contract/defiabi"
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/ethclient"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/monitor"
	"github.com/pelagos-finance/defi-indexer/presenter"
	"github.com/pelagos-finance/defi-indexer/rediscache"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/scheduler"
	"github.com/pelagos-finance/defi-indexer/verification"
)

func main() {
	logger := logging.New()

	cfg, err := config.ReadConfigFromFile("config.yml")
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}
	logger.SetLevel(cfg.LogLevel.Level)

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database and apply migrations")
	}
	defer dbConn.Close()

	cache, err := rediscache.New(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to redis")
	}
	defer cache.Close()

	client, err := ethclient.NewClient(cfg.Chain.RPC.Host, cfg.Chain.RPC.Timeout.Duration, cfg.Chain.ChainID)
	if err != nil {
		logger.WithError(err).Fatal("can't dial rpc client")
	}

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err2 := http.ListenAndServe(":2112", nil); err2 != nil {
			logger.WithError(err2).Fatal("can't start listener for prometheus metrics")
		}
	}()

	repo := repository.NewRepo(dbConn)
	registry := contract.NewRegistry(client, cfg)
	listeners := buildListeners(logger, repo, client, registry, cfg)

	notifier := analytics.NewMultiNotifier(
		analytics.NewLogNotifier(logger),
		analytics.NewRedisNotifier(cache, cfg.Redis.WarningChannel),
	)
	healthMonitor := analytics.NewHealthMonitor(logger, repo, cfg.Risk, notifier)
	aprRecorder := analytics.NewAPRRecorder(logger, repo, registry, cfg)

	verifiers := verification.NewVerifierRegistry(
		verification.NewTokenHoldVerifier(logger, client, registry, cache),
		verification.NewLiquidityDurationVerifier(repo),
		verification.NewUSDPMintedVerifier(client, cfg.Contracts[config.ContractUSDPVault]),
		verification.NewStabilityPoolVerifier(repo, registry),
		verification.NewHealthMaintenanceVerifier(repo),
	)
	verificationSvc := verification.NewService(logger, repo, cache, verifiers, cfg.Verification)

	if cfg.Presenter != nil {
		pr := presenter.NewPresenter(logger, repo, verificationSvc)
		go func() {
			if err2 := pr.Serve(cfg.Presenter.Host); err2 != nil {
				logger.WithError(err2).Fatal("can't serve presenter")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.NewScheduler(logger)
	for _, listener := range listeners {
		listener := listener
		sched.Add(&scheduler.Job{
			Name:     "sync_" + listener.Name(),
			Interval: cfg.Scheduler.ScanInterval.Duration,
			Timeout:  cfg.Scheduler.JobTimeout.Duration,
			Func:     listener.Sync,
		})
	}
	sched.Add(&scheduler.Job{
		Name:     "apr_snapshots",
		Interval: cfg.Scheduler.APRSnapshotInterval.Duration,
		Timeout:  cfg.Scheduler.JobTimeout.Duration,
		Func:     aprRecorder.RecordSnapshots,
	})
	sched.Add(&scheduler.Job{
		Name:     "health_sweep",
		Interval: cfg.Scheduler.HealthSweepInterval.Duration,
		Timeout:  cfg.Scheduler.JobTimeout.Duration,
		Func:     healthMonitor.Sweep,
	})
	sched.Start(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	for range c {
		cancel()
		logger.Warn("caught CTRL-C, gracefully terminating")
		return
	}
}

func buildListeners(
	logger logging.Logger,
	repo *repository.Repo,
	client ethclient.Client,
	registry *contract.Registry,
	cfg *config.Config,
) []*monitor.Listener {
	listeners := make([]*monitor.Listener, 0, len(cfg.Pools)+3)

	dexHandler := monitor.NewDexHandler(logger, repo, registry, cfg.StablecoinSet)
	for _, pool := range cfg.Pools {
		pair := registry.Pair(pool.Addr())
		listener := monitor.NewListener(logger, repo, client, cfg.Chain.ChainID, pool.Name, pair.Contract, &pool.ContractConfig)
		listener.RegisterEventHandler(defiabi.PairMint, dexHandler.HandleMint)
		listener.RegisterEventHandler(defiabi.PairBurn, dexHandler.HandleBurn)
		listeners = append(listeners, listener)
	}

	vault, err := registry.Vault()
	if err != nil {
		logger.WithError(err).Fatal("can't resolve vault contract")
	}
	vaultHandler := monitor.NewVaultHandler(logger, repo, registry, cfg.Oracle, cfg.StablecoinSet)
	vaultListener := monitor.NewListener(logger, repo, client, cfg.Chain.ChainID,
		config.ContractUSDPVault, vault.Contract, cfg.Contracts[config.ContractUSDPVault])
	vaultListener.RegisterEventHandler(defiabi.VaultDeposit, vaultHandler.HandleDeposit)
	vaultListener.RegisterEventHandler(defiabi.VaultWithdraw, vaultHandler.HandleWithdraw)
	vaultListener.RegisterEventHandler(defiabi.VaultBorrow, vaultHandler.HandleBorrow)
	vaultListener.RegisterEventHandler(defiabi.VaultRepay, vaultHandler.HandleRepay)
	listeners = append(listeners, vaultListener)

	ve, err := registry.VotingEscrow()
	if err != nil {
		logger.WithError(err).Fatal("can't resolve voting escrow contract")
	}
	veHandler := monitor.NewVeNFTHandler(logger, repo, registry)
	veListener := monitor.NewListener(logger, repo, client, cfg.Chain.ChainID,
		config.ContractVotingEscrow, ve.Contract, cfg.Contracts[config.ContractVotingEscrow])
	veListener.RegisterEventHandler(defiabi.VeLock, veHandler.HandleLock)
	veListener.RegisterEventHandler(defiabi.VeWithdraw, veHandler.HandleWithdraw)
	veListener.RegisterEventHandler(defiabi.VeMerge, veHandler.HandleMerge)
	listeners = append(listeners, veListener)

	rewards, err := registry.Rewards()
	if err != nil {
		logger.WithError(err).Fatal("can't resolve rewards contract")
	}
	rewardsHandler := monitor.NewRewardsHandler(logger, repo, client)
	rewardsListener := monitor.NewListener(logger, repo, client, cfg.Chain.ChainID,
		config.ContractRewards, rewards.Contract, cfg.Contracts[config.ContractRewards])
	rewardsListener.RegisterEventHandler(defiabi.RewardPaid, rewardsHandler.HandleRewardPaid)
	listeners = append(listeners, rewardsListener)

	for _, listener := range listeners {
		if err := listener.VerifyEventHandlersABI(); err != nil {
			logger.WithError(err).Fatal("invalid event handler registration")
		}
	}
	return listeners
}
