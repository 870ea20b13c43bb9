package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
)

var (
	contractName = flag.String("contract", "", "logical contract name to rescan (pool name, usdp_vault, voting_escrow, rewards)")
	fromBlock    = flag.Uint("fromBlock", 0, "block to rewind the scan cursor to")
)

// rescan rewinds a contract's scan cursor so that the indexer re-processes
// its events on the next sync. Position rows are replaced wholesale on
// re-processing and reward claims are deduplicated, so rescans are safe.
func main() {
	flag.Parse()

	logger := logging.New()

	cfg, err := config.ReadConfigFromFile("config.yml")
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}
	logger.SetLevel(cfg.LogLevel.Level)

	if *contractName == "" {
		logger.Fatal("contract is not specified")
	}
	contractCfg, ok := cfg.Contracts[*contractName]
	if !ok {
		for _, pool := range cfg.Pools {
			if pool.Name == *contractName {
				contractCfg = &pool.ContractConfig
				ok = true
				break
			}
		}
	}
	if !ok {
		logger.WithField("contract", *contractName).Fatal("contract config for given name is not found")
	}
	if *fromBlock < contractCfg.StartBlock {
		fromBlock = &contractCfg.StartBlock
	}

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database and apply migrations")
	}
	defer dbConn.Close()

	ctx := context.Background()
	repo := repository.NewRepo(dbConn)
	cursor, err := repo.ScanCursors.GetByContract(ctx, *contractName)
	if err != nil {
		logger.WithError(err).Fatal("can't get scan cursor")
	}
	if cursor.Syncing {
		logger.Fatal("contract is being synced right now, refusing to move the cursor")
	}

	query := `UPDATE scan_cursors SET last_block = $1, updated_at = NOW() WHERE contract = $2`
	if _, err = dbConn.ExecContext(ctx, query, *fromBlock-1, *contractName); err != nil {
		logger.WithError(err).Fatal("can't rewind scan cursor")
	}
	logger.WithFields(logrus.Fields{
		"contract":   *contractName,
		"from_block": *fromBlock,
	}).Info("scan cursor rewound, events will be re-processed on the next sync")
}
