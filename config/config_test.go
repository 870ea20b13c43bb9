package config_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/config"
)

const testCfg = `
log_level: debug
chain:
  rpc:
    host: https://rpc.pelagos.example/v1/${PELAGOS_RPC_KEY}
    timeout: 30s
  chain_id: 1329
  block_time: 2s
contracts:
  usdp_vault:
    address: 0x1000000000000000000000000000000000000001
    start_block: 1200
    batch_size: 500
  voting_escrow:
    address: 0x1000000000000000000000000000000000000002
    start_block: 1200
  rewards:
    address: 0x1000000000000000000000000000000000000003
    start_block: 1500
pools:
  - name: usdc-usdp
    address: 0x2000000000000000000000000000000000000001
    start_block: 2000
    fee_rate: "0.003"
  - name: sei-usdp
    address: 0x2000000000000000000000000000000000000002
    start_block: 2400
    fee_rate: "0.003"
    max_blocks_per_sync: 2000
stablecoins:
  - 0x3000000000000000000000000000000000000001
  - 0x3000000000000000000000000000000000000002
oracle:
  token_prices:
    "0x3000000000000000000000000000000000000001": "1.00"
  daily_volume_usd:
    "0x2000000000000000000000000000000000000001": "125000"
  emission:
    weekly_emission: "500000"
    reward_token_price_usd: "0.25"
    gauge_shares:
      "0x2000000000000000000000000000000000000001": "0.1"
scheduler:
  scan_interval: 15s
risk:
  warning_threshold: "1.5"
  liquidation_threshold: "1.1"
verification:
  cache_ttl: 10m
postgres:
  user: indexer
  password: ${DB_PASSWORD}
  host: localhost
  port: 5432
  database: pelagos
redis:
  addr: localhost:6379
  warning_channel: health_warnings
presenter:
  host: ":8080"
`

func TestReadConfig(t *testing.T) {
	t.Setenv("PELAGOS_RPC_KEY", "test-key")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := config.ReadConfig([]byte(testCfg))
	require.NoError(t, err)

	require.Equal(t, logrus.DebugLevel, cfg.LogLevel.Level)
	require.Equal(t, "https://rpc.pelagos.example/v1/test-key", cfg.Chain.RPC.Host)
	require.Equal(t, 30*time.Second, cfg.Chain.RPC.Timeout.Duration)
	require.Equal(t, "1329", cfg.Chain.ChainID)

	vault := cfg.Contracts[config.ContractUSDPVault]
	require.Equal(t, common.HexToAddress("0x1000000000000000000000000000000000000001"), vault.Addr())
	require.Equal(t, uint(1200), vault.StartBlock)
	require.Equal(t, uint(500), vault.BatchSize)
	require.Equal(t, uint(10000), vault.MaxBlocksPerSync)

	require.Len(t, cfg.Pools, 2)
	require.Equal(t, "usdc-usdp", cfg.Pools[0].Name)
	require.True(t, cfg.Pools[0].FeeRate.Equal(decimal.RequireFromString("0.003")))
	require.Equal(t, uint(2000), cfg.Pools[1].MaxBlocksPerSync)

	require.True(t, cfg.StablecoinSet[common.HexToAddress("0x3000000000000000000000000000000000000001")])
	require.False(t, cfg.StablecoinSet[common.HexToAddress("0x4000000000000000000000000000000000000001")])

	require.Equal(t, 15*time.Second, cfg.Scheduler.ScanInterval.Duration)
	require.Equal(t, time.Hour, cfg.Scheduler.APRSnapshotInterval.Duration)
	require.Equal(t, 5*time.Minute, cfg.Scheduler.HealthSweepInterval.Duration)
	require.Equal(t, 10*time.Minute, cfg.Verification.CacheTTL.Duration)

	require.Equal(t, "secret", cfg.DBConfig.Password)

	price := cfg.Oracle.TokenPriceUSD(common.HexToAddress("0x3000000000000000000000000000000000000001"))
	require.True(t, price.Equal(decimal.NewFromInt(1)))
	require.True(t, cfg.Oracle.TokenPriceUSD(common.HexToAddress("0x5000000000000000000000000000000000000005")).IsZero())
}

func TestReadConfigMissingContract(t *testing.T) {
	t.Parallel()

	_, err := config.ReadConfig([]byte(`
chain:
  rpc:
    host: https://rpc.pelagos.example
contracts: {}
risk:
  warning_threshold: "1.5"
  liquidation_threshold: "1.1"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing contract config")
}

func TestReadConfigUnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.ReadConfig([]byte(`unknown_field: 1`))
	require.Error(t, err)
}
