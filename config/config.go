package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Logical names of the singleton watched contracts. AMM pools are configured
// separately, one listener per pool.
const (
	ContractUSDPVault    = "usdp_vault"
	ContractVotingEscrow = "voting_escrow"
	ContractRewards      = "rewards"
)

const (
	defaultBatchSize        = 1000
	defaultMaxBlocksPerSync = 10000
)

type RPCConfig struct {
	Host    string   `yaml:"host"`
	Timeout Duration `yaml:"timeout"`
}

type ChainConfig struct {
	RPC       *RPCConfig `yaml:"rpc"`
	ChainID   string     `yaml:"chain_id"`
	BlockTime Duration   `yaml:"block_time"`
}

type ContractConfig struct {
	Address          string `yaml:"address"`
	StartBlock       uint   `yaml:"start_block"`
	BatchSize        uint   `yaml:"batch_size"`
	MaxBlocksPerSync uint   `yaml:"max_blocks_per_sync"`
}

func (c *ContractConfig) Addr() common.Address {
	return common.HexToAddress(c.Address)
}

type PoolConfig struct {
	ContractConfig `yaml:",inline"`
	Name           string  `yaml:"name"`
	FeeRate        Decimal `yaml:"fee_rate"`
}

type EmissionConfig struct {
	WeeklyEmission      Decimal            `yaml:"weekly_emission"`
	RewardTokenPriceUSD Decimal            `yaml:"reward_token_price_usd"`
	GaugeShares         map[string]Decimal `yaml:"gauge_shares"`
}

// OracleConfig is a static stand-in for the future on-chain price/stats oracle.
// All placeholder numbers live here, not in code.
type OracleConfig struct {
	TokenPrices    map[string]Decimal `yaml:"token_prices"`
	DailyVolumeUSD map[string]Decimal `yaml:"daily_volume_usd"`
	Emission       *EmissionConfig    `yaml:"emission"`
}

type SchedulerConfig struct {
	ScanInterval        Duration `yaml:"scan_interval"`
	APRSnapshotInterval Duration `yaml:"apr_snapshot_interval"`
	HealthSweepInterval Duration `yaml:"health_sweep_interval"`
	JobTimeout          Duration `yaml:"job_timeout"`
}

type RiskConfig struct {
	WarningThreshold     Decimal `yaml:"warning_threshold"`
	LiquidationThreshold Decimal `yaml:"liquidation_threshold"`
}

type VerificationConfig struct {
	CacheTTL Duration `yaml:"cache_ttl"`
}

type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"database"`
}

type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	WarningChannel string `yaml:"warning_channel"`
}

type PresenterConfig struct {
	Host string `yaml:"host"`
}

type Config struct {
	LogLevel     Level                      `yaml:"log_level"`
	Chain        *ChainConfig               `yaml:"chain"`
	Contracts    map[string]*ContractConfig `yaml:"contracts"`
	Pools        []*PoolConfig              `yaml:"pools"`
	Stablecoins  []string                   `yaml:"stablecoins"`
	Oracle       *OracleConfig              `yaml:"oracle"`
	Scheduler    *SchedulerConfig           `yaml:"scheduler"`
	Risk         *RiskConfig                `yaml:"risk"`
	Verification *VerificationConfig        `yaml:"verification"`
	DBConfig     *DBConfig                  `yaml:"postgres"`
	Redis        *RedisConfig               `yaml:"redis"`
	Presenter    *PresenterConfig           `yaml:"presenter"`

	StablecoinSet map[common.Address]bool `yaml:"-"`
}

func ReadConfig(blob []byte) (*Config, error) {
	cfg := new(Config)
	blob = []byte(os.ExpandEnv(string(blob)))
	if err := parseYaml(cfg, blob); err != nil {
		return nil, err
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ReadConfigFromFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}
	return ReadConfig(blob)
}

func (cfg *Config) init() error {
	if cfg.LogLevel.Level == 0 {
		cfg.LogLevel.Level = logrus.InfoLevel
	}
	if cfg.Chain == nil || cfg.Chain.RPC == nil || cfg.Chain.RPC.Host == "" {
		return fmt.Errorf("chain rpc host is required")
	}
	if cfg.Chain.RPC.Timeout.Duration == 0 {
		cfg.Chain.RPC.Timeout.Duration = 20 * time.Second
	}
	for _, name := range []string{ContractUSDPVault, ContractVotingEscrow, ContractRewards} {
		c, ok := cfg.Contracts[name]
		if !ok {
			return fmt.Errorf("missing contract config for %s", name)
		}
		if err := checkContract(name, c); err != nil {
			return err
		}
	}
	for _, pool := range cfg.Pools {
		if pool.Name == "" {
			return fmt.Errorf("pool without a name")
		}
		if err := checkContract(pool.Name, &pool.ContractConfig); err != nil {
			return err
		}
	}
	cfg.StablecoinSet = make(map[common.Address]bool, len(cfg.Stablecoins))
	for _, s := range cfg.Stablecoins {
		if !common.IsHexAddress(s) {
			return fmt.Errorf("invalid stablecoin address %q", s)
		}
		cfg.StablecoinSet[common.HexToAddress(s)] = true
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = &SchedulerConfig{}
	}
	setDefaultDuration(&cfg.Scheduler.ScanInterval, 30*time.Second)
	setDefaultDuration(&cfg.Scheduler.APRSnapshotInterval, time.Hour)
	setDefaultDuration(&cfg.Scheduler.HealthSweepInterval, 5*time.Minute)
	setDefaultDuration(&cfg.Scheduler.JobTimeout, 5*time.Minute)
	if cfg.Risk == nil || cfg.Risk.WarningThreshold.IsZero() || cfg.Risk.LiquidationThreshold.IsZero() {
		return fmt.Errorf("risk warning and liquidation thresholds are required")
	}
	if cfg.Verification == nil {
		cfg.Verification = &VerificationConfig{}
	}
	setDefaultDuration(&cfg.Verification.CacheTTL, 10*time.Minute)
	if cfg.Oracle == nil {
		cfg.Oracle = &OracleConfig{}
	}
	if cfg.Oracle.Emission == nil {
		cfg.Oracle.Emission = &EmissionConfig{}
	}
	return nil
}

func checkContract(name string, c *ContractConfig) error {
	if !common.IsHexAddress(c.Address) {
		return fmt.Errorf("invalid address %q for contract %s", c.Address, name)
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxBlocksPerSync == 0 {
		c.MaxBlocksPerSync = defaultMaxBlocksPerSync
	}
	return nil
}

func setDefaultDuration(d *Duration, def time.Duration) {
	if d.Duration == 0 {
		d.Duration = def
	}
}

// TokenPriceUSD returns the configured static price for a token, zero when unknown.
func (o *OracleConfig) TokenPriceUSD(token common.Address) decimal.Decimal {
	for raw, price := range o.TokenPrices {
		if common.HexToAddress(raw) == token {
			return price.Decimal
		}
	}
	return decimal.Zero
}
