package params

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/tools"
)

// default values of config items
const (
	DefaultNetwork    = "testnet"
	DefaultAPIAddress = "https://testnet.ckb.dev"
	DefaultRPCTimeout = 60

	DefaultTxCount         = 1000
	DefaultCellCapacity    = 62 // CKB
	DefaultSplitChunk      = 500
	DefaultSendBatchSize   = 400
	DefaultMaxCollectCells = 100
	DefaultFeeRate         = 2000 // shannons per KB

	DefaultDataDir = "./db"
)

var (
	batchConfig       *BatchTxConfig
	loadConfigStarter sync.Once
)

// BatchTxConfig config items (decode from toml file)
type BatchTxConfig struct {
	Chain      *ChainConfig
	Sender     *SenderConfig
	Batch      *BatchConfig
	Checkpoint *CheckpointConfig
}

// ChainConfig chain node and network
type ChainConfig struct {
	Network        string
	APIAddress     string
	IndexerAddress string `toml:",omitempty" json:",omitempty"`
	RPCTimeout     int    `toml:",omitempty" json:",omitempty"`

	// secp256k1 dep group of devnet
	DepGroupTxHash string `toml:",omitempty" json:",omitempty"`
	DepGroupIndex  uint   `toml:",omitempty" json:",omitempty"`
}

// SenderConfig sender key.
// KeyFile is a keystore file if PasswordFile is set,
// otherwise it contains the hex private key.
type SenderConfig struct {
	KeyFile      string
	PasswordFile string `toml:",omitempty" json:",omitempty"`
}

// BatchConfig amounts and sizes of the batch procedures
type BatchConfig struct {
	TxCount         int
	CellCapacity    uint64 // CKB
	SplitChunk      int
	SendBatchSize   int
	// MaxCollectCells caps the cells merged into the offer cell. Merging fails
	// when this many cells are collected without reaching the target, so a
	// target reachable only by one more cell fails too.
	MaxCollectCells int
	FeeRate         uint64
}

// CheckpointConfig checkpoint store
type CheckpointConfig struct {
	DataDir string
}

// NewDefaultConfig config with every item set to its default
func NewDefaultConfig() *BatchTxConfig {
	return &BatchTxConfig{
		Chain: &ChainConfig{
			Network:    DefaultNetwork,
			APIAddress: DefaultAPIAddress,
			RPCTimeout: DefaultRPCTimeout,
		},
		Sender: &SenderConfig{},
		Batch: &BatchConfig{
			TxCount:         DefaultTxCount,
			CellCapacity:    DefaultCellCapacity,
			SplitChunk:      DefaultSplitChunk,
			SendBatchSize:   DefaultSendBatchSize,
			MaxCollectCells: DefaultMaxCollectCells,
			FeeRate:         DefaultFeeRate,
		},
		Checkpoint: &CheckpointConfig{
			DataDir: DefaultDataDir,
		},
	}
}

// GetConfig get config
func GetConfig() *BatchTxConfig {
	return batchConfig
}

// SetConfig set config
func SetConfig(config *BatchTxConfig) {
	batchConfig = config
}

// LoadConfig load config, a missing config file gives the default config
func LoadConfig(configFile string) *BatchTxConfig {
	loadConfigStarter.Do(func() {
		config, err := DecodeConfigFile(configFile)
		if err != nil {
			log.Fatalf("LoadConfig error: %v", err)
		}
		SetConfig(config)

		var bs []byte
		if log.JSONFormat {
			bs, _ = json.Marshal(config)
		} else {
			bs, _ = json.MarshalIndent(config, "", "  ")
		}
		log.Println("LoadConfig finished.", string(bs))
		if err := config.CheckConfig(); err != nil {
			log.Fatalf("Check config failed. %v", err)
		}
		log.Info("Check config success", "configFile", configFile)
	})
	return batchConfig
}

// DecodeConfigFile decode toml file over the default config
func DecodeConfigFile(configFile string) (*BatchTxConfig, error) {
	config := NewDefaultConfig()
	if configFile == "" {
		log.Println("No config file specified, use default config")
		return config, nil
	}
	log.Println("Config file is", configFile)
	if !common.FileExist(configFile) {
		return nil, fmt.Errorf("config file %v not exist", configFile)
	}
	if _, err := toml.DecodeFile(configFile, config); err != nil {
		return nil, err
	}
	config.Chain.Network = strings.ToLower(strings.TrimSpace(config.Chain.Network))
	config.Checkpoint.DataDir = resolvePath(config.Checkpoint.DataDir)
	config.Sender.KeyFile = resolvePath(config.Sender.KeyFile)
	config.Sender.PasswordFile = resolvePath(config.Sender.PasswordFile)
	return config, nil
}

// relative paths in config file are relative to the current dir
func resolvePath(path string) string {
	if path == "" {
		return path
	}
	currDir, err := os.Getwd()
	if err != nil {
		return path
	}
	return common.AbsolutePath(currDir, path)
}

// LoadPrivateKey load hex private key of the sender
func (c *SenderConfig) LoadPrivateKey() (string, error) {
	return tools.LoadPrivateKeyHex(c.KeyFile, c.PasswordFile)
}
