package main

import (
	"encoding/json"
	"fmt"
	"io"

	"soulp/bank"
	"soulp/config"
	"soulp/db"
	"soulp/logs"
	"soulp/utils"
	"soulp/vm"

	"github.com/spf13/cobra"
)

var (
	// 全局参数
	configPath string
	dbPath     string
	inMemory   bool
	debug      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "soulp",
	Short: "SouLP custodial LP lock",
	Long: `soulp permanently locks liquidity-pool shares and mints a
transferable receipt token in exchange.

Run "soulp serve" to expose the contract over HTTP, or use the
instantiate / execute / query subcommands against a local database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFromFile(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.DefaultConfig()
		}
		if cmd.Flags().Changed("db") {
			cfg.Database.Path = dbPath
		}
		if inMemory {
			cfg.Database.InMemory = true
		}
		if debug {
			cfg.Log.Level = "debug"
			cfg.Log.Development = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return logs.Init(cfg.Log.Level, cfg.Log.Development)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logs.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data", "database directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "in-memory", false, "keep state in memory only")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging with console encoding")

	rootCmd.AddCommand(serveCmd, instantiateCmd, executeCmd, queryCmd, fundCmd, receiptCmd)
}

// contractAddress 由链 ID 和 label 推导，同一配置总得到同一地址
func contractAddress(c *config.Config) (string, error) {
	return utils.DeriveContractAddress(c.Chain.Bech32Prefix, c.Chain.ChainID, c.Contract.Label)
}

// openExecutor 打开数据库并组装执行器，调用方负责 Close
func openExecutor(opts ...vm.ExecutorOption) (*vm.Executor, *db.Manager, error) {
	contract, err := vm.NewContract(&cfg.Contract)
	if err != nil {
		return nil, nil, err
	}
	addr, err := contractAddress(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("derive contract address: %w", err)
	}
	mgr, err := db.NewManagerWithConfig(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cache, err := vm.NewReceiptCache(cfg.Database.ReceiptCacheSize)
	if err != nil {
		mgr.Close()
		return nil, nil, err
	}
	opts = append([]vm.ExecutorOption{vm.WithReceiptCache(cache)}, opts...)
	exec := vm.NewExecutor(mgr, contract, bank.NewLedger(),
		utils.NewBech32Validator(cfg.Chain.Bech32Prefix), addr, opts...)
	return exec, mgr, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type invocationOutput struct {
	Receipt  *vm.Receipt  `json:"receipt"`
	Response *vm.Response `json:"response,omitempty"`
}

// printResult 失败时仍然打印回执，再返回错误
func printResult(w io.Writer, res *vm.Result, err error) error {
	if res != nil {
		if perr := printJSON(w, invocationOutput{Receipt: res.Receipt, Response: res.Response}); perr != nil {
			return perr
		}
	}
	return err
}
