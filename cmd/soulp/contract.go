package main

import (
	"fmt"
	"math/big"
	"strings"

	"soulp/vm"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ========== instantiate ==========

var instantiateFlags struct {
	sender     string
	poolNative string
	poolCw20   string
	ratio      string
	evacuate   string
}

var instantiateCmd = &cobra.Command{
	Use:   "instantiate",
	Short: "Create the custody contract for one pool asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := instantiateFlags
		msg := vm.InstantiateMsg{}
		switch {
		case f.poolNative != "" && f.poolCw20 == "":
			msg.Pool = vm.NativeAsset(f.poolNative)
		case f.poolCw20 != "" && f.poolNative == "":
			msg.Pool = vm.Cw20Asset(f.poolCw20)
		default:
			return fmt.Errorf("exactly one of --pool-native and --pool-cw20 is required")
		}
		if cmd.Flags().Changed("ratio") {
			d, err := decimal.NewFromString(f.ratio)
			if err != nil {
				return fmt.Errorf("--ratio: %w", err)
			}
			msg.MintRatio = &d
		}
		if f.evacuate != "" {
			msg.EvacuateAddress = &f.evacuate
		}

		exec, mgr, err := openExecutor()
		if err != nil {
			return err
		}
		defer mgr.Close()
		res, err := exec.Instantiate(f.sender, nil, &msg)
		return printResult(cmd.OutOrStdout(), res, err)
	},
}

// ========== execute ==========

var executeSender string

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Run a contract operation",
}

var depositFunds string

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Lock pool shares and mint the receipt token",
	RunE: func(cmd *cobra.Command, args []string) error {
		funds, err := vm.ParseCoins(depositFunds)
		if err != nil {
			return err
		}
		msg := vm.NewDepositMsg()
		return runExecute(cmd, funds, &msg)
	},
}

var evacuateFlags struct {
	native   bool
	cw20     string
	cw721    string
	tokenIDs []string
}

var evacuateCmd = &cobra.Command{
	Use:   "evacuate",
	Short: "Send stray assets to the evacuation address",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := evacuateFlags
		var asset vm.EvacuateAsset
		n := 0
		if f.native {
			asset = vm.EvacuateNative{}
			n++
		}
		if f.cw20 != "" {
			asset = vm.EvacuateCw20{Contract: f.cw20}
			n++
		}
		if f.cw721 != "" {
			asset = vm.EvacuateCw721{Contract: f.cw721, TokenIDs: f.tokenIDs}
			n++
		}
		if n != 1 {
			return fmt.Errorf("exactly one of --native, --cw20 and --cw721 is required")
		}
		msg := vm.NewEvacuateMsg(asset)
		return runExecute(cmd, nil, &msg)
	},
}

var newEvacuateAddress string

var changeEvacuateCmd = &cobra.Command{
	Use:   "change-evacuate-address",
	Short: "Hand the evacuation role to another address",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := vm.NewChangeEvacuateAddressMsg(newEvacuateAddress)
		return runExecute(cmd, nil, &msg)
	},
}

func runExecute(cmd *cobra.Command, funds []vm.Coin, msg *vm.ExecuteMsg) error {
	exec, mgr, err := openExecutor()
	if err != nil {
		return err
	}
	defer mgr.Close()
	res, err := exec.Execute(executeSender, funds, msg)
	return printResult(cmd.OutOrStdout(), res, err)
}

// ========== query ==========

var queryCmd = &cobra.Command{
	Use:       "query [state|denom|version]",
	Short:     "Read contract state",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"state", "denom", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var msg vm.QueryMsg
		switch args[0] {
		case "state":
			msg = vm.QueryState()
		case "denom":
			msg = vm.QueryReceiptDenom()
		case "version":
			msg = vm.QueryContractVersion()
		}
		exec, mgr, err := openExecutor()
		if err != nil {
			return err
		}
		defer mgr.Close()
		data, err := exec.Query(&msg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// ========== 本地账本 ==========

var fundFlags struct {
	address    string
	coins      string
	cw20       string
	cw20Amount string
}

var fundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Credit native coins or cw20 balance to an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := fundFlags
		coins, err := vm.ParseCoins(f.coins)
		if err != nil {
			return err
		}
		if len(coins) == 0 && f.cw20 == "" {
			return fmt.Errorf("nothing to fund: pass --coins or --cw20")
		}

		exec, mgr, err := openExecutor()
		if err != nil {
			return err
		}
		defer mgr.Close()

		if len(coins) > 0 {
			if err := exec.Fund(f.address, coins); err != nil {
				return err
			}
		}
		if f.cw20 != "" {
			amount, ok := new(big.Int).SetString(f.cw20Amount, 10)
			if !ok || amount.Sign() < 0 {
				return fmt.Errorf("--cw20-amount: invalid amount %q", f.cw20Amount)
			}
			if err := exec.FundCw20(f.cw20, f.address, amount); err != nil {
				return err
			}
		}
		balances, err := exec.Balances(f.address)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.address, vm.CoinsString(balances))
		return nil
	},
}

var receiptCmd = &cobra.Command{
	Use:   "receipt <id>",
	Short: "Show the receipt of an invocation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, mgr, err := openExecutor()
		if err != nil {
			return err
		}
		defer mgr.Close()
		r, err := exec.GetReceipt(strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), r)
	},
}

func init() {
	fl := instantiateCmd.Flags()
	fl.StringVar(&instantiateFlags.sender, "sender", "", "instantiating address")
	fl.StringVar(&instantiateFlags.poolNative, "pool-native", "", "native denom of the pool share")
	fl.StringVar(&instantiateFlags.poolCw20, "pool-cw20", "", "cw20 contract of the pool share")
	fl.StringVar(&instantiateFlags.ratio, "ratio", "1", "receipt tokens minted per pool share")
	fl.StringVar(&instantiateFlags.evacuate, "evacuate-address", "", "evacuation address (default: sender)")
	_ = instantiateCmd.MarkFlagRequired("sender")

	executeCmd.PersistentFlags().StringVar(&executeSender, "sender", "", "calling address")
	_ = executeCmd.MarkPersistentFlagRequired("sender")

	depositCmd.Flags().StringVar(&depositFunds, "funds", "", `attached funds, e.g. "100gamm/pool/1"`)

	ef := evacuateCmd.Flags()
	ef.BoolVar(&evacuateFlags.native, "native", false, "all native coins except the pool denom")
	ef.StringVar(&evacuateFlags.cw20, "cw20", "", "cw20 contract to drain")
	ef.StringVar(&evacuateFlags.cw721, "cw721", "", "cw721 contract holding the tokens")
	ef.StringSliceVar(&evacuateFlags.tokenIDs, "token-ids", nil, "cw721 token ids, in order")

	changeEvacuateCmd.Flags().StringVar(&newEvacuateAddress, "new-address", "", "next evacuation address")
	_ = changeEvacuateCmd.MarkFlagRequired("new-address")

	executeCmd.AddCommand(depositCmd, evacuateCmd, changeEvacuateCmd)

	ff := fundCmd.Flags()
	ff.StringVar(&fundFlags.address, "address", "", "address to credit")
	ff.StringVar(&fundFlags.coins, "coins", "", `native coins, e.g. "100uatom,5uosmo"`)
	ff.StringVar(&fundFlags.cw20, "cw20", "", "cw20 contract")
	ff.StringVar(&fundFlags.cw20Amount, "cw20-amount", "0", "cw20 amount")
	_ = fundCmd.MarkFlagRequired("address")
}
