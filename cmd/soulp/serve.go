package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"soulp/handlers"
	"soulp/logs"
	"soulp/stats"
	"soulp/vm"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			cfg.Server.ListenAddr = listenAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address (overrides config)")
}

func runServer(ctx context.Context) error {
	// 1. 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := stats.NewMetrics(reg)

	// 2. 数据库与执行器
	exec, mgr, err := openExecutor(vm.WithObserver(metrics))
	if err != nil {
		return err
	}
	defer mgr.Close()
	logs.Info("[serve] contract %s denom %s", exec.ContractAddress(), exec.Contract.Token(vm.Env{ContractAddress: exec.ContractAddress()}).Denom())

	// 3. HTTP
	hm := handlers.NewHandlerManager(exec, cfg.Server, metrics, reg)
	srv := handlers.NewServer(hm)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logs.Info("[serve] shutting down")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
