// Command rtsim runs a configurable instance of the rtkernel scheduler
// against a set of demonstration periodic workloads, or checks whether a
// proposed thread set would pass admission without running anything.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user-none/go-rtkernel"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rtsim",
		Short: "Rate-monotonic kernel simulator",
	}
	root.AddCommand(newRunCmd(), newAdmitCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rtsim version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func newAdmitCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "admit",
		Short: "Check whether a thread set passes the Liu-Layland admission test without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runAdmit(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML workload config")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newRunCmd() *cobra.Command {
	var configPath string
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler against the configured workloads until they all exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}
			return runSimulation(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML workload config")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on, e.g. :9090")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func protectionModeFromString(s string) rtkernel.ProtectionMode {
	if s == "per_thread" {
		return rtkernel.PerThread
	}
	return rtkernel.KernelOnly
}

func runAdmit(cfg simConfig) error {
	k := rtkernel.New()
	if err := k.ThreadInit(rtkernel.Config{
		MaxThreads:     cfg.MaxThreads,
		StackSize:      cfg.StackSizeWords,
		ProtectionMode: protectionModeFromString(cfg.ProtectionMode),
		MaxMutexes:     cfg.MaxMutexes,
	}); err != nil {
		return err
	}

	for _, th := range cfg.Threads {
		fn, ok := workloadRegistry[th.Workload]
		if !ok {
			return fmt.Errorf("rtsim: unknown workload %q for thread %q", th.Workload, th.Name)
		}
		if err := k.ThreadCreate(fn, th.Priority, th.Budget, th.Period, th.Name); err != nil {
			fmt.Printf("REJECTED %-16s priority=%-3d C=%-4d T=%-4d: %v\n", th.Name, th.Priority, th.Budget, th.Period, err)
			continue
		}
		fmt.Printf("ADMITTED %-16s priority=%-3d C=%-4d T=%-4d\n", th.Name, th.Priority, th.Budget, th.Period)
	}
	return nil
}

func runSimulation(cfg simConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	met := rtkernel.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go http.ListenAndServe(cfg.MetricsAddr, mux)
		logger.Info("metrics endpoint listening", zap.String("addr", cfg.MetricsAddr))
	}

	k := rtkernel.New()
	if err := k.ThreadInit(rtkernel.Config{
		MaxThreads:     cfg.MaxThreads,
		StackSize:      cfg.StackSizeWords,
		ProtectionMode: protectionModeFromString(cfg.ProtectionMode),
		MaxMutexes:     cfg.MaxMutexes,
		Logger:         logger,
		Metrics:        met,
	}); err != nil {
		return err
	}

	for _, th := range cfg.Threads {
		fn, ok := workloadRegistry[th.Workload]
		if !ok {
			return fmt.Errorf("rtsim: unknown workload %q for thread %q", th.Workload, th.Name)
		}
		if err := k.ThreadCreate(fn, th.Priority, th.Budget, th.Period, th.Name); err != nil {
			return fmt.Errorf("rtsim: thread %q: %w", th.Name, err)
		}
	}

	tickHz := cfg.TickHz
	if tickHz == 0 {
		tickHz = 100
	}
	code := k.SchedulerStart(tickHz)
	logger.Info("simulation finished", zap.Int("exit_code", code))
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
