package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mariondam/Wattflex/app"
	"github.com/mariondam/Wattflex/config"
)

var netmeterDays int

var netmeterCmd = &cobra.Command{
	Use:   "netmeter",
	Short: "Compute a schedule with the net-metering model",
	RunE:  runNetMeter,
}

func init() {
	netmeterCmd.Flags().IntVar(&netmeterDays, "days", 0, "chain this many consecutive days (overrides config)")
	rootCmd.AddCommand(netmeterCmd)
}

func runNetMeter(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if netmeterDays > 0 {
		cfg.NetMetering.Days = netmeterDays
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	return svc.Run(ctx, "netmetering")
}
