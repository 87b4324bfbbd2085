package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urbanpulse/sentinel/app"
	"github.com/urbanpulse/sentinel/config"
	"github.com/urbanpulse/sentinel/infra/logger"
)

var (
	cycleScenario string
	cycleSurface  string
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Execute one sentinel cycle for a named scenario",
	RunE:  runCycle,
}

func init() {
	cycleCmd.Flags().StringVarP(&cycleScenario, "scenario", "s", "low_haze", "scenario identifier")
	cycleCmd.Flags().StringVar(&cycleSurface, "surface", "sentinel-cli", "acting surface passed to the dispatch controller; empty observes only")
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("cycle-command").Errorf("service close: %v", err)
		}
	}()

	logg := logger.New("cycle-command")
	res, err := svc.RunCycle(ctx, app.CycleRequest{Scenario: cycleScenario, Surface: cycleSurface})
	if err != nil {
		return err
	}

	logg.Infof("scenario %s: severity=%s max_psi=%.1f mean_psi=%.1f", res.Scenario, res.Severity, res.Summary.MaxPSI, res.Summary.MeanPSI)
	if len(res.Summary.HighRisk) > 0 {
		logg.Warnf("high-risk districts: %v", res.Summary.HighRisk)
	}
	if res.Dispatch != nil {
		logg.Infof("dispatch outcome=%s qty=%d po_id=%s state=%s", res.Dispatch.Outcome, res.Dispatch.Qty, res.Dispatch.POID, res.Dispatch.State.Phase)
	}
	return nil
}
