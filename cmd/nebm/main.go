package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/Xing-Huang/fidimag"
	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// This command reads a scenario, optionally relaxes its endpoints and relaxes the band between them.

var (
	scenario string
	verbose  bool
	logger   kitlog.Logger
)

func main() {
	logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nebm",
		Short:         "Minimum energy paths of spin lattices with the nudged elastic band method",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&scenario, "scenario", "", "scenario TOML file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log the configuration")
	root.MarkPersistentFlagRequired("scenario")
	root.AddCommand(runCmd(), energyCmd())
	return root
}

func loadScenario(cmd *cobra.Command) (fidimag.Scenario, error) {
	v := viper.New()
	if f := cmd.Flags().Lookup("max-steps"); f != nil {
		if err := v.BindPFlag("neb.max_steps", f); err != nil {
			return fidimag.Scenario{}, err
		}
	}
	v.SetConfigFile(scenario)
	if err := v.ReadInConfig(); err != nil {
		return fidimag.Scenario{}, fmt.Errorf("%s: %w", scenario, err)
	}
	s, err := fidimag.ScenarioFromViper(v)
	if err != nil {
		return s, err
	}
	if verbose {
		logger.Log("level", "info", "subsys", "conf", "grid", s.Grid, "layout", s.Layout, "J", s.J, "Ku", s.Ku, "Kc", s.Kc, "D", s.D, "dmi", s.DMI, "images", s.Band.Images, "step", s.Band.Step)
	}
	return s, nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Relax the band of the scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			h, err := s.Hamiltonian()
			if err != nil {
				return err
			}
			initial, final := s.Endpoints()
			if s.RelaxEndpoints {
				for name, spin := range map[string]fidimag.VectorField{"initial": initial, "final": final} {
					iters, e, err := fidimag.RelaxImage(ctx, h, spin, s.Relax, kitlog.With(logger, "endpoint", name))
					if err != nil {
						return fmt.Errorf("relaxing %s state: %w", name, err)
					}
					logger.Log("level", "info", "subsys", "relax", "endpoint", name, "iter", iters, "energy", e)
				}
			}
			band, err := fidimag.NewBand(h, initial, final, s.Band, s.Export, kitlog.With(logger, "band", s.Band.Name))
			if err != nil {
				return err
			}
			if err := band.Relax(ctx); err != nil && !errors.Is(err, fidimag.ErrNotConverged) {
				return err
			} else if err != nil {
				logger.Log("level", "warning", "subsys", "neb", "err", err)
			}
			fmt.Printf("barrier: %g (image energies %v)\n", band.Barrier(), band.Energies())
			return nil
		},
	}
	cmd.Flags().Uint64("max-steps", 0, "override neb.max_steps")
	return cmd
}

func energyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "energy",
		Short: "Print the energy of every interaction for both endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(cmd)
			if err != nil {
				return err
			}
			h, err := s.Hamiltonian()
			if err != nil {
				return err
			}
			initial, final := s.Endpoints()
			for _, ep := range []struct {
				name string
				spin fidimag.VectorField
			}{{"initial", initial}, {"final", final}} {
				energies, err := h.Energies(ep.spin, 0)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(energies))
				for name := range energies {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Printf("%s\t%s\t%g\n", ep.name, name, energies[name])
				}
			}
			return nil
		},
	}
}
