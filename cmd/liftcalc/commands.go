package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/liftcalc/internal/config"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/report"
	"github.com/verte-zerg/liftcalc/internal/server"
	"github.com/verte-zerg/liftcalc/internal/session"
	"github.com/verte-zerg/liftcalc/internal/units"
)

func newCalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc WEIGHT REPS",
		Short: "Estimate a one-rep max from a set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				calc, err := a.sess.CalculateRaw(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return renderCalculation(a, calc)
			})
		},
	}
}

func newWarmupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warmup [WEIGHT]",
		Short: "Plan warm-up sets toward a working weight (default: last estimated 1RM)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				weight, err := warmupWeight(a.sess, args)
				if err != nil {
					return err
				}
				plan, err := a.sess.Warmup(weight)
				if err != nil {
					return err
				}
				if a.format != report.Text {
					return report.Encode(a.out, a.format, plan)
				}
				return report.RenderWarmup(a.out, plan, a.color)
			})
		},
	}
}

func warmupWeight(sess *session.Session, args []string) (float64, error) {
	if len(args) == 1 {
		weight, err := session.ParseWeight(args[0])
		if err != nil {
			return 0, fmt.Errorf("please enter a valid working weight: %w", err)
		}
		return weight, nil
	}
	calc, ok := sess.Last()
	if !ok {
		return 0, fmt.Errorf("no working weight given and no previous calculation")
	}
	return calc.Result.Best, nil
}

type platesOutput struct {
	Target      float64           `json:"target" yaml:"target"`
	Config      model.PlateConfig `json:"config" yaml:"config"`
	Result      model.PlateResult `json:"result" yaml:"result"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Hint        string            `json:"hint,omitempty" yaml:"hint,omitempty"`
}

func newPlatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plates TARGET",
		Short: "Show how to load the bar for a target weight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				target, err := session.ParseWeight(args[0])
				if err != nil {
					return fmt.Errorf("please enter a valid target weight: %w", err)
				}
				cfg := a.sess.State().PlateConfig
				result := a.sess.Plates(target)
				if a.format == report.Text {
					return report.RenderPlates(a.out, target, cfg, result, a.color)
				}
				out := platesOutput{Target: target, Config: cfg, Result: result, Hint: plates.Hint(target, cfg)}
				if out.Hint == "" {
					out.Description = plates.Describe(result, cfg)
				}
				return report.Encode(a.out, a.format, out)
			})
		},
	}
}

func newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print a shareable summary and link for the last calculation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				text, err := a.sess.ShareText()
				if err != nil {
					return err
				}
				link := a.sess.ShareURL()
				if a.format != report.Text {
					return report.Encode(a.out, a.format, map[string]string{"text": text, "url": link})
				}
				_, err = fmt.Fprintf(a.out, "%s\n\n%s\n", text, link)
				return err
			})
		},
	}
}

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or change the saved calculator state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				return printState(a)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the saved state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.sess.Reset(ctx); err != nil {
					return fmt.Errorf("failed to reset state: %w", err)
				}
				return printState(a)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unit kg|lb",
		Short: "Switch units, converting the weight and resetting bar and plates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				unit, err := units.ParseUnit(args[0])
				if err != nil {
					return err
				}
				a.sess.SetUnit(ctx, unit)
				return printState(a)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "bar WEIGHT",
		Short: "Set the bar weight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				bar, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
				if err != nil {
					return fmt.Errorf("invalid bar weight %q", args[0])
				}
				if err := a.sess.SetBar(ctx, bar); err != nil {
					return err
				}
				return printState(a)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "plate WEIGHT on|off",
		Short: "Mark a plate denomination as available or not",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				index, err := plateIndex(a.sess.State().PlateConfig, args[0])
				if err != nil {
					return err
				}
				available, err := parseOnOff(args[1])
				if err != nil {
					return err
				}
				if err := a.sess.SetPlateAvailable(ctx, index, available); err != nil {
					return err
				}
				return printState(a)
			})
		},
	})
	return cmd
}

func printState(a *app) error {
	if a.format != report.Text {
		return report.Encode(a.out, a.format, a.sess.State())
	}
	return report.RenderState(a.out, a.sess.State(), a.color)
}

func plateIndex(cfg model.PlateConfig, raw string) (int, error) {
	weight, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid plate weight %q", raw)
	}
	for i, p := range cfg.Plates {
		if p.Weight == weight {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no %s plate in the inventory: %w", units.FormatWithUnit(weight, cfg.Unit), plates.ErrPlateIndex)
}

func parseOnOff(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", raw)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator as a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
			return withApp(cmd, func(ctx context.Context, a *app) error {
				l, err := net.Listen("tcp", serveAddr)
				if err != nil {
					return fmt.Errorf("failed to listen on %s: %w", serveAddr, err)
				}
				if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s\n", l.Addr()); err != nil {
					return err
				}
				srv := server.New(a.sess.State(), a.sess.Formulas(), flagShareURL)
				return srv.Serve(ctx, l)
			})
		},
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}
