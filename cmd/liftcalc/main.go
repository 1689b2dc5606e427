// Package main provides the CLI entrypoint for liftcalc.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/verte-zerg/liftcalc/internal/config"
	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/logging"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/report"
	"github.com/verte-zerg/liftcalc/internal/session"
	"github.com/verte-zerg/liftcalc/internal/state"
	"github.com/verte-zerg/liftcalc/internal/store"
	"github.com/verte-zerg/liftcalc/internal/tui"
)

const (
	defaultOutput   = "text"
	defaultLogLevel = "info"
	defaultAddr     = "127.0.0.1:8080"
)

var (
	flagDB        string
	flagURL       string
	flagOutput    string
	flagFormulas  []string
	flagShareURL  string
	flagLogLevel  string
	flagLogFile   string
	flagLogJSON   bool
	flagLogStderr bool

	serveAddr string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "liftcalc",
		Short:         "One-rep max calculator with warm-up and plate planning",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runRootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagDB, "db", config.DefaultDBPath(), "path to the state database")
	flags.StringVar(&flagURL, "url", "", "share link whose parameters override the saved state")
	flags.StringVarP(&flagOutput, "output", "o", defaultOutput, "output format: text, json or yaml")
	flags.StringSliceVar(&flagFormulas, "formulas", nil, "estimators to aggregate (epley, brzycki, lombardi)")
	flags.StringVar(&flagShareURL, "share-url", "", "base URL for share links")
	flags.StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level: trace, debug, info, warn, error")
	flags.StringVar(&flagLogFile, "log-file", config.DefaultLogPath(), "log file path (empty disables file logging)")
	flags.BoolVar(&flagLogJSON, "log-json", false, "write logs as JSON")
	flags.BoolVar(&flagLogStderr, "log-stderr", false, "mirror logs to stderr")

	rootCmd.AddCommand(newCalcCmd())
	rootCmd.AddCommand(newWarmupCmd())
	rootCmd.AddCommand(newPlatesCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app bundles what every command needs once flags and config are resolved.
type app struct {
	sess   *session.Session
	store  *store.Store
	logs   io.Closer
	format report.Format
	color  bool
	out    io.Writer
}

func (a *app) Close() error {
	var err error
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	if a.logs != nil {
		err = multierr.Append(err, a.logs.Close())
	}
	return err
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)

	format, err := report.ParseFormat(flagOutput)
	if err != nil {
		return nil, err
	}
	formulas := model.AllFormulas
	if len(flagFormulas) > 0 {
		formulas, err = formula.ParseFormulas(flagFormulas)
		if err != nil {
			return nil, fmt.Errorf("invalid --formulas: %w", err)
		}
	}

	a := &app{
		format: format,
		out:    cmd.OutOrStdout(),
		color:  format == report.Text && cmd.OutOrStdout() == os.Stdout && report.ColorEnabled(os.Stdout),
	}
	a.logs = logging.Setup(logging.SetupParams{
		LogFile:       flagLogFile,
		LogToStderr:   flagLogStderr,
		LogLevel:      flagLogLevel,
		LogFormatJSON: flagLogJSON,
	})

	st, err := store.Open(flagDB)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st

	var override state.Override
	if flagURL != "" {
		var perr error
		override, perr = state.ParseURL(flagURL)
		if perr != nil {
			for _, e := range multierr.Errors(perr) {
				log.Warnf("ignoring share link parameter: %v", e)
			}
		}
	}
	a.sess = session.Open(cmd.Context(), st, session.Options{
		Formulas: formulas,
		ShareURL: flagShareURL,
	}, override)
	return a, nil
}

// withApp runs fn with an opened app and reports close errors.
func withApp(cmd *cobra.Command, fn func(context.Context, *app) error) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close: %w", cerr))
		}
	}()
	return fn(cmd.Context(), a)
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if a.format != report.Text || !isInteractive() {
			return printSummary(a)
		}
		program := tea.NewProgram(tui.NewModel(ctx, a.sess), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	})
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// printSummary is the non-interactive view: saved state plus the last result.
func printSummary(a *app) error {
	calc, ok := a.sess.Last()
	if a.format != report.Text {
		summary := struct {
			State model.AppState     `json:"state" yaml:"state"`
			Last  *model.Calculation `json:"last,omitempty" yaml:"last,omitempty"`
		}{State: a.sess.State()}
		if ok {
			summary.Last = &calc
		}
		return report.Encode(a.out, a.format, summary)
	}
	if err := report.RenderState(a.out, a.sess.State(), a.color); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return renderCalculation(a, calc)
}

func renderCalculation(a *app, calc model.Calculation) error {
	if a.format != report.Text {
		return report.Encode(a.out, a.format, calc)
	}
	if err := report.RenderCalculation(a.out, calc, a.color); err != nil {
		return err
	}
	if err := report.RenderPercentages(a.out, calc.Percentages, calc.Input.Unit, a.color); err != nil {
		return err
	}
	return report.RenderWarmup(a.out, calc.Warmup, a.color)
}
