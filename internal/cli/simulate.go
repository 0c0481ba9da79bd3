package cli

import (
	"fmt"
	"time"

	service "github.com/okian/racebet/internal/app"
	"github.com/okian/racebet/internal/domain/session"
	"github.com/okian/racebet/internal/simulate"
	"github.com/okian/racebet/pkg/logger"
	"github.com/spf13/cobra"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	Games  int
	Rounds int
	Seed   uint64
}

type simulateView struct {
	Games     int    `json:"games"`
	Rounds    int    `json:"rounds"`
	Seed      uint64 `json:"seed"`
	FirstGame int    `json:"first_game"`
	Races     int    `json:"races"`
}

func (v simulateView) String() string {
	return fmt.Sprintf("Simulated %d games x %d rounds from game %d (seed %d); history holds %d races.\n",
		v.Games, v.Rounds, v.FirstGame, v.Seed, v.Races)
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Append synthetic games with random finishing orders",
		Long: `Append synthetic games after the ones already recorded.

The same --seed over the same history produces the same rows. Without --seed
a time-based seed is used and reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			return runSimulate(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Games, "games", 1, "number of games")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 10, "rounds per game")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")

	return cmd
}

func runSimulate(cmd *cobra.Command, rootOpts *RootOptions, opts *SimulateOptions) error {
	ctx := cmd.Context()
	return withService(ctx, rootOpts, func(svc *service.Service) error {
		gen := simulate.New(
			simulate.WithSeed(opts.Seed),
			simulate.WithRegistry(svc.Registry()),
			simulate.WithLogger(logger.Named("simulate")),
		)
		first := session.NextGame(svc.Snapshot(ctx))
		rows, err := gen.Games(ctx, first, opts.Games, opts.Rounds)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeUsage, "simulate", err)
		}
		table, err := svc.Import(ctx, rows)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeHistory, "store simulated games", err)
		}

		return newFormatter(rootOpts, cmd.OutOrStdout()).Success(simulateView{
			Games:     opts.Games,
			Rounds:    opts.Rounds,
			Seed:      opts.Seed,
			FirstGame: int(first),
			Races:     table.Len(),
		})
	})
}
