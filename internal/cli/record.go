package cli

import (
	"fmt"
	"strconv"

	service "github.com/okian/racebet/internal/app"
	"github.com/okian/racebet/internal/domain/analysis"
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/internal/domain/session"
	"github.com/spf13/cobra"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	Game  int
	Round int
}

type recordView struct {
	Row            model.RaceResult       `json:"row"`
	Order          analysis.OrderKey      `json:"order"`
	Recommendation service.Recommendation `json:"recommendation"`
}

func (v recordView) String() string {
	return fmt.Sprintf("Recorded game %d round %d: %s\n%s\n",
		v.Row.Game, v.Row.Round, v.Order, v.Recommendation.Label)
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{}

	cmd := &cobra.Command{
		Use:   "record <1st> <2nd> <3rd> <4th>",
		Short: "Append one race result to the history",
		Long: `Append one race result, given as competitor ids from first to last place.

Without --game the result opens the next game. Without --round it takes the
round after the last one recorded for that game.`,
		Args: cobra.ExactArgs(model.Positions),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().IntVar(&opts.Game, "game", 0, "game id (default: next game)")
	cmd.Flags().IntVar(&opts.Round, "round", 0, "round within the game (default: next round)")

	return cmd
}

func runRecord(cmd *cobra.Command, rootOpts *RootOptions, opts *RecordOptions, args []string) error {
	positions, err := parsePositions(args)
	if err != nil {
		return err
	}
	if opts.Game < 0 || opts.Round < 0 {
		return NewExitError(ExitCommandError, ErrCodeUsage, "--game and --round must not be negative")
	}

	ctx := cmd.Context()
	return withService(ctx, rootOpts, func(svc *service.Service) error {
		table := svc.Snapshot(ctx)
		game := model.GameID(opts.Game)
		if game == model.NoGame {
			game = session.NextGame(table)
		}
		round := opts.Round
		if round == 0 {
			round = nextRound(table, game)
		}

		row, err := model.NewRaceResult(game, round, positions, svc.Registry())
		if err != nil {
			return WrapExitError(ExitFailure, ErrCodeInput, "invalid result", err)
		}
		if _, err := svc.Import(ctx, []model.RaceResult{row}); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeHistory, "record result", err)
		}

		return newFormatter(rootOpts, cmd.OutOrStdout()).Success(recordView{
			Row:            row,
			Order:          analysis.OrderKeyOf(row),
			Recommendation: svc.Recommend(ctx),
		})
	})
}

func parsePositions(args []string) ([]model.CompetitorID, error) {
	positions := make([]model.CompetitorID, 0, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, WrapExitError(ExitFailure, ErrCodeInput, fmt.Sprintf("position %d is not a competitor id", i+1), err)
		}
		positions = append(positions, model.CompetitorID(n))
	}
	return positions, nil
}

// nextRound is one past the highest round recorded for game.
func nextRound(t model.Table, game model.GameID) int {
	last := 0
	for i := 0; i < t.Len(); i++ {
		if r := t.At(i); r.Game == game && r.Round > last {
			last = r.Round
		}
	}
	return last + 1
}
