package cli

import (
	"fmt"

	service "github.com/okian/racebet/internal/app"
	"github.com/okian/racebet/internal/domain/analysis"
	"github.com/spf13/cobra"
)

type recommendView service.Recommendation

func (v recommendView) String() string {
	return fmt.Sprintf("%s (id %d, %s)\n", v.Label, v.CompetitorID, v.Source)
}

type patternsView []analysis.PatternEntry

func (v patternsView) String() string { return analysis.FormatPatterns(v) }

type heatmapView analysis.Heatmap

func (v heatmapView) String() string {
	h := analysis.Heatmap(v)
	if h.Empty() {
		return "No games recorded.\n"
	}
	return h.String()
}

// NewRecommendCommand creates the recommend command.
func NewRecommendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Print the bet for the next race",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), rootOpts, func(svc *service.Service) error {
				rec := svc.Recommend(cmd.Context())
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(recommendView(rec))
			})
		},
	}
}

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List finishing orders repeated within a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), rootOpts, func(svc *service.Service) error {
				entries := svc.Patterns(cmd.Context())
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(patternsView(entries))
			})
		},
	}
}

// NewHeatmapCommand creates the heatmap command.
func NewHeatmapCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "Show first places per game and competitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), rootOpts, func(svc *service.Service) error {
				h := svc.Heatmap(cmd.Context())
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(heatmapView(h))
			})
		},
	}
}
