package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
)

// StatsChart loads a post-count chart over time for the given filter.
func (r *Runner) StatsChart(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.requireAuth(cmd.Int64("bucket"))
	if err != nil {
		return err
	}

	duration := models.ChartDuration(cmd.String("interval"))
	if duration.Seconds() == 0 {
		return fmt.Errorf("%w: interval %q", shared.ErrInvalidArgument, cmd.String("interval"))
	}

	filter, err := r.buildQuery(ctx, auth, cmd)
	if err != nil {
		return err
	}

	query := models.ChartQuery{
		Name: "posts over time",
		Series: []models.ChartSeriesQuery{
			{Name: "posts", Select: models.SelectCount, Filter: filter},
		},
		Discriminator: models.ChartDiscriminator{Discriminator: "duration", Duration: duration},
	}

	chart, err := r.client.LoadChart(ctx, *auth, query)
	if err != nil {
		return err
	}

	r.writePlainHeader(chart.Name)
	for _, series := range chart.Series {
		var max float64
		for _, point := range series.Points {
			if point.Y > max {
				max = point.Y
			}
		}

		for _, point := range series.Points {
			label := point.Label
			if label == "" {
				label = point.Time.Format("2006-01-02 15:04")
			}
			width := 0
			if max > 0 {
				width = int(point.Y / max * 40)
			}
			r.writePlain("%-18s %s %.0f\n", label, r.styles.OK(bar(width)), point.Y)
		}
	}
	return nil
}

func bar(width int) string {
	out := make([]rune, width)
	for i := range out {
		out[i] = '▇'
	}
	return string(out)
}
