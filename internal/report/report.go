// Package report renders an HTML chart of completed trades.
package report

import (
	"fmt"
	"io"

	"sarraf/internal/types"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderTrades writes a bar chart comparing entry and exit prices of the
// given signals. Only completed trades carry both sides, but the chart
// accepts any slice and shows whatever price data a signal has.
func RenderTrades(w io.Writer, signals []types.TradeSignal) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Completed trades",
			Subtitle: "entry vs exit price per signal",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(signals))
	entries := make([]opts.BarData, 0, len(signals))
	exits := make([]opts.BarData, 0, len(signals))
	for _, sig := range signals {
		labels = append(labels, fmt.Sprintf("#%d %s", sig.ID, sig.AssetName))
		entries = append(entries, opts.BarData{Value: sig.EntryPrice.InexactFloat64()})
		exits = append(exits, opts.BarData{Value: sig.ExitPrice.InexactFloat64()})
	}
	bar.SetXAxis(labels).
		AddSeries("entry", entries).
		AddSeries("exit", exits)

	return bar.Render(w)
}
