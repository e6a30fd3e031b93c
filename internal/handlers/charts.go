package handlers

import (
	"faithledger/internal/ledger"
)

// trendChart is the bar chart payload of an income/expense trend.
type trendChart struct {
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Expense []float64 `json:"expense"`
}

// valueChart is the payload of a single-series chart.
type valueChart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func newTrendChart(points []ledger.MonthPoint) trendChart {
	chart := trendChart{
		Labels:  make([]string, 0, len(points)),
		Income:  make([]float64, 0, len(points)),
		Expense: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		chart.Labels = append(chart.Labels, p.Label)
		chart.Income = append(chart.Income, p.Income.InexactFloat64())
		chart.Expense = append(chart.Expense, p.Expense.InexactFloat64())
	}
	return chart
}

func newBreakdownChart(totals []ledger.CategoryTotal) valueChart {
	chart := valueChart{Labels: make([]string, 0, len(totals)), Values: make([]float64, 0, len(totals))}
	for _, t := range totals {
		chart.Labels = append(chart.Labels, t.Name)
		chart.Values = append(chart.Values, t.Total.InexactFloat64())
	}
	return chart
}

func newSeriesChart(points []ledger.SeriesPoint) valueChart {
	chart := valueChart{Labels: make([]string, 0, len(points)), Values: make([]float64, 0, len(points))}
	for _, p := range points {
		chart.Labels = append(chart.Labels, p.Label)
		chart.Values = append(chart.Values, p.Amount.InexactFloat64())
	}
	return chart
}
