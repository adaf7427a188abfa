package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/udisondev/statcalc/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var monsters = []model.MonsterType{model.MonsterBoss, model.MonsterNormal}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func title(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(format, args...)))
}

// num formats v rounded to two decimals without trailing zeros.
func num(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func pct(v float64) string {
	return num(v) + "%"
}

func signedPct(v float64) string {
	if v > 0 {
		return "+" + pct(v)
	}
	return pct(v)
}

func parseFloat(arg, what string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, arg, err)
	}
	return v, nil
}
