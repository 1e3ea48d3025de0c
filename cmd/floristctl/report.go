package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"floristDashboard/internal/analytics"
)

func printReport(w io.Writer, r *analytics.Report) error {
	scope := "all bouquets"
	if r.Bouquet != nil {
		scope = fmt.Sprintf("%s (#%d)", r.Bouquet.Name, r.Bouquet.ID)
	}
	fmt.Fprintf(w, "Period: %s, %s, generated %s\n\n", r.Period, scope, r.GeneratedAt.Format("2006-01-02 15:04:05"))

	sections := []struct {
		title  string
		header []string
		rows   [][]string
	}{
		{"Summary", []string{"Metric", "Value"}, summaryRows(r)},
		{"Hours", []string{"Hour", "Orders", "Share %"}, hourRows(r.Hours)},
		{"Orders by " + r.Granularity.String(), []string{"Bucket", "Orders"}, distributionRows(r.Distribution)},
		{"Top clients", []string{"Phone", "Name", "Amount", "Orders"}, clientRows(r.TopClients)},
		{"Top bouquets", []string{"Bouquet", "Orders", "Revenue"}, bouquetRows(r.TopBouquets)},
	}
	for _, s := range sections {
		fmt.Fprintln(w, s.title)
		if err := renderTable(w, s.header, s.rows); err != nil {
			return fmt.Errorf("render %s: %w", s.title, err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	table.Header(cols...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func summaryRows(r *analytics.Report) [][]string {
	return [][]string{
		{"Orders sum", r.Summary.OrdersSum.StringFixed(2)},
		{"Orders", strconv.Itoa(r.Summary.OrdersCount)},
		{"Unique clients", strconv.Itoa(r.Summary.UniqueClients)},
		{"Consultations", strconv.Itoa(r.Summary.Consultations)},
		{"Most popular window", r.PopularWindow},
		{"Created to composed", r.Stages.CreateToCompose.String()},
		{"Composed to delivered", r.Stages.ComposeToDeliver.String()},
		{"Created to delivered", r.Stages.CreateToDeliver.String()},
	}
}

func hourRows(hours []analytics.HourShare) [][]string {
	rows := make([][]string, 0, len(hours))
	for _, h := range hours {
		rows = append(rows, []string{fmt.Sprintf("%02d:00", h.Hour), strconv.Itoa(h.Count), h.Label})
	}
	return rows
}

func distributionRows(buckets []analytics.Bucket) [][]string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{b.Label, strconv.Itoa(b.Count)})
	}
	return rows
}

func clientRows(clients []analytics.ClientRank) [][]string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{c.Phone, c.Name, c.Amount.StringFixed(2), strconv.Itoa(c.Orders)})
	}
	return rows
}

func bouquetRows(bouquets []analytics.BouquetRank) [][]string {
	rows := make([][]string, 0, len(bouquets))
	for _, b := range bouquets {
		rows = append(rows, []string{b.Name, strconv.Itoa(b.Orders), b.Revenue.StringFixed(2)})
	}
	return rows
}
