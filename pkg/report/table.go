// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

// Display-only temperature tiers: warm drives render yellow, hot drives
// red. The scan-level judgement threshold lives in scanner.Config.
const (
	warmDisplayTemperature = 45
	hotDisplayTemperature  = 50
)

// TableWriter renders a scan result as a colored terminal table followed
// by the health alert sections.
type TableWriter struct {
	out     io.Writer
	noColor bool
}

// NewTableWriter returns a TableWriter printing to out. With noColor set,
// output stays plain for pipes and logs.
func NewTableWriter(out io.Writer, noColor bool) *TableWriter {
	return &TableWriter{out: out, noColor: noColor}
}

func (w *TableWriter) paint(c *color.Color, s string) string {
	if w.noColor {
		return s
	}
	return c.Sprint(s)
}

func (w *TableWriter) healthCell(row Row) string {
	if row.SmartHealth == "FAIL" {
		return w.paint(color.New(color.FgRed, color.Bold), row.SmartHealth)
	}
	return w.paint(color.New(color.FgGreen), row.SmartHealth)
}

func (w *TableWriter) tempCell(row Row) string {
	t, err := strconv.ParseInt(row.TemperatureC, 10, 64)
	if err != nil {
		return row.TemperatureC
	}
	switch {
	case t > hotDisplayTemperature:
		return w.paint(color.New(color.FgRed, color.Bold), row.TemperatureC)
	case t > warmDisplayTemperature:
		return w.paint(color.New(color.FgYellow), row.TemperatureC)
	default:
		return row.TemperatureC
	}
}

func (w *TableWriter) statusCell(row Row) string {
	switch row.Status {
	case "up", "up/in":
		return w.paint(color.New(color.FgGreen), row.Status)
	case "-", "N/A":
		return row.Status
	default:
		return w.paint(color.New(color.FgRed), row.Status)
	}
}

// Write renders the full report.
func (w *TableWriter) Write(result *scanner.ScanResult) error {
	fmt.Fprintf(w.out, "Scan of %s at %s\n", result.Hostname, result.Timestamp.Format("2006-01-02 15:04:05"))
	for _, ctrl := range result.Controllers {
		fmt.Fprintf(w.out, "Controller %s: %s (%s)\n", ctrl.DevicePath, ctrl.DisplayType, ctrl.Model)
	}
	fmt.Fprintln(w.out)

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OSD\tDEVICE\tSLOT\tSCSI\tMODEL\tSERIAL\tSIZE\tSMART\tSTATUS\tSYSTEMD\tCOMMIT ms\tTEMP C\tREALLOC\tPENDING\tAGE")

	rows := BuildRows(result)
	for _, row := range rows {
		osdID := row.OSDID
		if osdID == "" {
			osdID = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			osdID, row.Device, row.SlotID, row.SCSIAddress, row.Model, row.Serial, row.Size,
			w.healthCell(row), w.statusCell(row), row.Systemd, row.CommitMS,
			w.tempCell(row), row.Realloc, row.Pending, row.Age)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	w.writeAlerts(result)

	fmt.Fprintf(w.out, "\n%d drives, %d OSDs in cluster, %d local, %d available for new OSDs\n",
		len(result.Drives), len(result.OSDs), len(result.Correlation.OSDToDrive),
		len(result.Health.AvailableDrives))
	return nil
}

func (w *TableWriter) section(title string) {
	fmt.Fprintf(w.out, "\n%s\n", w.paint(color.New(color.Bold), title))
}

func (w *TableWriter) writeAlerts(result *scanner.ScanResult) {
	health := result.Health

	if len(health.SmartProblems) > 0 {
		w.section("SMART PROBLEMS")
		for _, alert := range health.SmartProblems {
			drive := result.Drives[alert.Serial]
			fmt.Fprintf(w.out, "  %s (%s) osd=%s reallocated=%s pending=%s uncorrectable=%s\n",
				alert.Serial, drive.Model, orNA(alert.OSDID),
				counterString(drive.Smart.ReallocatedSectors),
				counterString(drive.Smart.PendingSectors),
				counterString(drive.Smart.UncorrectableSectors))
		}
	}

	if len(health.HighLatency) > 0 {
		w.section("HIGH LATENCY")
		for _, alert := range health.HighLatency {
			fmt.Fprintf(w.out, "  osd=%s commit=%dms drive=%s\n", alert.OSDID, alert.LatencyMS, orNA(alert.Serial))
		}
	}

	if len(health.HighTemperature) > 0 {
		w.section("HIGH TEMPERATURE")
		for _, alert := range health.HighTemperature {
			fmt.Fprintf(w.out, "  %s %dC osd=%s\n", alert.Serial, alert.TemperatureC, orNA(alert.OSDID))
		}
	}

	if len(health.DownOSDs) > 0 {
		w.section("DOWN OSDS")
		for _, alert := range health.DownOSDs {
			fmt.Fprintf(w.out, "  osd=%s drive=%s\n", alert.OSDID, orNA(alert.Serial))
		}
	}

	if len(health.AvailableDrives) > 0 {
		w.section("AVAILABLE FOR NEW OSDS")
		for _, serial := range health.AvailableDrives {
			drive := result.Drives[serial]
			fmt.Fprintf(w.out, "  %s %s %s (%s)\n", drive.OSDeviceName, drive.Model, orNA(drive.Capacity), serial)
		}
	}

	if len(result.Correlation.Duplicates) > 0 {
		w.section("DATA QUALITY")
		for _, osdID := range result.Correlation.Duplicates {
			fmt.Fprintf(w.out, "  osd=%s reports a serial already claimed by another OSD\n", osdID)
		}
	}
}
