// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package report renders and exports scan results. Everything here
// consumes the ScanResult read-only; no field except the drive serial and
// the OSD ID may be assumed non-empty.
package report

import (
	"sort"
	"strconv"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

// Row is one flattened drive line shared by the table, CSV, JSON and
// history writers.
type Row struct {
	OSDID        string `json:"osd_id"`
	Device       string `json:"device"`
	SlotID       int    `json:"slot_id"`
	SCSIAddress  string `json:"scsi_address"`
	Controller   string `json:"controller"`
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	Size         string `json:"size"`
	SmartHealth  string `json:"smart_health"`
	Status       string `json:"status"`
	Systemd      string `json:"systemd"`
	CommitMS     string `json:"commit_latency_ms"`
	ApplyMS      string `json:"apply_latency_ms"`
	TemperatureC string `json:"temperature_c"`
	Realloc      string `json:"reallocated_sectors"`
	Pending      string `json:"pending_sectors"`
	Age          string `json:"age"`
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func counterString(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatInt(*v, 10)
}

func statusString(s scanner.OSDStatus) string {
	if s.Up == nil {
		return "N/A"
	}
	up := "down"
	if *s.Up {
		up = "up"
	}
	in := ""
	if s.In != nil {
		if *s.In {
			in = "/in"
		} else {
			in = "/out"
		}
	}
	return up + in
}

// BuildRows flattens a scan result into display rows, claimed drives
// first in OSD-ID order, then unclaimed drives by serial.
func BuildRows(result *scanner.ScanResult) []Row {
	rows := make([]Row, 0, len(result.Drives))

	for _, drive := range result.Drives {
		osdID := result.OSDForDrive(drive.Serial)

		row := Row{
			OSDID:        osdID,
			Device:       orNA(drive.OSDeviceName),
			SlotID:       drive.SlotID,
			SCSIAddress:  drive.LocationAddress,
			Controller:   drive.ControllerType,
			Model:        drive.Model,
			Serial:       drive.Serial,
			Size:         orNA(drive.Capacity),
			TemperatureC: counterString(drive.Smart.TemperatureC),
			Realloc:      counterString(drive.Smart.ReallocatedSectors),
			Pending:      counterString(drive.Smart.PendingSectors),
			Age:          scanner.FormatAge(drive.Smart.PowerOnHours),
		}

		if drive.SmartPass {
			row.SmartHealth = "OK"
		} else {
			row.SmartHealth = "FAIL"
		}

		if osdID != "" {
			row.Status = statusString(result.Status[osdID])
			row.Systemd = string(result.Service[osdID])
			if perf, ok := result.Perf[osdID]; ok {
				row.CommitMS = strconv.FormatInt(perf.CommitLatencyMS, 10)
				row.ApplyMS = strconv.FormatInt(perf.ApplyLatencyMS, 10)
			} else {
				row.CommitMS, row.ApplyMS = "N/A", "N/A"
			}
		} else {
			row.Status = "-"
			row.Systemd = "-"
			row.CommitMS, row.ApplyMS = "-", "-"
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		// Claimed drives sort before spares; numeric OSD IDs in order.
		switch {
		case a.OSDID == "" && b.OSDID != "":
			return false
		case a.OSDID != "" && b.OSDID == "":
			return true
		case a.OSDID != b.OSDID:
			ai, aerr := strconv.Atoi(a.OSDID)
			bi, berr := strconv.Atoi(b.OSDID)
			if aerr == nil && berr == nil {
				return ai < bi
			}
			return a.OSDID < b.OSDID
		default:
			return a.Serial < b.Serial
		}
	})

	return rows
}
