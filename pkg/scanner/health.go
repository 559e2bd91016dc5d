// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import "sort"

func counterPositive(v *int64) bool {
	return v != nil && *v > 0
}

// AggregateHealth combines per-drive SMART health, per-OSD up/in state and
// per-OSD latency into the five judgement lists. The lists are independent,
// with no deduplication or prioritization across them; that is a
// presentation concern.
func AggregateHealth(cfg Config, drives map[string]PhysicalDrive, corr Correlation, status map[string]OSDStatus, perf map[string]OSDPerf) HealthReport {
	var report HealthReport

	driveToOSD := make(map[string]string, len(corr.OSDToDrive))
	for osdID, serial := range corr.OSDToDrive {
		driveToOSD[serial] = osdID
	}

	serials := make([]string, 0, len(drives))
	for serial := range drives {
		serials = append(serials, serial)
	}
	sort.Strings(serials)

	for _, serial := range serials {
		drive := drives[serial]
		osdID := driveToOSD[serial]

		if counterPositive(drive.Smart.ReallocatedSectors) ||
			counterPositive(drive.Smart.PendingSectors) ||
			counterPositive(drive.Smart.UncorrectableSectors) {
			report.SmartProblems = append(report.SmartProblems, DriveAlert{OSDID: osdID, Serial: serial})
		}

		if drive.Smart.TemperatureC != nil && *drive.Smart.TemperatureC > cfg.TemperatureThresholdC {
			report.HighTemperature = append(report.HighTemperature, TempAlert{
				OSDID:        osdID,
				Serial:       serial,
				TemperatureC: *drive.Smart.TemperatureC,
			})
		}

		// Availability requires OS visibility: a drive the kernel does not
		// expose cannot take a new OSD even though it is unclaimed.
		if osdID == "" && drive.OSDeviceName != "" {
			report.AvailableDrives = append(report.AvailableDrives, serial)
		}
	}

	perfIDs := make([]string, 0, len(perf))
	for osdID := range perf {
		perfIDs = append(perfIDs, osdID)
	}
	sort.Strings(perfIDs)
	for _, osdID := range perfIDs {
		p := perf[osdID]
		// Strictly greater than: a commit latency equal to the threshold is
		// not flagged.
		if p.CommitLatencyMS > cfg.CommitLatencyThresholdMS {
			report.HighLatency = append(report.HighLatency, LatencyAlert{
				OSDID:     osdID,
				LatencyMS: p.CommitLatencyMS,
				Serial:    corr.OSDToDrive[osdID],
			})
		}
	}

	statusIDs := make([]string, 0, len(status))
	for osdID := range status {
		statusIDs = append(statusIDs, osdID)
	}
	sort.Strings(statusIDs)
	for _, osdID := range statusIDs {
		s := status[osdID]
		if s.Up != nil && !*s.Up {
			report.DownOSDs = append(report.DownOSDs, DriveAlert{
				OSDID:  osdID,
				Serial: corr.OSDToDrive[osdID],
			})
		}
	}

	return report
}
