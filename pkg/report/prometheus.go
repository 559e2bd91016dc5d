// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

// WriteTextfileMetrics renders the scan as Prometheus gauges in textfile
// collector format, for node_exporter to pick up. A one-shot tool cannot
// serve metrics over HTTP, so the textfile route is the fit here.
func WriteTextfileMetrics(filename string, result *scanner.ScanResult) error {
	registry := prometheus.NewRegistry()

	smartHealthGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_drive_smart_healthy",
			Help: "1 if the drive passes SMART health, 0 otherwise",
		},
		[]string{"serial", "device", "osd", "node"},
	)

	temperatureGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_drive_temperature_celsius",
			Help: "Drive temperature in Celsius",
		},
		[]string{"serial", "device", "osd", "node"},
	)

	reallocatedSectorsGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_drive_reallocated_sectors",
			Help: "Number of reallocated sectors",
		},
		[]string{"serial", "device", "osd", "node"},
	)

	pendingSectorsGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_drive_pending_sectors",
			Help: "Number of pending sectors",
		},
		[]string{"serial", "device", "osd", "node"},
	)

	powerOnHoursGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_drive_power_on_hours",
			Help: "Number of hours the drive has been powered on",
		},
		[]string{"serial", "device", "osd", "node"},
	)

	commitLatencyGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_osd_commit_latency_ms",
			Help: "OSD commit latency in milliseconds",
		},
		[]string{"osd", "node"},
	)

	osdUpGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osdscan_osd_up",
			Help: "1 if the OSD is up, 0 if down",
		},
		[]string{"osd", "node"},
	)

	registry.MustRegister(smartHealthGauge, temperatureGauge, reallocatedSectorsGauge,
		pendingSectorsGauge, powerOnHoursGauge, commitLatencyGauge, osdUpGauge)

	node := result.Hostname
	for serial, drive := range result.Drives {
		osdID := result.OSDForDrive(serial)
		labels := prometheus.Labels{"serial": serial, "device": drive.OSDeviceName, "osd": osdID, "node": node}

		healthy := 0.0
		if drive.SmartPass {
			healthy = 1.0
		}
		smartHealthGauge.With(labels).Set(healthy)

		if drive.Smart.TemperatureC != nil {
			temperatureGauge.With(labels).Set(float64(*drive.Smart.TemperatureC))
		}
		if drive.Smart.ReallocatedSectors != nil {
			reallocatedSectorsGauge.With(labels).Set(float64(*drive.Smart.ReallocatedSectors))
		}
		if drive.Smart.PendingSectors != nil {
			pendingSectorsGauge.With(labels).Set(float64(*drive.Smart.PendingSectors))
		}
		if drive.Smart.PowerOnHours != nil {
			powerOnHoursGauge.With(labels).Set(float64(*drive.Smart.PowerOnHours))
		}
	}

	for osdID, perf := range result.Perf {
		if _, local := result.Correlation.OSDToDrive[osdID]; !local {
			continue
		}
		commitLatencyGauge.With(prometheus.Labels{"osd": osdID, "node": node}).Set(float64(perf.CommitLatencyMS))
	}
	for osdID, status := range result.Status {
		if _, local := result.Correlation.OSDToDrive[osdID]; !local || status.Up == nil {
			continue
		}
		up := 0.0
		if *status.Up {
			up = 1.0
		}
		osdUpGauge.With(prometheus.Labels{"osd": osdID, "node": node}).Set(up)
	}

	if err := prometheus.WriteToTextfile(filename, registry); err != nil {
		return fmt.Errorf("error writing metrics textfile: %w", err)
	}

	log.Info().Str("file", filename).Msg("wrote Prometheus textfile metrics")
	return nil
}
