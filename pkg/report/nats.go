// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

// HealthEvent is the wire shape of one alert published to NATS. Consumers
// key on NodeName+Device and route on EventType/Severity.
type HealthEvent struct {
	NodeName  string            `json:"node_name"`
	ScanID    string            `json:"scan_id"`
	Device    string            `json:"device"` // drive serial, or osd.<id> for OSD-level events
	EventType string            `json:"event_type"`
	Severity  string            `json:"severity"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details"`
}

// BuildHealthEvents flattens the scan's health report into publishable
// events, one per flagged drive or OSD. A clean scan yields a single
// informational summary event so consumers can tell "healthy" from
// "never heard from".
func BuildHealthEvents(result *scanner.ScanResult) []HealthEvent {
	var events []HealthEvent

	for _, alert := range result.Health.SmartProblems {
		details := map[string]string{}
		if drive, ok := result.Drives[alert.Serial]; ok {
			addCounterDetails(details, drive.Smart)
			if drive.OSDeviceName != "" {
				details["os_device"] = drive.OSDeviceName
			}
		}
		if alert.OSDID != "" {
			details["osd_id"] = alert.OSDID
		}
		events = append(events, HealthEvent{
			NodeName:  result.Hostname,
			ScanID:    result.ScanID,
			Device:    alert.Serial,
			EventType: "smart_alert",
			Severity:  "warning",
			Message:   "SMART counters indicate media degradation",
			Details:   details,
		})
	}

	for _, alert := range result.Health.HighTemperature {
		details := map[string]string{
			"temperature_c": fmt.Sprintf("%d", alert.TemperatureC),
		}
		if alert.OSDID != "" {
			details["osd_id"] = alert.OSDID
		}
		events = append(events, HealthEvent{
			NodeName:  result.Hostname,
			ScanID:    result.ScanID,
			Device:    alert.Serial,
			EventType: "temperature_alert",
			Severity:  "warning",
			Message:   "drive temperature above threshold",
			Details:   details,
		})
	}

	for _, alert := range result.Health.HighLatency {
		details := map[string]string{
			"commit_latency_ms": fmt.Sprintf("%d", alert.LatencyMS),
		}
		if alert.Serial != "" {
			details["serial"] = alert.Serial
		}
		events = append(events, HealthEvent{
			NodeName:  result.Hostname,
			ScanID:    result.ScanID,
			Device:    "osd." + alert.OSDID,
			EventType: "latency_alert",
			Severity:  "warning",
			Message:   "OSD commit latency above threshold",
			Details:   details,
		})
	}

	for _, alert := range result.Health.DownOSDs {
		details := map[string]string{}
		if alert.Serial != "" {
			details["serial"] = alert.Serial
		}
		events = append(events, HealthEvent{
			NodeName:  result.Hostname,
			ScanID:    result.ScanID,
			Device:    "osd." + alert.OSDID,
			EventType: "osd_down",
			Severity:  "critical",
			Message:   "OSD reported down by the cluster",
			Details:   details,
		})
	}

	if len(events) == 0 {
		events = append(events, HealthEvent{
			NodeName:  result.Hostname,
			ScanID:    result.ScanID,
			Device:    "node",
			EventType: "health",
			Severity:  "info",
			Message:   "scan completed with no alerts",
			Details: map[string]string{
				"drives": fmt.Sprintf("%d", len(result.Drives)),
				"osds":   fmt.Sprintf("%d", len(result.OSDs)),
			},
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].EventType != events[j].EventType {
			return events[i].EventType < events[j].EventType
		}
		return events[i].Device < events[j].Device
	})
	return events
}

func addCounterDetails(details map[string]string, counters scanner.SmartCounters) {
	set := func(key string, v *int64) {
		if v != nil {
			details[key] = fmt.Sprintf("%d", *v)
		}
	}
	set("reallocated_sectors", counters.ReallocatedSectors)
	set("pending_sectors", counters.PendingSectors)
	set("uncorrectable_sectors", counters.UncorrectableSectors)
	set("load_cycle_count", counters.LoadCycleCount)
	set("power_on_hours", counters.PowerOnHours)
}

// PublishHealthEvents connects to the given NATS server, publishes every
// health event on subject, flushes and disconnects. One-shot: no
// subscription, no reconnect loop.
func PublishHealthEvents(natsURL, subject string, result *scanner.ScanResult) error {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return fmt.Errorf("error connecting to nats: %w", err)
	}
	defer nc.Close()

	events := BuildHealthEvents(result)
	for _, event := range events {
		eventJSON, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := nc.Publish(subject, eventJSON); err != nil {
			return fmt.Errorf("error publishing to nats: %w", err)
		}
	}
	if err := nc.Flush(); err != nil {
		return fmt.Errorf("error flushing nats connection: %w", err)
	}

	log.Info().Int("events", len(events)).Str("subject", subject).Msg("Health events sent to NATS")
	return nil
}
