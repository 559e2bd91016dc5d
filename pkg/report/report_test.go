// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

// sampleResult builds a two-drive scan: S_CLAIMED backs OSD 3 and is
// OS-visible, S_SPARE is an unclaimed OS-visible drive.
func sampleResult() *scanner.ScanResult {
	return &scanner.ScanResult{
		ScanID:    "scan-0001",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Hostname:  "stor-01",
		Drives: map[string]scanner.PhysicalDrive{
			"S_CLAIMED": {
				Serial:           "S_CLAIMED",
				Model:            "ST8000NM0075",
				Vendor:           "SEAGATE",
				Capacity:         "8.0T",
				SlotID:           4,
				ControllerType:   "PERC H730",
				ControllerDevice: "/dev/sg2",
				LocationAddress:  "0:0:4:0",
				OSDeviceName:     "sdb",
				SmartPass:        true,
				Smart: scanner.SmartCounters{
					TemperatureC:       int64Ptr(38),
					PowerOnHours:       int64Ptr(26280),
					ReallocatedSectors: int64Ptr(0),
					PendingSectors:     int64Ptr(0),
				},
			},
			"S_SPARE": {
				Serial:          "S_SPARE",
				Model:           "MZ7LH960",
				Vendor:          "SAMSUNG",
				Capacity:        "960G",
				SlotID:          7,
				ControllerType:  "PERC H730",
				LocationAddress: "0:0:7:0",
				OSDeviceName:    "sdc",
				SmartPass:       true,
			},
		},
		OSDs: map[string]scanner.OSD{
			"3": {ID: "3", Hostname: "stor-01", DeviceIDs: "sdb=SEAGATE_ST8000NM0075_S_CLAIMED"},
		},
		Status:  map[string]scanner.OSDStatus{"3": {Up: boolPtr(true), In: boolPtr(true)}},
		Service: map[string]scanner.ServiceState{"3": scanner.ServiceActive},
		Perf:    map[string]scanner.OSDPerf{"3": {CommitLatencyMS: 12, ApplyLatencyMS: 12}},
		Correlation: scanner.Correlation{
			OSDToDrive: map[string]string{"3": "S_CLAIMED"},
		},
		Health: scanner.HealthReport{
			AvailableDrives: []string{"S_SPARE"},
		},
	}
}

func TestBuildRowsOrdersClaimedFirst(t *testing.T) {
	rows := BuildRows(sampleResult())
	require.Len(t, rows, 2)

	assert.Equal(t, "3", rows[0].OSDID)
	assert.Equal(t, "sdb", rows[0].Device)
	assert.Equal(t, "up/in", rows[0].Status)
	assert.Equal(t, "active", rows[0].Systemd)
	assert.Equal(t, "12", rows[0].CommitMS)
	assert.Equal(t, "3.0y", rows[0].Age)

	assert.Equal(t, "", rows[1].OSDID)
	assert.Equal(t, "S_SPARE", rows[1].Serial)
	assert.Equal(t, "-", rows[1].Status)
	assert.Equal(t, "N/A", rows[1].TemperatureC)
}

func TestBuildRowsNumericOSDOrder(t *testing.T) {
	result := sampleResult()
	result.Drives["S_TEN"] = scanner.PhysicalDrive{Serial: "S_TEN", SmartPass: true}
	result.Correlation.OSDToDrive["10"] = "S_TEN"

	rows := BuildRows(result)
	require.Len(t, rows, 3)
	// "10" sorts after "3" numerically, not lexically.
	assert.Equal(t, "3", rows[0].OSDID)
	assert.Equal(t, "10", rows[1].OSDID)
	assert.Equal(t, "", rows[2].OSDID)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "3", records[1][0])
	assert.Equal(t, "S_CLAIMED", records[1][6])
	assert.Equal(t, "S_SPARE", records[2][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var doc jsonExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "scan-0001", doc.ScanID)
	assert.Equal(t, "stor-01", doc.Hostname)
	require.Len(t, doc.Drives, 2)
	assert.Equal(t, []string{"S_SPARE"}, doc.Health.AvailableDrives)
}

func TestAppendHistory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.csv")
	result := sampleResult()

	require.NoError(t, AppendHistory(file, result))
	count, err := historyRecordCount(file)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Second append reuses the file without a second header.
	result.ScanID = "scan-0002"
	require.NoError(t, AppendHistory(file, result))
	count, err = historyRecordCount(file)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestTableWriterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableWriter(&buf, true).Write(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "S_CLAIMED")
	assert.Contains(t, out, "S_SPARE")
	assert.Contains(t, out, "AVAILABLE FOR NEW OSDS")
	assert.NotContains(t, out, "\x1b[", "color disabled must not emit escape codes")
}

func TestBuildHealthEventsCleanScan(t *testing.T) {
	events := BuildHealthEvents(sampleResult())
	require.Len(t, events, 1)
	assert.Equal(t, "health", events[0].EventType)
	assert.Equal(t, "info", events[0].Severity)
	assert.Equal(t, "stor-01", events[0].NodeName)
}

func TestBuildHealthEventsAlerts(t *testing.T) {
	result := sampleResult()
	result.Health.SmartProblems = []scanner.DriveAlert{{OSDID: "3", Serial: "S_CLAIMED"}}
	result.Health.HighLatency = []scanner.LatencyAlert{{OSDID: "3", LatencyMS: 140, Serial: "S_CLAIMED"}}
	result.Health.DownOSDs = []scanner.DriveAlert{{OSDID: "9"}}

	events := BuildHealthEvents(result)
	require.Len(t, events, 3)

	byType := map[string]HealthEvent{}
	for _, ev := range events {
		byType[ev.EventType] = ev
	}

	smart := byType["smart_alert"]
	assert.Equal(t, "S_CLAIMED", smart.Device)
	assert.Equal(t, "warning", smart.Severity)
	assert.Equal(t, "0", smart.Details["reallocated_sectors"])
	assert.Equal(t, "sdb", smart.Details["os_device"])

	latency := byType["latency_alert"]
	assert.Equal(t, "osd.3", latency.Device)
	assert.Equal(t, "140", latency.Details["commit_latency_ms"])

	down := byType["osd_down"]
	assert.Equal(t, "osd.9", down.Device)
	assert.Equal(t, "critical", down.Severity)
}

func TestS3ObjectKey(t *testing.T) {
	cfg := S3Config{KeyPrefix: "osdscan", Bucket: "reports"}
	key := cfg.ObjectKey(sampleResult())
	assert.Equal(t, "osdscan/stor-01/scan-0001.json", key)
	assert.False(t, strings.HasPrefix(key, "/"))
}
