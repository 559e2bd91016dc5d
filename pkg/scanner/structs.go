// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import "time"

// ControllerKind distinguishes how a controller addresses its drives.
type ControllerKind string

const (
	// KindPassthrough is a RAID controller exposing drives through the
	// vendor passthrough protocol (smartctl -d megaraid,N).
	KindPassthrough ControllerKind = "passthrough"
	// KindExpander is a JBOD/SAS-expander enclosure whose drives enumerate
	// as native SCSI targets.
	KindExpander ControllerKind = "expander"
)

// Controller is one discovered RAID controller or JBOD enclosure.
type Controller struct {
	DevicePath  string         `json:"device_path"`  // control-plane node, e.g. /dev/sg2
	Kind        ControllerKind `json:"kind"`         //
	DisplayType string         `json:"display_type"` // e.g. "PERC H730", "MD1400 JBOD"
	Model       string         `json:"model"`        // raw model string from the identity probe
	Ordinal     int            `json:"ordinal"`      // numeric suffix of the sg node; used as the SCSI host heuristic
	Serial      string         `json:"serial"`       // controller serial, used for dedup; may be empty
}

// SmartCounters holds the wear/error counters extracted from SMART data.
// Every field is nullable: a nil pointer means the drive's firmware or
// protocol does not report that attribute.
type SmartCounters struct {
	TemperatureC         *int64 `json:"temperature_c"`
	PowerOnHours         *int64 `json:"power_on_hours"`
	ReallocatedSectors   *int64 `json:"reallocated_sectors"`
	PendingSectors       *int64 `json:"pending_sectors"`
	UncorrectableSectors *int64 `json:"uncorrectable_sectors"`
	LoadCycleCount       *int64 `json:"load_cycle_count"`
}

// PhysicalDrive is one physical storage device found behind some controller.
// Serial is the unique key; drives without a readable serial are dropped
// during enumeration because nothing downstream can track them.
type PhysicalDrive struct {
	Serial           string        `json:"serial"`
	Model            string        `json:"model"`
	Vendor           string        `json:"vendor"`
	Capacity         string        `json:"capacity"` // normalized, e.g. "4.0T"; empty if unknown
	SlotID           int           `json:"slot_id"`  // PHY number (passthrough) or target number (expander)
	ControllerType   string        `json:"controller_type"`
	ControllerDevice string        `json:"controller_device"`
	LocationAddress  string        `json:"location_address"` // host:channel:target:lun
	OSDeviceName     string        `json:"os_device_name"`   // kernel block device, e.g. "sda"; empty if not OS-visible
	SmartPass        bool          `json:"smart_pass"`
	Smart            SmartCounters `json:"smart_counters"`
}

// ServiceState is the systemd activity state of an OSD service.
type ServiceState string

const (
	ServiceActive   ServiceState = "active"
	ServiceInactive ServiceState = "inactive"
	ServiceUnknown  ServiceState = "unknown"
)

// OSD is one logical disk managed by the storage daemon.
type OSD struct {
	ID        string `json:"id"`
	Hostname  string `json:"hostname"`
	DeviceIDs string `json:"device_ids"` // opaque descriptor, e.g. "sda=SEAGATE_ST8000NM0075_ZA1..."
}

// OSDStatus is the daemon's up/in view of one OSD. Nil means the status
// query was unavailable for that field.
type OSDStatus struct {
	Up *bool `json:"up"`
	In *bool `json:"in"`
}

// OSDPerf holds per-OSD latency metrics in milliseconds.
type OSDPerf struct {
	CommitLatencyMS int64 `json:"commit_latency_ms"`
	ApplyLatencyMS  int64 `json:"apply_latency_ms"`
}

// DeviceID is the parsed form of one entry of an OSD's device_ids string.
type DeviceID struct {
	DeviceName string `json:"device_name"`
	Vendor     string `json:"vendor"`
	Model      string `json:"model"`
	Serial     string `json:"serial"`
	FullID     string `json:"full_id"`
}

// Correlation maps OSD IDs to drive serials. Each drive may be claimed by
// at most one OSD; a serial reported by more than one OSD is recorded in
// Duplicates instead of silently merged.
type Correlation struct {
	OSDToDrive map[string]string `json:"osd_to_drive"`
	// Unmatched holds OSD IDs whose parsed serial was not found among the
	// local drives (typically OSDs on other nodes).
	Unmatched []string `json:"unmatched"`
	// Duplicates holds OSD IDs rejected because their serial was already
	// claimed by another OSD. Data-quality condition, not an error.
	Duplicates []string `json:"duplicates"`
}

// DriveAlert ties a flagged drive to the OSD claiming it, if any.
type DriveAlert struct {
	OSDID  string `json:"osd_id"` // empty if the drive is not claimed
	Serial string `json:"serial"`
}

// LatencyAlert flags an OSD whose commit latency exceeds the threshold.
type LatencyAlert struct {
	OSDID     string `json:"osd_id"`
	LatencyMS int64  `json:"latency_ms"`
	Serial    string `json:"serial"` // empty if the OSD is not backed by a local drive
}

// TempAlert flags a drive running above the temperature threshold.
type TempAlert struct {
	OSDID        string `json:"osd_id"`
	Serial       string `json:"serial"`
	TemperatureC int64  `json:"temperature_c"`
}

// HealthReport is the aggregated judgement over one scan. The five lists
// are independent; a drive may appear in several.
type HealthReport struct {
	SmartProblems   []DriveAlert   `json:"smart_problems"`
	HighLatency     []LatencyAlert `json:"high_latency"`
	HighTemperature []TempAlert    `json:"high_temperature"`
	DownOSDs        []DriveAlert   `json:"down_osds"`
	AvailableDrives []string       `json:"available_drives"` // serials, OS-visible and unclaimed
}

// ScanResult is the immutable root aggregate produced by one scan.
type ScanResult struct {
	ScanID      string                  `json:"scan_id"`
	Timestamp   time.Time               `json:"timestamp"`
	Hostname    string                  `json:"hostname"`
	Controllers []Controller            `json:"controllers"`
	Drives      map[string]PhysicalDrive `json:"drives"` // keyed by serial
	OSDs        map[string]OSD          `json:"osds"`   // keyed by OSD ID
	Status      map[string]OSDStatus    `json:"osd_status"`
	Service     map[string]ServiceState `json:"systemd_status"`
	Perf        map[string]OSDPerf      `json:"osd_perf"`
	Correlation Correlation             `json:"correlation"`
	Health      HealthReport            `json:"health"`
}

// OSDForDrive returns the ID of the OSD claiming the given serial, or ""
// if the drive is unclaimed.
func (r *ScanResult) OSDForDrive(serial string) string {
	for osdID, s := range r.Correlation.OSDToDrive {
		if s == serial {
			return osdID
		}
	}
	return ""
}
