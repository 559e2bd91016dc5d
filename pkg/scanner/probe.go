// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// SCSIEntry is one row of the OS's live SCSI device listing.
type SCSIEntry struct {
	Host        int
	Channel     int
	Target      int
	Lun         int
	Type        string // "disk", "enclosu", "process", ...
	Vendor      string
	Model       string
	DeviceNode  string // block device, e.g. /dev/sda; empty if none
	GenericNode string // SCSI generic node, e.g. /dev/sg12; empty if none
}

// Address renders the entry's host:channel:target:lun tuple.
func (e SCSIEntry) Address() string {
	return fmt.Sprintf("%d:%d:%d:%d", e.Host, e.Channel, e.Target, e.Lun)
}

// Prober executes the external inventory queries the scan pipeline depends
// on. Every method tolerates the underlying tool being absent or failing:
// an unavailable probe yields a nil/empty result, never an error that
// aborts the pipeline. The one exception is OSDMetadata, whose ok flag
// reports the single fatal dependency.
type Prober interface {
	// ControllerIdentity returns the free-text identity blob of a
	// control-plane device node, or ok=false if the node cannot be queried.
	ControllerIdentity(ctx context.Context, devicePath string) (string, bool)

	// SmartPassthrough queries SMART data for one passthrough slot. A nil
	// result means "empty slot".
	SmartPassthrough(ctx context.Context, devicePath string, slot int) *SmartCtlOutput

	// SmartAll queries full SMART data directly against a device node.
	SmartAll(ctx context.Context, devicePath string) *SmartCtlOutput

	// SmartIdentify queries only the identity section of a device node,
	// enough to read its serial.
	SmartIdentify(ctx context.Context, devicePath string) *SmartCtlOutput

	// ListSCSI returns the OS's current SCSI device listing, or nil if it
	// cannot be obtained.
	ListSCSI(ctx context.Context) []SCSIEntry

	// BlockSize returns the OS-reported size string for a block device, or
	// "" if unavailable.
	BlockSize(ctx context.Context, deviceNode string) string

	// OSDMetadata returns the cluster's logical-disk inventory. ok=false
	// means the inventory is entirely unavailable, which is fatal for the
	// scan.
	OSDMetadata(ctx context.Context) ([]OSD, bool)

	// OSDStatus returns per-OSD up/in state; missing entries or fields stay
	// nil.
	OSDStatus(ctx context.Context) map[string]OSDStatus

	// OSDPerf returns per-OSD commit/apply latency.
	OSDPerf(ctx context.Context) map[string]OSDPerf

	// ServiceActive reports the systemd activity state of a unit.
	ServiceActive(ctx context.Context, unit string) ServiceState
}

// execProber shells out to smartctl, lsscsi, lsblk, ceph and systemctl.
// Every command runs under the configured timeout.
type execProber struct {
	cfg Config
}

// NewProber returns the production Prober backed by the system tools.
func NewProber(cfg Config) Prober {
	return &execProber{cfg: cfg}
}

// CheckPreconditions verifies the environment before any probing begins:
// the process must run as root and smartctl must be installed. Reported up
// front so a missing privilege does not surface as a wall of probe
// failures mid-scan.
func CheckPreconditions() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("hardware probes require root privileges, re-run with sudo")
	}
	if _, err := exec.LookPath("smartctl"); err != nil {
		return fmt.Errorf("smartctl is not installed, please install the smartmontools package")
	}
	return nil
}

func (p *execProber) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		log.Debug().Err(err).Str("command", name+" "+strings.Join(args, " ")).Msg("probe command failed")
		return nil, err
	}
	return out, nil
}

func (p *execProber) runSmartctlJSON(ctx context.Context, args ...string) *SmartCtlOutput {
	out, err := p.run(ctx, "smartctl", args...)
	if err != nil {
		return nil
	}

	var info SmartCtlOutput
	if err := json.Unmarshal(out, &info); err != nil {
		log.Debug().Err(err).Msg("error parsing smartctl JSON")
		return nil
	}
	return &info
}

func (p *execProber) ControllerIdentity(ctx context.Context, devicePath string) (string, bool) {
	if _, err := os.Stat(devicePath); err != nil {
		return "", false
	}
	out, err := p.run(ctx, "smartctl", "-i", devicePath)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (p *execProber) SmartPassthrough(ctx context.Context, devicePath string, slot int) *SmartCtlOutput {
	return p.runSmartctlJSON(ctx, "-j", "-a", "-d", fmt.Sprintf("megaraid,%d", slot), devicePath)
}

func (p *execProber) SmartAll(ctx context.Context, devicePath string) *SmartCtlOutput {
	return p.runSmartctlJSON(ctx, "-j", "-a", devicePath)
}

func (p *execProber) SmartIdentify(ctx context.Context, devicePath string) *SmartCtlOutput {
	return p.runSmartctlJSON(ctx, "-j", "-i", devicePath)
}

// lsscsi -g rows look like:
//
//	[0:0:4:0]  disk    SEAGATE  ST8000NM0075     E004  /dev/sda   /dev/sg4
//	[24:0:8:0] disk    ATA      Samsung SSD 860  1B6Q  /dev/sdx   /dev/sg25
//	[24:0:9:0] enclosu DELL     MD1400           1.07  -          /dev/sg26
var lsscsiAddress = regexp.MustCompile(`^\[(\d+):(\d+):(\d+):(\d+)\]\s+(\S+)\s+(\S+)\s+(.+)$`)

// parseLSSCSILine splits one lsscsi -g row. The model column may itself
// contain spaces (SATA drives behind an expander report e.g. "Samsung SSD
// 860"), so the parse anchors on the bracket address up front and the
// revision plus two device columns at the back; whatever sits between is
// the model.
func parseLSSCSILine(line string) (SCSIEntry, bool) {
	m := lsscsiAddress.FindStringSubmatch(line)
	if m == nil {
		return SCSIEntry{}, false
	}

	// fields: model... revision block-node generic-node
	fields := strings.Fields(m[7])
	if len(fields) < 4 {
		return SCSIEntry{}, false
	}

	host, _ := strconv.Atoi(m[1])
	channel, _ := strconv.Atoi(m[2])
	target, _ := strconv.Atoi(m[3])
	lun, _ := strconv.Atoi(m[4])

	entry := SCSIEntry{
		Host:    host,
		Channel: channel,
		Target:  target,
		Lun:     lun,
		Type:    m[5],
		Vendor:  m[6],
		Model:   strings.Join(fields[:len(fields)-3], " "),
	}
	if block := fields[len(fields)-2]; strings.HasPrefix(block, "/dev/") {
		entry.DeviceNode = block
	}
	if generic := fields[len(fields)-1]; strings.HasPrefix(generic, "/dev/sg") {
		entry.GenericNode = generic
	}
	return entry, true
}

func (p *execProber) ListSCSI(ctx context.Context) []SCSIEntry {
	out, err := p.run(ctx, "lsscsi", "-g")
	if err != nil {
		return nil
	}

	var entries []SCSIEntry
	for _, line := range strings.Split(string(out), "\n") {
		if entry, ok := parseLSSCSILine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

type lsblkOutput struct {
	BlockDevices []struct {
		Name string `json:"name"`
		Size string `json:"size"`
	} `json:"blockdevices"`
}

func (p *execProber) BlockSize(ctx context.Context, deviceNode string) string {
	out, err := p.run(ctx, "lsblk", "-J", "-o", "NAME,SIZE", deviceNode)
	if err != nil {
		return ""
	}

	var parsed lsblkOutput
	if err := json.Unmarshal(out, &parsed); err != nil || len(parsed.BlockDevices) == 0 {
		return ""
	}
	return parsed.BlockDevices[0].Size
}

func (p *execProber) OSDMetadata(ctx context.Context) ([]OSD, bool) {
	out, err := p.run(ctx, "ceph", "osd", "metadata")
	if err != nil {
		return nil, false
	}

	var raw []struct {
		ID        json.Number `json:"id"`
		Hostname  string      `json:"hostname"`
		DeviceIDs string      `json:"device_ids"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		log.Debug().Err(err).Msg("error parsing ceph osd metadata JSON")
		return nil, false
	}

	osds := make([]OSD, 0, len(raw))
	for _, r := range raw {
		osds = append(osds, OSD{
			ID:        r.ID.String(),
			Hostname:  r.Hostname,
			DeviceIDs: r.DeviceIDs,
		})
	}
	return osds, true
}

var (
	osdTreeLine = regexp.MustCompile(`^\s*(\d+)\s+\w+\s+[\d.]+\s+osd\.\d+\s+(\w+)\s+`)
	osdDumpLine = regexp.MustCompile(`osd\.(\d+)\s+(\w+)\s+(\w+)`)
	osdPerfLine = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(\d+)`)
)

func (p *execProber) OSDStatus(ctx context.Context) map[string]OSDStatus {
	status := make(map[string]OSDStatus)

	if out, err := p.run(ctx, "ceph", "osd", "tree"); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			m := osdTreeLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			up := m[2] == "up"
			status[m[1]] = OSDStatus{Up: &up}
		}
	}

	if out, err := p.run(ctx, "ceph", "osd", "dump"); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			m := osdDumpLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if s, ok := status[m[1]]; ok {
				in := m[3] == "in"
				s.In = &in
				status[m[1]] = s
			}
		}
	}

	log.Debug().Int("osds", len(status)).Msg("got OSD status")
	return status
}

func (p *execProber) OSDPerf(ctx context.Context) map[string]OSDPerf {
	perf := make(map[string]OSDPerf)

	out, err := p.run(ctx, "ceph", "osd", "perf")
	if err != nil {
		return perf
	}

	for _, line := range strings.Split(string(out), "\n") {
		// Skip the header row.
		if strings.Contains(line, "commit_latency") {
			continue
		}
		m := osdPerfLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		commit, _ := strconv.ParseInt(m[2], 10, 64)
		apply, _ := strconv.ParseInt(m[3], 10, 64)
		perf[m[1]] = OSDPerf{CommitLatencyMS: commit, ApplyLatencyMS: apply}
	}

	log.Debug().Int("osds", len(perf)).Msg("got OSD performance data")
	return perf
}

func (p *execProber) ServiceActive(ctx context.Context, unit string) ServiceState {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	// systemctl exits non-zero for inactive units but still prints the
	// state, so the output is read regardless of the exit code.
	out, _ := exec.CommandContext(ctx, "systemctl", "is-active", unit).Output()
	state := strings.TrimSpace(string(out))

	switch state {
	case "active", "activating":
		return ServiceActive
	case "inactive", "failed", "deactivating":
		return ServiceInactive
	default:
		return ServiceUnknown
	}
}
