// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyClusterProber() *fakeProber {
	up, in := true, true
	return &fakeProber{
		identities: map[string]string{
			"/dev/sg0": "Product: PERC H730P Adp\nSerial number: CTRL-SN\n",
		},
		passthrough: map[string]map[int]*SmartCtlOutput{
			"/dev/sg0": {
				0: smartReport("S1", "VENDOR MODELX", true, 8_000_000_000_000),
				1: smartReport("S2", "VENDOR MODELY", true, 8_000_000_000_000),
			},
		},
		scsi: []SCSIEntry{
			{Host: 0, Channel: 0, Target: 0, Lun: 0, Type: "disk", Vendor: "VENDOR", Model: "MODELX", DeviceNode: "/dev/sda"},
		},
		identify:   map[string]*SmartCtlOutput{"/dev/sda": {SerialNumber: "S1"}},
		blockSizes: map[string]string{"/dev/sda": "7.3T"},
		osds: []OSD{
			{ID: "42", Hostname: "node1", DeviceIDs: "sda=VENDOR_MODELX_S1"},
		},
		osdsOK:  true,
		status:  map[string]OSDStatus{"42": {Up: &up, In: &in}},
		perf:    map[string]OSDPerf{"42": {CommitLatencyMS: 50, ApplyLatencyMS: 10}},
		service: map[string]ServiceState{"ceph-osd@42.service": ServiceActive},
	}
}

func TestScanEndToEnd(t *testing.T) {
	s := New(DefaultConfig(), healthyClusterProber())

	result, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.ScanID)
	require.Len(t, result.Controllers, 1)
	assert.Equal(t, "PERC H730", result.Controllers[0].DisplayType)

	require.Len(t, result.Drives, 2)

	// S1: OS-visible, correlated, healthy.
	s1 := result.Drives["S1"]
	assert.Equal(t, "sda", s1.OSDeviceName)
	assert.Equal(t, "0:0:0:0", s1.LocationAddress)
	assert.Equal(t, map[string]string{"42": "S1"}, result.Correlation.OSDToDrive)
	assert.Equal(t, ServiceActive, result.Service["42"])

	// S2: present in hardware but never surfaced by the OS.
	s2 := result.Drives["S2"]
	assert.Empty(t, s2.OSDeviceName)
	assert.Equal(t, "0:0:1:0", s2.LocationAddress)

	// Healthy cluster: no alerts at all. S2 is unclaimed but not
	// OS-visible, so it must not be offered for assignment.
	assert.Empty(t, result.Health.SmartProblems)
	assert.Empty(t, result.Health.HighLatency)
	assert.Empty(t, result.Health.HighTemperature)
	assert.Empty(t, result.Health.DownOSDs)
	assert.Empty(t, result.Health.AvailableDrives)
}

func TestScanFailsWithoutDrives(t *testing.T) {
	prober := &fakeProber{
		identities: map[string]string{"/dev/sg0": "Product: PERC H730\n"},
		osdsOK:     true,
	}
	s := New(DefaultConfig(), prober)

	result, err := s.Scan(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestScanFailsWithoutOSDInventory(t *testing.T) {
	prober := healthyClusterProber()
	prober.osdsOK = false
	s := New(DefaultConfig(), prober)

	result, err := s.Scan(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestScanToleratesMissingStatusAndPerf(t *testing.T) {
	prober := healthyClusterProber()
	prober.status = nil
	prober.perf = nil
	prober.service = nil
	s := New(DefaultConfig(), prober)

	result, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)

	// Partial data is preferred over aborting: the scan completes with the
	// status fields absent and the service state unknown.
	assert.Empty(t, result.Status)
	assert.Empty(t, result.Perf)
	assert.Equal(t, ServiceUnknown, result.Service["42"])
	assert.Empty(t, result.Health.DownOSDs)
}
