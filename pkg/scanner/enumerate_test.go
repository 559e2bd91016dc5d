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

func testControllers() []Controller {
	return []Controller{
		{DevicePath: "/dev/sg2", Kind: KindPassthrough, DisplayType: "PERC H730", Ordinal: 2},
		{DevicePath: "/dev/sg3", Kind: KindPassthrough, DisplayType: "PERC H830", Ordinal: 3},
	}
}

func TestEnumerateDrivesDeduplicatesAcrossControllers(t *testing.T) {
	// Both controllers report the same physical drive: the second sighting
	// is discarded and the first controller's attributes win.
	prober := &fakeProber{passthrough: map[string]map[int]*SmartCtlOutput{
		"/dev/sg2": {0: smartReport("S1", "MODEL-FROM-SG2", true, 0)},
		"/dev/sg3": {5: smartReport("S1", "MODEL-FROM-SG3", true, 0)},
	}}

	drives := EnumerateDrives(context.Background(), DefaultConfig(), prober, testControllers(), nil)

	require.Len(t, drives, 1)
	drive := drives["S1"]
	assert.Equal(t, "MODEL-FROM-SG2", drive.Model)
	assert.Equal(t, "/dev/sg2", drive.ControllerDevice)
	assert.Equal(t, 0, drive.SlotID)
	assert.Equal(t, "2:0:0:0", drive.LocationAddress)
}

func TestEnumerateDrivesDropsSerialless(t *testing.T) {
	prober := &fakeProber{passthrough: map[string]map[int]*SmartCtlOutput{
		"/dev/sg2": {
			0: smartReport("", "NO-SERIAL", true, 0),
			1: smartReport("S2", "OK-DRIVE", true, 4_000_000_000_000),
		},
	}}

	drives := EnumerateDrives(context.Background(), DefaultConfig(), prober, testControllers()[:1], nil)

	require.Len(t, drives, 1)
	assert.Equal(t, "4.0T", drives["S2"].Capacity)
}

func TestEnumerateDrivesVendorFromModel(t *testing.T) {
	prober := &fakeProber{passthrough: map[string]map[int]*SmartCtlOutput{
		"/dev/sg2": {0: smartReport("S1", "SEAGATE ST8000", true, 0)},
	}}

	drives := EnumerateDrives(context.Background(), DefaultConfig(), prober, testControllers()[:1], nil)

	// Vendor derives from the model's first token when the report has no
	// vendor field.
	assert.Equal(t, "SEAGATE", drives["S1"].Vendor)
}

func TestEnumerateDrivesExpander(t *testing.T) {
	jbod := Controller{DevicePath: "/dev/sg24", Kind: KindExpander, DisplayType: "MD1400 JBOD", Ordinal: 24}

	prober := &fakeProber{
		scsi: []SCSIEntry{
			{Host: 24, Channel: 0, Target: 8, Lun: 0, Type: "disk", GenericNode: "/dev/sg25", DeviceNode: "/dev/sdx"},
			{Host: 24, Channel: 0, Target: 9, Lun: 0, Type: "disk", GenericNode: "/dev/sg26"},
			{Host: 0, Channel: 0, Target: 1, Lun: 0, Type: "disk", GenericNode: "/dev/sg1"}, // different host, ignored
		},
		direct: map[string]*SmartCtlOutput{
			"/dev/sg25": smartReport("J1", "TOSHIBA MG07", true, 0),
			"/dev/sg26": smartReport("J2", "TOSHIBA MG07", true, 0),
		},
	}

	drives := EnumerateDrives(context.Background(), DefaultConfig(), prober, []Controller{jbod}, nil)

	require.Len(t, drives, 2)
	assert.Equal(t, "24:0:8:0", drives["J1"].LocationAddress)
	assert.Equal(t, 8, drives["J1"].SlotID)
	assert.Equal(t, "24:0:9:0", drives["J2"].LocationAddress)
}

func TestEnumerateDrivesProgressReporting(t *testing.T) {
	prober := &fakeProber{passthrough: map[string]map[int]*SmartCtlOutput{
		"/dev/sg2": {0: smartReport("S1", "M", true, 0)},
	}}

	var calls int
	var lastCurrent, lastTotal int
	progress := func(current, total int, _ string) {
		calls++
		lastCurrent, lastTotal = current, total
	}

	cfg := DefaultConfig()
	cfg.ProbeWorkers = 1
	EnumerateDrives(context.Background(), cfg, prober, testControllers()[:1], progress)

	assert.Greater(t, calls, 1)
	assert.Equal(t, cfg.SlotsPerController, lastTotal)
	assert.Equal(t, lastTotal, lastCurrent)
}
