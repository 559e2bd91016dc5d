// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSmartCountersATA(t *testing.T) {
	info := &SmartCtlOutput{
		Temperature: &SmartCtlTemperature{Current: 38},
		ATASMARTAttributes: &SmartCtlATASMARTAttributes{Table: []SmartCtlATASMARTEntry{
			{ID: 5, Raw: SmartCtlATASMARTRaw{Value: 2}},
			{ID: 9, Raw: SmartCtlATASMARTRaw{Value: 17000}},
			{ID: 193, Raw: SmartCtlATASMARTRaw{Value: 4000}},
			{ID: 197, Raw: SmartCtlATASMARTRaw{Value: 0}},
			{ID: 198, Raw: SmartCtlATASMARTRaw{Value: 0}},
			{ID: 199, Raw: SmartCtlATASMARTRaw{Value: 12}}, // untracked attribute
		}},
	}

	c := ExtractSmartCounters(info)

	require.NotNil(t, c.TemperatureC)
	assert.Equal(t, int64(38), *c.TemperatureC)
	require.NotNil(t, c.ReallocatedSectors)
	assert.Equal(t, int64(2), *c.ReallocatedSectors)
	require.NotNil(t, c.PowerOnHours)
	assert.Equal(t, int64(17000), *c.PowerOnHours)
	require.NotNil(t, c.LoadCycleCount)
	assert.Equal(t, int64(4000), *c.LoadCycleCount)
	require.NotNil(t, c.PendingSectors)
	assert.Equal(t, int64(0), *c.PendingSectors)
	require.NotNil(t, c.UncorrectableSectors)
}

func TestExtractSmartCountersSCSI(t *testing.T) {
	defects := int64(3)
	info := &SmartCtlOutput{
		PowerOnTime:         &SmartCtlPowerOnTime{Hours: 22000},
		SCSIGrownDefectList: &defects,
	}

	c := ExtractSmartCounters(info)

	// SAS drives report the grown defect list in the reallocated-sectors
	// role and power-on time outside the attribute table.
	require.NotNil(t, c.ReallocatedSectors)
	assert.Equal(t, int64(3), *c.ReallocatedSectors)
	require.NotNil(t, c.PowerOnHours)
	assert.Equal(t, int64(22000), *c.PowerOnHours)
	assert.Nil(t, c.PendingSectors)
	assert.Nil(t, c.TemperatureC)
}

func TestDriveIdentity(t *testing.T) {
	model, vendor := driveIdentity(&SmartCtlOutput{ModelName: "ST8000NM0075", Vendor: "SEAGATE"})
	assert.Equal(t, "ST8000NM0075", model)
	assert.Equal(t, "SEAGATE", vendor)

	model, vendor = driveIdentity(&SmartCtlOutput{ModelName: "TOSHIBA MG07ACA14TA"})
	assert.Equal(t, "TOSHIBA MG07ACA14TA", model)
	assert.Equal(t, "TOSHIBA", vendor)

	model, vendor = driveIdentity(&SmartCtlOutput{ModelFamily: "Seagate Exos"})
	assert.Equal(t, "Seagate Exos", model)
	assert.Equal(t, "Seagate", vendor)

	model, _ = driveIdentity(&SmartCtlOutput{})
	assert.Equal(t, "Unknown", model)
}
