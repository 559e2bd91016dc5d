// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLSSCSILineDisk(t *testing.T) {
	entry, ok := parseLSSCSILine("[0:0:4:0]    disk    SEAGATE  ST8000NM0075     E004  /dev/sda   /dev/sg4")
	require.True(t, ok)

	assert.Equal(t, 0, entry.Host)
	assert.Equal(t, 4, entry.Target)
	assert.Equal(t, "disk", entry.Type)
	assert.Equal(t, "SEAGATE", entry.Vendor)
	assert.Equal(t, "ST8000NM0075", entry.Model)
	assert.Equal(t, "/dev/sda", entry.DeviceNode)
	assert.Equal(t, "/dev/sg4", entry.GenericNode)
	assert.Equal(t, "0:0:4:0", entry.Address())
}

func TestParseLSSCSILineSpacedModel(t *testing.T) {
	// SATA drives behind an expander report vendor ATA and a multi-word
	// model; the device columns must still be found behind it.
	entry, ok := parseLSSCSILine("[24:0:8:0]   disk    ATA      Samsung SSD 860  1B6Q  /dev/sdx   /dev/sg25")
	require.True(t, ok)

	assert.Equal(t, 24, entry.Host)
	assert.Equal(t, "ATA", entry.Vendor)
	assert.Equal(t, "Samsung SSD 860", entry.Model)
	assert.Equal(t, "/dev/sdx", entry.DeviceNode)
	assert.Equal(t, "/dev/sg25", entry.GenericNode)
}

func TestParseLSSCSILineEnclosure(t *testing.T) {
	entry, ok := parseLSSCSILine("[24:0:9:0]   enclosu DELL     MD1400           1.07  -          /dev/sg26")
	require.True(t, ok)

	assert.Equal(t, "enclosu", entry.Type)
	assert.Equal(t, "MD1400", entry.Model)
	assert.Empty(t, entry.DeviceNode)
	assert.Equal(t, "/dev/sg26", entry.GenericNode)
}

func TestParseLSSCSILineRejectsNoise(t *testing.T) {
	for _, line := range []string{
		"",
		"attached devices:",
		"[1:0:0:0] disk TOOSHORT",
	} {
		_, ok := parseLSSCSILine(line)
		assert.False(t, ok, line)
	}
}
