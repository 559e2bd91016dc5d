// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCapacity(t *testing.T) {
	assert.Equal(t, "8.0T", FormatCapacity(8_000_000_000_000))
	assert.Equal(t, "4.0T", FormatCapacity(4_000_787_030_016))
	assert.Equal(t, "500G", FormatCapacity(500_000_000_000))
	assert.Equal(t, "960G", FormatCapacity(960_197_124_096))
	assert.Equal(t, "250M", FormatCapacity(250_000_000))
	assert.Equal(t, "", FormatCapacity(0))
	assert.Equal(t, "", FormatCapacity(-1))
}

func TestFormatAge(t *testing.T) {
	hours := func(h int64) *int64 { return &h }

	assert.Equal(t, "N/A", FormatAge(nil))
	assert.Equal(t, "N/A", FormatAge(hours(0)))
	assert.Equal(t, "1.0y", FormatAge(hours(8760)))
	assert.Equal(t, "2.5y", FormatAge(hours(21900)))
	assert.Equal(t, "6mo", FormatAge(hours(4380)))
}
