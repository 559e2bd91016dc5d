// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import "fmt"

// FormatCapacity renders a byte count as a short human-readable size,
// e.g. "8.0T" or "500G". Zero or negative counts yield "", the absent
// value.
func FormatCapacity(sizeBytes int64) string {
	switch {
	case sizeBytes <= 0:
		return ""
	case sizeBytes >= 1e12:
		return fmt.Sprintf("%.1fT", float64(sizeBytes)/1e12)
	case sizeBytes >= 1e9:
		return fmt.Sprintf("%.0fG", float64(sizeBytes)/1e9)
	default:
		return fmt.Sprintf("%.0fM", float64(sizeBytes)/1e6)
	}
}

// FormatAge renders power-on hours as a drive age, e.g. "4.2y" or "7mo".
func FormatAge(powerOnHours *int64) string {
	if powerOnHours == nil || *powerOnHours <= 0 {
		return "N/A"
	}

	years := float64(*powerOnHours) / 8760
	if years >= 1 {
		return fmt.Sprintf("%.1fy", years)
	}
	return fmt.Sprintf("%.0fmo", float64(*powerOnHours)/730)
}
