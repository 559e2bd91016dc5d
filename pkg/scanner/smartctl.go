// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"regexp"
)

// SmartCtlOutput is the subset of smartctl's JSON output the scanner
// consumes. Fields absent from a drive's report unmarshal to their zero
// value and are treated as "not reported".
type SmartCtlOutput struct {
	Device              SmartCtlDevice              `json:"device"`
	ModelFamily         string                      `json:"model_family,omitempty"`
	ModelName           string                      `json:"model_name,omitempty"`
	SerialNumber        string                      `json:"serial_number,omitempty"`
	Vendor              string                      `json:"vendor,omitempty"`
	Product             string                      `json:"product,omitempty"`
	SmartStatus         *SmartCtlSmartStatus        `json:"smart_status,omitempty"`
	Temperature         *SmartCtlTemperature        `json:"temperature,omitempty"`
	PowerOnTime         *SmartCtlPowerOnTime        `json:"power_on_time,omitempty"`
	UserCapacity        *SmartCtlUserCapacity       `json:"user_capacity,omitempty"`
	ATASMARTAttributes  *SmartCtlATASMARTAttributes `json:"ata_smart_attributes,omitempty"`
	SCSIGrownDefectList *int64                      `json:"scsi_grown_defect_list,omitempty"`
}

// SmartCtlDevice represents the device details
type SmartCtlDevice struct {
	InfoName string `json:"info_name"`
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Type     string `json:"type"`
}

// SmartCtlSmartStatus represents the SMART health status
type SmartCtlSmartStatus struct {
	Passed bool `json:"passed"`
}

// SmartCtlTemperature represents the temperature readings of the device
type SmartCtlTemperature struct {
	Current int64 `json:"current"`
}

// SmartCtlPowerOnTime represents the power-on time of the device
type SmartCtlPowerOnTime struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes,omitempty"`
}

// SmartCtlUserCapacity represents the user capacity of the device
type SmartCtlUserCapacity struct {
	Blocks int64 `json:"blocks"`
	Bytes  int64 `json:"bytes"`
}

// SmartCtlATASMARTAttributes represents the ATA SMART attribute table
type SmartCtlATASMARTAttributes struct {
	Revision int64                   `json:"revision"`
	Table    []SmartCtlATASMARTEntry `json:"table"`
}

// SmartCtlATASMARTEntry represents a single ATA SMART attribute entry
type SmartCtlATASMARTEntry struct {
	ID     int64               `json:"id"`
	Name   string              `json:"name"`
	Value  int64               `json:"value"`
	Worst  int64               `json:"worst"`
	Thresh int64               `json:"thresh"`
	Raw    SmartCtlATASMARTRaw `json:"raw"`
}

// SmartCtlATASMARTRaw represents the raw value for a single ATA SMART attribute entry
type SmartCtlATASMARTRaw struct {
	Value  int64  `json:"value"`
	String string `json:"string"`
}

// ATA SMART attribute IDs carrying the counters we track.
const (
	attrReallocatedSectors = 5
	attrPowerOnHours       = 9
	attrLoadCycleCount     = 193
	attrPendingSectors     = 197
	attrUncorrectable      = 198
)

// ExtractSmartCounters pulls the tracked wear/error counters out of a
// smartctl report. ATA drives report them as numbered attributes; SAS/SCSI
// drives report the grown defect list, which takes the reallocated-sectors
// role.
func ExtractSmartCounters(info *SmartCtlOutput) SmartCounters {
	var c SmartCounters

	if info.Temperature != nil && info.Temperature.Current != 0 {
		t := info.Temperature.Current
		c.TemperatureC = &t
	}

	if info.ATASMARTAttributes != nil {
		for _, attr := range info.ATASMARTAttributes.Table {
			raw := attr.Raw.Value
			switch attr.ID {
			case attrReallocatedSectors:
				v := raw
				c.ReallocatedSectors = &v
			case attrPowerOnHours:
				v := raw
				c.PowerOnHours = &v
			case attrLoadCycleCount:
				v := raw
				c.LoadCycleCount = &v
			case attrPendingSectors:
				v := raw
				c.PendingSectors = &v
			case attrUncorrectable:
				v := raw
				c.UncorrectableSectors = &v
			}
		}
	}

	if c.PowerOnHours == nil && info.PowerOnTime != nil && info.PowerOnTime.Hours > 0 {
		v := info.PowerOnTime.Hours
		c.PowerOnHours = &v
	}

	if info.SCSIGrownDefectList != nil {
		v := *info.SCSIGrownDefectList
		c.ReallocatedSectors = &v
	}

	return c
}

var leadingWord = regexp.MustCompile(`^\w+`)

// driveIdentity derives the model/vendor pair from a smartctl report.
// The vendor falls back to the first token of the model when the report
// has no vendor field of its own.
func driveIdentity(info *SmartCtlOutput) (model, vendor string) {
	model = info.ModelName
	if model == "" {
		model = info.ModelFamily
	}
	if model == "" {
		model = "Unknown"
	}

	vendor = info.Vendor
	if vendor == "" && model != "" {
		vendor = leadingWord.FindString(model)
	}
	return model, vendor
}

func smartPassed(info *SmartCtlOutput) bool {
	return info.SmartStatus != nil && info.SmartStatus.Passed
}
