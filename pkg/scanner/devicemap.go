// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// MapToOSDevices cross-references enumerated drives against the OS's live
// SCSI listing, attaching the kernel device name and refining the location
// address, model and capacity where the OS has better information.
//
// Refinement is strictly additive: a missing OS value never clears an
// already-populated field. A drive that appears in no OS listing keeps an
// empty OSDeviceName, which is the meaningful "present in hardware but not
// assigned to an OS block device" state.
func MapToOSDevices(ctx context.Context, prober Prober, drives map[string]PhysicalDrive) {
	entries := prober.ListSCSI(ctx)
	if entries == nil {
		log.Debug().Msg("no SCSI listing available, drives remain unmapped")
		return
	}

	for _, entry := range entries {
		// Enclosures, tape changers and other non-disk SCSI entities carry
		// no drive identity worth querying.
		if entry.Type != "disk" || entry.DeviceNode == "" {
			continue
		}

		info := prober.SmartIdentify(ctx, entry.DeviceNode)
		if info == nil || info.SerialNumber == "" {
			continue
		}

		drive, known := drives[info.SerialNumber]
		if !known {
			continue
		}

		drive.OSDeviceName = strings.TrimPrefix(entry.DeviceNode, "/dev/")
		// The OS-observed address is authoritative over the passthrough
		// heuristic one.
		drive.LocationAddress = entry.Address()

		if entry.Vendor != "" && entry.Model != "" {
			drive.Model = entry.Vendor + " " + entry.Model
			drive.Vendor = entry.Vendor
		}

		if size := prober.BlockSize(ctx, entry.DeviceNode); size != "" {
			drive.Capacity = size
		}

		drives[info.SerialNumber] = drive

		log.Debug().Str("device", drive.OSDeviceName).Str("scsi", drive.LocationAddress).
			Str("serial", drive.Serial).Str("size", drive.Capacity).
			Msg("mapped drive to OS device")
	}

	mapped := 0
	for _, d := range drives {
		if d.OSDeviceName != "" {
			mapped++
		}
	}
	log.Debug().Int("mapped", mapped).Int("total", len(drives)).Msg("device name mapping complete")
	if unmapped := len(drives) - mapped; unmapped > 0 {
		log.Debug().Int("unmapped", unmapped).Msg("drives not visible to the OS")
	}
}
