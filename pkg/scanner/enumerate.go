// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ProgressFunc receives coarse progress updates during enumeration. It is
// a reporting side channel only and never gates correctness.
type ProgressFunc func(current, total int, message string)

// buildLocationAddress renders the heuristic host:channel:target:lun tuple
// for a passthrough slot: host is the controller ordinal, channel and lun
// default to 0, the slot number maps to the target.
func buildLocationAddress(controllerOrdinal, channel, target, lun int) string {
	return fmt.Sprintf("%d:%d:%d:%d", controllerOrdinal, channel, target, lun)
}

// slotProbe is the unit of work for the probe worker pool.
type slotProbe struct {
	slot    int
	address string // expander target address; empty for passthrough slots
	device  string // sg node to query directly; empty for passthrough slots
	channel int
	lun     int
}

// driveFromSmart builds a PhysicalDrive from a successful SMART query.
// Returns false when the report lacks a serial: such a drive cannot be
// tracked anywhere downstream and is dropped.
func driveFromSmart(info *SmartCtlOutput, ctrl Controller, slot int, address string) (PhysicalDrive, bool) {
	if info == nil || info.SerialNumber == "" {
		return PhysicalDrive{}, false
	}

	model, vendor := driveIdentity(info)

	var capacity string
	if info.UserCapacity != nil {
		capacity = FormatCapacity(info.UserCapacity.Bytes)
	}

	return PhysicalDrive{
		Serial:           info.SerialNumber,
		Model:            model,
		Vendor:           vendor,
		Capacity:         capacity,
		SlotID:           slot,
		ControllerType:   ctrl.DisplayType,
		ControllerDevice: ctrl.DevicePath,
		LocationAddress:  address,
		SmartPass:        smartPassed(info),
		Smart:            ExtractSmartCounters(info),
	}, true
}

// probeSlots runs the given probes through a bounded worker pool and
// returns the results indexed like the input. Each worker writes only its
// own result slot, so no locking is needed beyond the WaitGroup.
func probeSlots(ctx context.Context, cfg Config, probes []slotProbe, query func(context.Context, slotProbe) *SmartCtlOutput) []*SmartCtlOutput {
	results := make([]*SmartCtlOutput, len(probes))

	workers := cfg.ProbeWorkers
	if workers < 1 {
		workers = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = query(ctx, probes[i])
			}
		}()
	}

	for i := range probes {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

// enumeratePassthrough walks the fixed slot space of one passthrough
// controller. Slots are probed concurrently but admitted in slot order so
// that first-seen-wins deduplication stays deterministic.
func enumeratePassthrough(ctx context.Context, cfg Config, prober Prober, ctrl Controller, seen map[string]bool, drives map[string]PhysicalDrive, progress func(string)) {
	probes := make([]slotProbe, cfg.SlotsPerController)
	for slot := 0; slot < cfg.SlotsPerController; slot++ {
		probes[slot] = slotProbe{slot: slot}
	}

	results := probeSlots(ctx, cfg, probes, func(ctx context.Context, sp slotProbe) *SmartCtlOutput {
		progress(fmt.Sprintf("Scanning %s PHY %d", ctrl.DevicePath, sp.slot))
		return prober.SmartPassthrough(ctx, ctrl.DevicePath, sp.slot)
	})

	for slot, info := range results {
		address := buildLocationAddress(ctrl.Ordinal, 0, slot, 0)
		drive, ok := driveFromSmart(info, ctrl, slot, address)
		if !ok {
			// Empty slot or unreadable serial; not an error.
			continue
		}

		if seen[drive.Serial] {
			log.Debug().Str("controller", ctrl.DevicePath).Int("phy", slot).Str("serial", drive.Serial).
				Msg("duplicate serial, already found through another controller path")
			continue
		}
		seen[drive.Serial] = true
		drives[drive.Serial] = drive

		log.Debug().Str("controller", ctrl.DevicePath).Int("phy", slot).
			Str("model", drive.Model).Str("serial", drive.Serial).Str("scsi", address).
			Msg("found drive")
	}
}

// enumerateExpander scans a JBOD enclosure by filtering the OS SCSI listing
// to the enclosure's host and querying each target's sg node directly, with
// no passthrough wrapper.
func enumerateExpander(ctx context.Context, cfg Config, prober Prober, ctrl Controller, seen map[string]bool, drives map[string]PhysicalDrive, progress func(string)) {
	entries := prober.ListSCSI(ctx)
	if entries == nil {
		log.Debug().Str("controller", ctrl.DevicePath).Msg("no SCSI listing available, skipping enclosure")
		return
	}

	var probes []slotProbe
	for _, e := range entries {
		if e.Host != ctrl.Ordinal || e.GenericNode == "" {
			continue
		}
		probes = append(probes, slotProbe{
			slot:    e.Target,
			channel: e.Channel,
			lun:     e.Lun,
			address: e.Address(),
			device:  e.GenericNode,
		})
	}
	sort.Slice(probes, func(i, j int) bool {
		if probes[i].channel != probes[j].channel {
			return probes[i].channel < probes[j].channel
		}
		if probes[i].slot != probes[j].slot {
			return probes[i].slot < probes[j].slot
		}
		return probes[i].lun < probes[j].lun
	})

	log.Debug().Str("controller", ctrl.DevicePath).Int("targets", len(probes)).
		Int("host", ctrl.Ordinal).Msg("scanning enclosure targets")

	results := probeSlots(ctx, cfg, probes, func(ctx context.Context, sp slotProbe) *SmartCtlOutput {
		progress(fmt.Sprintf("Scanning %s target %d", ctrl.DevicePath, sp.slot))
		return prober.SmartAll(ctx, sp.device)
	})

	for i, info := range results {
		drive, ok := driveFromSmart(info, ctrl, probes[i].slot, probes[i].address)
		if !ok {
			continue
		}

		if seen[drive.Serial] {
			continue
		}
		seen[drive.Serial] = true
		drives[drive.Serial] = drive

		log.Debug().Str("controller", ctrl.DevicePath).Int("target", probes[i].slot).
			Str("model", drive.Model).Str("serial", drive.Serial).Str("scsi", probes[i].address).
			Msg("found drive")
	}
}

// EnumerateDrives scans every controller for physical drives, returning
// them keyed by serial. A serial reachable through more than one controller
// path is admitted once, first discovery wins. A controller yielding zero
// drives is not an error; the enclosure may be legitimately empty.
func EnumerateDrives(ctx context.Context, cfg Config, prober Prober, controllers []Controller, progressFn ProgressFunc) map[string]PhysicalDrive {
	drives := make(map[string]PhysicalDrive)
	seen := make(map[string]bool)

	totalUnits := len(controllers) * cfg.SlotsPerController
	var mu sync.Mutex
	currentUnit := 0
	progress := func(message string) {
		if progressFn == nil {
			return
		}
		mu.Lock()
		currentUnit++
		unit := currentUnit
		mu.Unlock()
		if unit <= totalUnits {
			progressFn(unit, totalUnits, message)
		}
	}

	for _, ctrl := range controllers {
		log.Debug().Str("controller", ctrl.DevicePath).Str("type", ctrl.DisplayType).Msg("scanning controller")

		switch ctrl.Kind {
		case KindExpander:
			enumerateExpander(ctx, cfg, prober, ctrl, seen, drives, progress)
		default:
			enumeratePassthrough(ctx, cfg, prober, ctrl, seen, drives, progress)
		}
	}

	if progressFn != nil {
		progressFn(totalUnits, totalUnits, "Scan complete")
	}

	log.Debug().Int("drives", len(drives)).Int("controllers", len(controllers)).
		Msg("physical drive enumeration complete")
	return drives
}
