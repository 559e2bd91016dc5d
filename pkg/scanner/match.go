// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ParseDeviceID parses an OSD's device_ids descriptor string. The string
// is a comma-separated list of device=identifier pairs; only the first
// parseable pair is used. The identifier is underscore-delimited as
// VENDOR_MODEL..._SERIAL. Model names frequently contain underscores
// themselves, so the first token anchors the vendor, the last token
// anchors the serial, and everything between is rejoined as the model.
// Returns nil when no pair yields at least three tokens.
func ParseDeviceID(deviceIDs string) *DeviceID {
	if deviceIDs == "" {
		return nil
	}

	for _, part := range strings.Split(deviceIDs, ",") {
		deviceName, identifier, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		deviceName = strings.TrimSpace(deviceName)
		identifier = strings.TrimSpace(identifier)

		tokens := strings.Split(identifier, "_")
		if len(tokens) < 3 {
			continue
		}

		return &DeviceID{
			DeviceName: deviceName,
			Vendor:     tokens[0],
			Model:      strings.Join(tokens[1:len(tokens)-1], "_"),
			Serial:     tokens[len(tokens)-1],
			FullID:     identifier,
		}
	}

	return nil
}

// MatchDrivesToOSDs correlates the local drive set against the cluster's
// OSD inventory by serial equality. Vendor and model are informational
// only; the two data sources format them too differently to be matching
// criteria. An OSD whose serial is unknown locally is recorded as
// unmatched, not an error: it usually lives on another node. A serial
// claimed by a second OSD is recorded as a duplicate and left with its
// first claimant.
func MatchDrivesToOSDs(drives map[string]PhysicalDrive, osds map[string]OSD) Correlation {
	corr := Correlation{OSDToDrive: make(map[string]string)}
	claimed := make(map[string]string) // serial -> OSD ID

	// Iterate in ID order so duplicate resolution is deterministic.
	ids := make([]string, 0, len(osds))
	for id := range osds {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		osd := osds[id]

		parsed := ParseDeviceID(osd.DeviceIDs)
		if parsed == nil {
			log.Debug().Str("osd", id).Str("device_ids", osd.DeviceIDs).Msg("could not parse device_ids")
			continue
		}

		if _, known := drives[parsed.Serial]; !known {
			log.Debug().Str("osd", id).Str("host", osd.Hostname).Str("serial", parsed.Serial).
				Msg("serial not found locally")
			corr.Unmatched = append(corr.Unmatched, id)
			continue
		}

		if claimant, taken := claimed[parsed.Serial]; taken {
			log.Warn().Str("osd", id).Str("serial", parsed.Serial).Str("claimed_by", claimant).
				Msg("serial already claimed by another OSD")
			corr.Duplicates = append(corr.Duplicates, id)
			continue
		}

		claimed[parsed.Serial] = id
		corr.OSDToDrive[id] = parsed.Serial
		log.Debug().Str("osd", id).Str("host", osd.Hostname).Str("serial", parsed.Serial).
			Msg("matched OSD to local drive")
	}

	log.Debug().Int("matched", len(corr.OSDToDrive)).Msg("OSD matching complete")
	return corr
}
