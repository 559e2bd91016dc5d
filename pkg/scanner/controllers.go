// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// controllerRule classifies a controller from its raw model string. The
// rules are an ordered table so new controller models are additions to
// data, not code; the first matching substring wins.
type controllerRule struct {
	substring   string
	displayType string
	kind        ControllerKind
}

var controllerRules = []controllerRule{
	{"md1400", "MD1400 JBOD", KindExpander},
	{"md1200", "MD1200 JBOD", KindExpander},
	{"h730", "PERC H730", KindPassthrough},
	{"h830", "PERC H830", KindPassthrough},
	{"h740", "PERC H740", KindPassthrough},
	{"h840", "PERC H840", KindPassthrough},
	{"perc", "PERC", KindPassthrough},
	{"megaraid", "MegaRAID/LSI", KindPassthrough},
	{"lsi", "MegaRAID/LSI", KindPassthrough},
}

// classifyController matches a model string against the rule table.
// Unmatched models stay "Unknown" passthrough, the safe default for
// anything enclosure-like that still answers SMART queries.
func classifyController(model string) (displayType string, kind ControllerKind) {
	lower := strings.ToLower(model)
	for _, rule := range controllerRules {
		if strings.Contains(lower, rule.substring) {
			return rule.displayType, rule.kind
		}
	}
	return "Unknown", KindPassthrough
}

// identityLooksRelevant decides whether a device node's identity blob
// describes a controller or enclosure worth tracking.
func identityLooksRelevant(identity string) bool {
	lower := strings.ToLower(identity)
	isRAID := strings.Contains(lower, "megaraid") || strings.Contains(lower, "raid") || strings.Contains(lower, "perc")
	isJBOD := strings.Contains(lower, "md1400") || strings.Contains(lower, "md1200") || strings.Contains(lower, "jbod")
	isEnclosure := strings.Contains(lower, "enclosure")
	return isRAID || isJBOD || isEnclosure
}

// parseControllerIdentity extracts the model and serial from a smartctl
// identity blob. Both may stay empty when the blob lacks them.
func parseControllerIdentity(identity string) (model, serial string) {
	for _, line := range strings.Split(identity, "\n") {
		lower := strings.ToLower(line)
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch {
		case strings.Contains(lower, "product"), strings.Contains(lower, "device model"):
			model = value
		case strings.Contains(lower, "serial number"):
			serial = value
		}
	}
	return model, serial
}

// DiscoverControllers probes the bounded /dev/sgN candidate range and
// returns every RAID controller and JBOD enclosure found. It never fails:
// when nothing answers, a single synthetic fallback controller is returned
// because every downstream stage assumes at least one controller exists.
//
// The ordinal is the sg node's numeric suffix. It is used later as the
// "host" component of location addresses, which is a heuristic, not a
// verified mapping to the OS's SCSI host numbering.
func DiscoverControllers(ctx context.Context, cfg Config, prober Prober) []Controller {
	log.Debug().Msg("looking for RAID controllers")

	var controllers []Controller
	seenSerials := make(map[string]bool)

	for i := 0; i < cfg.SGNodeRange; i++ {
		sgDev := fmt.Sprintf("/dev/sg%d", i)

		identity, ok := prober.ControllerIdentity(ctx, sgDev)
		if !ok || !identityLooksRelevant(identity) {
			continue
		}

		model, serial := parseControllerIdentity(identity)
		displayType, kind := classifyController(model)

		// Two device nodes reporting the same serial are the same physical
		// controller exposed twice; keep only the first.
		if serial != "" && seenSerials[serial] {
			log.Debug().Str("device", sgDev).Str("serial", serial).Msg("duplicate controller, skipping")
			continue
		}
		if serial != "" {
			seenSerials[serial] = true
		}

		if model == "" {
			model = "Unknown"
		}

		controllers = append(controllers, Controller{
			DevicePath:  sgDev,
			Kind:        kind,
			DisplayType: displayType,
			Model:       model,
			Ordinal:     i,
			Serial:      serial,
		})
		log.Debug().Str("device", sgDev).Str("type", displayType).Str("model", model).Msg("found controller")
	}

	if len(controllers) == 0 {
		log.Warn().Str("fallback", cfg.FallbackControllerDevice).Msg("no controllers found, using fallback device")
		return []Controller{{
			DevicePath:  cfg.FallbackControllerDevice,
			Kind:        KindPassthrough,
			DisplayType: "Unknown",
			Model:       "Unknown",
			Ordinal:     sgOrdinal(cfg.FallbackControllerDevice),
		}}
	}

	log.Debug().Int("count", len(controllers)).Msg("controller discovery complete")
	return controllers
}

// sgOrdinal extracts the numeric suffix of a /dev/sgN path, or 0.
func sgOrdinal(devicePath string) int {
	suffix := strings.TrimPrefix(devicePath, "/dev/sg")
	var n int
	if _, err := fmt.Sscanf(suffix, "%d", &n); err != nil {
		return 0
	}
	return n
}
