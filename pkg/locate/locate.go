// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package locate blinks the locate LED on a physical drive so it can be
// found in the chassis. Targets are either a block device (sda, /dev/sda)
// or an OSD reference (osd.42), which is resolved through the cluster's
// OSD metadata.
package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const commandTimeout = 15 * time.Second

// runner shells out for LED control and OSD metadata. Swappable in tests.
type runner interface {
	run(ctx context.Context, name string, args ...string) (string, error)
	lookPath(name string) error
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (execRunner) lookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

// Locator controls drive locate LEDs through ledctl.
type Locator struct {
	r runner
}

func New() *Locator {
	return &Locator{r: execRunner{}}
}

// CheckDependencies reports missing system tools. ledctl is required for
// LED control; sg_ses only enables enclosure bay mapping and is advisory.
func (l *Locator) CheckDependencies() []string {
	var missing []string
	if err := l.r.lookPath("ledctl"); err != nil {
		missing = append(missing, "ledmon (provides ledctl for LED control)")
	}
	if err := l.r.lookPath("sg_ses"); err != nil {
		missing = append(missing, "sg3-utils (provides sg_ses for enclosure bay mapping)")
	}
	return missing
}

// ResolveTarget normalizes a user-supplied target into a /dev path. OSD
// references (osd.42, OSD42) are resolved via the cluster metadata; plain
// names get the /dev/ prefix.
func (l *Locator) ResolveTarget(ctx context.Context, target string) (string, error) {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "osd") {
		osdID := strings.TrimPrefix(strings.TrimPrefix(lower, "osd"), ".")
		if osdID == "" {
			return "", fmt.Errorf("invalid OSD reference %q", target)
		}
		device, err := l.deviceForOSD(ctx, osdID)
		if err != nil {
			return "", err
		}
		log.Info().Str("osd", osdID).Str("device", device).Msg("resolved OSD to device")
		return device, nil
	}

	if strings.HasPrefix(target, "/dev/") {
		return target, nil
	}
	return "/dev/" + target, nil
}

// deviceForOSD finds the backing block device of one OSD from its
// device_ids metadata (entries like "sda=VENDOR_MODEL_SERIAL").
func (l *Locator) deviceForOSD(ctx context.Context, osdID string) (string, error) {
	out, err := l.r.run(ctx, "ceph", "osd", "metadata", osdID)
	if err != nil {
		return "", fmt.Errorf("error querying metadata for osd.%s: %w", osdID, err)
	}

	var meta struct {
		DeviceIDs string `json:"device_ids"`
	}
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return "", fmt.Errorf("error parsing metadata for osd.%s: %w", osdID, err)
	}

	for _, item := range strings.Split(meta.DeviceIDs, ",") {
		dev, _, found := strings.Cut(item, "=")
		dev = strings.TrimSpace(dev)
		if found && strings.HasPrefix(dev, "sd") {
			return "/dev/" + dev, nil
		}
	}
	return "", fmt.Errorf("no block device recorded for osd.%s", osdID)
}

// SetLED turns the locate LED for device on or off.
func (l *Locator) SetLED(ctx context.Context, device string, on bool) error {
	action := "locate"
	if !on {
		action = "locate_off"
	}

	if _, err := l.r.run(ctx, "ledctl", fmt.Sprintf("%s=%s", action, device)); err != nil {
		return fmt.Errorf("ledctl failed for %s: %w", device, err)
	}

	log.Info().Str("device", device).Bool("on", on).Msg("locate LED switched")
	return nil
}
