// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config tunes the scan pipeline. All thresholds are configuration-level
// constants, not values discovered from the hardware.
type Config struct {
	// SGNodeRange bounds the /dev/sgN candidate probe during controller
	// discovery. Chosen generously above typical controller counts so that
	// JBOD enclosures enumerating at high indices are still caught.
	SGNodeRange int `mapstructure:"sg_node_range"`

	// SlotsPerController is the passthrough slot space walked per RAID
	// controller. A fixed bound, not a protocol-discovered value.
	SlotsPerController int `mapstructure:"slots_per_controller"`

	// FallbackControllerDevice is reported when discovery finds nothing.
	// Downstream stages assume at least one controller exists.
	FallbackControllerDevice string `mapstructure:"fallback_controller_device"`

	// ProbeWorkers bounds the concurrent per-slot SMART probes.
	ProbeWorkers int `mapstructure:"probe_workers"`

	// ProbeTimeout caps every external command so a single wedged device
	// node cannot stall the whole scan.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`

	// CommitLatencyThresholdMS flags an OSD as high-latency when its commit
	// latency is strictly greater than this value.
	CommitLatencyThresholdMS int64 `mapstructure:"commit_latency_threshold_ms"`

	// TemperatureThresholdC flags a drive as overheating when its reported
	// temperature is strictly greater than this value.
	TemperatureThresholdC int64 `mapstructure:"temperature_threshold_c"`

	// ServiceUnitFormat builds the systemd unit name for an OSD ID.
	ServiceUnitFormat string `mapstructure:"service_unit_format"`
}

// DefaultConfig returns the scan tuning used when no config file overrides
// it.
func DefaultConfig() Config {
	return Config{
		SGNodeRange:              30,
		SlotsPerController:       32,
		FallbackControllerDevice: "/dev/sg6",
		ProbeWorkers:             8,
		ProbeTimeout:             15 * time.Second,
		CommitLatencyThresholdMS: 100,
		TemperatureThresholdC:    45,
		ServiceUnitFormat:        "ceph-osd@%s.service",
	}
}

// LoadConfig reads scan tuning from a YAML config file, starting from the
// defaults so a partial file only overrides what it names.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return cfg, nil
}
