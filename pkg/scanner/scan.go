// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/host"
)

// Scanner runs the one-shot inventory pipeline. It holds no state between
// runs; every Scan starts from scratch and returns an immutable result.
type Scanner struct {
	cfg    Config
	prober Prober
}

// New returns a Scanner using the given configuration and prober.
func New(cfg Config, prober Prober) *Scanner {
	return &Scanner{cfg: cfg, prober: prober}
}

// nodeHostname resolves the local hostname, preferring the richer host
// info gopsutil provides.
func nodeHostname() string {
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	hostname, _ := os.Hostname()
	return hostname
}

// checkServiceStates queries the systemd activity state for every matched
// OSD. The per-unit queries are independent I/O-bound calls and run
// through a bounded worker pool.
func (s *Scanner) checkServiceStates(ctx context.Context, osdIDs []string) map[string]ServiceState {
	states := make([]ServiceState, len(osdIDs))

	workers := s.cfg.ProbeWorkers
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
				unit := fmt.Sprintf(s.cfg.ServiceUnitFormat, osdIDs[i])
				states[i] = s.prober.ServiceActive(ctx, unit)
			}
		}()
	}
	for i := range osdIDs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	result := make(map[string]ServiceState, len(osdIDs))
	for i, id := range osdIDs {
		result[id] = states[i]
		log.Debug().Str("osd", id).Str("state", string(states[i])).Msg("service state")
	}
	return result
}

// Scan runs the full pipeline: controller discovery, drive enumeration,
// OS device mapping, OSD correlation and health aggregation. It aborts
// only on the fatal preconditions: no physical drives found, or the
// cluster OSD inventory entirely unavailable. Everything else degrades to
// partial data.
func (s *Scanner) Scan(ctx context.Context, progressFn ProgressFunc) (*ScanResult, error) {
	timestamp := time.Now()

	controllers := DiscoverControllers(ctx, s.cfg, s.prober)

	drives := EnumerateDrives(ctx, s.cfg, s.prober, controllers, progressFn)
	if len(drives) == 0 {
		return nil, fmt.Errorf("no physical drives found on any controller")
	}

	MapToOSDevices(ctx, s.prober, drives)

	osdList, ok := s.prober.OSDMetadata(ctx)
	if !ok || len(osdList) == 0 {
		return nil, fmt.Errorf("could not retrieve the cluster OSD inventory")
	}
	osds := make(map[string]OSD, len(osdList))
	for _, osd := range osdList {
		osds[osd.ID] = osd
	}
	log.Debug().Int("osds", len(osds)).Msg("got cluster OSD inventory")

	perf := s.prober.OSDPerf(ctx)
	status := s.prober.OSDStatus(ctx)

	corr := MatchDrivesToOSDs(drives, osds)

	matchedIDs := make([]string, 0, len(corr.OSDToDrive))
	for id := range corr.OSDToDrive {
		matchedIDs = append(matchedIDs, id)
	}
	sort.Strings(matchedIDs)
	service := s.checkServiceStates(ctx, matchedIDs)

	health := AggregateHealth(s.cfg, drives, corr, status, perf)

	return &ScanResult{
		ScanID:      uuid.NewString(),
		Timestamp:   timestamp,
		Hostname:    nodeHostname(),
		Controllers: controllers,
		Drives:      drives,
		OSDs:        osds,
		Status:      status,
		Service:     service,
		Perf:        perf,
		Correlation: corr,
		Health:      health,
	}, nil
}
