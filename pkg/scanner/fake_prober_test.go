// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import "context"

// fakeProber serves canned probe results so pipeline behavior can be
// tested without hardware or cluster access.
type fakeProber struct {
	identities  map[string]string                     // device -> identity blob
	passthrough map[string]map[int]*SmartCtlOutput    // device -> slot -> report
	direct      map[string]*SmartCtlOutput            // device -> full report
	identify    map[string]*SmartCtlOutput            // device -> identity report
	scsi        []SCSIEntry
	blockSizes  map[string]string
	osds        []OSD
	osdsOK      bool
	status      map[string]OSDStatus
	perf        map[string]OSDPerf
	service     map[string]ServiceState
}

func (f *fakeProber) ControllerIdentity(_ context.Context, devicePath string) (string, bool) {
	identity, ok := f.identities[devicePath]
	return identity, ok
}

func (f *fakeProber) SmartPassthrough(_ context.Context, devicePath string, slot int) *SmartCtlOutput {
	return f.passthrough[devicePath][slot]
}

func (f *fakeProber) SmartAll(_ context.Context, devicePath string) *SmartCtlOutput {
	return f.direct[devicePath]
}

func (f *fakeProber) SmartIdentify(_ context.Context, devicePath string) *SmartCtlOutput {
	return f.identify[devicePath]
}

func (f *fakeProber) ListSCSI(_ context.Context) []SCSIEntry {
	return f.scsi
}

func (f *fakeProber) BlockSize(_ context.Context, deviceNode string) string {
	return f.blockSizes[deviceNode]
}

func (f *fakeProber) OSDMetadata(_ context.Context) ([]OSD, bool) {
	return f.osds, f.osdsOK
}

func (f *fakeProber) OSDStatus(_ context.Context) map[string]OSDStatus {
	return f.status
}

func (f *fakeProber) OSDPerf(_ context.Context) map[string]OSDPerf {
	return f.perf
}

func (f *fakeProber) ServiceActive(_ context.Context, unit string) ServiceState {
	if state, ok := f.service[unit]; ok {
		return state
	}
	return ServiceUnknown
}

// smartReport builds a minimal smartctl report for tests.
func smartReport(serial, model string, passed bool, capacityBytes int64) *SmartCtlOutput {
	out := &SmartCtlOutput{
		SerialNumber: serial,
		ModelName:    model,
		SmartStatus:  &SmartCtlSmartStatus{Passed: passed},
	}
	if capacityBytes > 0 {
		out.UserCapacity = &SmartCtlUserCapacity{Bytes: capacityBytes}
	}
	return out
}
