// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package syslogsp

import "testing"

func TestPriorityDecode(t *testing.T) {
	type testCase struct {
		pri   Priority
		eFac  Facility
		eSev  Severity
		eFacS string
		eSevS string
	}
	tests := [...]testCase{
		{pri: 0, eFac: FacKern, eSev: SevEmerg, eFacS: "kern", eSevS: "emerg"},
		{pri: 46, eFac: FacSyslog, eSev: SevInfo, eFacS: "syslog", eSevS: "info"},
		{pri: 47, eFac: FacSyslog, eSev: SevDebug, eFacS: "syslog", eSevS: "debug"},
		{pri: 191, eFac: FacLocal7, eSev: SevDebug, eFacS: "local7", eSevS: "debug"},
	}
	for _, tc := range tests {
		if f := tc.pri.Facility(); f != tc.eFac {
			t.Errorf("pri %d: Facility() = %d, want %d", tc.pri, f, tc.eFac)
		}
		if s := tc.pri.Severity(); s != tc.eSev {
			t.Errorf("pri %d: Severity() = %d, want %d", tc.pri, s, tc.eSev)
		}
		if s := tc.pri.Facility().String(); s != tc.eFacS {
			t.Errorf("pri %d: Facility().String() = %q, want %q", tc.pri, s, tc.eFacS)
		}
		if s := tc.pri.Severity().String(); s != tc.eSevS {
			t.Errorf("pri %d: Severity().String() = %q, want %q", tc.pri, s, tc.eSevS)
		}
	}
}

func TestFacilitySeverityUnknown(t *testing.T) {
	if s := Facility(255).String(); s != "unknown" {
		t.Errorf("Facility(255).String() = %q, want \"unknown\"", s)
	}
	if s := Severity(255).String(); s != "unknown" {
		t.Errorf("Severity(255).String() = %q, want \"unknown\"", s)
	}
}
