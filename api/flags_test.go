// File: api/flags_test.go
// Author: momentics <momentics@gmail.com>

package api_test

import (
	"testing"

	"github.com/momentics/hioload-sock/api"
)

func TestFlagBitAssignment(t *testing.T) {
	want := map[api.Flags]uint32{
		api.FlagRead:    1,
		api.FlagWrite:   2,
		api.FlagExcept:  4,
		api.FlagError:   8,
		api.FlagHangup:  16,
		api.FlagInvalid: 32,
	}
	for flag, bits := range want {
		if uint32(flag) != bits {
			t.Fatalf("flag %s = %d, want %d", flag, uint32(flag), bits)
		}
	}
}

func TestFlagsString(t *testing.T) {
	if got := (api.FlagRead | api.FlagHangup).String(); got != "read|hangup" {
		t.Fatalf("String() = %q", got)
	}
	if got := api.Flags(0).String(); got != "none" {
		t.Fatalf("String() = %q", got)
	}
}

func TestInterestMaskExcludesConditions(t *testing.T) {
	if api.InterestMask&(api.FlagError|api.FlagHangup|api.FlagInvalid) != 0 {
		t.Fatal("interest mask must not include condition flags")
	}
	if api.FlagsAll&api.InterestMask != api.InterestMask {
		t.Fatal("interest mask must be a subset of FlagsAll")
	}
}
