package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkg/profile"
)

var profileModes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

func profileModeList() string {
	return strings.Join(slices.Sorted(maps.Keys(profileModes)), ", ")
}

// startProfile starts profiling in the named mode. An empty mode disables
// profiling and returns a no-op stop function.
func startProfile(mode, path string) (func(), error) {
	if mode == "" {
		return func() {}, nil
	}
	fn, ok := profileModes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown profile mode %q (want one of %s)", mode, profileModeList())
	}
	p := profile.Start(fn, profile.ProfilePath(path), profile.Quiet, profile.NoShutdownHook)
	return p.Stop, nil
}
