package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// DebugMode selects an intermediate buffer to show instead of the lit
// image. One value is shared by every pass of a frame.
type DebugMode int32

const (
	DebugDisabled DebugMode = iota
	DebugPosition
	DebugNormal
	DebugAlbedo
	DebugRoughness
	DebugMetallic
	DebugDiffuseOnly
	DebugSpecularOnly
	DebugNoPostProcessing
	DebugOcclusion
)

var debugNames = [...]string{
	DebugDisabled:         "disabled",
	DebugPosition:         "position",
	DebugNormal:           "normal",
	DebugAlbedo:           "albedo",
	DebugRoughness:        "roughness",
	DebugMetallic:         "metallic",
	DebugDiffuseOnly:      "diffuse",
	DebugSpecularOnly:     "specular",
	DebugNoPostProcessing: "nopost",
	DebugOcclusion:        "occlusion",
}

// DebugModes lists every known mode in numeric order.
func DebugModes() []DebugMode {
	modes := make([]DebugMode, len(debugNames))
	for i := range debugNames {
		modes[i] = DebugMode(i)
	}
	return modes
}

// Known reports whether m is one of the defined modes.
func (m DebugMode) Known() bool {
	return m >= 0 && int(m) < len(debugNames)
}

func (m DebugMode) String() string {
	if m.Known() {
		return debugNames[m]
	}
	return fmt.Sprintf("debug(%d)", int32(m))
}

// ParseDebugMode accepts a mode name or its number. Unknown numbers are
// allowed; passes treat them as passthrough.
func ParseDebugMode(s string) (DebugMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DebugDisabled, nil
	}
	for i, name := range debugNames {
		if s == name {
			return DebugMode(i), nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("pipeline: unknown debug mode %q", s)
	}
	return DebugMode(n), nil
}
