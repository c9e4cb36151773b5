package model

import (
	"sort"
	"strings"
)

// Param keys documented by §6 of the message/contact param packing format.
const (
	ParamFile           = "f"
	ParamWidth          = "w"
	ParamHeight         = "h"
	ParamDuration       = "d"
	ParamGuaranteedE2EE = "c"
	ParamErroneousE2EE  = "e"
	ParamWantsMdn       = "r"
	ParamServerFolder   = "Z"
	ParamServerUID      = "z"
	ParamProfileImage   = "i"
	ParamGhostOrigID    = "G"
	ParamSystemCmd      = "S"
	ParamSystemCmdParam = "E"
)

// Params is a packed set of single-char key to value mappings, stored as
// lines of "k=v\n". Values cannot contain '\n'; trailing whitespace is
// trimmed on parse.
type Params map[string]string

// ParseParams unpacks the "k=v\n" wire format used for Message.param and
// Contact.param.
func ParseParams(packed string) Params {
	p := Params{}
	for _, line := range strings.Split(packed, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := line[:idx]
		if len(key) != 1 {
			continue
		}
		p[key] = line[idx+1:]
	}
	return p
}

// Pack serializes p back into the "k=v\n" wire format, in sorted key order
// for determinism.
func (p Params) Pack() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.TrimRight(p[k], " \t"))
		b.WriteByte('\n')
	}
	return b.String()
}
