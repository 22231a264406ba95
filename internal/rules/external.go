// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/afonot/suricata/internal/errors"
	"github.com/afonot/suricata/internal/validation"
)

// AddrList is the opaque address-list handle an external address
// collaborator returns. The default resolver below backs it with
// net/netip; an embedder wiring in a richer CIDR/geoip subsystem can
// satisfy AddressResolver with a fuller implementation instead.
type AddrList struct {
	Any     bool
	Negated bool
	Prefixes []netip.Prefix
}

// Equal reports set-equivalence between two address lists: same Any/
// Negated flags and the same set of prefixes regardless of order. Used
// by the bidirectional cloner instead of pointer or list-order
// comparison, so that differently-ordered but equal address lists
// still suppress cloning.
func (a AddrList) Equal(b AddrList) bool {
	if a.Any != b.Any || a.Negated != b.Negated {
		return false
	}
	if a.Any {
		return true
	}
	if len(a.Prefixes) != len(b.Prefixes) {
		return false
	}
	seen := make(map[netip.Prefix]int, len(a.Prefixes))
	for _, p := range a.Prefixes {
		seen[p]++
	}
	for _, p := range b.Prefixes {
		if seen[p] == 0 {
			return false
		}
		seen[p]--
	}
	return true
}

// PortRange is the opaque port-range handle.
type PortRange struct {
	Any     bool
	Negated bool
	Lo, Hi  int // Lo == Hi for a single port
}

// Equal reports set-equivalence between two port ranges.
func (p PortRange) Equal(o PortRange) bool {
	if p.Any != o.Any || p.Negated != o.Negated {
		return false
	}
	if p.Any {
		return true
	}
	return p.Lo == o.Lo && p.Hi == o.Hi
}

// AddressResolver parses the literal or bracketed list appearing in
// the src/dst header fields. defaultAddressResolver below is a
// minimal, real net/netip-backed implementation, not a stand-in for a
// production CIDR/geoip subsystem.
type AddressResolver interface {
	ParseAddress(s string) (AddrList, error)
	// ParseIPOnlyAddress re-parses s through the IP-only validation
	// path; the default resolver has no IP-only-specific behavior and
	// simply delegates to ParseAddress.
	ParseIPOnlyAddress(s string) (AddrList, error)
}

// PortResolver parses the literal or bracketed list appearing in the
// sp/dp header fields.
type PortResolver interface {
	ParsePort(s string) (PortRange, error)
}

// AppLayerResolver looks up app-layer protocol names and their
// progress-slot names.
type AppLayerResolver interface {
	ByName(name string) (ALProto, bool)
	ProgressByName(proto ALProto, name string, toClient bool) (string, bool)
}

// BufferTypeResolver looks up buffer metadata by name.
type BufferTypeResolver interface {
	ByName(name string) (kind BufferKind, multiCapable bool, ok bool)
}

// defaultAddressResolver implements AddressResolver over net/netip,
// supporting "any", a bare IP, a CIDR, a leading "!" negation, and a
// bracketed "[a,b,c]" list whose members are unioned.
type defaultAddressResolver struct{}

func (defaultAddressResolver) ParseAddress(s string) (AddrList, error) {
	return parseAddrLiteral(s)
}

func (defaultAddressResolver) ParseIPOnlyAddress(s string) (AddrList, error) {
	return parseAddrLiteral(s)
}

func parseAddrLiteral(s string) (AddrList, error) {
	negated := false
	if strings.HasPrefix(s, "!") {
		negated = true
		s = s[1:]
	}
	if s == "any" {
		if negated {
			return AddrList{}, newSyntactic("cannot negate \"any\" address")
		}
		return AddrList{Any: true}, nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		var out AddrList
		out.Negated = negated
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			p, err := parsePrefix(part)
			if err != nil {
				return AddrList{}, err
			}
			out.Prefixes = append(out.Prefixes, p)
		}
		return out, nil
	}

	p, err := parsePrefix(s)
	if err != nil {
		return AddrList{}, err
	}
	return AddrList{Negated: negated, Prefixes: []netip.Prefix{p}}, nil
}

func parsePrefix(s string) (netip.Prefix, error) {
	if err := validation.ValidateIPOrCIDR(s); err != nil {
		return netip.Prefix{}, err
	}
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, errors.Wrapf(err, errors.KindSyntactic, "invalid address literal %q", s)
		}
		return p, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, errors.Wrapf(err, errors.KindSyntactic, "invalid address literal %q", s)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// defaultPortResolver implements PortResolver, supporting "any", a
// single port, a "lo:hi" range, a leading "!" negation, and a
// bracketed list (unioned into the widest Lo..Hi span, sufficient for
// the header grammar this module drives).
type defaultPortResolver struct{}

func (defaultPortResolver) ParsePort(s string) (PortRange, error) {
	negated := false
	if strings.HasPrefix(s, "!") {
		negated = true
		s = s[1:]
	}
	if s == "any" {
		if negated {
			return PortRange{}, newSyntactic("cannot negate \"any\" port")
		}
		return PortRange{Any: true}, nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		lo, hi := -1, -1
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			l, h, err := parsePortSpan(part)
			if err != nil {
				return PortRange{}, err
			}
			if lo == -1 || l < lo {
				lo = l
			}
			if hi == -1 || h > hi {
				hi = h
			}
		}
		return PortRange{Negated: negated, Lo: lo, Hi: hi}, nil
	}

	lo, hi, err := parsePortSpan(s)
	if err != nil {
		return PortRange{}, err
	}
	return PortRange{Negated: negated, Lo: lo, Hi: hi}, nil
}

func parsePortSpan(s string) (int, int, error) {
	if idx := strings.Index(s, ":"); idx >= 0 {
		loStr, hiStr := s[:idx], s[idx+1:]
		lo, err := strconv.Atoi(loStr)
		if err != nil {
			return 0, 0, errors.Wrapf(err, errors.KindSyntactic, "invalid port literal %q", s)
		}
		hi, err := strconv.Atoi(hiStr)
		if err != nil {
			return 0, 0, errors.Wrapf(err, errors.KindSyntactic, "invalid port literal %q", s)
		}
		if err := validation.ValidatePortNumber(lo); err != nil {
			return 0, 0, err
		}
		if err := validation.ValidatePortNumber(hi); err != nil {
			return 0, 0, err
		}
		if lo > hi {
			return 0, 0, errors.Errorf(errors.KindSyntactic, "port range %q is inverted (low bound exceeds high bound)", s)
		}
		return lo, hi, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, errors.Wrapf(err, errors.KindSyntactic, "invalid port literal %q", s)
	}
	if err := validation.ValidatePortNumber(p); err != nil {
		return 0, 0, errors.Errorf(errors.KindSyntactic, "port %q out of bounds (0-65535)", s)
	}
	return p, p, nil
}

// defaultAppLayerResolver is a small static table covering a
// representative protocol set: http, http1, http2, tls, dns, ssh, smb,
// plus their progress-slot names.
type defaultAppLayerResolver struct{}

var appLayerByName = map[string]ALProto{
	"http":  ALProtoHTTP,
	"http1": ALProtoHTTP1,
	"http2": ALProtoHTTP2,
	"tls":   ALProtoTLS,
	"dns":   ALProtoDNS,
	"ssh":   ALProtoSSH,
	"smb":   ALProtoSMB,
}

func (defaultAppLayerResolver) ByName(name string) (ALProto, bool) {
	p, ok := appLayerByName[strings.ToLower(name)]
	return p, ok
}

// appLayerProgress maps (proto, progress-name) to whether it applies
// on the to-client side, used to derive direction flags from a named
// hook progress slot.
var appLayerProgress = map[ALProto]map[string]bool{
	ALProtoHTTP: {
		"request_started": false, "request_complete": false,
		"response_started": true, "response_complete": true,
		"request_line": false, "response_line": true,
	},
	ALProtoHTTP1: {
		"request_started": false, "request_complete": false,
		"response_started": true, "response_complete": true,
	},
	ALProtoHTTP2: {
		"request_started": false, "request_complete": false,
		"response_started": true, "response_complete": true,
	},
	ALProtoTLS: {"client_hello": false, "server_hello": true},
	ALProtoDNS: {"request": false, "response": true},
	ALProtoSSH: {"banner_done": false},
	ALProtoSMB: {"request_started": false, "response_started": true},
}

func (defaultAppLayerResolver) ProgressByName(proto ALProto, name string, _ bool) (string, bool) {
	table, ok := appLayerProgress[proto]
	if !ok {
		return "", false
	}
	if _, ok := table[name]; !ok {
		return "", false
	}
	return name, true
}

// isToClientProgress reports the direction a named app-layer progress
// slot implies, per defaultAppLayerResolver's static table.
func isToClientProgress(proto ALProto, name string) bool {
	table, ok := appLayerProgress[proto]
	if !ok {
		return false
	}
	return table[name]
}

// defaultBufferTypeResolver classifies the handful of buffer names
// the builtin keyword set (builtin_keywords.go) registers.
type defaultBufferTypeResolver struct{}

type bufferTypeInfo struct {
	kind         BufferKind
	multiCapable bool
}

var bufferTypes = map[string]bufferTypeInfo{
	"pkt_data":  {kind: BufferKindPacket, multiCapable: false},
	"file_data": {kind: BufferKindApp, multiCapable: false},
	"http_uri":  {kind: BufferKindApp, multiCapable: false},
}

func (defaultBufferTypeResolver) ByName(name string) (BufferKind, bool, bool) {
	info, ok := bufferTypes[name]
	if !ok {
		return BufferKindPacket, false, false
	}
	return info.kind, info.multiCapable, true
}
