// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package validation holds small, reusable validators shared between
// the builtin keyword setups, the option parser, and the default
// address/port resolvers.
package validation

import (
	"net"
	"regexp"
	"strings"

	"github.com/afonot/suricata/internal/errors"
)

var (
	// keywordNameRegex matches a bare option/keyword name: lowercase
	// alphanumeric plus underscore, as used by every built-in keyword
	// (content, fast_pattern, http_uri, ...).
	keywordNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	// dangerousChars must never appear in a value this module embeds
	// into a rendered diagnostic or a shell-adjacent string.
	dangerousChars = []string{";", "|", "&", "$", "`", "<", ">", "\\", "\n", "\r", "\x00"}
)

// ValidateKeywordName validates an option/keyword name prior to
// registry lookup.
func ValidateKeywordName(name string) error {
	if name == "" {
		return errors.New(errors.KindSyntactic, "option name cannot be empty")
	}
	if len(name) > 64 {
		return errors.Errorf(errors.KindSyntactic, "option name too long (max 64 characters): %s", name)
	}
	if !keywordNameRegex.MatchString(strings.ToLower(name)) {
		return errors.Errorf(errors.KindSyntactic, "invalid option name: %s", name)
	}
	return nil
}

// ValidateNonNegativeInt validates gid/sid/rev/prio-shaped fields,
// which must be non-negative.
func ValidateNonNegativeInt(field string, v int) error {
	if v < 0 {
		return errors.Errorf(errors.KindSyntactic, "%s must be non-negative, got %d", field, v)
	}
	return nil
}

// ValidatePortNumber validates a single port literal.
func ValidatePortNumber(port int) error {
	if port < 0 || port > 65535 {
		return errors.Errorf(errors.KindSyntactic, "invalid port number: %d (must be 0-65535)", port)
	}
	return nil
}

// ValidateIPOrCIDR validates an address literal used by the default
// address resolver (external.go). It accepts a bare IP or a CIDR.
func ValidateIPOrCIDR(s string) error {
	if s == "" {
		return errors.New(errors.KindSyntactic, "address cannot be empty")
	}

	if strings.Contains(s, "/") {
		if _, _, err := net.ParseCIDR(s); err != nil {
			return errors.Wrap(err, errors.KindSyntactic, "invalid CIDR")
		}
		return nil
	}

	if net.ParseIP(s) == nil {
		return errors.Errorf(errors.KindSyntactic, "invalid IP address: %s", s)
	}

	return nil
}

// ContainsDangerousChar reports whether s contains a character that
// must never be embedded verbatim in a rendered diagnostic.
func ContainsDangerousChar(s string) (string, bool) {
	for _, c := range dangerousChars {
		if strings.Contains(s, c) {
			return c, true
		}
	}
	return "", false
}
