// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"github.com/afonot/suricata/internal/errors"
)

func newSyntactic(msg string) error { return errors.New(errors.KindSyntactic, msg) }

func newSyntacticf(format string, args ...any) error {
	return errors.Errorf(errors.KindSyntactic, format, args...)
}

func newSemantic(msg string) error { return errors.New(errors.KindSemantic, msg) }

func newSemanticf(format string, args ...any) error {
	return errors.Errorf(errors.KindSemantic, format, args...)
}

func newCapability(msg string) error { return errors.New(errors.KindCapability, msg) }

func newCapabilityf(format string, args ...any) error {
	return errors.Errorf(errors.KindCapability, format, args...)
}
