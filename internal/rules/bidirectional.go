// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

// MaybeClone implements bidirectional rule cloning: when the header's
// direction marker was "<>", produce a sibling signature with
// source/dest swapped, unless the endpoint sets are equal, in which
// case INIT_BIDIREC is cleared and no clone is produced.
func (e *EngineCtx) MaybeClone(sig *Signature) (*Signature, error) {
	if !sig.HasFlag(FlagInitBidirec) {
		return nil, nil
	}

	if sig.Src.Addr.Equal(sig.Dst.Addr) && sig.Src.Port.Equal(sig.Dst.Port) {
		sig.ClearFlag(FlagInitBidirec)
		return nil, nil
	}

	return e.reparseSwapped(sig.RawText)
}

// reparseSwapped re-invokes the header/option/validate pipeline over
// the same rule text with the src/dst header fields swapped, rather
// than deep-copying the half-built Signature: this isolates the swap
// to address parsing and leaves every other keyword's semantics
// untouched.
func (e *EngineCtx) reparseSwapped(line string) (*Signature, error) {
	tokens, optionSeg, err := Lex(line)
	if err != nil {
		return nil, err
	}

	tokens[2], tokens[5] = tokens[5], tokens[2] // src <-> dst
	tokens[3], tokens[6] = tokens[6], tokens[3] // sp <-> dp

	sig := NewSignature()
	sig.RawText = line

	if err := e.parseHeader(sig, tokens); err != nil {
		return nil, err
	}

	options, err := SplitOptions(optionSeg)
	if err != nil {
		return nil, err
	}

	skip, err := e.parseOptions(sig, options)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}

	if err := e.Validate(sig); err != nil {
		return nil, err
	}

	return sig, nil
}
