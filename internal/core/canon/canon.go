// Package canon provides a deterministic domain canonicalizer used by the pipeline
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and format chars
// 5 Width fold fullwidth to ASCII
// 6 Strip a single trailing dot
// 7 Validate label shape and length
package canon

import (
	"strings"
	"sync"
	"unicode"

	perr "gravitywatch/internal/platform/errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	maxDomainLen = 253
	maxLabelLen  = 63
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// Domain returns the canonical form of a DNS name, or a validation error
// when the input cannot name a host
func Domain(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", perr.New(perr.ErrorCodeValidation, "empty domain")
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6 strip a single trailing dot (FQDN form)
	ns = strings.TrimSuffix(ns, ".")

	// 7 shape checks
	if err := validate(ns); err != nil {
		return "", err
	}
	return ns, nil
}

// validate enforces hostname shape: bounded length, non-empty labels,
// and the character set seen in real resolver logs (letters, digits,
// hyphen, underscore for service labels like _dnssd)
func validate(s string) error {
	if s == "" {
		return perr.New(perr.ErrorCodeValidation, "empty domain")
	}
	if len(s) > maxDomainLen {
		return perr.Newf(perr.ErrorCodeValidation, "domain too long: %d bytes", len(s))
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" {
			return perr.Newf(perr.ErrorCodeValidation, "empty label in %q", s)
		}
		if len(label) > maxLabelLen {
			return perr.Newf(perr.ErrorCodeValidation, "label too long in %q", s)
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= '0' && r <= '9':
			case r == '-' || r == '_':
			case r > unicode.MaxASCII:
				// IDN labels pass through; the oracle sees the unicode form
			default:
				return perr.Newf(perr.ErrorCodeValidation, "bad rune %q in %q", r, s)
			}
		}
	}
	return nil
}
