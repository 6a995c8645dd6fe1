// Package parse turns a user-supplied kernel string into a kernel chain:
// named kernels delegate to pkg/morphology/kernel/build, sized and
// old-square forms are built directly from a literal value list.
package parse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/itohio/morphology/pkg/morphology/kernel"
	"github.com/itohio/morphology/pkg/morphology/kernel/build"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

var (
	// ErrEmptyKernel is returned for a segment that parses to zero tokens.
	ErrEmptyKernel = errors.New("morphology: empty kernel segment")
	// ErrUnknownType is returned when a named kernel's family is not recognised.
	ErrUnknownType = errors.New("morphology: unknown kernel type")
	// ErrBadHeader is returned when a sized-array header cannot be parsed.
	ErrBadHeader = errors.New("morphology: malformed kernel header")
	// ErrValueCount is returned when a literal kernel's value count does not
	// match its declared (or inferred) grid size.
	ErrValueCount = errors.New("morphology: wrong number of kernel values")
	// ErrOriginOutOfBounds is returned when a declared origin lies outside the grid.
	ErrOriginOutOfBounds = errors.New("morphology: kernel origin outside grid")
	// ErrNoNonNaNCell is returned when every cell of a literal kernel is masked.
	ErrNoNonNaNCell = errors.New("morphology: kernel has no non-NaN cell")
	// ErrNotPerfectSquare is returned when an old-style bare value list's count
	// is not a perfect square.
	ErrNotPerfectSquare = errors.New("morphology: old-style kernel value count is not a perfect square")
)

// Parse parses a ';'-separated kernel list string into a kernel chain. On
// any parse error the partially built chain is destroyed and (nil, err) is
// returned, with err identifying the failing segment's index.
func Parse(s string) (*kernel.Kernel, error) {
	segments := splitList(s)

	var head, tail *kernel.Kernel
	for i := 0; i < len(segments); i++ {
		seg := strings.TrimSpace(segments[i])
		if seg == "" {
			continue
		}
		if looksLikeSizedHeader(seg) {
			seg, i = mergeSizedRows(segments, i)
		}
		k, err := parseOne(seg)
		if err != nil {
			if head != nil {
				head.Destroy()
			}
			if k != nil {
				k.Destroy()
			}
			return nil, fmt.Errorf("morphology: kernel %d: %w", i, err)
		}
		if head == nil {
			head = k
		} else {
			tail.Next = k
		}
		tail = k.Last()
	}
	if head == nil {
		return nil, fmt.Errorf("morphology: %w", ErrEmptyKernel)
	}
	return head, nil
}

// splitList splits on ';', skipping empty segments produced by leading,
// trailing or repeated separators.
func splitList(s string) []string {
	raw := strings.Split(s, ";")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

func parseOne(seg string) (*kernel.Kernel, error) {
	r := []rune(strings.TrimSpace(seg))
	if len(r) == 0 {
		return nil, ErrEmptyKernel
	}

	if unicode.IsLetter(r[0]) {
		return parseNamed(seg)
	}
	if looksLikeSizedHeader(seg) {
		return parseSized(seg)
	}
	return parseOldSquare(seg)
}

// mergeSizedRows rejoins ';'-separated rows that belong to one sized-array
// kernel: the WxH header declares how many values follow, and the surface
// form allows those values to be written one row per ';' group ("3x3+1+1:
// 1,nan,1; -,1,-; 1,nan,1" is a single kernel). Segments are consumed
// until the declared count is reached or the list runs out; the value-count
// check in parseSized still rejects a final mismatch.
func mergeSizedRows(segments []string, i int) (string, int) {
	seg := strings.TrimSpace(segments[i])
	colon := strings.IndexByte(seg, ':')
	width, height, _, _, _, _, err := parseHeader(seg[:colon])
	if err != nil {
		return seg, i
	}
	need := width * height
	for countValues(seg[colon+1:]) < need && i+1 < len(segments) {
		i++
		seg += "," + segments[i]
	}
	return seg, i
}

func countValues(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}))
}

// looksLikeSizedHeader reports whether seg has a "WxH...:" header before
// any numeric value list, i.e. a literal 'x' appears before the first ':'.
func looksLikeSizedHeader(seg string) bool {
	colon := strings.IndexByte(seg, ':')
	if colon < 0 {
		return false
	}
	header := seg[:colon]
	return strings.ContainsAny(header, "xX")
}

func parseNamed(seg string) (*kernel.Kernel, error) {
	name := seg
	geometry := ""
	if idx := strings.IndexByte(seg, ':'); idx >= 0 {
		name = seg[:idx]
		geometry = seg[idx+1:]
	}
	name = strings.TrimSpace(name)

	t, ok := lookupType(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	args, err := build.ParseArgs(geometry)
	if err != nil {
		return nil, err
	}

	k, err := build.Build(t, args)
	if err != nil {
		return nil, err
	}
	return applyExpandModifiers(k, args.Flags), nil
}

func applyExpandModifiers(k *kernel.Kernel, flags build.Flags) *kernel.Kernel {
	switch {
	case flags.Has(build.FlagExpand90):
		expanded := xform.Expand(k, 90)
		k.Destroy()
		return expanded
	case flags.Has(build.FlagExpand45):
		expanded := xform.Expand(k, 45)
		k.Destroy()
		return expanded
	default:
		return k
	}
}

// parseSized parses "WxH[+X+Y][^|@]:v,v,...".
func parseSized(seg string) (*kernel.Kernel, error) {
	colon := strings.IndexByte(seg, ':')
	header := seg[:colon]
	body := seg[colon+1:]

	width, height, ox, oy, expand90, expand45, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	values, err := parseNumList(body)
	if err != nil {
		return nil, err
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrValueCount, width*height, len(values))
	}
	if ox < 0 || ox >= width || oy < 0 || oy >= height {
		return nil, fmt.Errorf("%w: (%d,%d) not within %dx%d", ErrOriginOutOfBounds, ox, oy, width, height)
	}
	if !hasNonNaN(values) {
		return nil, ErrNoNonNaNCell
	}

	k := kernel.New(width, height, ox, oy, kernel.TypeUser)
	copy(k.Values, values)
	xform.RecomputeMetadata(k)

	var flags build.Flags
	if expand90 {
		flags |= build.FlagExpand90
	}
	if expand45 {
		flags |= build.FlagExpand45
	}
	return applyExpandModifiers(k, flags), nil
}

// parseHeader parses "WxH[+X+Y][^|@]".
func parseHeader(h string) (width, height, ox, oy int, expand90, expand45 bool, err error) {
	h = strings.TrimSpace(h)
	if strings.HasSuffix(h, "^") {
		expand90 = true
		h = h[:len(h)-1]
	} else if strings.HasSuffix(h, "@") {
		expand45 = true
		h = h[:len(h)-1]
	}

	xIdx := strings.IndexAny(h, "xX")
	if xIdx < 0 {
		err = fmt.Errorf("%w: missing WxH in %q", ErrBadHeader, h)
		return
	}
	wStr := h[:xIdx]
	rest := h[xIdx+1:]

	// rest is H[+X+Y]
	hStr := rest
	oxStr, oyStr := "", ""
	if plus := strings.IndexByte(rest, '+'); plus >= 0 {
		hStr = rest[:plus]
		coords := rest[plus:] // "+X+Y"
		parts := strings.Split(coords, "+")
		// parts[0] is empty (leading '+'), parts[1]=X, parts[2]=Y
		if len(parts) >= 2 {
			oxStr = parts[1]
		}
		if len(parts) >= 3 {
			oyStr = parts[2]
		}
	}

	width, err = strconv.Atoi(strings.TrimSpace(wStr))
	if err != nil || width <= 0 {
		err = fmt.Errorf("%w: bad width %q", ErrBadHeader, wStr)
		return
	}
	height, err = strconv.Atoi(strings.TrimSpace(hStr))
	if err != nil || height <= 0 {
		err = fmt.Errorf("%w: bad height %q", ErrBadHeader, hStr)
		return
	}

	ox, oy = width/2, height/2
	if oxStr != "" {
		ox, err = strconv.Atoi(strings.TrimSpace(oxStr))
		if err != nil {
			err = fmt.Errorf("%w: bad origin x %q", ErrBadHeader, oxStr)
			return
		}
	}
	if oyStr != "" {
		oy, err = strconv.Atoi(strings.TrimSpace(oyStr))
		if err != nil {
			err = fmt.Errorf("%w: bad origin y %q", ErrBadHeader, oyStr)
			return
		}
	}
	return
}

// parseOldSquare parses a bare value list and infers a square of side
// ceil(sqrt(count)), origin at centre. count must be a perfect square.
func parseOldSquare(seg string) (*kernel.Kernel, error) {
	values, err := parseNumList(seg)
	if err != nil {
		return nil, err
	}
	n := len(values)
	side := int(math.Round(math.Sqrt(float64(n))))
	if side*side != n {
		return nil, fmt.Errorf("%w: %d values", ErrNotPerfectSquare, n)
	}
	if !hasNonNaN(values) {
		return nil, ErrNoNonNaNCell
	}

	k := kernel.New(side, side, side/2, side/2, kernel.TypeUser)
	copy(k.Values, values)
	xform.RecomputeMetadata(k)
	return k, nil
}

// parseNumList splits on ',' or whitespace; "-" and "nan" (any case) are
// masked cells. Empty tokens produced by repeated separators are skipped.
func parseNumList(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if f == "-" || strings.EqualFold(f, "nan") {
			out = append(out, kernel.NaN())
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("morphology: invalid kernel value %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func hasNonNaN(values []float64) bool {
	for _, v := range values {
		if !kernel.IsMasked(v) {
			return true
		}
	}
	return false
}
