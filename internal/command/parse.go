package command

import (
	"strconv"
	"strings"

	"github.com/dunamismax/imgbox/internal/geometry"
)

// DefaultEnlargeBlur is the blur percent used by enlarge when none is given.
const DefaultEnlargeBlur = 50

// Parse reads every operation from tokens, stopping at the first malformed
// one.
func Parse(tokens []string) ([]Operation, error) {
	cur := NewCursor(tokens)
	ops := make([]Operation, 0, len(tokens))
	for !cur.Done() {
		op, err := Next(cur)
		if err != nil {
			return ops, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Next reads one operation starting at the cursor, consuming its own token
// and any argument tokens it accepts.
func Next(cur *Cursor) (Operation, error) {
	tok, ok := cur.Next()
	if !ok {
		return Operation{}, &ArgumentError{Kind: ErrUnknownArgument}
	}

	switch tok {
	case "-v", "--verbose":
		return Operation{Kind: KindSetVerbose}, nil
	case "-s", "--show":
		return Operation{Kind: KindShow}, nil
	case "-b", "--blur":
		percent, err := percentArg(cur, "blur")
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: KindBlur, Percent: percent}, nil
	case "-d", "--dim":
		percent, err := percentArg(cur, "dim")
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: KindDim, Percent: percent}, nil
	case "-c", "--crop":
		return parseCrop(cur)
	case "-l", "--enlarge":
		return parseEnlarge(cur)
	case "-r", "--resize":
		return parseResize(cur)
	}

	if strings.Contains(tok, ".") {
		return Operation{Kind: KindSave, Path: tok}, nil
	}
	return Operation{}, &ArgumentError{Kind: ErrUnknownArgument, Received: tok}
}

func percentArg(cur *Cursor, command string) (int, error) {
	tok, _ := cur.Next()
	n, ok := decimal(tok)
	if !ok {
		return 0, &ArgumentError{
			Kind:     ErrInvalidNumericArgument,
			Command:  command,
			Expected: "<percent>: Int",
			Received: tok,
		}
	}
	return n, nil
}

// parseCrop accepts an optional WxH (rectangle) or W:H (ratio) token. A
// missing or differently shaped token is left unread and the crop falls
// back to 1:1.
func parseCrop(cur *Cursor) (Operation, error) {
	tok, ok := cur.Peek()
	if ok {
		arg := strings.ToLower(tok)
		switch {
		case strings.Count(arg, "x") == 1:
			if w, h, matched := splitPair(arg, "x"); matched {
				size := geometry.Dimensions{Width: w, Height: h}
				if size.Width <= 0 || size.Height <= 0 {
					return Operation{}, &ArgumentError{
						Kind:     ErrInvalidRatioArgument,
						Command:  "crop",
						Expected: "<W>x<H> with positive Int sides",
						Received: tok,
					}
				}
				cur.Next()
				return Operation{Kind: KindCropRect, Size: size}, nil
			}
		case strings.Count(arg, ":") == 1:
			if w, h, matched := splitPair(arg, ":"); matched {
				ratio, err := positiveRatio("crop", tok, w, h)
				if err != nil {
					return Operation{}, err
				}
				cur.Next()
				return Operation{Kind: KindCropRatio, Ratio: ratio}, nil
			}
		}
	}
	return Operation{Kind: KindCropRatio, Ratio: geometry.Square}, nil
}

// parseEnlarge accepts up to two tokens in either order: a bare integer is
// the blur percent, a W:H token is the ratio. Each kind is taken once.
func parseEnlarge(cur *Cursor) (Operation, error) {
	op := Operation{Kind: KindEnlargeRatio, Ratio: geometry.Square, Percent: DefaultEnlargeBlur}
	var ratioSet, blurSet bool

	for range 2 {
		tok, ok := cur.Peek()
		if !ok {
			break
		}
		if n, isInt := decimal(tok); isInt && !blurSet {
			cur.Next()
			op.Percent = n
			blurSet = true
			continue
		}
		if w, h, isRatio := ratioShape(tok); isRatio && !ratioSet {
			ratio, err := positiveRatio("enlarge", tok, w, h)
			if err != nil {
				return Operation{}, err
			}
			cur.Next()
			op.Ratio = ratio
			ratioSet = true
			continue
		}
		break
	}
	return op, nil
}

func parseResize(cur *Cursor) (Operation, error) {
	modeTok, _ := cur.Next()
	var mode ResizeMode
	switch strings.ToLower(modeTok) {
	case "max":
		mode = ResizeMax
	case "min":
		mode = ResizeMin
	default:
		return Operation{}, &ArgumentError{
			Kind:     ErrInvalidEnumArgument,
			Command:  "resize",
			Expected: "'min' or 'max'",
			Received: modeTok,
		}
	}

	sideTok, _ := cur.Next()
	side, ok := decimal(sideTok)
	if !ok || side <= 0 {
		return Operation{}, &ArgumentError{
			Kind:     ErrInvalidNumericArgument,
			Command:  "resize",
			Expected: "<side>: Int",
			Received: sideTok,
		}
	}
	return Operation{Kind: KindResize, Side: side, Mode: mode}, nil
}

func ratioShape(tok string) (int, int, bool) {
	if strings.Count(tok, ":") != 1 {
		return 0, 0, false
	}
	return splitPair(tok, ":")
}

func positiveRatio(command, tok string, w, h int) (geometry.Ratio, error) {
	if w <= 0 || h <= 0 {
		return geometry.Ratio{}, &ArgumentError{
			Kind:     ErrInvalidRatioArgument,
			Command:  command,
			Expected: "<W>:<H> with positive Int components",
			Received: tok,
		}
	}
	return geometry.Ratio{Width: w, Height: h}, nil
}

func splitPair(tok, sep string) (int, int, bool) {
	left, right, found := strings.Cut(tok, sep)
	if !found {
		return 0, 0, false
	}
	w, ok := decimal(left)
	if !ok {
		return 0, 0, false
	}
	h, ok := decimal(right)
	if !ok {
		return 0, 0, false
	}
	return w, h, true
}

// decimal parses a non-empty run of ASCII digits.
func decimal(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}
