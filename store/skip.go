package store

import (
	"fmt"

	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
)

// skipValue advances the stream past the value of an item whose tag has just
// been read. Nested structs and arrays are skipped with an explicit stack of
// pending end tokens bounded by the session depth limit.
func (r *Reader) skipValue(token format.Token) error {
	stack := r.skipStack[:0]
	defer func() { r.skipStack = stack[:0] }()

	for {
		switch {
		case token == format.TokenBeginStruct:
			stack = append(stack, format.TokenEndStruct)
		case token.IsArray():
			size, err := r.length(token)
			if err != nil {
				return err
			}
			stack = append(stack, format.TokenEndArray)

			b, err := r.in.Peek(1)
			if err != nil {
				return err
			}
			if b[0] == byte(format.TokenIndexArray) {
				if _, err := r.skipIndex(size); err != nil {
					return err
				}
			}
		case token.IsString():
			n, err := r.length(token)
			if err != nil {
				return err
			}
			if err := r.in.Skip(int64(n)); err != nil {
				return err
			}
		case token == format.TokenEndStruct || token == format.TokenEndArray:
			if len(stack) == 0 || stack[len(stack)-1] != token {
				return fmt.Errorf("%w: %s while skipping", errs.ErrUnexpectedEnd, token)
			}
			stack = stack[:len(stack)-1]
		case token == format.TokenEnd || token == format.TokenIndexArray:
			return fmt.Errorf("%w: %s while skipping", errs.ErrUnexpectedEnd, token)
		default:
			if err := r.in.Skip(int64(token.PayloadSize())); err != nil {
				return err
			}
		}

		if len(stack) == 0 {
			return nil
		}
		if len(stack) > r.maxDepth {
			return fmt.Errorf("%w: nesting deeper than %d while skipping", errs.ErrLevelOverflow, r.maxDepth)
		}

		var err error
		if token, _, err = r.readTag(); err != nil {
			return err
		}
	}
}
