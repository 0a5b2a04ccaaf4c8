package dtype

import "fmt"

// Call runs the loop registered for ufunc on t. A unary loop takes two
// operands (x, out), a binary loop three (x, y, out); all must have the
// same length.
func (r *Registry) Call(ufunc string, t TypeNum, operands ...[]uint16) error {
	loop, err := r.Loop(ufunc, t)
	if err != nil {
		return err
	}
	if len(operands) != loop.nin()+1 {
		return fmt.Errorf("%w: %s takes %d operands, got %d", ErrShape, ufunc, loop.nin()+1, len(operands))
	}
	for _, op := range operands[1:] {
		if len(op) != len(operands[0]) {
			return fmt.Errorf("%w: %s operands have lengths %d and %d", ErrShape, ufunc, len(operands[0]), len(op))
		}
	}

	switch loop := loop.(type) {
	case UnaryLoop:
		loop(operands[0], operands[1])
	case BinaryLoop:
		loop(operands[0], operands[1], operands[2])
	default:
		return fmt.Errorf("%w: %s is a comparison, use Compare", ErrNoLoop, ufunc)
	}
	return nil
}

// Compare runs the comparison loop registered for ufunc on t.
func (r *Registry) Compare(ufunc string, t TypeNum, x, y []uint16, out []bool) error {
	loop, err := r.Loop(ufunc, t)
	if err != nil {
		return err
	}
	cmp, ok := loop.(CompareLoop)
	if !ok {
		return fmt.Errorf("%w: %s is not a comparison", ErrNoLoop, ufunc)
	}
	if len(x) != len(y) || len(x) != len(out) {
		return fmt.Errorf("%w: %s operands have lengths %d, %d and %d", ErrShape, ufunc, len(x), len(y), len(out))
	}
	cmp(x, y, out)
	return nil
}

// Cast converts src, holding elements of type from, into dst, holding
// elements of type to.
func (r *Registry) Cast(from, to TypeNum, src, dst any) error {
	r.mu.RLock()
	fn, ok := r.casts[castKey{from, to}]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: cast from %d to %d", ErrNoLoop, from, to)
	}
	return fn(src, dst)
}
