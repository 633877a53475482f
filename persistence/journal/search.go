package journal

import (
	"context"
	"fmt"
)

// Search performs a binary search within the half-open range [begin, end) to
// find the record for which cmp() returns 0.
//
// cmp must return a negative value if the desired record is before rec, and a
// positive value if it is after rec. ok is false if no such record exists.
func Search(
	ctx context.Context,
	j Journal,
	begin, end Position,
	cmp func(ctx context.Context, rec []byte) (int, error),
) (pos Position, rec []byte, ok bool, err error) {
	for begin < end {
		pos := begin + (end-begin)/2

		rec, ok, err := j.Get(ctx, pos)
		if err != nil {
			return 0, nil, false, err
		}
		if !ok {
			return 0, nil, false, fmt.Errorf("journal is corrupt: missing record at position %d", pos)
		}

		n, err := cmp(ctx, rec)
		if err != nil {
			return 0, nil, false, err
		}

		if n < 0 {
			end = pos
		} else if n > 0 {
			begin = pos + 1
		} else {
			return pos, rec, true, nil
		}
	}

	return 0, nil, false, nil
}
