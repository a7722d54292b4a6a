package resource

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel runs fns concurrently. The first failure cancels the rest and is returned,
// so a screen is either fully ready or in error.
func Parallel(ctx context.Context, fns ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			return fn(gctx)
		})
	}
	return g.Wait()
}

// Pair is the result of Join2
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the result of Join3
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Join2 composes two loaders into one all-or-nothing loader
func Join2[A, B any](la Loader[A], lb Loader[B]) Loader[Pair[A, B]] {
	return func(ctx context.Context) (Pair[A, B], error) {
		var out Pair[A, B]
		err := Parallel(ctx,
			func(ctx context.Context) (err error) {
				out.First, err = la(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				out.Second, err = lb(ctx)
				return err
			},
		)
		if err != nil {
			return Pair[A, B]{}, err
		}
		return out, nil
	}
}

// Join3 composes three loaders into one all-or-nothing loader
func Join3[A, B, C any](la Loader[A], lb Loader[B], lc Loader[C]) Loader[Triple[A, B, C]] {
	return func(ctx context.Context) (Triple[A, B, C], error) {
		var out Triple[A, B, C]
		err := Parallel(ctx,
			func(ctx context.Context) (err error) {
				out.First, err = la(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				out.Second, err = lb(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				out.Third, err = lc(ctx)
				return err
			},
		)
		if err != nil {
			return Triple[A, B, C]{}, err
		}
		return out, nil
	}
}
