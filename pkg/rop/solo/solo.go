package solo

import (
	"context"

	"github.com/ib-77/stagepipe/pkg/rop"
)

func Switch[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) rop.Result[Out]) rop.Result[Out] {

	if input.IsSuccess() {
		return rop.Adopt(input, onSuccess(ctx, input.Result()))
	}
	return rop.Carry[In, Out](input)
}

func Map[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out) rop.Result[Out] {

	if input.IsSuccess() {
		return rop.Adopt(input, rop.Success(onSuccess(ctx, input.Result())))
	}
	return rop.Carry[In, Out](input)
}

func Tee[T any](ctx context.Context,
	input rop.Result[T],
	onSuccess func(ctx context.Context, r rop.Result[T])) rop.Result[T] {

	if input.IsSuccess() {
		onSuccess(ctx, input)
	}

	return input
}

// Try runs onTryExecute on a successful input. A returned error becomes a
// failure, unless it is a context cancellation, which becomes a cancel.
// A step is not started once ctx is done. The outcome keeps the input's id.
func Try[In any, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) rop.Result[Out] {

	if !input.IsSuccess() {
		return rop.Carry[In, Out](input)
	}
	if err := ctx.Err(); err != nil {
		return rop.Adopt(input, rop.Cancel[Out](err))
	}

	out, err := onTryExecute(ctx, input.Result())
	if err != nil {
		if rop.IsCancellationError(err) {
			return rop.Adopt(input, rop.Cancel[Out](err))
		}
		return rop.Adopt(input, rop.Fail[Out](err))
	}

	return rop.Adopt(input, rop.Success(out))
}

func Finally[In, Out any](ctx context.Context, input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) Out {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	} else if input.IsCancel() {
		return onCancel(ctx, input.Err())
	} else {
		return onError(ctx, input.Err())
	}
}
