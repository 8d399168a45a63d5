package rop

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one railway step: a value, a failure, or a
// cancellation. Every Result carries an id and its UTC creation time; the
// pipeline driver uses the id of its first Result as the run id.
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	isSuccess bool
	isCancel  bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		isSuccess: true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isCancel:  true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// Carry moves a failed or cancelled result onto a new value type, keeping
// its id and creation time.
func Carry[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:       from.err,
		isSuccess: from.isSuccess,
		isCancel:  from.isCancel,
		createdAt: from.createdAt,
		id:        from.id,
	}
}

// Adopt returns to with the id and creation time of from, so every step of
// one railway reports the same identity.
func Adopt[In, Out any](from Result[In], to Result[Out]) Result[Out] {
	to.id = from.id
	to.createdAt = from.createdAt
	return to
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) IsFailure() bool {
	return !r.isSuccess && !r.isCancel
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}
