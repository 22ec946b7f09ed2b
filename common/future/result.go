// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package future

// Result encapsulates a value along with an error. It is used to collect the
// outcomes of concurrently executed operations in a slice, one slot per
// operation, before inspecting them in submission order.
type Result[T any] struct {
	Value T
	Error error
	done  bool
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value, done: true}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Error: err, done: true}
}

// Get returns the value and error contained in the Result.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Error
}

// Done reports whether the result was produced by Ok or Err. The zero value
// represents an operation that never completed.
func (r Result[T]) Done() bool {
	return r.done
}

// Succeeded is true for completed results without an error.
func (r Result[T]) Succeeded() bool {
	return r.done && r.Error == nil
}

// Prefix returns the values of the longest run of successful results at the
// start of the given list. The second result is the position of the first
// unsuccessful entry, or len(results) if all succeeded.
func Prefix[T any](results []Result[T]) ([]T, int) {
	values := make([]T, 0, len(results))
	for i, res := range results {
		if !res.Succeeded() {
			return values, i
		}
		values = append(values, res.Value)
	}
	return values, len(results)
}
