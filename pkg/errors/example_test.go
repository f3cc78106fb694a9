// Package errors provides examples of structured error handling in docframe.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/docframe/pkg/errors"
)

// Example demonstrates basic compute error creation.
func Example() {
	err := errors.Compute("unable to fetch rows for determining schema").
		WithDetail("collection", "tickers")

	fmt.Println(err.Error())

	// Output:
	// compute: unable to fetch rows for determining schema
}

// ExampleWrapCompute shows how retrieval failures are surfaced.
func ExampleWrapCompute() {
	err := errors.WrapCompute(io.ErrUnexpectedEOF, "unable to stream documents")

	if errors.IsCompute(err) {
		fmt.Println("compute error")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("cause preserved")
	}

	// Output:
	// compute error
	// cause preserved
}
