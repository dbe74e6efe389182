package kverrors_test

import (
	"errors"
	"fmt"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

func ExampleMap() {
	err := kverrors.Map(kverrors.CodeKeyExists, kverrors.OpGeneric)
	fmt.Println(err)
	fmt.Println(errors.Is(err, kverrors.RecordError))

	// A missing record is a normal answer to an existence check.
	fmt.Println(kverrors.Map(kverrors.CodeKeyNotFound, kverrors.OpExists))
	// Output:
	// RecordExistsError (5): key already exists
	// true
	// <nil>
}

func ExampleError_WithDetail() {
	err := kverrors.New(kverrors.BinNameError, "bin name too long").
		WithDetail("bin", "a_very_long_bin_name")
	fmt.Println(err.Code, err.Details["bin"])
	// Output:
	// bin name length greater than 15 characters a_very_long_bin_name
}
