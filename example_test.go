package arrayschema_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/pkg/labeled"
	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/aretw0/arrayschema/pkg/schema"
)

// Example validates an in-memory array against a schema built in Go.
func Example() {
	s := schema.MustArraySchema(
		schema.WithDType(schema.Float64),
		schema.WithDims(schema.Dims{"x", "y"}),
		schema.WithShape(schema.Shape{2, schema.AnySize}),
	)

	data, err := ndarray.NewDense(2, 5)
	if err != nil {
		log.Fatal(err)
	}
	arr, err := labeled.NewArray(schema.Int32, data, labeled.WithDims("x", "y"))
	if err != nil {
		log.Fatal(err)
	}

	err = s.Validate(arr)
	var se *schema.SchemaError
	if errors.As(err, &se) {
		fmt.Println(se.Facet)
		fmt.Println(se.Msg)
	}
	fmt.Println(s.Validate(arr.AsType(schema.Float64)))
	// Output:
	// dtype
	// dtype int32 != float64
	// <nil>
}

// ExampleOpen stores a schema by name and validates a container document.
func ExampleOpen() {
	ctx := context.Background()
	reg, store, err := arrayschema.Open(arrayschema.StoreConfig{Backend: arrayschema.BackendMemory})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if _, err := reg.Put(ctx, "temps", []byte("dtype: float64\ndims: [time]\n")); err != nil {
		log.Fatal(err)
	}

	err = reg.ValidateDocument(ctx, "temps", []byte(`{"dtype": "float64", "dims": ["t"], "shape": [3]}`))
	fmt.Println(err)
	// Output:
	// dim mismatch in axis 0: t != time
}
