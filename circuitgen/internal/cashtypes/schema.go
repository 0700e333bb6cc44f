// Package cashtypes holds the circuit types generated for a sample Cash
// state. They are checked in so the tests compile them and solve circuits
// built on them.
package cashtypes

import "github.com/ing-bank/zkflow-sub006/schema"

//go:generate go test ../../printer -run TestGeneratedPackage -update

// Schema returns the Cash state the package is generated from.
func Schema() *schema.Struct {
	return schema.NewStruct("Cash",
		schema.Field{Name: "owner", Schema: schema.NewFixedList(2, schema.Uint(8))},
		schema.Field{Name: "quantity", Schema: schema.Int(32)},
		schema.Field{Name: "currency", Schema: schema.NewEnum("Currency", "EUR", "USD")},
		schema.Field{Name: "note", Schema: schema.NewOption(schema.NewFixedString(3, schema.ASCII))},
		schema.Field{Name: "initial", Schema: schema.NewChar()},
	)
}
