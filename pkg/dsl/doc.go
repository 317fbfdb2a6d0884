/*
Package dsl provides a fluent builder for intent trees.

It is an alternative to YAML intent files for trees defined in code, tests, or generated at
runtime.

Example usage:

	b := dsl.New()

	b.Add("greet").
		Samples("hello", "hi").
		Action("greetFn")

	b.Add("order").
		Samples("i want to order").
		Default(domain.PolicyRoot).
		Child("item").Samples("a pizza").Up().
		Alias("cancel")

	b.Add("cancel").Samples("never mind")
	b.Unknown("unknownFn")

	router := switchboard.New()
	if err := router.Load(b.Source()); err != nil {
		log.Fatal(err)
	}
*/
package dsl
