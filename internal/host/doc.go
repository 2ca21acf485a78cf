// Package host exposes a loaded extension to the HCL expression language.
//
// Every bound function becomes an HCL function named by its full path,
// joined with "::", so the host calls it as Servactory::HelloRust::hello("x").
// Namespace constants become nested object variables reachable by attribute
// traversal, as in Servactory.HelloRust.VERSION.
//
// Argument and result marshalling between HCL values and Go values is done
// by go-cty; the host only guarantees that what was registered is what the
// expression language sees.
package host
