// Package signature derives canonical member signatures.
//
// A Signature identifies a method, a field or one parameter of a method in a
// compiled class file. The same signature can be computed from two sides:
//
//   - from the class file itself, via Method and Field with the member's name
//     and JVM descriptor;
//   - from serialized declaration metadata, via FromFunction,
//     FromConstructor, FromPropertyAccessor and FromPropertyField.
//
// Both sides must agree exactly for lookups to succeed. A mismatch is not
// detected; it yields an empty lookup.
package signature
