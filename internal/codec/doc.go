// Package codec translates between the in-memory preference store and its
// serialized document form, resolving type identifiers through the registry.
//
// Decoding is deliberately forgiving: stored data written against an older
// shape of a type is coerced field by field onto the type's registered
// default, so additive or removed-field schema changes never poison the rest
// of the document. Only programmer errors (an identifier that was never
// registered being *written*, not read) are fatal.
package codec
