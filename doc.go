// Package loom is an asynchronous dependency-resolution engine. Factories
// declare a provided key, an ordered list of dependency keys, a lifetime
// and an optional disposer; From flattens and validates the resulting
// graph up front, so cycles and missing dependencies fail assembly rather
// than a resolution at 3am. Resolution itself fans sibling dependencies
// out concurrently, shares singleton outcomes across every caller and
// builds transient values fresh per call. Selector keys group providers
// of one type behind a handle that resolves members on demand instead of
// eagerly.
//
// The Module type and From have comprehensive documentation about how
// assembly and resolution work.
//
// There are also typed helper functions (Get, GetOptional, At) that make
// using this more concise.
package loom
