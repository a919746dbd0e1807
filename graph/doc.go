// Package graph implements the declarative task graphs backing Ragged
// collections. A Graph is a set of named layers, each holding one addressable
// task per partition index, plus the dependency edges between layers. Graphs
// are pure descriptions: nothing runs until Execute is asked for specific
// keys, and tasks with different keys carry no ordering relationship beyond
// their dependencies, so a scheduler is free to run them concurrently and in
// any order. Content-addressed identities come from Tokenize, so building the
// same logical inputs twice yields the same graph keys.
package graph
