// Package engine manages stacks of dependent branches.
//
// It is the core of st, responsible for:
//   - The branch graph: a name-keyed forest rooted at one or more trunks
//   - Copy-and-swap persistence of the forest in .git/st/forest.json
//   - Planning and executing restacks (cascading rebases) in pre-order
//   - Pausing on conflicts, resuming with continue and rolling back with abort
//   - The advisory repository lock held by mutating commands
//
// Git is reached only through the VCS interface, so the whole engine can be
// exercised against an in-memory implementation in tests.
package engine
