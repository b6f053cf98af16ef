// Package remote keeps pull requests in step with the local branch graph.
//
// The Coordinator creates PRs on submit, retargets their base when a branch
// is reparented and maintains a navigation comment listing the whole stack.
// Every sync first compares against the values recorded in the branch's
// remote link, so repeating a sync with nothing changed performs no writes.
package remote
