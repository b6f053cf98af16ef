package engine

import (
	"slices"
	"sort"

	sterrors "stacked.dev/st/internal/errors"
)

// PR states as reported by the remote host
const (
	PRStateOpen   = "OPEN"
	PRStateClosed = "CLOSED"
	PRStateMerged = "MERGED"
)

// RemoteLink associates a branch with its pull request
type RemoteLink struct {
	PRNumber    int    `json:"prNumber"`
	URL         string `json:"url,omitempty"`
	Base        string `json:"base,omitempty"`
	CommentID   int64  `json:"commentId,omitempty"`
	CommentBody string `json:"commentBody,omitempty"`
	State       string `json:"state,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
}

// Branch is a node of the forest. Nodes refer to each other by name only.
type Branch struct {
	Name     string   `json:"name"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
	// Tip is the last commit st saw on the branch
	Tip string `json:"tip,omitempty"`
	// BaseSnapshot is the parent's tip when this branch was last restacked
	BaseSnapshot string      `json:"baseSnapshot,omitempty"`
	Stale        bool        `json:"stale,omitempty"`
	Remote       *RemoteLink `json:"remote,omitempty"`
}

// ChildOrder controls the order siblings are visited in
type ChildOrder string

const (
	// ChildOrderInsertion visits children in the order they were tracked
	ChildOrderInsertion ChildOrder = "insertion"
	// ChildOrderAlphabetical visits children sorted by name
	ChildOrderAlphabetical ChildOrder = "alphabetical"
)

// Forest is the set of tracked branches, keyed by name
type Forest struct {
	Trunks   []string               `json:"trunks"`
	Branches map[string]*Branch     `json:"branches"`
	Archive  map[string]*RemoteLink `json:"archive,omitempty"`
}

// NewForest returns a forest holding only the given trunks
func NewForest(trunks ...string) *Forest {
	f := &Forest{
		Branches: make(map[string]*Branch),
		Archive:  make(map[string]*RemoteLink),
	}
	for _, trunk := range trunks {
		f.Trunks = append(f.Trunks, trunk)
		f.Branches[trunk] = &Branch{Name: trunk}
	}
	return f
}

// Clone returns a deep copy that shares no memory with f
func (f *Forest) Clone() *Forest {
	c := &Forest{
		Trunks:   slices.Clone(f.Trunks),
		Branches: make(map[string]*Branch, len(f.Branches)),
		Archive:  make(map[string]*RemoteLink, len(f.Archive)),
	}
	for name, b := range f.Branches {
		nb := *b
		nb.Children = slices.Clone(b.Children)
		if b.Remote != nil {
			link := *b.Remote
			nb.Remote = &link
		}
		c.Branches[name] = &nb
	}
	for name, link := range f.Archive {
		l := *link
		c.Archive[name] = &l
	}
	return c
}

// Get returns the node for name, or nil if it is not tracked
func (f *Forest) Get(name string) *Branch {
	return f.Branches[name]
}

// IsTracked reports whether name is a node of the forest
func (f *Forest) IsTracked(name string) bool {
	_, ok := f.Branches[name]
	return ok
}

// IsTrunk reports whether name is one of the trunks
func (f *Forest) IsTrunk(name string) bool {
	return slices.Contains(f.Trunks, name)
}

// ParentOf returns the parent of name, or "" for trunks and untracked branches
func (f *Forest) ParentOf(name string) string {
	if b := f.Branches[name]; b != nil {
		return b.Parent
	}
	return ""
}

// ChildrenOf returns the children of name in insertion order
func (f *Forest) ChildrenOf(name string) []string {
	if b := f.Branches[name]; b != nil {
		return slices.Clone(b.Children)
	}
	return nil
}

// OrderedChildren returns the children of name in the given traversal order
func (f *Forest) OrderedChildren(name string, order ChildOrder) []string {
	children := f.ChildrenOf(name)
	if order == ChildOrderAlphabetical {
		sort.Strings(children)
	}
	return children
}

// AncestorsOf returns the ancestors of name, root first, excluding name itself
func (f *Forest) AncestorsOf(name string) []string {
	var ancestors []string
	seen := map[string]bool{name: true}
	for p := f.ParentOf(name); p != ""; p = f.ParentOf(p) {
		if seen[p] {
			break
		}
		seen[p] = true
		ancestors = append(ancestors, p)
	}
	slices.Reverse(ancestors)
	return ancestors
}

// Descendants returns every branch below name in pre-order, excluding name
func (f *Forest) Descendants(name string, order ChildOrder) []string {
	var out []string
	f.Walk(name, order, func(branch string, _ int) {
		if branch != name {
			out = append(out, branch)
		}
	})
	return out
}

// Walk visits root and its subtree in pre-order, passing the depth below root
func (f *Forest) Walk(root string, order ChildOrder, fn func(name string, depth int)) {
	seen := make(map[string]bool)
	var visit func(name string, depth int)
	visit = func(name string, depth int) {
		if seen[name] || !f.IsTracked(name) {
			return
		}
		seen[name] = true
		fn(name, depth)
		for _, child := range f.OrderedChildren(name, order) {
			visit(child, depth+1)
		}
	}
	visit(root, 0)
}

// StackRoot returns the trunk-adjacent ancestor of name (name itself when its
// parent is a trunk). Trunks are their own stack root.
func (f *Forest) StackRoot(name string) string {
	if f.IsTrunk(name) {
		return name
	}
	root := name
	for _, a := range f.AncestorsOf(name) {
		if !f.IsTrunk(a) {
			root = a
			break
		}
	}
	return root
}

// StackOf returns the non-trunk ancestors of name, name itself and the linear
// chain above it until the first fork.
func (f *Forest) StackOf(name string) []string {
	if !f.IsTracked(name) {
		return nil
	}
	var stack []string
	for _, a := range f.AncestorsOf(name) {
		if !f.IsTrunk(a) {
			stack = append(stack, a)
		}
	}
	if !f.IsTrunk(name) {
		stack = append(stack, name)
	}
	for cur := name; ; {
		children := f.ChildrenOf(cur)
		if len(children) != 1 {
			break
		}
		cur = children[0]
		stack = append(stack, cur)
	}
	return stack
}

// TrunkOf returns the trunk the branch ultimately sits on
func (f *Forest) TrunkOf(name string) string {
	if f.IsTrunk(name) {
		return name
	}
	for _, a := range f.AncestorsOf(name) {
		if f.IsTrunk(a) {
			return a
		}
	}
	return ""
}

// IsClean reports whether name sits on its parent's current tip and has not
// been invalidated. Trunks are always clean.
func (f *Forest) IsClean(name string) bool {
	b := f.Branches[name]
	if b == nil {
		return false
	}
	if f.IsTrunk(name) || b.Parent == "" {
		return true
	}
	parent := f.Branches[b.Parent]
	return parent != nil && !b.Stale && b.BaseSnapshot != "" && b.BaseSnapshot == parent.Tip
}

// Track adds name under parent
func (f *Forest) Track(name, parent string) error {
	if f.IsTracked(name) {
		return sterrors.NewDuplicateError(name)
	}
	if parent == name {
		return sterrors.NewCycleError(name, parent)
	}
	if !f.IsTracked(parent) {
		return sterrors.NewDanglingParentError(name, parent)
	}
	f.Branches[name] = &Branch{Name: name, Parent: parent, Stale: true}
	f.Branches[parent].Children = append(f.Branches[parent].Children, name)
	return nil
}

// Untrack removes a leaf branch
func (f *Forest) Untrack(name string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if f.IsTrunk(name) {
		return sterrors.ErrTrunkOperation
	}
	if len(b.Children) > 0 {
		return sterrors.NewHasChildrenError(name, slices.Clone(b.Children))
	}
	f.detach(name)
	delete(f.Branches, name)
	if b.Remote != nil {
		link := *b.Remote
		link.Archived = true
		f.Archive[name] = &link
	}
	return nil
}

// Remove drops name and hands its children to its parent, keeping their
// position among the parent's children. Moved children become stale.
func (f *Forest) Remove(name string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if f.IsTrunk(name) {
		return sterrors.ErrTrunkOperation
	}
	parent := f.Branches[b.Parent]
	idx := slices.Index(parent.Children, name)
	parent.Children = slices.Delete(parent.Children, idx, idx+1)
	parent.Children = slices.Insert(parent.Children, idx, b.Children...)
	for _, child := range b.Children {
		f.Branches[child].Parent = b.Parent
		f.Branches[child].Stale = true
	}
	b.Children = nil
	delete(f.Branches, name)
	if b.Remote != nil {
		link := *b.Remote
		link.Archived = true
		f.Archive[name] = &link
	}
	return nil
}

// Rename gives name a new node name, keeping its place among its parent's
// children. Pull requests are tied to the head branch, so the remote link is
// archived under the old name.
func (f *Forest) Rename(name, newName string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if f.IsTrunk(name) {
		return sterrors.ErrTrunkOperation
	}
	if f.IsTracked(newName) {
		return sterrors.NewDuplicateError(newName)
	}

	parent := f.Branches[b.Parent]
	parent.Children[slices.Index(parent.Children, name)] = newName
	for _, child := range b.Children {
		f.Branches[child].Parent = newName
	}
	if b.Remote != nil {
		link := *b.Remote
		link.Archived = true
		f.Archive[name] = &link
		b.Remote = nil
	}
	delete(f.Branches, name)
	b.Name = newName
	f.Branches[newName] = b
	return nil
}

// Reparent moves name (and its subtree) under newParent and marks it stale
func (f *Forest) Reparent(name, newParent string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if f.IsTrunk(name) {
		return sterrors.ErrTrunkOperation
	}
	if !f.IsTracked(newParent) {
		return sterrors.NewDanglingParentError(name, newParent)
	}
	if newParent == name || slices.Contains(f.AncestorsOf(newParent), name) {
		return sterrors.NewCycleError(name, newParent)
	}
	if b.Parent == newParent {
		return nil
	}
	f.detach(name)
	b.Parent = newParent
	f.Branches[newParent].Children = append(f.Branches[newParent].Children, name)
	b.Stale = true
	return nil
}

// MarkClean records base as the parent tip name is now based on
func (f *Forest) MarkClean(name, base string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	b.BaseSnapshot = base
	b.Stale = false
	return nil
}

// MarkStale invalidates name regardless of its base snapshot
func (f *Forest) MarkStale(name string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if !f.IsTrunk(name) {
		b.Stale = true
	}
	return nil
}

// SetTip records the current commit of name
func (f *Forest) SetTip(name, commit string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	b.Tip = commit
	return nil
}

// SetRemote replaces the remote link of name
func (f *Forest) SetRemote(name string, link *RemoteLink) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if link == nil {
		b.Remote = nil
		return nil
	}
	l := *link
	b.Remote = &l
	return nil
}

// ArchiveRemote detaches the remote link of name into the archive. The link
// is kept so the PR can still be found after a merge or close.
func (f *Forest) ArchiveRemote(name, state string) error {
	b := f.Branches[name]
	if b == nil {
		return sterrors.NewNotTrackedError(name)
	}
	if b.Remote == nil {
		return nil
	}
	link := *b.Remote
	link.State = state
	link.Archived = true
	f.Archive[name] = &link
	b.Remote = nil
	return nil
}

// AddTrunk registers an additional trunk branch
func (f *Forest) AddTrunk(name string) error {
	if f.IsTrunk(name) {
		return sterrors.NewDuplicateError(name)
	}
	if f.IsTracked(name) {
		return sterrors.NewDuplicateError(name)
	}
	f.Trunks = append(f.Trunks, name)
	f.Branches[name] = &Branch{Name: name}
	return nil
}

// RemoveTrunk drops a trunk that has no children. The last trunk cannot be removed.
func (f *Forest) RemoveTrunk(name string) error {
	if !f.IsTrunk(name) {
		return sterrors.NewNotTrackedError(name)
	}
	if len(f.Trunks) == 1 {
		return sterrors.ErrTrunkOperation
	}
	if children := f.ChildrenOf(name); len(children) > 0 {
		return sterrors.NewHasChildrenError(name, children)
	}
	f.Trunks = slices.DeleteFunc(f.Trunks, func(t string) bool { return t == name })
	delete(f.Branches, name)
	return nil
}

// Prune removes every non-trunk branch for which exists returns false,
// handing children to the nearest surviving ancestor. It returns the pruned names.
func (f *Forest) Prune(exists func(string) bool) []string {
	var pruned []string
	for _, trunk := range f.Trunks {
		for _, name := range f.Descendants(trunk, ChildOrderInsertion) {
			if exists(name) {
				continue
			}
			if err := f.Remove(name); err == nil {
				pruned = append(pruned, name)
			}
		}
	}
	return pruned
}

// Validate checks the structural invariants of the forest by traversal
func (f *Forest) Validate() error {
	if len(f.Trunks) == 0 {
		return sterrors.ErrTrunkOperation
	}
	for _, trunk := range f.Trunks {
		b := f.Branches[trunk]
		if b == nil {
			return sterrors.NewNotTrackedError(trunk)
		}
		if b.Parent != "" {
			return sterrors.ErrTrunkOperation
		}
	}
	for name, b := range f.Branches {
		if b.Name != name {
			return sterrors.NewNotTrackedError(name)
		}
		if f.IsTrunk(name) {
			continue
		}
		if b.Parent == "" || !f.IsTracked(b.Parent) {
			return sterrors.NewDanglingParentError(name, b.Parent)
		}
		if !slices.Contains(f.Branches[b.Parent].Children, name) {
			return sterrors.NewDanglingParentError(name, b.Parent)
		}
	}
	for name, b := range f.Branches {
		for _, child := range b.Children {
			c := f.Branches[child]
			if c == nil || c.Parent != name {
				return sterrors.NewDanglingParentError(child, name)
			}
		}
	}
	// Every branch must reach a trunk without revisiting a node
	for name := range f.Branches {
		seen := map[string]bool{}
		for cur := name; cur != ""; cur = f.ParentOf(cur) {
			if seen[cur] {
				return sterrors.NewCycleError(name, f.ParentOf(name))
			}
			seen[cur] = true
		}
	}
	return nil
}

func (f *Forest) detach(name string) {
	b := f.Branches[name]
	if b == nil || b.Parent == "" {
		return
	}
	if parent := f.Branches[b.Parent]; parent != nil {
		parent.Children = slices.DeleteFunc(parent.Children, func(c string) bool { return c == name })
	}
}
