package components

import (
	"slices"

	"github.com/mmcdole/pixa/internal/domain"
)

// OpKind identifies a list patch operation
type OpKind int

const (
	OpRemove OpKind = iota // From is an index into the old snapshot
	OpMove                 // From in the old snapshot, To in the new one
	OpInsert               // To is an index into the new snapshot
	OpChange               // Same ID at To, different content
)

func (k OpKind) String() string {
	switch k {
	case OpRemove:
		return "remove"
	case OpMove:
		return "move"
	case OpInsert:
		return "insert"
	case OpChange:
		return "change"
	default:
		return "unknown"
	}
}

// ListOp is one step of a patch turning an old snapshot into a new one
type ListOp struct {
	Kind  OpKind
	ID    int64
	From  int
	To    int
	Image domain.Image // Set for inserts and changes
}

// Diff computes the patch from old to next, keyed by image ID.
// Items on the longest common ID subsequence stay put; other surviving
// IDs become moves. Duplicate IDs within one snapshot are diffed by first
// occurrence.
func Diff(old, next []domain.Image) []ListOp {
	oldIDs := firstIDs(old)
	nextIDs := firstIDs(next)

	kept := lcs(old, next)
	keptOld := make(map[int]bool, len(kept))
	keptNext := make(map[int]bool, len(kept))
	for _, p := range kept {
		keptOld[p[0]] = true
		keptNext[p[1]] = true
	}

	var removes, moves, inserts, changes []ListOp

	for i, img := range old {
		if keptOld[i] {
			continue
		}
		j, ok := nextIDs[img.ID]
		if !ok || oldIDs[img.ID] != i {
			removes = append(removes, ListOp{Kind: OpRemove, ID: img.ID, From: i})
			continue
		}
		if keptNext[j] {
			// ID survives on the common subsequence through another index
			removes = append(removes, ListOp{Kind: OpRemove, ID: img.ID, From: i})
			continue
		}
		moves = append(moves, ListOp{Kind: OpMove, ID: img.ID, From: i, To: j})
	}

	moved := make(map[int]bool, len(moves))
	for _, op := range moves {
		moved[op.To] = true
	}

	for j, img := range next {
		if keptNext[j] || moved[j] {
			continue
		}
		inserts = append(inserts, ListOp{Kind: OpInsert, ID: img.ID, To: j, Image: img})
	}

	for _, p := range kept {
		if !old[p[0]].SameContent(next[p[1]]) {
			changes = append(changes, ListOp{Kind: OpChange, ID: next[p[1]].ID, From: p[0], To: p[1], Image: next[p[1]]})
		}
	}
	for _, op := range moves {
		if !old[op.From].SameContent(next[op.To]) {
			changes = append(changes, ListOp{Kind: OpChange, ID: op.ID, From: op.From, To: op.To, Image: next[op.To]})
		}
	}
	slices.SortFunc(changes, func(a, b ListOp) int { return a.To - b.To })

	ops := make([]ListOp, 0, len(removes)+len(moves)+len(inserts)+len(changes))
	ops = append(ops, removes...)
	ops = append(ops, moves...)
	ops = append(ops, inserts...)
	ops = append(ops, changes...)
	return ops
}

// Apply replays ops against old. Removals and move sources are taken out
// by descending old index, then inserts and move targets are placed by
// ascending new index, then changes overwrite in place.
func Apply(old []domain.Image, ops []ListOp) []domain.Image {
	work := slices.Clone(old)

	var out, in, changes []ListOp
	for _, op := range ops {
		switch op.Kind {
		case OpRemove:
			out = append(out, op)
		case OpMove:
			out = append(out, op)
			in = append(in, op)
		case OpInsert:
			in = append(in, op)
		case OpChange:
			changes = append(changes, op)
		}
	}

	slices.SortFunc(out, func(a, b ListOp) int { return b.From - a.From })
	held := make(map[int]domain.Image)
	for _, op := range out {
		if op.Kind == OpMove {
			held[op.From] = work[op.From]
		}
		work = slices.Delete(work, op.From, op.From+1)
	}

	slices.SortFunc(in, func(a, b ListOp) int { return a.To - b.To })
	for _, op := range in {
		img := op.Image
		if op.Kind == OpMove {
			img = held[op.From]
		}
		work = slices.Insert(work, op.To, img)
	}

	for _, op := range changes {
		work[op.To] = op.Image
	}
	return work
}

// firstIDs maps each ID to the index of its first occurrence
func firstIDs(images []domain.Image) map[int64]int {
	ids := make(map[int64]int, len(images))
	for i, img := range images {
		if _, ok := ids[img.ID]; !ok {
			ids[img.ID] = i
		}
	}
	return ids
}

// lcs returns index pairs of the longest common subsequence of IDs
func lcs(a, b []domain.Image) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// Trim common prefix and suffix before the quadratic table
	pre := 0
	for pre < n && pre < m && a[pre].ID == b[pre].ID {
		pre++
	}
	suf := 0
	for suf < n-pre && suf < m-pre && a[n-1-suf].ID == b[m-1-suf].ID {
		suf++
	}

	pairs := make([][2]int, 0, min(n, m))
	for i := range pre {
		pairs = append(pairs, [2]int{i, i})
	}

	as, bs := a[pre:n-suf], b[pre:m-suf]
	rows, cols := len(as), len(bs)
	if rows > 0 && cols > 0 {
		table := make([][]int, rows+1)
		for i := range table {
			table[i] = make([]int, cols+1)
		}
		for i := rows - 1; i >= 0; i-- {
			for j := cols - 1; j >= 0; j-- {
				if as[i].ID == bs[j].ID {
					table[i][j] = table[i+1][j+1] + 1
				} else {
					table[i][j] = max(table[i+1][j], table[i][j+1])
				}
			}
		}
		for i, j := 0, 0; i < rows && j < cols; {
			switch {
			case as[i].ID == bs[j].ID:
				pairs = append(pairs, [2]int{pre + i, pre + j})
				i++
				j++
			case table[i+1][j] >= table[i][j+1]:
				i++
			default:
				j++
			}
		}
	}

	for k := suf; k > 0; k-- {
		pairs = append(pairs, [2]int{n - k, m - k})
	}
	return pairs
}
