package groupstore

import "encoding/json"

// JSON tree manipulation shared by the in-memory store and the streaming
// client's local mirror. Trees are the decoded form of store JSON:
// map[string]any branches with scalar leaves.

// toJSONValue round-trips v through encoding/json into tree form.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getAt returns the subtree at segs, or nil if absent.
func getAt(root any, segs []string) any {
	cur := root
	for _, s := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[s]
	}
	return cur
}

// setAt replaces the subtree at segs with val and returns the new root.
// A nil val prunes the subtree and any branches emptied by the prune.
func setAt(root any, segs []string, val any) any {
	if len(segs) == 0 {
		return val
	}
	m, ok := root.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	child := setAt(m[segs[0]], segs[1:], val)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// mergeAt applies a merge-patch of fields at segs and returns the new root.
// Null field values delete the field, matching the store's PATCH semantics.
func mergeAt(root any, segs []string, fields map[string]any) any {
	for k, v := range fields {
		root = setAt(root, append(append([]string{}, segs...), k), v)
	}
	return root
}

// encode serializes a subtree; absent subtrees encode as nil.
func encode(sub any) json.RawMessage {
	if sub == nil {
		return nil
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return nil
	}
	return raw
}

// touches reports whether a mutation at mutated is visible to a listener at
// watched: true when either path is a prefix of the other.
func touches(mutated, watched []string) bool {
	n := len(mutated)
	if len(watched) < n {
		n = len(watched)
	}
	for i := 0; i < n; i++ {
		if mutated[i] != watched[i] {
			return false
		}
	}
	return true
}
