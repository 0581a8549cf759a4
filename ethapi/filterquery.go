// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package ethapi

import (
	"encoding/json"
	"net/url"
)

func asStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func asTopics(v any) [][]string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([][]string, 0, len(list))
	for _, entry := range list {
		if entry == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, asStringSlice(entry))
	}
	return out
}

// encodeFilterQuery renders an object-shaped parameter as a single
// URL-escaped JSON query value, since the archival client's exact
// query-string dialect is an implementation detail of a collaborator this
// gateway does not own (backend.Archive, spec.md §1 Non-goals).
func encodeFilterQuery(obj map[string]any) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return url.QueryEscape(string(b))
}

func filterToObject(f *filter) map[string]any {
	obj := map[string]any{}
	if len(f.addresses) == 1 {
		obj["address"] = f.addresses[0]
	} else if len(f.addresses) > 1 {
		obj["address"] = f.addresses
	}
	if len(f.topics) > 0 {
		topics := make([]any, len(f.topics))
		for i, t := range f.topics {
			topics[i] = t
		}
		obj["topics"] = topics
	}
	if f.blockHash != "" {
		obj["blockHash"] = f.blockHash
	}
	if f.fromBlock != "" {
		obj["fromBlock"] = f.fromBlock
	}
	if f.toBlock != "" {
		obj["toBlock"] = f.toBlock
	}
	return obj
}
