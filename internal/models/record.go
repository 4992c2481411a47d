// Package models defines the record and report types exchanged between the
// fetcher, the analytics engines and the transport layer.
package models

import "encoding/json"

// Record is one externally-sourced item. The upstream schema is open-ended:
// besides the three fields the analytics care about, every other attribute
// is carried through Extra untouched and re-emitted on serialization.
// Records are immutable once fetched.
type Record struct {
	ID      int
	OwnerID int
	Title   string
	Extra   map[string]json.RawMessage
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &r.ID); err != nil {
			return err
		}
		delete(raw, "id")
	}
	if v, ok := raw["userId"]; ok {
		if err := json.Unmarshal(v, &r.OwnerID); err != nil {
			return err
		}
		delete(raw, "userId")
	}
	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &r.Title); err != nil {
			return err
		}
		delete(raw, "title")
	}
	r.Extra = raw
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := json.Marshal(r.OwnerID)
	if err != nil {
		return nil, err
	}
	title, err := json.Marshal(r.Title)
	if err != nil {
		return nil, err
	}
	out["id"] = id
	out["userId"] = owner
	out["title"] = title
	return json.Marshal(out)
}

// SourceMeta carries response metadata from the upstream source.
type SourceMeta struct {
	// TotalCount is the upstream X-Total-Count hint, empty when absent.
	TotalCount string
}
