package discovery

import (
	"github.com/Zig-Index/registry/internal/ledger"
)

// Reconciliation classifies one discovery pass against the ledger.
type Reconciliation struct {
	New     []Record
	Updated []Record

	// Removed holds ledger entries whose ids were not rediscovered. They
	// are reported only; nothing deletes entries or catalog files, since a
	// repository can transiently drop its qualifying topic.
	Removed []ledger.Entry
}

// Reconcile diffs discovered records against the ledger. It is a pure
// function of its inputs: the ledger is only read.
//
// A record with a commit hash is compared against the stored hash; records
// without one (empty default branch) fall back to the last-updated
// timestamp. Matching records are unchanged and not re-processed.
func Reconcile(records []Record, led *ledger.Ledger) Reconciliation {
	var rec Reconciliation
	discovered := make(map[string]bool, len(records))

	for _, r := range records {
		discovered[r.ID] = true

		entry, ok := led.Get(r.ID)
		if !ok {
			rec.New = append(rec.New, r)
			continue
		}

		changed := false
		if r.CommitHash != "" {
			changed = r.CommitHash != entry.CommitHash
		} else {
			changed = !r.UpdatedAt.Equal(entry.UpdatedAt)
		}
		if changed {
			rec.Updated = append(rec.Updated, r)
		}
	}

	for _, id := range led.IDs() {
		if !discovered[id] {
			entry, _ := led.Get(id)
			rec.Removed = append(rec.Removed, entry)
		}
	}

	return rec
}
