package comp

// ReconcileResult is the outcome of remapping existing holders onto the slot
// list parsed from an edited template.
type ReconcileResult struct {
	Slots    []Slot
	Unplaced []Assignee
}

// Reconcile binds the holders of the old slot list into the new one using a
// stable greedy match on exact role labels: old holders are visited in their
// original slot order and each takes the first still-empty new slot whose
// label matches exactly. A new slot is consumed once bound, so the
// earliest-declared holder of a duplicated role keeps a slot of that role if
// one remains. Holders with no matching slot left are collected as unplaced;
// the edit still commits.
func Reconcile(old, next []Slot) ReconcileResult {
	res := ReconcileResult{Slots: next}
	for i := range old {
		holder, ok := old[i].Assignee()
		if !ok {
			continue
		}
		placed := false
		for j := range res.Slots {
			if res.Slots[j].Held() || res.Slots[j].Label != old[i].Label {
				continue
			}
			// next comes fresh from ParseTemplate, all empty, so Claim
			// cannot fail here.
			_ = res.Slots[j].Claim(holder)
			placed = true
			break
		}
		if !placed {
			res.Unplaced = append(res.Unplaced, holder)
		}
	}
	return res
}
