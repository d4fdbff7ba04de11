package reconcile

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"bpvote/bpvote"
)

//Reconcile computes the final producer set to submit in a voteproducer action.
//Three mutually exclusive branches, driven by how much room the selection has:
//
//  - no room: the voter must already have swapped one entry of the working copy
//    for the target. The working copy is taken as-is.
//  - one slot: the target is appended to the on-chain selection, nothing else
//    fits.
//  - more room: the target is appended, then (when addRecommended is set) the
//    remaining slots are filled from suggested first and the rest of the active
//    set second, excluding notSuggested from the fallback pool.
//
//The result never exceeds bpvote.MaxSelectionSize, never contains duplicates,
//and is sorted lexicographically as the chain requires for canonical actions.
//A nil rng falls back to a time-seeded source; tests pass a fixed seed.
func Reconcile(selection bpvote.VoteSelection, target bpvote.Account, addRecommended bool, suggested, notSuggested, active []bpvote.Account, rng *rand.Rand) ([]bpvote.Account, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var final []bpvote.Account
	switch {
	case selection.RoomForMore <= 0:
		if !bpvote.Contains(selection.Modified, target) {
			return nil, fmt.Errorf("selection is full and the working copy does not contain %s: replace an existing producer first", target)
		}
		final = dedupe(selection.Modified)
		if len(final) > bpvote.MaxSelectionSize {
			return nil, fmt.Errorf("working copy holds %d producers, the cap is %d", len(final), bpvote.MaxSelectionSize)
		}
	case selection.RoomForMore == 1:
		final = appendMissing(dedupe(selection.Original), target)
	default:
		final = appendMissing(dedupe(selection.Original), target)
		if addRecommended {
			final = fill(final, suggested, nil, active, rng)
			final = fill(final, active, notSuggested, active, rng)
		}
	}
	sort.Strings(final)
	return final, nil
}

//fill appends shuffled candidates from pool until the cap is reached. A
//candidate must be active, not already selected and not excluded.
func fill(current, pool, excluded, active []bpvote.Account, rng *rand.Rand) []bpvote.Account {
	room := bpvote.MaxSelectionSize - len(current)
	if room <= 0 {
		return current
	}
	var candidates []bpvote.Account
	for _, candidate := range pool {
		if bpvote.Contains(current, candidate) {
			continue
		}
		if bpvote.Contains(candidates, candidate) {
			continue
		}
		if !bpvote.Contains(active, candidate) {
			continue
		}
		if bpvote.Contains(excluded, candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	//Fisher-Yates via rand.Shuffle: a uniform permutation, unlike the biased
	//sort-by-random-comparator trick
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > room {
		candidates = candidates[:room]
	}
	return append(current, candidates...)
}

func appendMissing(list []bpvote.Account, account bpvote.Account) []bpvote.Account {
	if bpvote.Contains(list, account) {
		return list
	}
	return append(list, account)
}

func dedupe(list []bpvote.Account) []bpvote.Account {
	deduped := make([]bpvote.Account, 0, len(list))
	for _, account := range list {
		if !bpvote.Contains(deduped, account) {
			deduped = append(deduped, account)
		}
	}
	return deduped
}
