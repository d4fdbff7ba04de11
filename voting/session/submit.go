package session

import (
	"fmt"
	"strings"

	"bpvote/bpvote"
	"bpvote/voting/reconcile"
)

//SubmitVote reconciles the current selection into a final producer set, builds
//the voteproducer action and hands it to the signer. A signer refusal that
//looks like the voter changing their mind is a silent no-op; any other failure
//lands in the state's Err field. Success sets the Thanks flag and recomputes
//statistics and selection from the updated chain state.
func (s *Session) SubmitVote() error {
	s.mutex.Lock()
	state := s.state
	active := append([]bpvote.Account{}, s.active...)
	options := s.options
	rng := s.rng
	s.mutex.Unlock()

	if len(state.Voter.Name) == 0 {
		err := fmt.Errorf("you need to unlock a wallet before voting")
		s.fail(err.Error())
		return err
	}
	final, err := reconcile.Reconcile(state.Selection, options.Target, state.AddRecommended, options.Suggested, options.NotSuggested, active, rng)
	if err != nil {
		s.fail(err.Error())
		return err
	}
	action := bpvote.NewVoteAction(state.Voter, final)
	if err := s.signer.PushAction(action); err != nil {
		if isUserCancelled(err) {
			//the voter backed out, nothing to report. Reload the selection in
			//case the wallet mutated it elsewhere in the meantime.
			s.SetVoter(state.Voter)
			return nil
		}
		s.fail(err.Error())
		return err
	}

	s.mutex.Lock()
	next := s.state
	next.Thanks = true
	next.Err = ""
	next.DialogVisible = false
	s.publish(next)
	s.mutex.Unlock()

	s.RefreshStatistics()
	s.SetVoter(state.Voter)
	return nil
}

//isUserCancelled inspects a signer failure for the "voter declined to sign"
//sub-case. Wallets phrase this differently, "cancel" and "reject" cover the
//ones we have seen.
func isUserCancelled(err error) bool {
	reason := strings.ToLower(err.Error())
	return strings.Contains(reason, "cancel") || strings.Contains(reason, "reject")
}
