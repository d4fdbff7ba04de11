package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sasha-s/go-deadlock"

	"bpvote/bpvote"
	"bpvote/chain/accounts"
	"bpvote/chain/producers"
	"bpvote/voting/statistics"
)

//State is one complete, consistent snapshot of the voting session. Every
//mutation replaces the whole value before subscribers see it, so there is no
//partial visibility of a half-updated state. Slices are replaced wholesale and
//never edited in place.
type State struct {
	Statistics     bpvote.ProducerStatistics `json:"statistics"`
	Selection      bpvote.VoteSelection      `json:"selection"`
	Voter          bpvote.Voter              `json:"voter"`
	HasVotedForUs  bool                      `json:"has_voted_for_us"`
	AddRecommended bool                      `json:"add_recommended"`
	Thanks         bool                      `json:"thanks"`
	Err            string                    `json:"error"`
	DialogVisible  bool                      `json:"dialog_visible"`
}

//Options carries everything the session needs to know about the deployment.
//The cmd wires these from the Viper config, tests construct them directly.
type Options struct {
	Endpoint     string
	Target       bpvote.Account
	Suggested    []bpvote.Account
	NotSuggested []bpvote.Account
	ExpectedBPs  int64
}

//OptionsFromConfig reads the recognized config keys.
func OptionsFromConfig() Options {
	conf := bpvote.MakeOrGetConfig()
	return Options{
		Endpoint:     conf.GetString("rpcEndpoint"),
		Target:       conf.GetString("currentProducer"),
		Suggested:    conf.GetStringSlice("suggestedBPs"),
		NotSuggested: conf.GetStringSlice("notSuggestedBPs"),
		ExpectedBPs:  conf.GetInt64("expectedBPs"),
	}
}

//Signer is the external transaction collaborator. Signing and broadcast are
//not this engine's business; we hand over a canonical action and learn whether
//it went through.
type Signer interface {
	PushAction(action bpvote.VoteAction) error
}

type subscriber struct {
	id int64
	fn func(State)
}

//Session is the single mutation point for the voting flow. One voter session
//per instance.
type Session struct {
	mutex       *deadlock.Mutex
	options     Options
	signer      Signer
	state       State
	active      []bpvote.Account
	subscribers []subscriber
	nextSubID   int64
	generation  int64
	rng         *rand.Rand
}

func New(options Options, signer Signer) *Session {
	return &Session{
		mutex:   &deadlock.Mutex{},
		options: options,
		signer:  signer,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

//Seed fixes the random source used for the recommendation fill.
func (s *Session) Seed(seed int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

//Current returns the latest published snapshot.
func (s *Session) Current() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

//Subscribe registers a callback that runs synchronously, in subscription
//order, for every published snapshot. Callbacks run with the session locked:
//triggering another mutation from inside one will deadlock, don't do that.
func (s *Session) Subscribe(fn func(State)) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: s.nextSubID, fn: fn})
	return s.nextSubID
}

func (s *Session) Unsubscribe(id int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	remaining := make([]subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		if sub.id != id {
			remaining = append(remaining, sub)
		}
	}
	s.subscribers = remaining
}

//publish replaces the state and notifies. Callers must hold the mutex.
func (s *Session) publish(next State) {
	s.state = next
	for _, sub := range s.subscribers {
		sub.fn(next)
	}
}

//RefreshStatistics fetches the active producer set and recomputes the ranked
//statistics for the target producer. Overlapping refreshes are serialized by a
//generation counter: only the newest trigger gets to publish, so two racing
//fetches cannot leave stale numbers behind.
func (s *Session) RefreshStatistics() {
	s.mutex.Lock()
	s.generation++
	generation := s.generation
	options := s.options
	s.mutex.Unlock()

	active := producers.FetchActive(options.Endpoint, options.ExpectedBPs)
	computed, err := statistics.Compute(active, options.Target)
	if err != nil {
		//degraded statistics are not user-facing errors, the zeros show instead
		bpvote.LogCLI(err.Error(), 2)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if generation != s.generation {
		return
	}
	owners := make([]bpvote.Account, 0, len(active))
	for _, producer := range active {
		owners = append(owners, producer.Owner)
	}
	s.active = owners
	next := s.state
	next.Statistics = computed
	next.HasVotedForUs = s.hasVotedForTarget(next.Selection.Original)
	s.publish(next)
}

//SetVoter records the authenticated voter and loads their on-chain selection.
func (s *Session) SetVoter(voter bpvote.Voter) {
	s.mutex.Lock()
	endpoint := s.options.Endpoint
	s.mutex.Unlock()

	voted, err := accounts.FetchVotedProducers(endpoint, voter.Name)
	if err != nil {
		//treat a failed account fetch like an account that voted for nothing
		bpvote.LogCLI(err.Error(), 2)
		voted = []bpvote.Account{}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	next := s.state
	next.Voter = voter
	next.Selection = bpvote.VoteSelection{
		Original:    voted,
		Modified:    append([]bpvote.Account{}, voted...),
		RoomForMore: bpvote.MaxSelectionSize - int64(len(voted)),
	}
	next.HasVotedForUs = s.hasVotedForTarget(voted)
	s.publish(next)
}

//ReplaceProducer swaps one entry of the working copy for the target producer.
//This is the interactive precondition for voting when the selection is full.
func (s *Session) ReplaceProducer(old bpvote.Account) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !bpvote.Contains(s.state.Selection.Modified, old) {
		return fmt.Errorf("%s is not part of the current selection", old)
	}
	modified := make([]bpvote.Account, 0, len(s.state.Selection.Modified))
	for _, account := range s.state.Selection.Modified {
		if account == old {
			account = s.options.Target
		}
		if bpvote.Contains(modified, account) {
			continue
		}
		modified = append(modified, account)
	}
	next := s.state
	next.Selection.Modified = modified
	s.publish(next)
	return nil
}

//SetAddRecommended toggles automatic filling of unused slots on submission.
func (s *Session) SetAddRecommended(add bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	next := s.state
	next.AddRecommended = add
	s.publish(next)
}

func (s *Session) ShowDialog() {
	s.setDialog(true)
}

func (s *Session) HideDialog() {
	s.setDialog(false)
}

func (s *Session) setDialog(visible bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	next := s.state
	next.DialogVisible = visible
	s.publish(next)
}

//hasVotedForTarget reports whether the voted list intersected with the active
//producer list contains the target. A vote for a producer that has since gone
//inactive does not count. Callers must hold the mutex.
func (s *Session) hasVotedForTarget(voted []bpvote.Account) bool {
	for _, account := range voted {
		if account == s.options.Target && bpvote.Contains(s.active, account) {
			return true
		}
	}
	return false
}

func (s *Session) fail(message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	next := s.state
	next.Err = message
	s.publish(next)
}
