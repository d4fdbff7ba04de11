package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"

	"bpvote/bpvote"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//mockChain serves both chain endpoints the session talks to.
type mockChain struct {
	producers []bpvote.Producer
	voted     []bpvote.Account
	hasVoted  bool
}

func (m *mockChain) serve(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chain/get_table_rows":
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"rows": m.producers}))
		case "/v1/chain/get_account":
			if !m.hasVoted {
				w.Write([]byte(`{}`))
				return
			}
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
				"voter_info": map[string]interface{}{"producers": m.voted},
			}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func activeProducers(n int) []bpvote.Producer {
	producers := make([]bpvote.Producer, 0, n+1)
	producers = append(producers, bpvote.Producer{Owner: "ourbp", TotalVotes: "50000.0", IsActive: true})
	for i := 0; i < n; i++ {
		producers = append(producers, bpvote.Producer{
			Owner:      fmt.Sprintf("bp%02d", i),
			TotalVotes: fmt.Sprintf("%d.0", (i+2)*100000),
			IsActive:   true,
		})
	}
	return producers
}

type captureSigner struct {
	actions []bpvote.VoteAction
}

func (c *captureSigner) PushAction(action bpvote.VoteAction) error {
	c.actions = append(c.actions, action)
	return nil
}

type failSigner struct {
	err error
}

func (f *failSigner) PushAction(action bpvote.VoteAction) error {
	return f.err
}

func newTestSession(endpoint string, signer Signer) *Session {
	s := New(Options{
		Endpoint: endpoint,
		Target:   "ourbp",
	}, signer)
	s.Seed(42)
	return s
}

func TestSetVoter_NoVoterInfoMeansEmptySelection(t *testing.T) {
	chain := &mockChain{producers: activeProducers(3)}
	srv := chain.serve(t)
	defer srv.Close()

	s := newTestSession(srv.URL, &captureSigner{})
	s.RefreshStatistics()
	s.SetVoter(bpvote.Voter{Name: "somevoter111", Permission: "active"})

	state := s.Current()
	assert.Equal(t, int64(bpvote.MaxSelectionSize), state.Selection.RoomForMore)
	assert.Empty(t, state.Selection.Original)
	assert.False(t, state.HasVotedForUs)
}

func TestHasVotedForUs_RequiresTargetToStillBeActive(t *testing.T) {
	chain := &mockChain{
		producers: activeProducers(3),
		voted:     []bpvote.Account{"bp00", "ourbp"},
		hasVoted:  true,
	}
	srv := chain.serve(t)
	defer srv.Close()

	s := newTestSession(srv.URL, &captureSigner{})
	s.RefreshStatistics()
	s.SetVoter(bpvote.Voter{Name: "somevoter111", Permission: "active"})
	assert.True(t, s.Current().HasVotedForUs)

	// the same vote no longer counts once the target drops out of the active set
	chain.producers = activeProducers(3)[1:]
	s.RefreshStatistics()
	assert.False(t, s.Current().HasVotedForUs)
}

func TestRefreshStatistics_PublishesRankedView(t *testing.T) {
	chain := &mockChain{producers: activeProducers(2)}
	srv := chain.serve(t)
	defer srv.Close()

	s := newTestSession(srv.URL, &captureSigner{})
	s.RefreshStatistics()

	statistics := s.Current().Statistics
	assert.Equal(t, int64(3), statistics.Rank)
	assert.Equal(t, []bpvote.Account{"bp01", "bp00", "ourbp"}, statistics.List)
}

func TestRefreshStatistics_StaleRefreshIsDiscarded(t *testing.T) {
	//the first table scan stalls until released, the second answers instantly
	//with a smaller table, so the older refresh comes back last
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			close(firstArrived)
			<-release
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"rows": activeProducers(2)}))
			return
		}
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"rows": activeProducers(0)}))
	}))
	defer srv.Close()

	s := newTestSession(srv.URL, &captureSigner{})
	done := make(chan struct{})
	go func() {
		s.RefreshStatistics()
		close(done)
	}()
	<-firstArrived

	// a newer refresh starts while the older one is still on the wire
	s.RefreshStatistics()
	assert.Equal(t, []bpvote.Account{"ourbp"}, s.Current().Statistics.List)

	close(release)
	<-done

	// the older refresh finished last; its three-producer snapshot must not
	// overwrite the newer one
	assert.Equal(t, []bpvote.Account{"ourbp"}, s.Current().Statistics.List)
	assert.Equal(t, int64(1), s.Current().Statistics.Rank)
}

func TestSubscribersAreNotifiedInOrder(t *testing.T) {
	chain := &mockChain{producers: activeProducers(1)}
	srv := chain.serve(t)
	defer srv.Close()

	s := newTestSession(srv.URL, &captureSigner{})
	var order []string
	s.Subscribe(func(state State) {
		order = append(order, "first")
	})
	s.Subscribe(func(state State) {
		order = append(order, "second")
	})

	s.SetAddRecommended(true)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.True(t, s.Current().AddRecommended)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := newTestSession("http://127.0.0.1:1", &captureSigner{})
	var notified int
	id := s.Subscribe(func(state State) {
		notified++
	})
	s.SetAddRecommended(true)
	s.Unsubscribe(id)
	s.SetAddRecommended(false)
	assert.Equal(t, 1, notified)
}

func TestSubmitVote_BuildsCanonicalAction(t *testing.T) {
	chain := &mockChain{producers: activeProducers(3)}
	srv := chain.serve(t)
	defer srv.Close()

	signer := &captureSigner{}
	s := newTestSession(srv.URL, signer)
	s.RefreshStatistics()
	s.SetVoter(bpvote.Voter{Name: "somevoter111", Permission: "active"})

	assert.NoError(t, s.SubmitVote())
	assert.Len(t, signer.actions, 1)
	action := signer.actions[0]
	assert.Equal(t, "eosio", action.Account)
	assert.Equal(t, "voteproducer", action.Name)
	assert.Equal(t, []bpvote.PermissionLevel{{Actor: "somevoter111", Permission: "active"}}, action.Authorization)
	assert.Equal(t, "", action.Data.Proxy)
	assert.Equal(t, "somevoter111", action.Data.Voter)
	assert.Equal(t, []bpvote.Account{"ourbp"}, action.Data.Producers)

	state := s.Current()
	assert.True(t, state.Thanks)
	assert.Equal(t, "", state.Err)
}

func TestSubmitVote_UserCancelledIsASilentNoOp(t *testing.T) {
	chain := &mockChain{producers: activeProducers(3)}
	srv := chain.serve(t)
	defer srv.Close()

	s := newTestSession(srv.URL, &failSigner{err: fmt.Errorf("signing request was cancelled by the user")})
	s.RefreshStatistics()
	s.SetVoter(bpvote.Voter{Name: "somevoter111", Permission: "active"})

	assert.NoError(t, s.SubmitVote())
	state := s.Current()
	assert.Equal(t, "", state.Err)
	assert.False(t, state.Thanks)
}

func TestSubmitVote_FailureLandsInTheErrField(t *testing.T) {
	chain := &mockChain{producers: activeProducers(3)}
	srv := chain.serve(t)
	defer srv.Close()

	s := newTestSession(srv.URL, &failSigner{err: fmt.Errorf("transaction exceeded the current CPU usage limit")})
	s.RefreshStatistics()
	s.SetVoter(bpvote.Voter{Name: "somevoter111", Permission: "active"})

	assert.Error(t, s.SubmitVote())
	assert.Equal(t, "transaction exceeded the current CPU usage limit", s.Current().Err)
	assert.False(t, s.Current().Thanks)
}

func TestSubmitVote_RequiresAVoter(t *testing.T) {
	s := newTestSession("http://127.0.0.1:1", &captureSigner{})
	assert.Error(t, s.SubmitVote())
	assert.NotEmpty(t, s.Current().Err)
}

func TestReplaceProducer_SwapsIntoAFullSelection(t *testing.T) {
	voted := make([]bpvote.Account, 0, bpvote.MaxSelectionSize)
	producers := activeProducers(bpvote.MaxSelectionSize)
	for i := 0; i < bpvote.MaxSelectionSize; i++ {
		voted = append(voted, fmt.Sprintf("bp%02d", i))
	}
	chain := &mockChain{producers: producers, voted: voted, hasVoted: true}
	srv := chain.serve(t)
	defer srv.Close()

	signer := &captureSigner{}
	s := newTestSession(srv.URL, signer)
	s.RefreshStatistics()
	s.SetVoter(bpvote.Voter{Name: "somevoter111", Permission: "active"})
	assert.Equal(t, int64(0), s.Current().Selection.RoomForMore)

	// submitting a full selection without a replacement is a contract violation
	assert.Error(t, s.SubmitVote())

	assert.NoError(t, s.ReplaceProducer("bp05"))
	modified := s.Current().Selection.Modified
	assert.Contains(t, modified, "ourbp")
	assert.NotContains(t, modified, "bp05")

	signer.actions = nil
	assert.NoError(t, s.SubmitVote())
	assert.Len(t, signer.actions, 1)
	final := signer.actions[0].Data.Producers
	assert.Len(t, final, bpvote.MaxSelectionSize)
	assert.Contains(t, final, "ourbp")
	assert.NotContains(t, final, "bp05")
}

func TestReplaceProducer_UnknownEntryIsRejected(t *testing.T) {
	s := newTestSession("http://127.0.0.1:1", &captureSigner{})
	assert.Error(t, s.ReplaceProducer("nosuchbp"))
}
