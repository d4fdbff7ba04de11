package bpvote

import (
	"github.com/spf13/cast"
)

//MaxSelectionSize is the protocol-level cap on simultaneous producer votes.
const MaxSelectionSize = 30

type Account = string

//Producer is one row of the eosio producers table. Immutable once fetched for a given query cycle.
type Producer struct {
	Owner      Account `json:"owner"`
	TotalVotes string  `json:"total_votes"`
	IsActive   bool    `json:"is_active"`
}

//VoteWeight parses the raw decimal vote weight. The chain pads these strings with
//more precision than a float64 holds, which is close enough for ranking.
func (p Producer) VoteWeight() float64 {
	weight, err := cast.ToFloat64E(p.TotalVotes)
	if err != nil {
		LogCLI(err.Error(), 3)
	}
	return weight
}

//ProducerStatistics is the ranked view of one target producer within the active set.
//Rank is the 1-based position within List, or 0 when the target is absent.
type ProducerStatistics struct {
	Rank       int64     `json:"rank"`
	Votes      int64     `json:"votes"`
	TotalVotes int64     `json:"total_votes"`
	Percentage string    `json:"percentage"`
	List       []Account `json:"list"`
}

//VoteSelection tracks what the voter has recorded on-chain and the working copy
//they are editing. Modified is always an edit of Original with at most
//MaxSelectionSize entries.
type VoteSelection struct {
	Original    []Account `json:"original"`
	Modified    []Account `json:"modified"`
	RoomForMore int64     `json:"room_for_more"`
}

//Voter is supplied by the identity collaborator. Opaque to this engine.
type Voter struct {
	Name       Account `json:"name"`
	Permission string  `json:"permission"`
}

type PermissionLevel struct {
	Actor      Account `json:"actor"`
	Permission string  `json:"permission"`
}

type VoteActionData struct {
	Proxy     Account   `json:"proxy"`
	Voter     Account   `json:"voter"`
	Producers []Account `json:"producers"`
}

//VoteAction is the action descriptor handed to the external transaction signer.
type VoteAction struct {
	Account       Account           `json:"account"`
	Name          string            `json:"name"`
	Authorization []PermissionLevel `json:"authorization"`
	Data          VoteActionData    `json:"data"`
}

//NewVoteAction builds the canonical voteproducer action for the given voter and
//final producer set. Producers must already be reconciled and sorted.
func NewVoteAction(voter Voter, producers []Account) VoteAction {
	return VoteAction{
		Account: "eosio",
		Name:    "voteproducer",
		Authorization: []PermissionLevel{
			{Actor: voter.Name, Permission: voter.Permission},
		},
		Data: VoteActionData{
			Proxy:     "",
			Voter:     voter.Name,
			Producers: producers,
		},
	}
}
