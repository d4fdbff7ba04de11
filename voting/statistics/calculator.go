package statistics

import (
	"errors"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"bpvote/bpvote"
)

//ErrProducerNotFound reports that the target producer is absent from the active
//set. The zeroed statistics value is returned alongside it so that callers who
//prefer the degraded display can keep it, while still being able to tell this
//apart from a producer that exists with zero votes.
var ErrProducerNotFound = errors.New("target producer is not in the active set")

//voteScalingDivisor converts raw on-chain vote weight into a vote count.
const voteScalingDivisor = 10000

//Compute ranks the target producer within the active subset of the provided
//producers. An empty producer set yields the zero value and no error.
func Compute(producers []bpvote.Producer, target bpvote.Account) (bpvote.ProducerStatistics, error) {
	var active []bpvote.Producer
	for _, producer := range producers {
		if producer.IsActive {
			active = append(active, producer)
		}
	}
	if len(active) == 0 {
		return bpvote.ProducerStatistics{}, nil
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].VoteWeight() > active[j].VoteWeight()
	})
	weights := make([]float64, 0, len(active))
	list := make([]bpvote.Account, 0, len(active))
	var rank int64
	var targetWeight float64
	for i, producer := range active {
		weights = append(weights, producer.VoteWeight())
		list = append(list, producer.Owner)
		if producer.Owner == target {
			rank = int64(i) + 1
			targetWeight = producer.VoteWeight()
		}
	}
	if rank == 0 {
		return bpvote.ProducerStatistics{}, ErrProducerNotFound
	}
	total, err := stats.Sum(weights)
	if err != nil {
		return bpvote.ProducerStatistics{}, err
	}
	return bpvote.ProducerStatistics{
		Rank:       rank,
		Votes:      int64(math.Round(targetWeight / voteScalingDivisor)),
		TotalVotes: int64(math.Round(total)),
		Percentage: bpvote.Percentage(targetWeight, total),
		List:       list,
	}, nil
}
