package producers

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
	jsoniter "github.com/json-iterator/go"

	"bpvote/bpvote"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//RetryPolicy bounds the producer table scan. The chain endpoint sometimes hands
//back a truncated page, so we keep asking until the row count reaches Expected
//or attempts run out. Whatever we have after the last attempt is returned: this
//is a best-effort aggregation, callers must tolerate an incomplete list.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 5, Delay: time.Second * 2}

const rowLimit = 1000

type tableRowsRequest struct {
	JSON      bool   `json:"json"`
	Code      string `json:"code"`
	Scope     string `json:"scope"`
	Table     string `json:"table"`
	Limit     int64  `json:"limit"`
	Reverse   bool   `json:"reverse"`
	ShowPayer bool   `json:"show_payer"`
}

type tableRowsResponse struct {
	Rows []bpvote.Producer `json:"rows"`
}

//FetchActive returns the currently active producers sorted by descending vote
//weight, retrying with DefaultRetryPolicy until at least expected rows arrive.
func FetchActive(endpoint string, expected int64) []bpvote.Producer {
	return FetchActiveWithPolicy(endpoint, expected, DefaultRetryPolicy)
}

func FetchActiveWithPolicy(endpoint string, expected int64, policy RetryPolicy) []bpvote.Producer {
	var rows []bpvote.Producer
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(policy.Delay)
		}
		fetched, err := fetchProducerTable(endpoint)
		if err != nil {
			//a failed request burns the attempt, it does not abort the loop
			bpvote.LogCLI(err.Error(), 2)
			continue
		}
		rows = fetched
		if int64(len(rows)) >= expected {
			break
		}
	}
	var active []bpvote.Producer
	for _, row := range rows {
		if row.IsActive {
			active = append(active, row)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].VoteWeight() > active[j].VoteWeight()
	})
	return active
}

func fetchProducerTable(endpoint string) ([]bpvote.Producer, error) {
	body, err := json.Marshal(tableRowsRequest{
		JSON:  true,
		Code:  "eosio",
		Scope: "eosio",
		Table: "producers",
		Limit: rowLimit,
	})
	if err != nil {
		return nil, err
	}
	client := &http.Client{}
	req, err := http.NewRequest("POST", endpoint+"/v1/chain/get_table_rows", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("get_table_rows returned status %d", resp.StatusCode)
	}
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var response tableRowsResponse
	err = json.Unmarshal(bodyBytes, &response)
	if err != nil {
		spew.Dump(bodyBytes)
		return nil, err
	}
	return response.Rows, nil
}
