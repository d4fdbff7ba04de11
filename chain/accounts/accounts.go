package accounts

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"bpvote/bpvote"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type accountRequest struct {
	AccountName bpvote.Account `json:"account_name"`
}

type accountResponse struct {
	VoterInfo *voterInfo `json:"voter_info"`
}

type voterInfo struct {
	Producers []bpvote.Account `json:"producers"`
}

//FetchVotedProducers returns the producers the account currently votes for on
//chain. An account with no voter_info has simply never voted: that is an empty
//list, not an error.
func FetchVotedProducers(endpoint string, account bpvote.Account) ([]bpvote.Account, error) {
	body, err := json.Marshal(accountRequest{AccountName: account})
	if err != nil {
		return nil, err
	}
	client := &http.Client{}
	req, err := http.NewRequest("POST", endpoint+"/v1/chain/get_account", bytes.NewReader(body))
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
		return nil, fmt.Errorf("get_account returned status %d", resp.StatusCode)
	}
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var response accountResponse
	err = json.Unmarshal(bodyBytes, &response)
	if err != nil {
		return nil, err
	}
	if response.VoterInfo == nil {
		return []bpvote.Account{}, nil
	}
	return response.VoterInfo.Producers, nil
}
