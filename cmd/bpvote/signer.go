package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"bpvote/bpvote"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//printSigner stands in for the external wallet collaborator when running
//headless: it prints the canonical action so it can be signed and broadcast
//out of band. Signing and broadcast are deliberately not this program's job.
type printSigner struct{}

func (p *printSigner) PushAction(action bpvote.VoteAction) error {
	b, err := json.MarshalIndent(action, "", " ")
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", b)
	return nil
}
