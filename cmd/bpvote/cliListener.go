package main

import (
	"fmt"

	"github.com/eiannone/keyboard"

	"bpvote/bpvote"
	"bpvote/voting/session"
)

// cliListener is a cheap and nasty way to speed up development cycles. It listens for keypresses and executes commands.
func cliListener(interrupt chan struct{}, votingSession *session.Session) {
	fmt.Println("Press:\nq: to quit\ns: to print statistics\nl: to print the current selection\nr: to refresh statistics\nSee cliListener.go for more")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			panic(err)
		}
		str := string(r)
		switch str {
		default:
			if k == 13 {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to any test procedures. See main.cliListener for more details.")
		case "q":
			bpvote.Shutdown()
			return //if we do not return here, we cannot ctrl+c in case of errors during shutdown
		case "s":
			fmt.Printf("%#v\n", votingSession.Current().Statistics)
		case "l":
			fmt.Printf("%#v\n", votingSession.Current().Selection)
		case "r":
			go votingSession.RefreshStatistics()
		case "v":
			voter := bpvote.Voter{
				Name:       bpvote.MakeOrGetConfig().GetString("voterName"),
				Permission: bpvote.MakeOrGetConfig().GetString("voterPermission"),
			}
			if len(voter.Name) == 0 {
				fmt.Println("set voterName and voterPermission in the config first")
				break
			}
			votingSession.SetVoter(voter)
		case "p":
			go func() {
				if err := votingSession.SubmitVote(); err != nil {
					bpvote.LogCLI(err.Error(), 2)
				}
			}()
		}
	}
}
