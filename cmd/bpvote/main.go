package main

import (
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/spf13/viper"

	"bpvote/api"
	"bpvote/bpvote"
	"bpvote/voting/session"
)

func main() {
	deadlock.Opts.DisableLockOrderDetection = true
	deadlock.Opts.DeadlockTimeout = time.Millisecond * 30000

	// Various aspects of this application require global and local settings. To keep things
	// clean and tidy we put these settings in a Viper configuration.
	conf := viper.New()

	// Now we initialise this configuration with basic settings that are required on startup.
	bpvote.InitConfig(conf)
	// make the config accessible globally
	bpvote.SetConfig(conf)

	// interrupt: closed by cliListener (or bpvote.Shutdown) when it is time to go.
	// Nothing here holds state that needs a staged teardown, so this is the only
	// channel we wait on.
	interrupt := make(chan struct{})
	bpvote.RegisterShutdownChan(interrupt)

	votingSession := session.New(session.OptionsFromConfig(), &printSigner{})

	go api.Start(votingSession)
	go votingSession.RefreshStatistics()
	go cliListener(interrupt, votingSession)

	bpvote.LogCLI("Waiting for terminate signal, press q to quit", 4)
	<-interrupt
	bpvote.MakeOrGetConfig().Set("firstRun", false)
	err := bpvote.MakeOrGetConfig().WriteConfig()
	if err != nil {
		bpvote.LogCLI(err.Error(), 3)
	}
}
