package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/cors"

	"bpvote/bpvote"
	"bpvote/voting/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//Handler builds the frontend-facing surface: current statistics and state as
//JSON, and a websocket feed of every state snapshot.
func Handler(votingSession *session.Session) http.Handler {
	router := mux.NewRouter()
	// catch the websocket call before anything else
	router.Path("/ws").Headers("Upgrade", "websocket").HandlerFunc(handleWebsocket(votingSession))
	router.HandleFunc("/statistics", handleStatistics(votingSession)).Methods(http.MethodGet)
	router.HandleFunc("/state", handleState(votingSession)).Methods(http.MethodGet)
	return cors.Default().Handler(router)
}

//Start serves the API for a frontend to observe the voting session.
func Start(votingSession *session.Session) {
	bpvote.LogCLI("Starting the voting session API", 4)
	srv := &http.Server{
		Handler:           Handler(votingSession),
		Addr:              bpvote.MakeOrGetConfig().GetString("apiAddr"),
		WriteTimeout:      2 * time.Second,
		ReadTimeout:       2 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}
	bpvote.LogCLI("listening on "+srv.Addr, 4)
	err := srv.ListenAndServe()
	if err != nil {
		bpvote.LogCLI(err.Error(), 0)
	}
}

func handleStatistics(votingSession *session.Session) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, votingSession.Current().Statistics)
	}
}

func handleState(votingSession *session.Session) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, votingSession.Current())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(v)
	if err != nil {
		bpvote.LogCLI(err.Error(), 1)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write(b)
}
