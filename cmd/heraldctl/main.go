// Package main provides the herald control CLI.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/herald-audio/herald/internal/api/httpctl"
)

var (
	app    = kingpin.New("heraldctl", "herald playback control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8090").String()

	// state command
	stateCmd = app.Command("state", "Show current player state")

	// search command
	searchCmd   = app.Command("search", "Search the catalog")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()

	// play command
	playCmd   = app.Command("play", "Play a single item")
	playID    = playCmd.Arg("item-id", "Catalog item ID").Required().String()
	playTitle = playCmd.Arg("title", "Display title (optional)").String()

	// playlist command
	playlistCmd = app.Command("playlist", "Play a playlist")
	playlistID  = playlistCmd.Arg("playlist-id", "Catalog playlist ID").Required().String()

	// next command
	nextCmd = app.Command("next", "Skip to the next playlist item")

	// stop command
	stopCmd = app.Command("stop", "Stop playback")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Execute command
	switch command {
	case stateCmd.FullCommand():
		showState()
	case searchCmd.FullCommand():
		search(*searchQuery)
	case playCmd.FullCommand():
		play(*playID, *playTitle)
	case playlistCmd.FullCommand():
		playPlaylist(*playlistID)
	case nextCmd.FullCommand():
		post("/api/next", nil)
		fmt.Println("Skipping to next item")
	case stopCmd.FullCommand():
		post("/api/stop", nil)
		fmt.Println("Playback stopped")
	}
}

func showState() {
	var state httpctl.StateResponse
	get("/api/state", &state)

	fmt.Printf("Session:  %s\n", state.SessionID)
	fmt.Printf("Phase:    %s\n", state.Phase)
	if state.Title != "" {
		fmt.Printf("Title:    %s\n", state.Title)
	}
	if state.PlaylistTitle != "" {
		fmt.Printf("Playlist: %s (%d/%d)\n", state.PlaylistTitle, state.Position, state.Total)
	}
	if state.LastError != "" {
		fmt.Printf("Error:    %s\n", state.LastError)
	}
}

func search(query string) {
	var resp httpctl.SearchResponse
	get("/api/search?q="+url.QueryEscape(query), &resp)

	if len(resp.Items) == 0 {
		fmt.Println("No results")
		return
	}
	for i, item := range resp.Items {
		label := item.Title
		if item.DurationLabel != "" {
			label = fmt.Sprintf("%s [%s]", label, item.DurationLabel)
		}
		fmt.Printf("%2d. %s  (id: %s)\n", i+1, label, item.ID)
	}
}

func play(id, title string) {
	post("/api/select", httpctl.SelectRequest{ID: id, Title: title})
	fmt.Printf("Playing item %s\n", id)
}

func playPlaylist(id string) {
	post("/api/playlist", httpctl.PlaylistRequest{ID: id})
	fmt.Printf("Playing playlist %s\n", id)
}

func get(path string, out any) {
	resp, err := http.Get(*server + path)
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()
	decode(resp, out)
}

func post(path string, body any) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fail(err)
		}
		reader = bytes.NewReader(data)
	}
	resp, err := http.Post(*server+path, "application/json", reader)
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()
	decode(resp, nil)
}

// decode reads the response, exiting with the server's error message on a
// non-2xx status.
func decode(resp *http.Response, out any) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(err)
	}
	if resp.StatusCode >= 300 {
		var apiErr httpctl.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			fail(fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode))
		}
		fail(fmt.Errorf("server returned status %d", resp.StatusCode))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			fail(err)
		}
	}
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
