package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Operator CLI for the ledger admin API. The owner identity travels in the
// X-Caller header; the engine does the authorization.

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "status":
			statusCmd(os.Args[2:])
			return
		case "initialize":
			initializeCmd(os.Args[2:])
			return
		case "automint":
			automintCmd(os.Args[2:])
			return
		case "pause":
			pauseCmd(os.Args[2:])
			return
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "player":
			playerCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <status|initialize|automint|pause|audit|player> [flags]")
	os.Exit(2)
}

func client() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func get(api, path string) {
	resp, err := client().Get(api + path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	dump(resp)
}

func post(api, path, caller string, body any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(http.MethodPost, api+path, &buf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	resp, err := client().Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	dump(resp)
}

func dump(resp *http.Response) {
	b, _ := io.ReadAll(resp.Body)
	var pretty bytes.Buffer
	if json.Indent(&pretty, b, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(b))
	}
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func statusCmd(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	api := fs.String("api", "http://127.0.0.1:8080", "ledgerd api base url")
	_ = fs.Parse(args)
	get(*api, "/v1/status")
}

func initializeCmd(args []string) {
	fs := flag.NewFlagSet("initialize", flag.ExitOnError)
	api := fs.String("api", "http://127.0.0.1:8080", "ledgerd api base url")
	owner := fs.String("owner", "", "owner identity")
	rate := fs.Uint("rate", 10, "max mints per player per minute")
	infinite := fs.Bool("infinite", true, "unbounded supply")
	maxSupply := fs.Uint64("max_supply", 0, "supply cap (when not -infinite)")
	_ = fs.Parse(args)
	if *owner == "" {
		fmt.Fprintln(os.Stderr, "missing -owner")
		os.Exit(2)
	}
	post(*api, "/v1/initialize", *owner, map[string]any{
		"owner":                           *owner,
		"max_mints_per_player_per_minute": uint32(*rate),
		"is_infinite":                     *infinite,
		"max_supply":                      *maxSupply,
	})
}

func automintCmd(args []string) {
	fs := flag.NewFlagSet("automint", flag.ExitOnError)
	api := fs.String("api", "http://127.0.0.1:8080", "ledgerd api base url")
	owner := fs.String("owner", "", "owner identity")
	amount := fs.Uint64("amount", 0, "amount to mint")
	_ = fs.Parse(args)
	if *owner == "" || *amount == 0 {
		fmt.Fprintln(os.Stderr, "missing -owner or -amount")
		os.Exit(2)
	}
	post(*api, "/v1/automint", *owner, map[string]any{"amount": *amount})
}

func pauseCmd(args []string) {
	fs := flag.NewFlagSet("pause", flag.ExitOnError)
	api := fs.String("api", "http://127.0.0.1:8080", "ledgerd api base url")
	owner := fs.String("owner", "", "owner identity")
	_ = fs.Parse(args)
	if *owner == "" {
		fmt.Fprintln(os.Stderr, "missing -owner")
		os.Exit(2)
	}
	post(*api, "/v1/pause", *owner, nil)
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	api := fs.String("api", "http://127.0.0.1:8080", "ledgerd api base url")
	_ = fs.Parse(args)
	get(*api, "/v1/audit")
}

func playerCmd(args []string) {
	fs := flag.NewFlagSet("player", flag.ExitOnError)
	api := fs.String("api", "http://127.0.0.1:8080", "ledgerd api base url")
	id := fs.String("id", "", "player identity")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "missing -id")
		os.Exit(2)
	}
	get(*api, "/v1/player?id="+*id)
}
