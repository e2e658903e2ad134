// wtbadmin is a small operator console: it logs into the operator API and
// prints the service statistics.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/simplylizz/wannatalk/internal/server/services"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "operator API base URL")
	login := flag.String("login", "admin", "operator login")
	flag.Parse()

	fmt.Fprintf(os.Stderr, "Password for %s: ", *login)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatal(err)
	}

	token, err := apiLogin(*addr, *login, string(password))
	if err != nil {
		fatal(err)
	}

	overview, err := fetchStats(*addr, token)
	if err != nil {
		fatal(err)
	}

	printOverview(overview)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func apiLogin(addr, login, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"login": login, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(addr+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %s", resp.Status)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}

func fetchStats(addr, token string) (*services.Overview, error) {
	req, err := http.NewRequest(http.MethodGet, addr+"/api/stats", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats request failed: %s", resp.Status)
	}

	var overview services.Overview
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

func printOverview(o *services.Overview) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "users\t%d\n", o.Users)
	fmt.Fprintf(w, "pending matches\t%d\n", o.Pending)
	fmt.Fprintf(w, "accepted matches\t%d\n", o.Accepted)
	fmt.Fprintf(w, "declined matches\t%d\n", o.Declined)
	for _, lc := range o.TopLanguages {
		fmt.Fprintf(w, "native %s\t%d\n", lc.Language, lc.Count)
	}
	w.Flush()
}
