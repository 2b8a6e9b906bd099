// Package main implements an interactive command-line client for the news
// API: account registration, login, submission and lookups.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	apiCreateAccount = "/api/create_account"
	apiLogin         = "/api/login"
	apiLogout        = "/api/logout"
	apiSubmit        = "/api/submit"
	apiUser          = "/api/user/"
)

var (
	version   string
	buildDate string
)

// apiResponse covers every envelope the server returns.
type apiResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Auth    string `json:"auth"`
	NewsID  int64  `json:"news_id"`
	Created bool   `json:"created"`
}

// session holds the client state between commands.
type session struct {
	client  *http.Client
	baseURL string
	token   string
	user    string
}

func (s *session) post(path string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("X-Auth-Token", s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *session) authenticate(path, username, pass string) {
	resp, err := s.post(path, map[string]string{"username": username, "password": pass})
	if err != nil {
		fmt.Println("request failed:", err)
		return
	}
	if resp.Status != "ok" {
		fmt.Println(resp.Error)
		return
	}
	s.token = resp.Auth
	s.user = username
	fmt.Println("logged in as", username)
}

func (s *session) submit(title, url, text string) {
	if s.token == "" {
		fmt.Println("login first")
		return
	}
	resp, err := s.post(apiSubmit, map[string]string{"title": title, "url": url, "text": text})
	if err != nil {
		fmt.Println("request failed:", err)
		return
	}
	if resp.Status != "ok" {
		fmt.Println(resp.Error)
		return
	}
	if resp.Created {
		fmt.Println("submitted as news", resp.NewsID)
	} else {
		fmt.Println("already posted as news", resp.NewsID)
	}
}

func (s *session) logout() {
	if s.token == "" {
		fmt.Println("not logged in")
		return
	}
	resp, err := s.post(apiLogout, nil)
	if err != nil {
		fmt.Println("request failed:", err)
		return
	}
	if resp.Status != "ok" {
		fmt.Println(resp.Error)
		return
	}
	s.token = ""
	s.user = ""
	fmt.Println("logged out")
}

func (s *session) profile(username string) {
	resp, err := s.client.Get(s.baseURL + apiUser + username)
	if err != nil {
		fmt.Println("request failed:", err)
		return
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Println("bad response:", err)
		return
	}
	if out["status"] != "ok" {
		fmt.Println(out["error"])
		return
	}
	fmt.Printf("%v (karma %v)\n", out["username"], out["karma"])
}

// repl runs the interactive shell loop.
func repl(s *session) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("newsline> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, register <user> <pass>, login <user> <pass>, logout, submit <title> <url>, post <title> <text...>, user <name>, whoami, exit")
		case "register":
			if len(args) < 3 {
				fmt.Println("Usage: register <user> <pass>")
				continue
			}
			s.authenticate(apiCreateAccount, args[1], args[2])
		case "login":
			if len(args) < 3 {
				fmt.Println("Usage: login <user> <pass>")
				continue
			}
			s.authenticate(apiLogin, args[1], args[2])
		case "logout":
			s.logout()
		case "submit":
			if len(args) < 3 {
				fmt.Println("Usage: submit <title> <url>")
				continue
			}
			s.submit(args[1], args[2], "")
		case "post":
			if len(args) < 3 {
				fmt.Println("Usage: post <title> <text...>")
				continue
			}
			s.submit(args[1], "", strings.Join(args[2:], " "))
		case "user":
			if len(args) < 2 {
				fmt.Println("Usage: user <name>")
				continue
			}
			s.profile(args[1])
		case "whoami":
			if s.user == "" {
				fmt.Println("not logged in")
			} else {
				fmt.Println(s.user)
			}
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help'.")
		}
	}
}

func main() {
	baseURL := flag.String("a", "http://localhost:8080", "server base URL")
	flag.Parse()

	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	repl(&session{client: &http.Client{}, baseURL: *baseURL})
}

// orDefault mirrors cmp.Or for strings; cmp.Or needs Go 1.22 and the
// build toolchain is 1.21.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
