// mindspace-cli drives a full test session from the terminal: login,
// pick a test, answer every question, submit, and review the result
// and local history. It exercises the same client core the mobile
// screens are built on.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
	"github.com/mindspace-health/mindspace-core/internal/history"
	"github.com/mindspace-health/mindspace-core/internal/identity"
	"github.com/mindspace-health/mindspace-core/internal/kvstore"
	"github.com/mindspace-health/mindspace-core/internal/resultview"
	"github.com/mindspace-health/mindspace-core/internal/session"
)

func main() {
	var (
		baseURL  = flag.String("server", "http://localhost:8080", "MindSpace API base URL")
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password")
		dataDir  = flag.String("data", "", "local store directory (empty: in-memory)")
	)
	flag.Parse()

	ctx := context.Background()

	var store kvstore.Store
	if *dataDir != "" {
		fs, err := kvstore.NewFSStore(*dataDir)
		if err != nil {
			log.Fatalf("open local store: %v", err)
		}
		store = fs
	} else {
		store = kvstore.NewInMemoryStore()
	}

	authn := identity.NewAuthenticator(*baseURL, store)
	provider := authn.Provider()

	if *email != "" {
		claims, err := authn.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("login: %v", err)
		}
		fmt.Printf("logged in as %s (%s)\n", *email, claims.Role)
	} else if provider.Role(ctx) == "" {
		log.Fatal("no stored login; pass -email and -password")
	}

	api := catalog.NewClient(*baseURL, provider.Token)
	hist := history.NewStore(store, provider)
	in := bufio.NewScanner(os.Stdin)

	role := provider.Role(ctx)
	tests, _, err := api.ListTests(ctx, 1, 50, role, "")
	if err != nil {
		log.Fatalf("list tests: %v", err)
	}
	if len(tests) == 0 {
		fmt.Printf("no tests available for role %q\n", role)
		return
	}
	fmt.Println("\nAvailable tests:")
	for _, t := range tests {
		fmt.Printf("  [%d] %s (%s) — %s\n", t.ID, t.Title, t.TestCategory.Name, t.Description)
	}
	testID := promptInt(in, "test id to take")
	var testName string
	for _, t := range tests {
		if t.ID == testID {
			testName = t.Title
		}
	}

	sess := session.New(testID, testName, api, provider, hist, store)
	if err := sess.Start(ctx); err != nil {
		log.Fatalf("%s", sess.FailureMessage())
	}
	if err := sess.Resume(ctx); err == nil && len(sess.Answers()) > 0 {
		fmt.Printf("restored %d earlier answer(s)\n", len(sess.Answers()))
	}

	def := sess.Definition()
	fmt.Printf("\n%s\n%s\n", def.Title, def.Description)
	for _, q := range def.Questions {
		fmt.Printf("\n%s\n", q.Content)
		for _, opt := range def.OptionsFor(q) {
			fmt.Printf("  [%d] %s\n", opt.ID, opt.DisplayedText)
		}
		for {
			optID := promptInt(in, "option")
			if err := sess.SelectOption(ctx, q.ID, optID); err != nil {
				fmt.Printf("  %v\n", err)
				continue
			}
			break
		}
	}

	if err := sess.Submit(ctx); err != nil {
		log.Fatalf("submit: %v", err)
	}
	total, result, _ := sess.Result()
	fmt.Printf("\nSubmitted. Total score: %d, result: %s\n", total, result)

	view, err := resultview.NewAdapter(hist, api).Build(ctx, testID)
	if err == nil {
		for _, d := range view.ResponseDetails {
			fmt.Printf("  %s — %s (%d)\n", d.QuestionContent, d.AnswerText, d.Score)
		}
	}

	fmt.Println("\nYour test history:")
	for i, rec := range hist.List(ctx) {
		fmt.Printf("  %d. %s — %d (%s) at %s\n", i+1, rec.TestName, rec.TotalScore, rec.Result, rec.Timestamp)
	}
}

func promptInt(in *bufio.Scanner, label string) int {
	for {
		fmt.Printf("%s> ", label)
		if !in.Scan() {
			os.Exit(0)
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil {
			return n
		}
		fmt.Println("  enter a number")
	}
}
