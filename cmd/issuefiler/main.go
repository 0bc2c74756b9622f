// Command issuefiler reads an image-audit report and files a tracking issue
// when it is non-empty.
//
// Usage:
//
//	issuefiler [-report missing.json] [-repo owner/name]
//
// Requires GITHUB_TOKEN to be set. ISSUE_LABELS and ISSUE_ASSIGNEES may hold
// comma-separated label and assignee lists for the filed issue. An empty
// report files nothing and exits zero.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mgoto/recipelog/internal/imagecheck"
	"github.com/mgoto/recipelog/internal/issuefiler"
)

func main() {
	reportPath := flag.String("report", "missing.json", "path to the audit report")
	repo := flag.String("repo", os.Getenv("GITHUB_REPOSITORY"), "repository as owner/name")
	flag.Parse()

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		log.Fatal("GITHUB_TOKEN environment variable is required")
	}
	if *repo == "" {
		log.Fatal("repository is required (-repo or GITHUB_REPOSITORY)")
	}

	missing, err := imagecheck.ReadReport(*reportPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("no report found, nothing to file")
			return
		}
		log.Fatalf("issuefiler: %v", err)
	}
	if len(missing) == 0 {
		fmt.Println("report is empty, nothing to file")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := issuefiler.New(*repo, token)
	if labels := splitList(os.Getenv("ISSUE_LABELS")); len(labels) > 0 {
		client = client.WithLabels(labels)
	}
	if assignees := splitList(os.Getenv("ISSUE_ASSIGNEES")); len(assignees) > 0 {
		client = client.WithAssignees(assignees)
	}

	url, err := client.FileReport(ctx, missing)
	if err != nil {
		log.Fatalf("issuefiler: %v", err)
	}
	fmt.Printf("filed issue: %s\n", url)
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
