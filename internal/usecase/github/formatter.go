// Package github turns source-control webhook deliveries into one-line
// notification messages.
package github

import (
	"fmt"

	gh "github.com/google/go-github/v66/github"
)

const maxCommentLength = 200

// Event type header values with a formatter
const (
	EventPullRequest       = "pull_request"
	EventPullRequestReview = "pull_request_review"
	EventIssueComment      = "issue_comment"
)

// Kind enumerates the deliveries worth announcing
type Kind int

const (
	// KindUnrecognized suppresses notification
	KindUnrecognized Kind = iota
	KindPullRequestOpened
	KindPullRequestMerged
	KindPullRequestClosed
	KindReviewApproved
	KindReviewChangesRequested
	KindCommentCreated
)

var kindNames = map[Kind]string{
	KindUnrecognized:           "unrecognized",
	KindPullRequestOpened:      "pull_request_opened",
	KindPullRequestMerged:      "pull_request_merged",
	KindPullRequestClosed:      "pull_request_closed",
	KindReviewApproved:         "review_approved",
	KindReviewChangesRequested: "review_changes_requested",
	KindCommentCreated:         "comment_created",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Notification is a classified delivery
type Notification struct {
	Kind   Kind
	Number int
	Title  string
	Repo   string
	Actor  string
	Body   string
}

// Classify parses payload for eventType and decides what, if anything, to
// announce. Event types without a formatter are unrecognized without being
// parsed.
func Classify(eventType string, payload []byte) (Notification, error) {
	switch eventType {
	case EventPullRequest, EventPullRequestReview, EventIssueComment:
	default:
		return Notification{}, nil
	}

	parsed, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		return Notification{}, fmt.Errorf("failed to parse %s payload: %w", eventType, err)
	}

	switch e := parsed.(type) {
	case *gh.PullRequestEvent:
		return classifyPullRequest(e), nil
	case *gh.PullRequestReviewEvent:
		return classifyReview(e), nil
	case *gh.IssueCommentEvent:
		return classifyComment(e), nil
	default:
		return Notification{}, nil
	}
}

func classifyPullRequest(e *gh.PullRequestEvent) Notification {
	pr := e.GetPullRequest()
	n := Notification{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Repo:   e.GetRepo().GetFullName(),
		Actor:  pr.GetUser().GetLogin(),
	}

	switch {
	case e.GetAction() == "opened":
		n.Kind = KindPullRequestOpened
	case e.GetAction() == "closed" && pr.GetMerged():
		n.Kind = KindPullRequestMerged
	case e.GetAction() == "closed":
		n.Kind = KindPullRequestClosed
	}
	return n
}

func classifyReview(e *gh.PullRequestReviewEvent) Notification {
	review := e.GetReview()
	n := Notification{
		Number: e.GetPullRequest().GetNumber(),
		Title:  e.GetPullRequest().GetTitle(),
		Repo:   e.GetRepo().GetFullName(),
		Actor:  review.GetUser().GetLogin(),
	}

	switch review.GetState() {
	case "approved":
		n.Kind = KindReviewApproved
	case "changes_requested":
		n.Kind = KindReviewChangesRequested
	}
	return n
}

func classifyComment(e *gh.IssueCommentEvent) Notification {
	n := Notification{
		Number: e.GetIssue().GetNumber(),
		Title:  e.GetIssue().GetTitle(),
		Repo:   e.GetRepo().GetFullName(),
		Actor:  e.GetComment().GetUser().GetLogin(),
		Body:   truncate(e.GetComment().GetBody(), maxCommentLength),
	}

	if e.GetAction() == "created" {
		n.Kind = KindCommentCreated
	}
	return n
}

// Message renders the notification. Unrecognized deliveries render empty.
func (n Notification) Message() string {
	switch n.Kind {
	case KindPullRequestOpened:
		return fmt.Sprintf("New PR #%d \"%s\" opened in %s by %s", n.Number, n.Title, n.Repo, n.Actor)
	case KindPullRequestMerged:
		return fmt.Sprintf("PR #%d \"%s\" merged in %s", n.Number, n.Title, n.Repo)
	case KindPullRequestClosed:
		return fmt.Sprintf("PR #%d \"%s\" closed in %s", n.Number, n.Title, n.Repo)
	case KindReviewApproved:
		return fmt.Sprintf("PR #%d \"%s\" in %s was approved by %s", n.Number, n.Title, n.Repo, n.Actor)
	case KindReviewChangesRequested:
		return fmt.Sprintf("PR #%d \"%s\" in %s: %s requested changes", n.Number, n.Title, n.Repo, n.Actor)
	case KindCommentCreated:
		return fmt.Sprintf("%s commented on #%d \"%s\" in %s: %s", n.Actor, n.Number, n.Title, n.Repo, n.Body)
	case KindUnrecognized:
		return ""
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
