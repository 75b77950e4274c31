package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

func TestSubmitAcceptsWhitelistedURL(t *testing.T) {
	repo := newMemoryRepo()
	queue := &stubQueue{}
	s := NewSourceSubmitter(repo, queue, nil)

	results, err := s.Submit(context.Background(), []ports.SourceSubmission{
		{URL: "https://www.hdb.gov.sg/renting-a-flat", Title: "Renting a flat"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(results) != 1 || !results[0].Accepted {
		t.Fatalf("expected accepted result, got %+v", results)
	}
	if len(queue.published) != 1 || queue.published[0] != "https://www.hdb.gov.sg/renting-a-flat" {
		t.Fatalf("expected publish, got %v", queue.published)
	}

	doc, err := repo.GetByURL(context.Background(), "https://www.hdb.gov.sg/renting-a-flat")
	if err != nil {
		t.Fatalf("GetByURL() error = %v", err)
	}
	if doc.Status != domain.StatusQueued {
		t.Fatalf("expected queued status, got %s", doc.Status)
	}
	if doc.SourceDomain != "www.hdb.gov.sg" {
		t.Fatalf("unexpected source domain %q", doc.SourceDomain)
	}
}

func TestSubmitRejectsNonWhitelistedDomain(t *testing.T) {
	repo := newMemoryRepo()
	queue := &stubQueue{}
	s := NewSourceSubmitter(repo, queue, nil)

	results, err := s.Submit(context.Background(), []ports.SourceSubmission{
		{URL: "https://www.propertyguru.com.sg/guide"},
		{URL: "https://evil-gov.sg.attacker.com/page"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	for _, r := range results {
		if r.Accepted {
			t.Fatalf("expected rejection for %s", r.URL)
		}
		if r.Reason != "domain not whitelisted" {
			t.Fatalf("unexpected reason %q", r.Reason)
		}
	}
	if len(queue.published) != 0 {
		t.Fatalf("nothing should be published, got %v", queue.published)
	}
}

func TestSubmitSameURLTwiceIsRejected(t *testing.T) {
	repo := newMemoryRepo()
	queue := &stubQueue{}
	s := NewSourceSubmitter(repo, queue, nil)
	url := "https://www.cea.gov.sg/consumers/renting"

	first, _ := s.Submit(context.Background(), []ports.SourceSubmission{{URL: url}})
	second, _ := s.Submit(context.Background(), []ports.SourceSubmission{{URL: url}})

	if !first[0].Accepted {
		t.Fatalf("first submission should be accepted: %+v", first[0])
	}
	if second[0].Accepted {
		t.Fatalf("second submission should be rejected: %+v", second[0])
	}
	if second[0].Reason != "already submitted" {
		t.Fatalf("unexpected reason %q", second[0].Reason)
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected single publish, got %v", queue.published)
	}
}

func TestSubmitFailedSourceIsRequeued(t *testing.T) {
	repo := newMemoryRepo()
	url := "https://www.ura.gov.sg/rental"
	repo.docs[url] = &domain.SourceDocument{URL: url, Status: domain.StatusFailed, Error: "fetch timeout"}
	queue := &stubQueue{}
	s := NewSourceSubmitter(repo, queue, nil)

	results, err := s.Submit(context.Background(), []ports.SourceSubmission{{URL: url}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !results[0].Accepted {
		t.Fatalf("failed source should be requeued, got %+v", results[0])
	}
	if repo.docs[url].Status != domain.StatusQueued {
		t.Fatalf("expected queued status, got %s", repo.docs[url].Status)
	}
}

func TestSubmitEnqueueFailureReported(t *testing.T) {
	repo := newMemoryRepo()
	queue := &stubQueue{fail: errors.New("nats down")}
	s := NewSourceSubmitter(repo, queue, nil)

	results, err := s.Submit(context.Background(), []ports.SourceSubmission{
		{URL: "https://www.hdb.gov.sg/page"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if results[0].Accepted || results[0].Reason != "enqueue failed" {
		t.Fatalf("expected enqueue failure, got %+v", results[0])
	}
}

func TestSubmitEmptyURLRejected(t *testing.T) {
	s := NewSourceSubmitter(newMemoryRepo(), &stubQueue{}, nil)
	results, err := s.Submit(context.Background(), []ports.SourceSubmission{{URL: "  "}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if results[0].Accepted || results[0].Reason != "empty url" {
		t.Fatalf("expected empty url rejection, got %+v", results[0])
	}
}
