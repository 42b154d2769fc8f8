package jobads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/llm"
)

// maxInputLength caps how much posting text is sent to the model.
const maxInputLength = 20000

var whitespaceRE = regexp.MustCompile(`\s+`)

// Service contains business logic for job ads.
type Service struct {
	Repo       Repo
	LLM        llm.Client
	HTTPClient *http.Client
}

type parsedAd struct {
	JobTitle     string   `json:"jobTitle"`
	CompanyName  string   `json:"companyName"`
	PostedAt     string   `json:"postedAt"`
	Location     string   `json:"location"`
	Summary      string   `json:"summary"`
	Requirements []string `json:"requirements"`
	VerbatimText string   `json:"verbatimText"`
}

// Parse structures a job posting from raw text or a URL and saves it.
func (s *Service) Parse(ctx context.Context, userID, rawText, sourceURL string) (JobAd, error) {
	if userID == "" {
		return JobAd{}, ErrInvalidInput
	}

	rawText = strings.TrimSpace(rawText)
	if rawText == "" && sourceURL != "" {
		fetched, err := s.fetchURL(ctx, sourceURL)
		if err != nil {
			return JobAd{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		rawText = fetched
	}
	if rawText == "" {
		return JobAd{}, fmt.Errorf("%w: rawText or url is required", ErrInvalidInput)
	}

	inputText := rawText
	if len(inputText) > maxInputLength {
		inputText = inputText[:maxInputLength]
	}

	raw, err := s.LLM.ParseJobAd(ctx, llm.ParseJobAdInput{
		AdText:        inputText,
		SourceURL:     sourceURL,
		PromptVersion: "v1",
	})
	if err != nil {
		return JobAd{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	var parsed parsedAd
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return JobAd{}, fmt.Errorf("%w: invalid model output: %v", ErrParseFailed, err)
	}
	if parsed.VerbatimText == "" {
		parsed.VerbatimText = rawText
	}
	if parsed.Requirements == nil {
		parsed.Requirements = []string{}
	}

	ad := JobAd{
		ID:           uuid.NewString(),
		UserID:       userID,
		SourceURL:    sourceURL,
		JobTitle:     parsed.JobTitle,
		CompanyName:  parsed.CompanyName,
		PostedAt:     parsed.PostedAt,
		Location:     parsed.Location,
		Summary:      parsed.Summary,
		Requirements: parsed.Requirements,
		VerbatimText: parsed.VerbatimText,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, ad); err != nil {
		return JobAd{}, err
	}
	return ad, nil
}

// Get returns a saved job ad.
func (s *Service) Get(ctx context.Context, userID, adID string) (JobAd, error) {
	if userID == "" || adID == "" {
		return JobAd{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, adID)
}

// List returns the user's saved job ads, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]JobAd, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes a saved job ad.
func (s *Service) Delete(ctx context.Context, userID, adID string) error {
	if userID == "" || adID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, adID)
}

func (s *Service) fetchURL(ctx context.Context, url string) (string, error) {
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(string(body), " ")), nil
}
