package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

type createRequest struct {
	DisplayName string           `json:"displayName"`
	Locale      string           `json:"locale"`
	ContentURLs []string         `json:"contentUrls"`
	Properties  createProperties `json:"properties"`
}

type createProperties struct {
	DiarizationEnabled         bool   `json:"diarizationEnabled"`
	PunctuationMode            string `json:"punctuationMode,omitempty"`
	WordLevelTimestampsEnabled bool   `json:"wordLevelTimestampsEnabled"`
}

type jobResponse struct {
	Self   string `json:"self"`
	Status string `json:"status"`
	Links  struct {
		Files string `json:"files"`
	} `json:"links"`
	Properties struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"properties"`
}

type filesResponse struct {
	Values []struct {
		Kind  string `json:"kind"`
		Links struct {
			ContentURL string `json:"contentUrl"`
		} `json:"links"`
	} `json:"values"`
}

type contentResponse struct {
	CombinedRecognizedPhrases []struct {
		Display string `json:"display"`
	} `json:"combinedRecognizedPhrases"`
}

func (c *implClient) Submit(ctx context.Context, req Request) (models.TranscriptionJob, error) {
	body, err := json.Marshal(createRequest{
		DisplayName: "Transcription",
		Locale:      req.Language,
		ContentURLs: []string{req.MediaURL},
		Properties: createProperties{
			DiarizationEnabled:         req.Diarization,
			PunctuationMode:            req.PunctuationMode,
			WordLevelTimestampsEnabled: true,
		},
	})
	if err != nil {
		return models.TranscriptionJob{}, fmt.Errorf("%w: encode request: %w", ErrSubmission, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+apiPath, bytes.NewReader(body))
	if err != nil {
		return models.TranscriptionJob{}, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	c.authorize(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.TranscriptionJob{}, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return models.TranscriptionJob{}, fmt.Errorf("%w: status %d: %s", ErrSubmission, resp.StatusCode, readSnippet(resp.Body))
	}

	var created jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.TranscriptionJob{}, fmt.Errorf("%w: decode response: %w", ErrSubmission, err)
	}
	if created.Self == "" {
		return models.TranscriptionJob{}, fmt.Errorf("%w: response has no job url", ErrSubmission)
	}

	c.logger.Info(ctx, "Transcription job submitted: %s", created.Self)
	return models.TranscriptionJob{
		JobURL: created.Self,
		Status: models.TranscriptionNotStarted,
	}, nil
}

func (c *implClient) Poll(ctx context.Context, job models.TranscriptionJob) (models.TranscriptionJob, error) {
	var status jobResponse
	if err := c.getJSON(ctx, job.JobURL, true, &status); err != nil {
		return job, fmt.Errorf("%w: %w", ErrStatus, err)
	}

	job.Status = models.TranscriptionStatus(status.Status)
	if job.Status == models.TranscriptionSucceeded {
		job.ResultURL = status.Links.Files
	}
	if job.Status == models.TranscriptionFailed && status.Properties.Error != nil {
		c.logger.Warn(ctx, "Transcription job failed remotely: %s: %s",
			status.Properties.Error.Code, status.Properties.Error.Message)
	}
	return job, nil
}

// AwaitCompletion sleeps before every check, so the first poll happens after
// one interval. Timing out only abandons local waiting; the remote job keeps running.
func (c *implClient) AwaitCompletion(ctx context.Context, job models.TranscriptionJob, maxAttempts int, interval time.Duration) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.clock.After(interval):
		}

		current, err := c.Poll(ctx, job)
		if err != nil {
			lastErr = err
			c.logger.Warn(ctx, "Status check %d/%d failed: %v", attempt, maxAttempts, err)
			continue
		}
		job = current

		c.logger.Debug(ctx, "Status check %d/%d: %s", attempt, maxAttempts, job.Status)

		if !job.Status.Terminal() {
			continue
		}
		if job.Status != models.TranscriptionSucceeded {
			return "", fmt.Errorf("%w: %s", ErrJobFailed, job.Status)
		}
		if job.ResultURL == "" {
			return "", fmt.Errorf("%w: succeeded job has no files link", ErrResultUnavailable)
		}
		return job.ResultURL, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w after %d attempts: %w", ErrJobTimeout, maxAttempts, lastErr)
	}
	return "", fmt.Errorf("%w after %d attempts", ErrJobTimeout, maxAttempts)
}

func (c *implClient) FetchResult(ctx context.Context, resultListingURL string) (string, error) {
	var files filesResponse
	if err := c.getJSON(ctx, resultListingURL, true, &files); err != nil {
		return "", fmt.Errorf("%w: listing: %w", ErrResultUnavailable, err)
	}
	if len(files.Values) == 0 {
		return "", fmt.Errorf("%w: listing is empty", ErrResultUnavailable)
	}

	contentURL := files.Values[0].Links.ContentURL
	for _, v := range files.Values {
		if v.Kind == "Transcription" {
			contentURL = v.Links.ContentURL
			break
		}
	}
	if contentURL == "" {
		return "", fmt.Errorf("%w: listing has no content url", ErrResultUnavailable)
	}

	// content urls carry their own SAS token
	var content contentResponse
	if err := c.getJSON(ctx, contentURL, false, &content); err != nil {
		return "", fmt.Errorf("%w: content: %w", ErrResultUnavailable, err)
	}
	if len(content.CombinedRecognizedPhrases) == 0 {
		return "", fmt.Errorf("%w: no recognized phrases", ErrResultUnavailable)
	}

	return content.CombinedRecognizedPhrases[0].Display, nil
}

func (c *implClient) getJSON(ctx context.Context, url string, auth bool, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if auth {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (c *implClient) authorize(req *http.Request) {
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}
