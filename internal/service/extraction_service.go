package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/mathx-agent/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ExtractedQuestion is one question pulled out of a PDF. Body and Choices
// are markup strings using dollar delimiters: inline math $...$, display
// math $$...$$. AnswerLabel is a positional label ("A", "B", ...) into
// Choices.
type ExtractedQuestion struct {
	Index       int      `json:"index"`
	Body        string   `json:"body"`
	Choices     []string `json:"choices"`
	AnswerLabel string   `json:"answer"`
}

type ExtractionService interface {
	Extract(ctx context.Context, pdfURL string) ([]ExtractedQuestion, error)
}

type geminiExtractionService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewExtractionService(cfg *config.Config) (ExtractionService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. ExtractionService will be non-functional.")
		return &geminiExtractionService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	model.ResponseMIMEType = "application/json"
	return &geminiExtractionService{client: model, cfg: cfg}, nil
}

const extractionPrompt = `You are provided with a PDF file containing multiple-choice quiz questions.
Extract every question with its options and its answer. Convert all mathematical
notation to LaTeX, and always use dollar delimiters:

Inline math: use single dollars: $ ... $
Display math: use double dollars: $$ ... $$

Example:
Question:
If one of the diameters of the circle $x^{2} + y^{2} - 4x + 6y - 12 = 0$ is a chord of circle S (centre (-3,2)), then the radius of S is:

Options:
A. $5$
B. $\sqrt{5}$
C. $5\sqrt{3}$
D. $10$

Answer:
C

Respond with JSON of the shape:
{"questions": [{"index": 1, "body": "...", "choices": ["...", "...", "...", "..."], "answer": "A"}]}
where "answer" is the letter of the correct choice.`

// fetchPDFData downloads the PDF so it can be inlined into the prompt.
func fetchPDFData(ctx context.Context, pdfURL string) ([]byte, error) {
	if pdfURL == "" {
		return nil, fmt.Errorf("pdf URL is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid pdf URL %s: %w", pdfURL, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pdf from URL %s: %w", pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch pdf (status %d) from URL %s", resp.StatusCode, pdfURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf data from URL %s: %w", pdfURL, err)
	}
	return data, nil
}

func (s *geminiExtractionService) Extract(ctx context.Context, pdfURL string) ([]ExtractedQuestion, error) {
	if s.client == nil {
		return nil, NewExtractionError(ExtractionProviderRejected, fmt.Errorf("gemini client not initialized"))
	}

	timeout := time.Duration(s.cfg.Extraction.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pdfData, err := fetchPDFData(ctx, pdfURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewExtractionError(ExtractionTimeout, err)
		}
		return nil, NewExtractionError(ExtractionUnreachable, err)
	}

	resp, err := s.client.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: pdfData},
		genai.Text(extractionPrompt),
	)
	if err != nil {
		log.Error().Err(err).Str("pdfURL", pdfURL).Msg("Gemini API error during extraction")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewExtractionError(ExtractionTimeout, err)
		}
		return nil, NewExtractionError(ExtractionProviderRejected, err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, NewExtractionError(ExtractionUnparsable, fmt.Errorf("gemini returned no content"))
	}

	fullResponseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullResponseText += string(txt)
		}
	}

	questions, err := parseExtractedQuestions(fullResponseText)
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", fullResponseText).Msg("Failed to parse extraction response")
		return nil, NewExtractionError(ExtractionUnparsable, err)
	}

	log.Info().Int("count", len(questions)).Str("pdfURL", pdfURL).Msg("Extraction completed")
	return questions, nil
}

// parseExtractedQuestions decodes the model output and validates every item
// against the extraction guarantees: non-empty body, at least two choices,
// answer label present among the choices.
func parseExtractedQuestions(raw string) ([]ExtractedQuestion, error) {
	raw = stripCodeFences(raw)

	var wrapped struct {
		Questions []ExtractedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		// Some responses come back as a bare array.
		var bare []ExtractedQuestion
		if err2 := json.Unmarshal([]byte(raw), &bare); err2 != nil {
			return nil, fmt.Errorf("response is not valid question JSON: %w", err)
		}
		wrapped.Questions = bare
	}

	if len(wrapped.Questions) == 0 {
		return nil, fmt.Errorf("response contained no questions")
	}

	for i := range wrapped.Questions {
		q := &wrapped.Questions[i]
		q.Body = NormalizeMathDelimiters(strings.TrimSpace(q.Body))
		for j := range q.Choices {
			q.Choices[j] = NormalizeMathDelimiters(strings.TrimSpace(q.Choices[j]))
		}
		q.AnswerLabel = strings.ToUpper(strings.TrimSpace(q.AnswerLabel))

		if q.Body == "" {
			return nil, fmt.Errorf("question %d has an empty body", i+1)
		}
		if len(q.Choices) < 2 {
			return nil, fmt.Errorf("question %d has %d choices, need at least 2", i+1, len(q.Choices))
		}
		if !labelInRange(q.AnswerLabel, len(q.Choices)) {
			return nil, fmt.Errorf("question %d has answer label %q outside its %d choices", i+1, q.AnswerLabel, len(q.Choices))
		}
		if q.Index == 0 {
			q.Index = i + 1
		}
	}
	return wrapped.Questions, nil
}

func labelInRange(label string, choices int) bool {
	if len(label) != 1 {
		return false
	}
	pos := int(label[0] - 'A')
	return pos >= 0 && pos < choices
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// NormalizeMathDelimiters rewrites \(...\) and \[...\] spans to the dollar
// convention so every extracted string renders the same way downstream.
func NormalizeMathDelimiters(s string) string {
	replacer := strings.NewReplacer(
		`\(`, "$",
		`\)`, "$",
		`\[`, "$$",
		`\]`, "$$",
	)
	return replacer.Replace(s)
}
