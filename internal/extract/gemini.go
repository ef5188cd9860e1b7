package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/statement-editor/internal/domain"
)

// GeminiExtractor is the primary extraction path: it sends the raw statement
// text to a Gemini model and parses the strict-JSON statement it returns.
type GeminiExtractor struct {
	model    string
	maxChars int
}

// NewGeminiExtractor creates the model-backed extractor. maxChars caps how
// much raw text is sent to the model; longer input is truncated.
func NewGeminiExtractor(model string, maxChars int) *GeminiExtractor {
	return &GeminiExtractor{model: model, maxChars: maxChars}
}

// Name returns the extractor identifier.
func (e *GeminiExtractor) Name() string { return "gemini" }

// Extract sends the raw text to the model and transforms the response into a
// statement. Any failure is returned as an error so the caller can fall back
// to the offline extractor.
func (e *GeminiExtractor) Extract(ctx context.Context, rawText string) (*domain.Statement, error) {
	rawText = truncate(rawText, e.maxChars)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildStatementPrompt(rawText)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	rawResponse := resp.Text()
	if rawResponse == "" {
		return nil, fmt.Errorf("gemini: empty response from model")
	}

	clean := cleanModelJSON(rawResponse)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: unmarshal JSON: %w", err)
	}

	st, err := statementFromModelOutput(parsed)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return st, nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// buildStatementPrompt assembles the extraction instructions around the raw
// statement text.
func buildStatementPrompt(rawText string) string {
	var b strings.Builder

	b.WriteString("You are a bank statement parser. Extract the following information from the text and return ONLY valid JSON.\n\n")
	b.WriteString("Required format:\n")
	b.WriteString(`{
  "header": {
    "bank_name": "string or null",
    "account_holder": "string",
    "account_number": "string",
    "ifsc": "string or null",
    "micr": "string or null",
    "branch": "string or null",
    "statement_period": "string or null",
    "address": "string or null"
  },
  "transactions": [
    {
      "date": "YYYY-MM-DD",
      "description": "string",
      "credit": 0.0,
      "debit": 0.0,
      "balance": 0.0,
      "ref": "string or null"
    }
  ],
  "opening_balance": 0.0,
  "closing_balance": 0.0,
  "pages": [
    {"start": 1, "end": 1, "type": "statement|attachment|promotional|blank"}
  ]
}`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Extract ALL transactions in chronological order.\n")
	b.WriteString("- Credit and debit amounts must be positive numbers or 0.\n")
	b.WriteString("- If a field is missing, use null for strings and 0.0 for numbers.\n")
	b.WriteString("- Dates must be in YYYY-MM-DD format.\n")
	b.WriteString("- If the text has page markers, classify each page range in \"pages\"; otherwise omit the field.\n")
	b.WriteString("- Put source columns that do not fit the schema in \"extra_columns\" as {\"column\": [values]}.\n")
	b.WriteString("- Return ONLY the JSON object. No Markdown, no code fences, no explanation.\n")
	b.WriteString("\nBank Statement Text:\n")
	b.WriteString(rawText)
	b.WriteString("\n\nReturn the JSON now:\n")

	return b.String()
}

// cleanModelJSON strips Markdown fences and clamps the response to the
// outermost JSON object, in case the model ignored the formatting rules.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' if junk remains.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
