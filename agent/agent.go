// Package agent is the shop advisor: a Gemini chat that answers the shop
// owner's questions about sales and stock.
//
// The advisor reads the shop through tools; it never changes it.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Agent is the advisor chat session.
type Agent struct {
	w       io.Writer
	r       *bufio.Reader
	Advisor *Expert
}

// New creates an Agent advising shop, writing to w and reading the
// questions from r.
func New(w io.Writer, r io.Reader, shop Shop, model string, logger *zap.Logger) *Agent {
	if model == "" {
		model = DefaultModel
	}
	tools := Tools(shop)
	return &Agent{
		w: w,
		r: bufio.NewReader(r),
		Advisor: &Expert{
			Name:        "Advisor",
			Description: "The advisor of the shop owner.",
			ModelName:   model,
			Config: &genai.GenerateContentConfig{
				Tools:             []*genai.Tool{{FunctionDeclarations: NewDeclaration(tools)}},
				SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: Instruction(shop)}}},
			},
			Library: NewLibrary(tools),
			Logger:  logger,
		},
	}
}

// Instruction is the system instruction of the advisor of shop.
func Instruction(shop Shop) string {
	return fmt.Sprintf(`You advise the owner of %q, a small shop, on sales and stock.
Today is %s.

Use the tools to read the dashboard, the products and the sales before answering.
Be concise: a few bullet points, amounts formatted as the tools do.
Suggest which products to restock first and which sell best.
You cannot change the shop, tell the owner which command to run instead.`, shop.Name(), shop.Today())
}

// DefaultQuestion is asked when the owner asks nothing.
const DefaultQuestion = "What should I restock first, and how are the sales doing this week?"

// Ask asks one question and returns the markdown answer.
func (a *Agent) Ask(ctx context.Context, client *genai.Client, question string) (string, error) {
	if !a.Advisor.Started() {
		if err := a.Advisor.Start(ctx, client); err != nil {
			return "", err
		}
	}
	content, err := a.Advisor.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	return text(content), nil
}

const prompt = "advise> "

// Run starts the interactive session. Each answer is passed to show.
func (a *Agent) Run(ctx context.Context, client *genai.Client, show func(string)) error {
	fmt.Fprintln(a.w, "Ask anything about the shop. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		input, err := a.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil // Ctrl+D
			}
			return err
		}
		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "bye":
			return nil
		}
		answer, err := a.Ask(ctx, client, input)
		if err != nil {
			return err
		}
		show(answer)
	}
}

// NewClient returns a Gemini client authenticated by apiKey. An empty key
// falls back to the GEMINI_API_KEY and GOOGLE_API_KEY environment variables.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("cannot create the gemini client: %w", err)
	}
	return client, nil
}
