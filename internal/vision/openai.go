package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const countPrompt = "You are counting TOY euro banknotes. " +
	"These are fake 100 EURO notes. " +
	"Count HOW MANY SEPARATE banknotes are visible on the photo. " +
	"Important: multiple '100' texts on the SAME note still count as ONE. " +
	"Answer ONLY with an integer number, nothing else."

var firstInt = regexp.MustCompile(`\d+`)

var ErrNoAPIKey = errors.New("openai: api key not configured")

// OpenAIProvider counts banknotes with the Chat Completions vision API.
// The client is built once at construction so concurrent submissions
// never mutate provider state.
type OpenAIProvider struct {
	apiKey string
	model  string
	client openai.Client
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	p := &OpenAIProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
	if p.apiKey != "" {
		p.client = openai.NewClient(option.WithAPIKey(p.apiKey))
	}
	return p
}

func (p *OpenAIProvider) CountBanknotes(ctx context.Context, image []byte) (int, error) {
	if p.apiKey == "" {
		return 0, ErrNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	model := p.model
	if model == "" {
		model = "gpt-4o-mini"
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(countPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("openai: count banknotes: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai: empty response")
	}
	return ParseCount(resp.Choices[0].Message.Content), nil
}

// ParseCount extracts the first integer from the model reply. Anything
// without a digit counts as zero.
func ParseCount(text string) int {
	m := firstInt.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
