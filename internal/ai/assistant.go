package ai

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const replySystemPrompt = `Anda adalah asisten AI yang sangat membantu dan ramah berbahasa Indonesia. Anda bertugas membantu pengguna dengan:

1. Customer Service - Menjawab pertanyaan tentang produk, layanan, pembayaran, pengiriman, dll.
2. FAQ - Memberikan informasi tentang pertanyaan yang sering diajukan
3. Percakapan Umum - Berbicara secara natural dan membantu dengan berbagai topik

Pedoman komunikasi:
- Gunakan bahasa Indonesia yang sopan dan ramah
- Berikan jawaban yang detail dan membantu
- Jika tidak tahu jawaban pasti, katakan dengan jujur
- Tawarkan bantuan lebih lanjut jika diperlukan
- Sesekali tanyakan apakah pengguna membutuhkan informasi kontak untuk follow-up

Gaya komunikasi:
- Hangat dan profesional
- Menggunakan emotikon seperlunya
- Proaktif menawarkan bantuan
- Responsif terhadap kebutuhan pengguna`

const intentSystemPrompt = `Analyze the user's message and determine their intent. Respond with JSON in this format:
{
  "intent": "customer_service" | "faq" | "general" | "prospect_collection",
  "confidence": number between 0 and 1,
  "category": optional specific category
}

Intent definitions:
- customer_service: Questions about products, services, orders, complaints, support
- faq: Common questions about company, policies, procedures
- general: General conversation, greetings, casual chat
- prospect_collection: When user shows interest in products/services and might want to be contacted`

const prospectSystemPrompt = `Berdasarkan pesan pengguna dan riwayat percakapan, buat respon yang natural untuk mengumpulkan informasi kontak prospek.

Pedoman:
- Jangan terlalu memaksa atau sales-y
- Tawarkan nilai tambah (konsultasi gratis, informasi khusus, dll)
- Buat alasan yang masuk akal mengapa perlu kontak
- Gunakan bahasa yang ramah dan profesional
- Pastikan terasa natural dalam konteks percakapan

Contoh pendekatan:
- "Untuk memberikan rekomendasi yang lebih tepat..."
- "Agar saya bisa mengirimkan informasi detail..."
- "Supaya tim kami bisa membantu lebih lanjut..."
- "Untuk konsultasi gratis yang lebih personal..."`

// fallbackReplies are served verbatim when the completion API is
// unreachable or returns nothing usable.
var fallbackReplies = []string{
	"Maaf, saya mengalami kesulitan teknis saat ini. Bisakah Anda mengulangi pertanyaan Anda?",
	"Sepertinya ada gangguan koneksi. Silakan coba lagi dalam beberapa saat.",
	"Saya sedang mengalami masalah teknis. Apakah ada yang bisa saya bantu dengan cara lain?",
	"Mohon maaf atas ketidaknyamanannya. Sistem sedang mengalami gangguan sementara.",
}

const defaultProspectPrompt = "Untuk memberikan bantuan yang lebih tepat, bolehkah saya meminta informasi kontak Anda?"

const (
	IntentCustomerService    = "customer_service"
	IntentFAQ                = "faq"
	IntentGeneral            = "general"
	IntentProspectCollection = "prospect_collection"
)

type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
}

// GenerateReply produces the assistant's answer to a user message. Prior
// conversation turns may be passed as context. It never fails: any upstream
// error yields one of the fixed fallback replies.
func (c *Client) GenerateReply(ctx context.Context, message string, priorContext []string) string {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: replySystemPrompt},
	}
	if len(priorContext) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Konteks percakapan sebelumnya: " + strings.Join(priorContext, "\n"),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	reply, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages:         messages,
		MaxTokens:        1000,
		Temperature:      0.7,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		c.log.Error().Err(err).Msg("generate reply failed, serving fallback")
		return fallbackReplies[rand.Intn(len(fallbackReplies))]
	}
	return reply
}

// ClassifyIntent asks the model for a structured intent verdict. Parse or
// transport failures degrade to {general, 0.5}.
func (c *Client) ClassifyIntent(ctx context.Context, message string) IntentResult {
	fallback := IntentResult{Intent: IntentGeneral, Confidence: 0.5}

	raw, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: intentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   200,
		Temperature: 0.3,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("classify intent failed")
		return fallback
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.log.Error().Err(err).Msg("classify intent returned unparsable output")
		return fallback
	}
	if result.Intent == "" {
		result.Intent = IntentGeneral
	}
	if result.Confidence == 0 {
		result.Confidence = 0.5
	}
	return result
}

// DraftProspectPrompt produces a natural nudge toward collecting contact
// details. On failure it returns the fixed default prompt.
func (c *Client) DraftProspectPrompt(ctx context.Context, message string, history []string) string {
	userTurn := "Pesan pengguna: " + message
	if len(history) > 0 {
		userTurn += "\n\nRiwayat percakapan: " + strings.Join(history, "\n")
	}

	prompt, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prospectSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userTurn},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil || strings.TrimSpace(prompt) == "" {
		c.log.Error().Err(err).Msg("draft prospect prompt failed, serving default")
		return defaultProspectPrompt
	}
	return prompt
}

// FallbackReplies exposes the fixed fallback set for verification by tests
// and operational tooling.
func FallbackReplies() []string {
	out := make([]string, len(fallbackReplies))
	copy(out, fallbackReplies)
	return out
}
