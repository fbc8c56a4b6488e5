// Package reply talks to the remote reply-generation service and shapes its
// answers into conversation messages.
package reply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/magonotec/magonotec-api/internal/format"
	"github.com/magonotec/magonotec-api/internal/model/chat"
)

// HistoryLimit caps how many prior messages accompany each request.
const HistoryLimit = 12

// Shown when the service answers but carries no usable reply text.
const emptyReplyFallback = "教えてくれてありがとうだよ。もう一度、少しだけ教えてもらえるかな？"

// Shown when the service cannot be reached or answers with an error.
const transportFallback = "ごめんね。今は、うまくお返事ができなかったよ。" +
	"時間をおいてから、もう一度ためしてみてもらえるかな？"

// Canned replies used in local mode, when no backend is configured. Same
// tone as the remote service: empathize, confirm, suggest.
var localReplies = []string{
	"なるほどだよ。そういうとき、ちょっと不安になるよね。一緒に、ゆっくり見ていこうか。",
	"教えてくれてありがとう。まずは、今どんな画面が出ているかを、簡単に教えてもらえるかな？",
	"大丈夫だよ。失敗しても、ちゃんとやり直せるからね。少しずつ、順番にやってみよう。",
	"うんうん。そのあたり、分かりづらいよね。まずは、どのアプリのことかだけ教えてくれる？",
	"焦らなくて大丈夫だよ。ゆっくりでいいから、今困っていることを、一言で教えてくれるかな？",
	"そうなんだね。それは確かに困っちゃうよね。一緒に解決していこうね。",
	"わかったよ。じゃあ、まずは簡単なところから始めてみようか。ついてきてね。",
	"なるほどね。それなら、こうしてみるといいかもしれないよ。やってみようか？",
}

type chatRequest struct {
	Message string        `json:"message"`
	History []historyItem `json:"history"`
	Image   string        `json:"image,omitempty"`
}

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Client requests replies from the backend at BaseURL. A Client with an empty
// BaseURL runs in local mode and answers from the canned set.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	randIntn   func(int) int
}

// NewClient builds a reply client. baseURL may be empty for local mode.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		randIntn:   rand.Intn,
	}
}

// LocalMode reports whether the client answers without a remote backend.
func (c *Client) LocalMode() bool {
	return c.baseURL == ""
}

// RequestReply exchanges the user's text (and optional base64 image) for an
// AI message. conversation must already include the user's current message;
// it is excluded from the history sent upstream. The second result is false
// when the service failed and the returned message is the fixed fallback.
// Exactly one request is attempted per call.
func (c *Client) RequestReply(ctx context.Context, userText, image string, conversation []chat.Message) (chat.Message, bool) {
	if c.LocalMode() {
		text := localReplies[c.randIntn(len(localReplies))]
		return chat.New(chat.RoleAI, format.ForSenior(text), c.now()), true
	}

	reply, err := c.call(ctx, userText, image, buildHistory(conversation))
	if err != nil {
		log.Printf("[reply] request failed: %v", err)
		return chat.New(chat.RoleAI, format.ForSenior(transportFallback), c.now()), false
	}

	if reply == "" {
		reply = emptyReplyFallback
	}
	return chat.New(chat.RoleAI, format.ForSenior(reply), c.now()), true
}

func (c *Client) call(ctx context.Context, userText, image string, history []historyItem) (string, error) {
	body, err := json.Marshal(chatRequest{
		Message: userText,
		History: history,
		Image:   image,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.Reply, nil
}

// buildHistory drops the final entry (the current user message, which rides
// in the message field instead) and keeps the most recent HistoryLimit.
func buildHistory(conversation []chat.Message) []historyItem {
	if len(conversation) == 0 {
		return []historyItem{}
	}

	prior := conversation[:len(conversation)-1]
	if len(prior) > HistoryLimit {
		prior = prior[len(prior)-HistoryLimit:]
	}

	history := make([]historyItem, 0, len(prior))
	for _, msg := range prior {
		history = append(history, historyItem{Role: msg.Role, Content: msg.Text})
	}
	return history
}
