package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/aicli"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

const (
	translateAttempts = 3
	translatePause    = time.Second
	translateTimeout  = 45 * time.Second
)

// Translated is the accepted output of one translation call.
type Translated struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Translator turns an English article into a zh-TW title and summary. It
// never fails: exhausted retries pass the original text through.
type Translator struct {
	runner ports.AIRunner
	sleep  func(context.Context, time.Duration)
	logger *slog.Logger
}

// NewTranslator wires the AI runner.
func NewTranslator(runner ports.AIRunner, logger *slog.Logger) *Translator {
	return &Translator{runner: runner, sleep: sleepCtx, logger: logger}
}

// Translate retries up to three times with a pause in between. An attempt is
// accepted only if the reply parses as JSON, the title contains a CJK rune
// and differs from the input title.
func (t *Translator) Translate(ctx context.Context, item domain.RawNewsItem) Translated {
	prompt := translatePrompt(item)

	for attempt := 1; attempt <= translateAttempts; attempt++ {
		out, err := t.runner.Run(ctx, prompt, ports.AIOptions{Model: "haiku", Timeout: translateTimeout})
		if err != nil {
			t.debug("translation attempt failed", "attempt", attempt, "error", err)
		} else if result, ok := parseTranslation(out, item.Title); ok {
			if result.Description == "" {
				result.Description = item.RawDescription
			}
			return result
		}

		if attempt < translateAttempts {
			t.sleep(ctx, translatePause)
		}
	}

	t.debug("translation exhausted, passing original through", "title", truncateRunes(item.Title, 50))
	return Translated{Title: item.Title, Description: item.RawDescription}
}

// parseTranslation extracts and validates the JSON reply.
func parseTranslation(out, originalTitle string) (Translated, bool) {
	raw, ok := aicli.ExtractJSON(out)
	if !ok {
		return Translated{}, false
	}
	var result Translated
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Translated{}, false
	}
	if !containsCJK(result.Title) || result.Title == originalTitle {
		return Translated{}, false
	}
	return result, true
}

func containsCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

func translatePrompt(item domain.RawNewsItem) string {
	return fmt.Sprintf(`你是專業翻譯員。將以下英文新聞翻譯成繁體中文（台灣用語），回傳 JSON。

原始標題：%s
新聞來源：%s
原始摘要：%s
原始內容：%s

回傳格式（只回傳 JSON，不要加任何其他文字）：
{"title": "翻譯後的繁體中文標題", "description": "翻譯後的繁體中文摘要"}

嚴格規則：
1. 標題和摘要必須全部使用繁體中文，不可保留英文（專有名詞如 Claude、ChatGPT、Anthropic 除外）
2. title：簡潔有力的繁體中文標題，移除來源名稱（如 - %s）
3. description：100-140 字的繁體中文摘要，清楚說明新聞重點
4. 使用台灣用語：「人工智慧」非「人工智能」，「軟體」非「软件」，「資料」非「數據」`,
		item.Title, item.Source,
		truncateRunes(item.RawDescription, 500),
		truncateRunes(item.Content, 1500),
		item.Source)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (t *Translator) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
