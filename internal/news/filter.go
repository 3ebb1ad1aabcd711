package news

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

const filterFallbackCount = 10

const filterPromptHeader = `你是新聞過濾助手。以下是一份新聞列表，請選出與以下主題相關的新聞：
- AI 程式開發工具（如 GitHub Copilot、Cursor、AI coding assistants）
- 主要 AI 公司動態（Anthropic/Claude、OpenAI/ChatGPT、Google/Gemini、xAI/Grok）
- AI 模型更新或重大技術突破
- AI 對軟體開發產業的影響

新聞列表：
`

const filterPromptFooter = `
請只回傳你認為相關的新聞編號，用逗號分隔，例如：0,3,5,7
不要加任何其他文字，只要數字和逗號。如果沒有相關新聞，回傳空字串。`

// filter asks the AI tool to select relevant articles by index. A runner
// failure degrades to the first ten discovered items in original order; an
// empty valid selection is a legitimate "nothing relevant" answer.
func (p *Pipeline) filter(ctx context.Context, items []domain.RawNewsItem) []domain.RawNewsItem {
	if len(items) == 0 {
		return nil
	}

	var list strings.Builder
	for i, item := range items {
		fmt.Fprintf(&list, "%d. %s (%s)\n", i, item.Title, item.Source)
	}
	prompt := filterPromptHeader + list.String() + filterPromptFooter

	out, err := p.runner.Run(ctx, prompt, ports.AIOptions{Model: "haiku"})
	if err != nil {
		p.debug("news filter failed, keeping first items", "error", err)
		if len(items) > filterFallbackCount {
			items = items[:filterFallbackCount]
		}
		return items
	}

	indices, invalid := ParseIndices(out, len(items))
	if invalid > 0 && p.logger != nil {
		p.logger.Warn("news filter reply had invalid tokens", "invalid", invalid)
	}

	selected := make([]domain.RawNewsItem, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, items[idx])
	}
	return selected
}

// ParseIndices decodes a comma-separated index reply. Out-of-range and
// non-numeric tokens are counted and dropped.
func ParseIndices(reply string, limit int) (indices []int, invalid int) {
	for _, token := range strings.Split(strings.TrimSpace(reply), ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n >= limit {
			invalid++
			continue
		}
		indices = append(indices, n)
	}
	return indices, invalid
}
