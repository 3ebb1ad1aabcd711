package vibe

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

// Adapter generates the daily "vibe coding" fortune through the AI tool's
// print mode. The prompt is seeded with today's date and the current
// horoscope sign, so this adapter starts after the horoscope's first poll.
type Adapter struct {
	runner      ports.AIRunner
	sign        func() string
	defaultSign string
	logger      *slog.Logger
	now         func() time.Time
}

// NewAdapter wires the AI runner and a sign provider (typically a read of
// the horoscope state holder).
func NewAdapter(runner ports.AIRunner, sign func() string, defaultSign string, logger *slog.Logger) *Adapter {
	return &Adapter{runner: runner, sign: sign, defaultSign: defaultSign, logger: logger, now: time.Now}
}

// Poll asks the AI tool for fortune data; output without an extractable
// JSON object is "feature unavailable this round".
func (a *Adapter) Poll(ctx context.Context) (*domain.VibeSnapshot, error) {
	date := a.now().Format("2006-01-02")
	sign := ""
	if a.sign != nil {
		sign = a.sign()
	}
	if sign == "" {
		sign = a.defaultSign
		a.debug("no horoscope sign available yet, using default", "sign", sign)
	}

	out, err := a.runner.RunPrint(ctx, buildPrompt(date, sign), ports.AIOptions{})
	if err != nil {
		return nil, fmt.Errorf("vibe generation: %w", err)
	}

	raw, ok := aicli.ExtractJSON(out)
	if !ok {
		return nil, fmt.Errorf("vibe generation: no JSON object in output")
	}

	var snapshot domain.VibeSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("vibe generation: %w", err)
	}
	return &snapshot, nil
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func buildPrompt(date, sign string) string {
	return fmt.Sprintf(`# Role
You are the "Full-Stack Metaphysics Core", an API backend that generates fortune-telling data specifically for software developers ("Vibe Coding"). You combine traditional Chinese metaphysics (Almanac, I Ching, Astrology) with modern DevOps/Software Engineering terminology.

# Goal
Analyze the user's Date and Zodiac Sign to determine the "Vibe Coding" status. Output the result strictly in valid JSON format.

# Input Data
- Date: %[1]s
- Zodiac Sign: %[2]s

# Rules for Content Generation
1. **Almanac (DevOps Version):**
   - Map traditional "Good for (宜)" to positive dev actions (e.g., Refactoring, Writing Docs, Unit Testing).
   - Map "Bad for (忌)" to risky dev actions (e.g., Deploy on Friday, Force Push, Touching Legacy Code).
2. **Astrology (Log):**
   - Invent a planetary alignment rationale (e.g., Mercury retrograde) and explain how it affects logic, syntax errors, or communication with PMs.
3. **I Ching (Hexagram Hash):**
   - Randomly select a Hexagram (e.g., 乾, 坤, 屯...).
   - Interpret it as a system status (e.g., "System Stable", "Memory Leak Detected", "Stack Overflow").
4. **Vibe Check:**
   - Give a score (0-100).
   - Provide a short, witty verdict on whether they should code by feel (Vibe Coding) or stick to strict specs.
   - Recommend a specific music genre.

# Output Format (JSON Only)
- DO NOT return markdown formatting (no code fences).
- Return ONLY the raw JSON string.
- Ensure the JSON is valid and parsable.
- Use Traditional Chinese (zh-TW) for all value strings.

# JSON Template
{
  "meta": {
    "date": "%[1]s",
    "sign": "%[2]s",
    "engine_version": "v4.2"
  },
  "scores": {
    "vibe_score": 85,
    "rating": "Big Luck (大吉) / Warning (凶) / Neutral (平)"
  },
  "almanac": {
    "good_for": ["Action 1", "Action 2"],
    "bad_for": ["Action 1", "Action 2"],
    "description": "Short summary of the day's energy."
  },
  "astrology": {
    "planet_status": "Description of planetary alignment",
    "dev_impact": "How it affects coding"
  },
  "iching": {
    "hexagram": "卦名",
    "system_status": "System status interpretation",
    "interpretation": "Brief interpretation"
  },
  "recommendation": {
    "verdict": "Short witty verdict",
    "music_genre": "Recommended music genre"
  }
}`, date, sign)
}
