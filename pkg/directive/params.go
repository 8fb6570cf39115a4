// Package directive resolves the in-text tags a user embeds in a prompt:
// @f: file inclusion, @d: directory trees, @t: per-turn token-budget level,
// @T: per-turn sampling temperature.
package directive

import (
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"gchat/pkg/transcript"
)

var log = logrus.StandardLogger().WithField("component", "directive")

// Override directives carry a numeric token after the colon; anything else on
// the line is ordinary prompt text.
var (
	tokenLevelRe  = regexp.MustCompile(`@t\s*:(\d+)`)
	temperatureRe = regexp.MustCompile(`@T\s*:(-?\d+(?:\.\d+)?)`)
)

// Params holds the per-turn overrides extracted from the transcript. The Set
// flags distinguish "user said level 0" from "no override present".
type Params struct {
	Level       int
	Temperature float64
	LevelSet    bool
	TempSet     bool
}

// ExtractParams scans every user message for override directives, applying
// last-write-wins across the whole message set, and returns the messages with
// all override occurrences stripped. Assistant and system content is left
// untouched. Levels above maxLevel are clamped with a warning; temperatures
// outside the typical [0, 2] range are accepted as-is with a warning.
func ExtractParams(messages []transcript.Message, maxLevel int) (Params, []transcript.Message) {
	var params Params
	out := make([]transcript.Message, len(messages))

	for i, msg := range messages {
		out[i] = msg
		if msg.Role != transcript.RoleUser {
			continue
		}

		for _, m := range tokenLevelRe.FindAllStringSubmatch(msg.Content, -1) {
			level, err := strconv.Atoi(m[1])
			if err != nil {
				log.WithField("directive", m[0]).Warn("Ignoring unparseable token-budget override")
				continue
			}
			if level > maxLevel {
				log.WithFields(logrus.Fields{"level": level, "max": maxLevel}).
					Warn("Token-budget level out of range, clamping to maximum")
				level = maxLevel
			}
			params.Level = level
			params.LevelSet = true
		}

		for _, m := range temperatureRe.FindAllStringSubmatch(msg.Content, -1) {
			temp, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				log.WithField("directive", m[0]).Warn("Ignoring unparseable temperature override")
				continue
			}
			if temp < 0 || temp > 2 {
				log.WithField("temperature", temp).Warn("Temperature outside typical range [0, 2]")
			}
			params.Temperature = temp
			params.TempSet = true
		}

		stripped := tokenLevelRe.ReplaceAllString(msg.Content, "")
		stripped = temperatureRe.ReplaceAllString(stripped, "")
		out[i].Content = stripped
	}

	return params, out
}
