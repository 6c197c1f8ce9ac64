package content

import (
	"fmt"
	"strings"
)

// Styles supported by the template fallback. Live generation accepts any style
// name; these three always work without any external service.
const (
	StyleProfessional      = "professional"
	StyleThoughtLeadership = "thought-leadership"
	StyleConversational    = "conversational"
)

// DefaultStyles is the style list used when a request names none.
var DefaultStyles = []string{StyleProfessional, StyleThoughtLeadership, StyleConversational}

// renderTemplate builds one deterministic draft. The same topic, insight, and
// style always produce the same text.
func renderTemplate(style, topic, insight string) string {
	if insight == "" {
		insight = fmt.Sprintf("Interest in %s keeps climbing across the industry", topic)
	}
	insight = asSentence(insight)
	hashtag := topicHashtag(topic)

	switch style {
	case StyleThoughtLeadership:
		return fmt.Sprintf("Most teams are asking the wrong question about %s. "+
			"The question is not which tool to pick. It is which of your current assumptions stop being true once %s matures. "+
			"%s "+
			"Every platform shift rewards the organizations that rethink their workflows early, and punishes the ones that bolt new technology onto old processes. "+
			"The gap will not show up this quarter. It will show up in two years, and by then it will be expensive to close. "+
			"What does your roadmap assume stays still?\n\n%s #Leadership #Innovation",
			topic, topic, insight, hashtag)
	case StyleConversational:
		return fmt.Sprintf("Let's talk about %s for a minute. %s "+
			"I keep hearing two reactions: either it is overhyped or it changes everything. "+
			"The reality I have seen is messier and more interesting. Small experiments beat big announcements every time. "+
			"Teams that ship one tiny project learn more in a month than committees learn in a year. "+
			"So here is my question: how are you approaching %s right now? Drop your thoughts below.\n\n%s #TechTalk",
			topic, insight, topic, hashtag)
	default:
		return fmt.Sprintf("The conversation around %s has shifted from whether to adopt it to how to operationalize it. "+
			"%s "+
			"Teams getting results share a pattern. They start with one well-scoped use case and put real metrics behind it, expanding only after the numbers hold. "+
			"That discipline separates pilots that quietly stall from programs that compound. "+
			"If %s touches your roadmap this year, the groundwork you lay now will decide how fast you can move later.\n\n%s #Strategy #TechLeadership",
			topic, insight, topic, hashtag)
	}
}

// asSentence normalizes an insight fragment into a sentence.
func asSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

// topicHashtag camel-cases a topic into a hashtag.
func topicHashtag(topic string) string {
	fields := strings.Fields(topic)
	if len(fields) == 0 {
		return "#Trending"
	}

	var b strings.Builder
	b.WriteByte('#')
	for _, word := range fields {
		runes := []rune(word)
		b.WriteString(strings.ToUpper(string(runes[0])))
		if len(runes) > 1 {
			b.WriteString(strings.ToLower(string(runes[1:])))
		}
	}
	return b.String()
}
