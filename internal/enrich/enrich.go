// Package enrich turns selected articles into publish-ready candidates with
// templated metadata: a short summary, matched topics, hashtags, a "why it
// matters" statement, and a suggested LinkedIn angle. Everything here is
// deterministic string templating; repeated calls on identical input produce
// identical output.
package enrich

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ContentAgent/internal/domain"
	"ContentAgent/internal/score"
)

var themeFramings = map[string]string{
	"cloud_security":            "strengthens your cloud security posture",
	"identity_and_access":       "improves identity and access controls",
	"governance_and_compliance": "supports governance and compliance requirements",
	"data_protection":           "enhances data protection capabilities",
	"auditing_and_retention":    "improves audit and monitoring capabilities",
	"devsecops":                 "enables security automation in your DevOps pipeline",
}

const fallbackFraming = "helps organizations improve their security posture"

var themeHashtags = map[string][]string{
	"cloud_security":            {"CloudSecurity", "CyberSecurity", "InfoSec"},
	"identity_and_access":       {"IAM", "IdentityManagement", "ZeroTrust"},
	"governance_and_compliance": {"Compliance", "GRC", "RiskManagement"},
	"data_protection":           {"DataProtection", "DataSecurity", "DLP"},
	"auditing_and_retention":    {"Audit", "SecurityMonitoring", "Logging"},
	"devsecops":                 {"DevSecOps", "SecurityAutomation", "ShiftLeft"},
}

// Summary returns the first one to three sentences of the article's summary
// text, or "{title}." when the text yields no sentences.
func Summary(article domain.Article) string {
	sentences := splitSentences(article.SummaryText)
	if len(sentences) > 0 {
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		return strings.Join(sentences, " ")
	}

	title := article.Title
	if title == "" {
		title = "Article"
	}
	return title + "."
}

// Topics lists the taxonomy themes matched by the article's title and
// summary, using the same keyword matching the relevance score uses.
func Topics(article domain.Article, taxonomy domain.Taxonomy) []string {
	return score.MatchedThemes(article.Title, article.SummaryText, taxonomy)
}

// Hashtags maps matched topics to their fixed hashtag lists, concatenated in
// topic order with duplicates removed on first occurrence. Topics without a
// table entry contribute nothing.
func Hashtags(topics []string) []string {
	if len(topics) == 0 {
		return []string{}
	}

	hashtags := make([]string, 0, 3*len(topics))
	seen := make(map[string]struct{})
	for _, topic := range topics {
		for _, tag := range themeHashtags[topic] {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			hashtags = append(hashtags, tag)
		}
	}
	return hashtags
}

// WhyItMatters frames the article for a security audience. The first matched
// topic picks the framing; without topics the statement falls back to a
// generic review prompt.
func WhyItMatters(article domain.Article, topics []string) string {
	title := article.Title
	if title == "" {
		title = "This update"
	}

	if len(topics) == 0 {
		return fmt.Sprintf("%s may impact your cloud security strategy. Review for potential benefits.", title)
	}

	framing, ok := themeFramings[topics[0]]
	if !ok {
		framing = fallbackFraming
	}
	return fmt.Sprintf("%s %s. Security teams should evaluate this for their environment.", title, framing)
}

// LinkedinAngle suggests a one-sentence post framing. The variant is chosen
// by the title's rune length modulo the variant count, so the suggestion is
// stable for a given article. Trailing sentence punctuation is stripped from
// the title before it is embedded so the angle stays a single sentence.
func LinkedinAngle(article domain.Article) string {
	title := article.Title
	if title == "" {
		title = "This article"
	}
	source := article.Source
	if source == "" {
		source = "the cloud provider"
	}

	title = strings.TrimRight(title, ".!?")

	angles := []string{
		fmt.Sprintf("Share how %s from %s can benefit your organization's security strategy.", title, source),
		fmt.Sprintf("Discuss the practical implications of %s for enterprise security teams.", title),
		fmt.Sprintf("Highlight key takeaways from %s that security leaders should know.", title),
	}
	return angles[utf8.RuneCountInString(title)%len(angles)]
}

// Candidate enriches one scored article. collectedAt is stamped by the
// caller so every candidate in a batch shares the same timestamp.
func Candidate(scored domain.Scored, taxonomy domain.Taxonomy, collectedAt time.Time) domain.Candidate {
	topics := Topics(scored.Article, taxonomy)
	return domain.Candidate{
		Article:        scored.Article,
		Summary:        Summary(scored.Article),
		KeyTopics:      topics,
		WhyItMatters:   WhyItMatters(scored.Article, topics),
		LinkedinAngle:  LinkedinAngle(scored.Article),
		Hashtags:       Hashtags(topics),
		ScoreOverall:   scored.Overall,
		ScoreRecency:   scored.Recency,
		ScoreRelevance: scored.Relevance,
		CollectedAt:    collectedAt,
	}
}

// Candidates enriches a selected batch with a shared collection timestamp.
func Candidates(selected []domain.Scored, taxonomy domain.Taxonomy, collectedAt time.Time) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(selected))
	for _, s := range selected {
		candidates = append(candidates, Candidate(s, taxonomy, collectedAt))
	}
	return candidates
}

// splitSentences breaks text after runs of sentence punctuation followed by
// whitespace. Text without such a boundary is a single sentence, trailing
// punctuation included.
func splitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var sentences []string
	runes := []rune(trimmed)
	start := 0

	i := 0
	for i < len(runes) {
		if !isSentenceEnd(runes[i]) {
			i++
			continue
		}

		end := i + 1
		for end < len(runes) && isSentenceEnd(runes[end]) {
			end++
		}
		if end >= len(runes) || !unicode.IsSpace(runes[end]) {
			i = end
			continue
		}

		if sentence := strings.TrimSpace(string(runes[start:end])); sentence != "" {
			sentences = append(sentences, sentence)
		}
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		start = end
		i = end
	}

	if start < len(runes) {
		if sentence := strings.TrimSpace(string(runes[start:])); sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
