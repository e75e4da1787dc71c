// Package normalize maps source-native raw records into the canonical
// posting schema. Everything here is a pure function: no I/O, no clock
// beyond the fallback posting date, and a failed record is dropped
// rather than retried.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/amishk599/aisocjobs/internal/model"
)

const descriptionLimit = 500

// Ordered free-text extraction patterns. First match wins.
var (
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[A-Z][a-z]+,\s*[A-Z]{2}\b`),     // City, ST
		regexp.MustCompile(`[A-Z][a-z]+,\s*[A-Z][a-z]+\b`),  // City, Country
		regexp.MustCompile(`(?i)\bremote\b`),
		regexp.MustCompile(`(?i)\b(san francisco|new york|washington|london|boston|seattle|toronto|berlin)\b`),
	}

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bat\s+([^-,|]+)`),
		regexp.MustCompile(`(?i)Company:\s*([^\n.]+)`),
		regexp.MustCompile(`(?i)Employer:\s*([^\n.]+)`),
		regexp.MustCompile(`(?i)Organization:\s*([^\n.]+)`),
	}

	salaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$[\d,]+[kK]?\s*-\s*\$[\d,]+[kK]?`),
		regexp.MustCompile(`£[\d,]+\s*-\s*£[\d,]+`),
		regexp.MustCompile(`€[\d,]+\s*-\s*€[\d,]+`),
	}

	deadlinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)deadline[:\s]+([A-Z][a-z]+ \d{1,2},? \d{4})`),
		regexp.MustCompile(`(?i)apply by\s+([A-Z][a-z]+ \d{1,2},? \d{4})`),
		regexp.MustCompile(`(?i)closes? on\s+(\d{4}-\d{2}-\d{2})`),
	}
)

// Ordered keyword-membership rules. First matching rule wins; the zero
// rule at the end supplies the default.
var jobTypeRules = []struct {
	jobType model.JobType
	terms   []string
}{
	{model.JobTypeFaculty, []string{"university", "college", "institute of technology", "academic"}},
	{model.JobTypeGovernment, []string{"government", "federal", "department", "agency", ".gov"}},
	{model.JobTypeInternational, []string{"united nations", "world bank", "oecd", "unesco"}},
	{model.JobTypeNonprofit, []string{"foundation", "nonprofit", "ngo", "institute", "think tank"}},
}

var categoryRules = []struct {
	category model.Category
	terms    []string
}{
	{model.CategoryLegal, []string{"law", "legal", "attorney", "regulation", "compliance"}},
	{model.CategoryPolicy, []string{"policy", "governance", "government", "regulatory"}},
	{model.CategoryTechnical, []string{"engineer", "engineering", "developer", "technical", "software"}},
}

var remoteIndicators = []string{"remote", "work from home", "telecommute", "distributed"}

// Normalize converts a raw record into a canonical Posting. Structured
// fields from the adapter are trusted; anything missing is extracted
// heuristically from the free text. A record without a usable title is
// dropped with an error.
func Normalize(raw model.RawPosting) (model.Posting, error) {
	title := collapse(raw.Title)
	if title == "" {
		return model.Posting{}, fmt.Errorf("normalize: record from %s has no title", raw.Source)
	}

	description := StripHTML(raw.Summary)

	company := collapse(raw.Company)
	if company == "" {
		company = extractCompany(title, description, raw.Author)
	}

	location := collapse(raw.Location)
	if location == "" {
		location = extractLocation(title + " " + description)
	}

	salary := raw.SalaryInfo
	if salary == "" {
		salary = firstMatch(salaryPatterns, description)
	}

	content := strings.ToLower(title + " " + description + " " + company)

	postingDate := time.Now().Format("2006-01-02")
	if raw.Published != nil {
		postingDate = raw.Published.Format("2006-01-02")
	}

	p := model.Posting{
		Title:           title,
		Company:         company,
		Location:        location,
		JobType:         classifyJobType(content),
		Category:        classifyCategory(content),
		Description:     Truncate(description, descriptionLimit),
		FullDescription: description,
		PostingDate:     postingDate,
		Deadline:        extractDeadline(description),
		SourceURL:       strings.TrimSpace(raw.Link),
		SourceSite:      raw.Source,
		Tags:            buildTags(content, raw),
		IsRemote:        raw.Remote || containsAny(content, remoteIndicators),
		SalaryInfo:      salary,
	}
	return p, nil
}

func extractCompany(title, description, author string) string {
	if a := collapse(author); a != "" {
		return a
	}
	if m := companyPatterns[0].FindStringSubmatch(title); m != nil {
		if c := collapse(m[1]); len(c) < 100 {
			return c
		}
	}
	for _, re := range companyPatterns[1:] {
		if m := re.FindStringSubmatch(description); m != nil {
			if c := collapse(m[1]); c != "" && len(c) < 100 {
				return c
			}
		}
	}
	return "Unknown Company"
}

func extractLocation(content string) string {
	for _, re := range locationPatterns {
		if m := re.FindString(content); m != "" {
			return titleCase(m)
		}
	}
	return "Location TBD"
}

// titleCase uppercases the first letter of each word, leaving short
// all-caps tokens (state codes) alone.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == strings.ToUpper(w) && len(w) <= 3 {
			continue
		}
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

func extractDeadline(description string) string {
	for _, re := range deadlinePatterns {
		if m := re.FindStringSubmatch(description); m != nil {
			return collapse(m[1])
		}
	}
	return ""
}

func firstMatch(patterns []*regexp.Regexp, s string) string {
	for _, re := range patterns {
		if m := re.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

func classifyJobType(content string) model.JobType {
	for _, rule := range jobTypeRules {
		if containsAny(content, rule.terms) {
			return rule.jobType
		}
	}
	return model.JobTypeIndustry
}

func classifyCategory(content string) model.Category {
	for _, rule := range categoryRules {
		if containsAny(content, rule.terms) {
			return rule.category
		}
	}
	return model.CategoryResearch
}

var tagRules = []struct {
	tag   string
	terms []string
}{
	{"AI", []string{"artificial intelligence", "ai "}},
	{"Machine Learning", []string{"machine learning", "ml "}},
	{"Ethics", []string{"ethics"}},
	{"Policy", []string{"policy", "governance"}},
	{"AI Safety", []string{"safety"}},
	{"Research", []string{"research"}},
}

func buildTags(content string, raw model.RawPosting) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	for _, t := range raw.Tags {
		add(t)
	}
	for _, rule := range tagRules {
		if containsAny(content, rule.terms) {
			add(rule.tag)
		}
	}
	if raw.Remote {
		add("Remote")
	}
	return tags
}

func containsAny(content string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(content, t) {
			return true
		}
	}
	return false
}
