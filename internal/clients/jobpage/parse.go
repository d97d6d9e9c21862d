package jobpage

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"golang.org/x/net/html"
)

// The target sites write the same label with arbitrary trailing punctuation
// ("Company", "Company:", "Company -"), so labels are normalized before the
// set lookup instead of enumerating every variant.

var companyLabels = newLabelSet(
	"company name", "recruitment authority", "employer name",
	"company/organization", "company info", "institution", "company",
	"hiring company", "organisation", "organization", "employer", "firm",
	"recruiter", "hiring organization",
)

var roleLabels = newLabelSet(
	"job role", "opening title", "vacancy", "vacancy title", "position name",
	"job opening", "hiring for", "job name", "role", "position", "job title",
	"title", "designation", "post", "opening", "position title", "job position",
)

var experienceLabels = newLabelSet(
	"experience", "experience needed", "years required",
	"required work experience", "experienced", "experiences",
	"work experience", "required experience", "minimum experience",
	"experience required", "exp", "exp.", "total experience",
	"years of experience", "experience level", "prior experience",
	"professional experience",
)

var locationLabels = newLabelSet(
	"job location", "job posting location", "office", "job place", "location",
	"locations", "work location", "posting location", "place of posting",
	"place", "job locations", "workplace", "office location", "duty location",
)

var (
	trailingPunctRegex = regexp.MustCompile(`[\s:\-\x{2013}]+$`)
	labelValueRegex    = regexp.MustCompile(`^([^:]+):\s*(.+)$`)
	postDateRegex      = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)
	companyTitleRegex  = regexp.MustCompile(`(?i)^(.+?)\s+(Walk-?in|Off[\s-]*Campus|Recruitment|Hiring|Jobs|Careers)\b`)
	roleTitleRegex     = regexp.MustCompile(`(?i)\bas\s+([^|:]+?)(\s+with\s|\s*\||$)`)
	descHeadingRegex   = regexp.MustCompile(`(?i)\b(job\s+descriptions?|job\s+summary|key\s+responsibilit(y|ies)|responsibilit(y|ies)|duties|about\s+(the\s+)?(job|role)|role\s+(overview|description)|position\s+(overview|description)|job\s+(overview|profile|purpose)|what\s+you('ll|\s+will)?\s+do|opportunity\s+details|work\s+(details|summary))\b`)
)

func newLabelSet(labels ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

func normalizeLabel(text string) string {
	return strings.ToLower(trailingPunctRegex.ReplaceAllString(strings.TrimSpace(text), ""))
}

func parseJobPage(body []byte) (*models.Job, error) {

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	job := &models.Job{DatePosted: extractPostDate(doc)}

	extractTableFields(doc, job)
	extractParagraphFields(doc, job)
	extractTitleFields(doc, job)
	job.Description = extractDescription(doc)
	job.ApplyLink = extractApplyLink(doc)

	return job, nil
}

// extractTableFields reads the first details table, matching the left cell
// of each row against the known label sets.
func extractTableFields(doc *html.Node, job *models.Job) {

	table := findNode(doc, func(n *html.Node) bool { return n.Data == "table" })
	if table == nil {
		return
	}

	forEachNode(table, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}

		var cells []string
		forEachNode(n, func(cell *html.Node) {
			if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
				cells = append(cells, nodeText(cell))
			}
		})
		if len(cells) < 2 {
			return
		}

		assign(fieldForLabel(job, normalizeLabel(cells[0])), strings.TrimSpace(cells[1]), true)
	})
}

// extractParagraphFields handles pages that put "Label: value" lines in
// paragraphs instead of a table. Never overwrites a field the table set.
func extractParagraphFields(doc *html.Node, job *models.Job) {

	forEachNode(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "p" {
			return
		}

		text := nodeText(n)
		if text == "" {
			return
		}

		var label, value string
		if match := labelValueRegex.FindStringSubmatch(text); match != nil {
			label, value = match[1], match[2]
		} else {
			parts := strings.SplitN(text, " ", 2)
			if len(parts) != 2 {
				return
			}
			label, value = parts[0], parts[1]
		}

		assign(paragraphFieldForLabel(job, normalizeLabel(label)), strings.TrimSpace(value), false)
	})
}

func assign(target *string, value string, overwrite bool) {
	if target == nil || value == "" {
		return
	}
	if *target == "" || overwrite {
		*target = value
	}
}

func fieldForLabel(job *models.Job, label string) *string {
	switch {
	case contains(companyLabels, label):
		return &job.Company
	case contains(roleLabels, label):
		return &job.JobTitle
	case contains(experienceLabels, label):
		return &job.Experience
	case contains(locationLabels, label):
		return &job.Location
	}
	return nil
}

// Free-form paragraphs only get the short, unambiguous labels; the wide sets
// above would misread ordinary sentences.
func paragraphFieldForLabel(job *models.Job, label string) *string {
	switch label {
	case "job", "job role", "position", "role":
		return &job.JobTitle
	case "experience":
		return &job.Experience
	case "job location", "location":
		return &job.Location
	}
	return nil
}

func contains(set map[string]struct{}, label string) bool {
	_, ok := set[label]
	return ok
}

// extractTitleFields derives company and role from the page heading when the
// labelled sections did not yield them, e.g. "Acme Off Campus Hiring as
// Software Engineer".
func extractTitleFields(doc *html.Node, job *models.Job) {

	heading := findNode(doc, func(n *html.Node) bool { return n.Data == "h1" || n.Data == "h2" })
	if heading == nil {
		return
	}
	titleText := nodeText(heading)

	if job.Company == "" {
		if match := companyTitleRegex.FindStringSubmatch(titleText); match != nil {
			job.Company = strings.TrimSpace(match[1])
		}
	}

	if job.JobTitle == "" {
		if match := roleTitleRegex.FindStringSubmatch(titleText); match != nil {
			job.JobTitle = strings.TrimSpace(match[1])
		}
	}
}

func extractDescription(doc *html.Node) string {

	var parts []string

	aboutLabel := findNode(doc, func(n *html.Node) bool {
		return (n.Data == "strong" || n.Data == "b") &&
			strings.Contains(strings.ToLower(nodeText(n)), "about company")
	})
	if aboutLabel != nil {
		if aboutParagraph := nextNode(aboutLabel, "p"); aboutParagraph != nil {
			if text := nodeText(aboutParagraph); text != "" {
				parts = append(parts, text)
			}
		}
	}

	heading := findNode(doc, func(n *html.Node) bool {
		return n.Data == "p" && descHeadingRegex.MatchString(nodeText(n))
	})
	if heading != nil {
		for sibling := heading.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if sibling.Type != html.ElementNode {
				continue
			}
			switch sibling.Data {
			case "p":
				parts = append(parts, nodeText(sibling))
			case "ul":
				forEachNode(sibling, func(n *html.Node) {
					if n.Type == html.ElementNode && n.Data == "li" {
						parts = append(parts, nodeText(n))
					}
				})
			}
		}
	}

	if len(parts) == 0 {
		return ""
	}

	// The sites append a channel self-promo block; cut everything from it on.
	description := strings.Join(parts, "\n\n")
	return strings.TrimSpace(strings.SplitN(description, "Join our WhatsApp", 2)[0])
}

func extractApplyLink(doc *html.Node) string {

	applyLabel := findNode(doc, func(n *html.Node) bool {
		return (n.Data == "strong" || n.Data == "b") &&
			strings.Contains(strings.ToLower(nodeText(n)), "apply link")
	})
	if applyLabel != nil {
		if anchor := nextNode(applyLabel, "a"); anchor != nil {
			if href := attr(anchor, "href"); href != "" {
				return href
			}
		}
	}

	anchor := findNode(doc, func(n *html.Node) bool {
		return n.Data == "a" &&
			strings.Contains(strings.ToLower(nodeText(n)), "click here") &&
			attr(n, "href") != ""
	})
	if anchor != nil {
		return attr(anchor, "href")
	}

	return ""
}

// extractPostDate finds a "January 2, 2006"-style date anywhere on the page
// and normalizes it; pages without one are dated today, like a posting that
// was just announced.
func extractPostDate(doc *html.Node) string {

	var found string
	forEachNode(doc, func(n *html.Node) {
		if found != "" || n.Type != html.TextNode {
			return
		}
		if match := postDateRegex.FindString(n.Data); match != "" {
			found = match
		}
	})

	if found != "" {
		if date, err := time.Parse("January 2, 2006", found); err == nil {
			return date.Format(models.DateLayout)
		}
	}

	return time.Now().Format(models.DateLayout)
}

// ----- html traversal helpers -----

func forEachNode(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		forEachNode(child, fn)
	}
}

func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, pred); found != nil {
			return found
		}
	}
	return nil
}

// nextNode returns the first element named tag that appears after n in
// document order.
func nextNode(n *html.Node, tag string) *html.Node {
	for current := n; current != nil; current = current.Parent {
		for sibling := current.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if found := findNode(sibling, func(node *html.Node) bool { return node.Data == tag }); found != nil {
				return found
			}
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, attribute := range n.Attr {
		if attribute.Key == key {
			return attribute.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var builder strings.Builder
	forEachNode(n, func(node *html.Node) {
		if node.Type == html.TextNode {
			builder.WriteString(node.Data)
			builder.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(builder.String()), " ")
}
