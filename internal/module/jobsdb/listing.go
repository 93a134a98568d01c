package jobsdb

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/project-tktt/dream-jobs/internal/common/extractor"
	"github.com/project-tktt/dream-jobs/internal/domain"
)

// DefaultLocation is shown when neither the card nor the request names a location
const DefaultLocation = "Hong Kong"

// Listing page selectors, primary first
var (
	cardSelectors     = extractor.Chain{`article[data-automation="normalJob"]`, `div[data-automation="jobCard"]`}
	titleSelectors    = extractor.Chain{`a[data-automation="jobTitle"]`, `h1`, `h3`}
	companySelectors  = extractor.Chain{`a[data-automation="jobCompany"]`, `span`}
	locationSelectors = extractor.Chain{`a[data-automation="jobLocation"]`}
	salarySelectors   = extractor.Chain{`span[data-automation="jobSalary"]`}
	// the card's first anchor stands in for a title anchor without href;
	// later anchors (company, location) never become the job link
	linkSelectors = extractor.Chain{`a[data-automation="jobTitle"]`, `a`}
)

// ExtractListings parses a search results page into at most max summaries,
// in document order. Only the first max cards are examined. Cards with
// neither a title nor a company are skipped. No match is not an error.
func ExtractListings(html, requestedLocation, baseURL string, max int) []domain.JobSummary {
	doc, err := extractor.NewDocument(html)
	if err != nil {
		return nil
	}

	var jobs []domain.JobSummary
	cardSelectors.FindAll(doc.Selection).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if max > 0 && i >= max {
			return false
		}

		title := titleSelectors.Text(card)
		company := companySelectors.Text(card)
		if title == "" && company == "" {
			return true
		}

		jobs = append(jobs, domain.JobSummary{
			Title:    title,
			Company:  company,
			Location: extractor.FirstNonEmpty(locationSelectors.Text(card), strings.TrimSpace(requestedLocation), DefaultLocation),
			Salary:   salarySelectors.Text(card),
			Link:     NormalizeLink(linkSelectors.Attr(card, "href"), baseURL),
		})
		return true
	})

	return jobs
}

// NormalizeLink makes href absolute against the job board origin.
// Absolute http(s) links pass through unchanged; a missing href yields domain.NoLink.
func NormalizeLink(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == domain.NoLink {
		return domain.NoLink
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
	}
	return base.ResolveReference(ref).String()
}

// isFetchable reports whether link points at a real job page
func isFetchable(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
