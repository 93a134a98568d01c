package jobsdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestExtractListings_Fixture(t *testing.T) {
	jobs := ExtractListings(readFixture(t, "search_results.html"), "Central", BaseURL, 3)

	require.Len(t, jobs, 2)
	assert.Equal(t, domain.JobSummary{
		Title:    "Senior Software Engineer",
		Company:  "Acme Logistics Ltd",
		Location: "Central, Hong Kong SAR",
		Salary:   "$40,000 – $55,000 per month",
		Link:     "https://hk.jobsdb.com/job/80001?type=standard",
	}, jobs[0])

	// no location on the card: the requested one is shown instead
	assert.Equal(t, "Backend Engineer (Go)", jobs[1].Title)
	assert.Equal(t, "Central", jobs[1].Location)
	assert.Empty(t, jobs[1].Salary)
	assert.Equal(t, "https://hk.jobsdb.com/job/80002", jobs[1].Link)
}

func TestExtractListings_LinkNormalization(t *testing.T) {
	html := `
<div data-automation="jobCard"><a data-automation="jobTitle" href="/job/123">Relative</a><span>Co A</span></div>
<div data-automation="jobCard"><a data-automation="jobTitle" href="https://other.example/job/9">Absolute</a><span>Co B</span></div>
<div data-automation="jobCard"><h1>No link</h1><span>Co C</span></div>`

	jobs := ExtractListings(html, "", BaseURL, 3)

	require.Len(t, jobs, 3)
	assert.Equal(t, "https://hk.jobsdb.com/job/123", jobs[0].Link)
	assert.Equal(t, "https://other.example/job/9", jobs[1].Link)
	assert.Equal(t, domain.NoLink, jobs[2].Link)
	assert.Equal(t, DefaultLocation, jobs[2].Location)
}

func TestExtractListings_LinkNeverTakenFromCompanyAnchor(t *testing.T) {
	html := `
<article data-automation="normalJob">
  <a data-automation="jobTitle">Barista</a>
  <a data-automation="jobCompany" href="/companies/cafe-co">Cafe Co</a>
</article>
<article data-automation="normalJob">
  <h3>Cook</h3>
  <a href="/job/77">View</a>
  <a data-automation="jobCompany" href="/companies/kitchen">Kitchen Ltd</a>
</article>`

	jobs := ExtractListings(html, "", BaseURL, 3)

	require.Len(t, jobs, 2)
	assert.Equal(t, "Barista", jobs[0].Title)
	assert.Equal(t, "Cafe Co", jobs[0].Company)
	assert.Equal(t, domain.NoLink, jobs[0].Link)
	assert.Equal(t, "https://hk.jobsdb.com/job/77", jobs[1].Link)
}

func TestExtractListings_SkipsCardsWithoutTitleAndCompany(t *testing.T) {
	html := `
<article data-automation="normalJob"><a href="/job/1"></a></article>
<article data-automation="normalJob"><a data-automation="jobTitle" href="/job/2">Title only</a></article>
<article data-automation="normalJob"><a data-automation="jobCompany">Company only</a></article>`

	jobs := ExtractListings(html, "", BaseURL, 3)

	require.Len(t, jobs, 2)
	assert.Equal(t, "Title only", jobs[0].Title)
	assert.Empty(t, jobs[0].Company)
	assert.Empty(t, jobs[1].Title)
	assert.Equal(t, "Company only", jobs[1].Company)
}

func TestExtractListings_Cap(t *testing.T) {
	html := ""
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		html += `<article data-automation="normalJob"><a data-automation="jobTitle" href="/job/x">` + title + `</a><a data-automation="jobCompany">Co</a></article>`
	}

	jobs := ExtractListings(html, "", BaseURL, 3)

	require.Len(t, jobs, 3)
	assert.Equal(t, "One", jobs[0].Title)
	assert.Equal(t, "Three", jobs[2].Title)
}

func TestExtractListings_NoCards(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "empty", html: ""},
		{name: "unrelated page", html: `<html><body><h1>Attention Required! | Cloudflare</h1></body></html>`},
		{name: "broken markup", html: `<div data-automation="job<<<Card"><a href=`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ExtractListings(tt.html, "Central", BaseURL, 3))
		})
	}
}

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{href: "/job/123", want: "https://hk.jobsdb.com/job/123"},
		{href: "job/123", want: "https://hk.jobsdb.com/job/123"},
		{href: "https://other.example/job/9", want: "https://other.example/job/9"},
		{href: "http://other.example/job/9", want: "http://other.example/job/9"},
		{href: "", want: "#"},
		{href: "#", want: "#"},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLink(tt.href, BaseURL))
		})
	}
}
