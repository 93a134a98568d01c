package jobsdb

import (
	"github.com/project-tktt/dream-jobs/internal/common/cleaner"
	"github.com/project-tktt/dream-jobs/internal/common/extractor"
	"github.com/project-tktt/dream-jobs/internal/domain"
)

// Detail page selectors. data-automation attributes come first,
// class names cover older page templates.
var (
	detailTitle          = extractor.Chain{`h1[data-automation="job-detail-title"]`, `h1`}
	detailCompany        = extractor.Chain{`span[data-automation="advertiser-name"]`, `[data-automation="company-name"]`}
	detailLocation       = extractor.Chain{`span[data-automation="job-detail-location"]`}
	detailWorkType       = extractor.Chain{`span[data-automation="job-detail-work-type"]`}
	detailClassification = extractor.Chain{`span[data-automation="job-detail-classifications"]`}
	detailDescription    = extractor.Chain{`div[data-automation="jobAdDetails"]`, `.job-description`, `.details-content`}
)

// ExtractDetail parses a job page. Fields that no selector matches stay empty.
func ExtractDetail(html, pageURL string, clean *cleaner.Cleaner) domain.JobDetail {
	detail := domain.JobDetail{URL: pageURL}

	doc, err := extractor.NewDocument(html)
	if err != nil {
		return detail
	}
	root := doc.Selection

	detail.Title = detailTitle.Text(root)
	detail.Company = detailCompany.Text(root)
	detail.Location = detailLocation.Text(root)
	detail.WorkType = detailWorkType.Text(root)
	detail.Classification = detailClassification.Text(root)

	if desc := detailDescription.Find(root); desc.Length() > 0 {
		desc.Find("script, style, noscript").Remove()
		if inner, err := desc.Html(); err == nil {
			detail.DescriptionHTML = clean.Clean(inner)
			detail.DescriptionText = clean.CleanToText(inner)
		}
	}

	return detail
}
